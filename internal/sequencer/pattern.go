package sequencer

import (
	"github.com/schollz/drumcore/internal/types"
)

// Cell is the per-step parameter-lock bundle addressed by (pattern, track,
// step). Arena stores these as struct-of-arrays rather than an array of
// Cell values, to keep the common "iterate all tracks at a fixed step"
// access pattern cache-friendly, but Cell itself is the ergonomic value
// type returned by Arena.Get and accepted piecewise by the setters.
type Cell struct {
	On                    bool
	Velocity              int // 1..127, default 127
	NoteLenDiv            int // 1, 2, 4, 8; 1 = full sample
	Probability           int // 0..100, default 100
	Ratchet               int // 1..4, default 1
	VolumeLockEnabled     bool
	VolumeLockValue       int // 0..150
	CutoffLockEnabled     bool
	CutoffLockHz          float64
	ReverbSendLockEnabled bool
	ReverbSendLockValue   int // 0..100
}

// Arena is the pattern storage arena: a single struct-of-arrays allocation
// sized [NumPatterns][NumTracks][NumSteps] per field, allocated once at
// construction and never reallocated. On the original firmware this lives
// in slow external RAM, since it is written only by the control task and
// read once per step; here it is just a plain Go allocation. Every mutator
// is single-writer (the control goroutine) and single-reader one step
// later, inside Tick — the audio goroutine never touches pattern cells.
type Arena struct {
	on                    [types.NumPatterns][types.NumTracks][types.NumSteps]bool
	velocity              [types.NumPatterns][types.NumTracks][types.NumSteps]int8
	noteLenDiv            [types.NumPatterns][types.NumTracks][types.NumSteps]int8
	probability           [types.NumPatterns][types.NumTracks][types.NumSteps]int8
	ratchet               [types.NumPatterns][types.NumTracks][types.NumSteps]int8
	volumeLockEnabled     [types.NumPatterns][types.NumTracks][types.NumSteps]bool
	volumeLockValue       [types.NumPatterns][types.NumTracks][types.NumSteps]uint8
	cutoffLockEnabled     [types.NumPatterns][types.NumTracks][types.NumSteps]bool
	cutoffLockHz          [types.NumPatterns][types.NumTracks][types.NumSteps]float32
	reverbSendLockEnabled [types.NumPatterns][types.NumTracks][types.NumSteps]bool
	reverbSendLockValue   [types.NumPatterns][types.NumTracks][types.NumSteps]int8
}

// NewArena allocates the arena once and fills in per-cell defaults
// (velocity 127, note-length-div 1, probability 100, ratchet 1).
func NewArena() *Arena {
	a := &Arena{}
	for p := 0; p < types.NumPatterns; p++ {
		for t := 0; t < types.NumTracks; t++ {
			for s := 0; s < types.NumSteps; s++ {
				a.velocity[p][t][s] = types.MaxVelocity
				a.noteLenDiv[p][t][s] = 1
				a.probability[p][t][s] = 100
				a.ratchet[p][t][s] = 1
			}
		}
	}
	return a
}

func valid(p, t, s int) bool {
	return types.ValidPattern(p) && types.ValidTrack(t) && types.ValidStep(s)
}

// Get returns the full cell at (pattern, track, step). Returns the zero
// Cell for an out-of-range address.
func (a *Arena) Get(p, t, s int) Cell {
	if !valid(p, t, s) {
		return Cell{}
	}
	return Cell{
		On:                    a.on[p][t][s],
		Velocity:              int(a.velocity[p][t][s]),
		NoteLenDiv:            int(a.noteLenDiv[p][t][s]),
		Probability:           int(a.probability[p][t][s]),
		Ratchet:               int(a.ratchet[p][t][s]),
		VolumeLockEnabled:     a.volumeLockEnabled[p][t][s],
		VolumeLockValue:       int(a.volumeLockValue[p][t][s]),
		CutoffLockEnabled:     a.cutoffLockEnabled[p][t][s],
		CutoffLockHz:          float64(a.cutoffLockHz[p][t][s]),
		ReverbSendLockEnabled: a.reverbSendLockEnabled[p][t][s],
		ReverbSendLockValue:   int(a.reverbSendLockValue[p][t][s]),
	}
}

// SetStep sets the on/off bit of one cell. Invalid indices are silently
// ignored.
func (a *Arena) SetStep(p, t, s int, on bool) {
	if !valid(p, t, s) {
		return
	}
	a.on[p][t][s] = on
}

// SetStepVelocity sets a cell's velocity, clamped to 1..127.
func (a *Arena) SetStepVelocity(p, t, s, v int) {
	if !valid(p, t, s) {
		return
	}
	a.velocity[p][t][s] = int8(types.Clamp(v, 1, types.MaxVelocity))
}

// SetStepNoteLen sets a cell's note-length divisor, restricted to
// {1, 2, 4, 8} — any other value is rounded up to the next valid divisor
// (values below 1 become 1, values above 8 become 8).
func (a *Arena) SetStepNoteLen(p, t, s, div int) {
	if !valid(p, t, s) {
		return
	}
	a.noteLenDiv[p][t][s] = int8(normalizeNoteLenDiv(div))
}

func normalizeNoteLenDiv(div int) int {
	switch {
	case div <= 1:
		return 1
	case div <= 2:
		return 2
	case div <= 4:
		return 4
	default:
		return 8
	}
}

// SetStepProbability sets a cell's fire probability, clamped to 0..100.
func (a *Arena) SetStepProbability(p, t, s, pct int) {
	if !valid(p, t, s) {
		return
	}
	a.probability[p][t][s] = int8(types.Clamp(pct, 0, 100))
}

// SetStepRatchet sets a cell's ratchet count, clamped to 1..4.
func (a *Arena) SetStepRatchet(p, t, s, r int) {
	if !valid(p, t, s) {
		return
	}
	a.ratchet[p][t][s] = int8(types.Clamp(r, 1, 4))
}

// SetStepVolumeLock enables/disables and sets a cell's volume lock.
func (a *Arena) SetStepVolumeLock(p, t, s int, enabled bool, value int) {
	if !valid(p, t, s) {
		return
	}
	a.volumeLockEnabled[p][t][s] = enabled
	a.volumeLockValue[p][t][s] = uint8(types.Clamp(value, 0, types.MaxVolumePercent))
}

// SetStepCutoffLock enables/disables and sets a cell's cutoff lock (Hz),
// supplied for completeness alongside the volume lock.
func (a *Arena) SetStepCutoffLock(p, t, s int, enabled bool, hz float64) {
	if !valid(p, t, s) {
		return
	}
	a.cutoffLockEnabled[p][t][s] = enabled
	a.cutoffLockHz[p][t][s] = float32(types.ClampF(hz, 20, types.SampleRate*0.49))
}

// SetStepReverbSendLock enables/disables and sets a cell's reverb-send
// lock (0..100).
func (a *Arena) SetStepReverbSendLock(p, t, s int, enabled bool, value int) {
	if !valid(p, t, s) {
		return
	}
	a.reverbSendLockEnabled[p][t][s] = enabled
	a.reverbSendLockValue[p][t][s] = int8(types.Clamp(value, 0, 100))
}

// SetPatternBulk bulk-writes the on/velocity grid for one pattern across
// all tracks and the first StepsPerBar steps.
func (a *Arena) SetPatternBulk(p int, steps [types.NumTracks][types.StepsPerBar]bool, vels [types.NumTracks][types.StepsPerBar]int) {
	if !types.ValidPattern(p) {
		return
	}
	for t := 0; t < types.NumTracks; t++ {
		for s := 0; s < types.StepsPerBar; s++ {
			a.on[p][t][s] = steps[t][s]
			a.velocity[p][t][s] = int8(types.Clamp(vels[t][s], 1, types.MaxVelocity))
		}
	}
}

// ClearPattern resets every cell of pattern p to its default state.
func (a *Arena) ClearPattern(p int) {
	if !types.ValidPattern(p) {
		return
	}
	for t := 0; t < types.NumTracks; t++ {
		a.clearTrackInPattern(p, t)
	}
}

// ClearTrack resets track t's cells to their default state across every
// pattern.
func (a *Arena) ClearTrack(t int) {
	if !types.ValidTrack(t) {
		return
	}
	for p := 0; p < types.NumPatterns; p++ {
		a.clearTrackInPattern(p, t)
	}
}

func (a *Arena) clearTrackInPattern(p, t int) {
	for s := 0; s < types.NumSteps; s++ {
		a.on[p][t][s] = false
		a.velocity[p][t][s] = types.MaxVelocity
		a.noteLenDiv[p][t][s] = 1
		a.probability[p][t][s] = 100
		a.ratchet[p][t][s] = 1
		a.volumeLockEnabled[p][t][s] = false
		a.volumeLockValue[p][t][s] = 0
		a.cutoffLockEnabled[p][t][s] = false
		a.cutoffLockHz[p][t][s] = 0
		a.reverbSendLockEnabled[p][t][s] = false
		a.reverbSendLockValue[p][t][s] = 0
	}
}

// CopyPattern copies every per-step field of src onto dst, making pattern
// dst equal to pattern src.
func (a *Arena) CopyPattern(src, dst int) {
	if !types.ValidPattern(src) || !types.ValidPattern(dst) || src == dst {
		return
	}
	a.on[dst] = a.on[src]
	a.velocity[dst] = a.velocity[src]
	a.noteLenDiv[dst] = a.noteLenDiv[src]
	a.probability[dst] = a.probability[src]
	a.ratchet[dst] = a.ratchet[src]
	a.volumeLockEnabled[dst] = a.volumeLockEnabled[src]
	a.volumeLockValue[dst] = a.volumeLockValue[src]
	a.cutoffLockEnabled[dst] = a.cutoffLockEnabled[src]
	a.cutoffLockHz[dst] = a.cutoffLockHz[src]
	a.reverbSendLockEnabled[dst] = a.reverbSendLockEnabled[src]
	a.reverbSendLockValue[dst] = a.reverbSendLockValue[src]
}
