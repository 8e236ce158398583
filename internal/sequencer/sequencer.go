// Package sequencer implements the step sequencer: the pattern arena,
// transport/song state, and the Tick algorithm that dispatches one step's
// worth of triggers to whatever owns the voice pool.
package sequencer

import (
	"math/rand"
	"time"

	"github.com/schollz/drumcore/internal/types"
)

var zeroTime time.Time

// Callbacks is the capability interface Tick drives, collapsing
// step/step-change/pattern-change into one interface since every
// implementation needs all three. core.Engine is the only production
// implementation; tests use a recording fake.
type Callbacks interface {
	// Step fires once per triggered hit — once per loop-processor fire, and
	// once per ratchet sub-hit of a firing pattern cell. noteLenSamples is
	// 0 for "play to end" (loop fires, and cells with NoteLenDiv==1).
	Step(track, velocity, volume, noteLenSamples int)
	// StepChange fires once per tick that advances the playhead, reporting
	// the step about to be processed.
	StepChange(step int)
	// PatternChange fires when song mode advances to a new pattern.
	PatternChange(pattern, songLength int)
}

// Sequencer is the whole Step Sequencer component: pattern arena, per-track
// state, transport, and song-mode chaining. Every method is intended to be
// called from a single control goroutine; it never runs on the audio
// goroutine.
type Sequencer struct {
	arena  *Arena
	tracks [types.NumTracks]TrackState

	playing        bool
	tempoBPM       int
	currentPattern int
	currentStep    int

	stepIntervalUs     int64
	nextStepIntervalUs int64
	lastStepTime       time.Time

	humanizeTimingMs    int
	humanizeVelocityPct int

	songMode   bool
	songLength int

	callbacks Callbacks
	rng       *rand.Rand
}

// NewSequencer returns a stopped sequencer at pattern 0, step 0, 120 BPM,
// with every track unmuted at 100% volume and no loop or song mode active.
// seed determines the humanize/probability/arrhythmic-loop RNG stream,
// making Tick's trigger sequence fully reproducible for a fixed seed and
// command history.
func NewSequencer(callbacks Callbacks, seed int64) *Sequencer {
	s := &Sequencer{
		arena:      NewArena(),
		currentPattern: 0,
		currentStep:    0,
		songLength:     1,
		callbacks:      callbacks,
		rng:            rand.New(rand.NewSource(seed)),
	}
	for i := range s.tracks {
		s.tracks[i] = newTrackState()
	}
	s.SetTempo(120)
	return s
}

// Arena exposes the pattern arena for direct mutation (SetStep,
// SetStepVelocity, ClearPattern, CopyPattern, ...).
func (s *Sequencer) Arena() *Arena { return s.arena }

// Tick advances the transport by the elapsed wall-clock time since the
// previous call and, if a step boundary has been crossed, dispatches that
// step's triggers to Callbacks. Intended to be called frequently (on the
// order of hundreds of Hz) from the control goroutine; no-ops when not
// playing or when less than one step interval has elapsed.
func (s *Sequencer) Tick(now time.Time) {
	if !s.playing {
		return
	}
	if s.lastStepTime.IsZero() {
		s.lastStepTime = now
		return
	}
	if now.Sub(s.lastStepTime) < time.Duration(s.nextStepIntervalUs)*time.Microsecond {
		return
	}
	s.lastStepTime = now

	if s.callbacks != nil {
		s.callbacks.StepChange(s.currentStep)
	}

	s.processLoops()
	s.processPatternStep()

	s.currentStep++
	if s.currentStep >= types.StepsPerBar {
		s.currentStep = 0
		if s.songMode && s.songLength > 1 {
			s.currentPattern = (s.currentPattern + 1) % s.songLength
			if s.callbacks != nil {
				s.callbacks.PatternChange(s.currentPattern, s.songLength)
			}
		}
	}

	s.nextStepIntervalUs = s.jitteredInterval()
}

// processLoops runs every track's independent loop processor: EveryStep
// fires every tick, EveryBeat every 4th,
// HalfBeat every 2nd, Arrhythmic with fixed probability
// types.ArrhythmicProbability. A muted track fires nothing at all, loop
// included.
func (s *Sequencer) processLoops() {
	for t := range s.tracks {
		ts := &s.tracks[t]
		if !ts.LoopActive || ts.LoopPaused || ts.Muted {
			continue
		}

		fire := false
		switch ts.LoopType {
		case types.LoopEveryStep:
			fire = true
		case types.LoopEveryBeat:
			fire = ts.loopStepCounter%4 == 0
		case types.LoopHalfBeat:
			fire = ts.loopStepCounter%2 == 0
		case types.LoopArrhythmic:
			fire = s.rng.Float64() < types.ArrhythmicProbability
		}
		ts.loopStepCounter = (ts.loopStepCounter + 1) % types.StepsPerBar

		if fire && s.callbacks != nil {
			s.callbacks.Step(t, types.MaxVelocity, ts.Volume, 0)
		}
	}
}

// processPatternStep evaluates every track's cell at (currentPattern,
// currentStep), applying the probability gate, volume lock, note-length
// divisor, ratchet sub-hits, and velocity humanize, in that order.
func (s *Sequencer) processPatternStep() {
	for t := range s.tracks {
		ts := &s.tracks[t]
		if ts.Muted {
			continue
		}

		cell := s.arena.Get(s.currentPattern, t, s.currentStep)
		if !cell.On {
			continue
		}
		if cell.Probability < 100 && s.rng.Intn(100) >= cell.Probability {
			continue
		}

		volume := ts.Volume
		if cell.VolumeLockEnabled {
			volume = cell.VolumeLockValue
		}

		noteLen := 0
		if cell.NoteLenDiv > 1 {
			noteLen = s.noteLenSamples(cell.NoteLenDiv)
		}

		ratchet := cell.Ratchet
		if ratchet < 1 {
			ratchet = 1
		}
		subLen := noteLen
		if ratchet > 1 && noteLen > 0 {
			subLen = noteLen / ratchet
			if subLen < types.MinFrames {
				subLen = types.MinFrames
			}
		}

		for i := 0; i < ratchet; i++ {
			vel := s.humanizedVelocity(cell.Velocity)
			if s.callbacks != nil {
				s.callbacks.Step(t, vel, volume, subLen)
			}
		}
	}
}

// noteLenSamples converts a note-length divisor into a sample-frame count
// at the current tempo, floored at types.MinFrames so a note length never
// resolves to fewer samples than that.
func (s *Sequencer) noteLenSamples(div int) int {
	framesPerStep := float64(s.stepIntervalUs) * types.SampleRate / 1_000_000.0
	samples := int(framesPerStep / float64(div))
	if samples < types.MinFrames {
		samples = types.MinFrames
	}
	return samples
}

// humanizedVelocity applies the transport's ±percent velocity jitter to a
// cell's base velocity, clamped back to 1..127.
func (s *Sequencer) humanizedVelocity(v int) int {
	if s.humanizeVelocityPct <= 0 {
		return v
	}
	delta := types.MaxVelocity * s.humanizeVelocityPct / 100
	if delta <= 0 {
		return v
	}
	jitter := s.rng.Intn(2*delta+1) - delta
	return types.Clamp(v+jitter, 1, types.MaxVelocity)
}

// jitteredInterval applies the transport's ±ms timing jitter to the base
// step interval, floored at half the base interval so jitter can never
// invert step ordering.
func (s *Sequencer) jitteredInterval() int64 {
	if s.humanizeTimingMs <= 0 {
		return s.stepIntervalUs
	}
	spreadUs := int64(s.humanizeTimingMs) * 1000
	jitter := s.rng.Int63n(2*spreadUs+1) - spreadUs
	result := s.stepIntervalUs + jitter
	if min := s.stepIntervalUs / 2; result < min {
		result = min
	}
	return result
}
