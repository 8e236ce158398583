// Package persist saves and restores a pattern bank (the sequencer's
// arena, track state, and transport settings) as JSON via the jsoniter
// encoder, with a debounced autosave built around a mutex-guarded timer.
package persist

import (
	"fmt"
	"os"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/drumcore/internal/core"
	"github.com/schollz/drumcore/internal/sequencer"
	"github.com/schollz/drumcore/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CellSnapshot is one non-default cell, addressed explicitly since the
// full arena (NumPatterns*NumTracks*NumSteps cells) is mostly defaults and
// not worth writing out in full.
type CellSnapshot struct {
	Pattern int
	Track   int
	Step    int
	sequencer.Cell
}

// TrackSnapshot is one track's mixer/loop state.
type TrackSnapshot struct {
	Muted      bool
	Volume     int
	LoopActive bool
	LoopPaused bool
	LoopType   types.LoopType
}

// Bank is the full on-disk representation of a pattern bank.
type Bank struct {
	TempoBPM            int
	SongMode            bool
	SongLength          int
	HumanizeTimingMs    int
	HumanizeVelocityPct int
	Tracks              [types.NumTracks]TrackSnapshot
	Cells               []CellSnapshot
	KitFiles            [types.NumPads]string
}

// isDefaultCell reports whether c is indistinguishable from a freshly
// cleared step, i.e. not worth writing to the snapshot.
func isDefaultCell(c sequencer.Cell) bool {
	return !c.On &&
		c.Velocity == types.MaxVelocity &&
		c.NoteLenDiv == 1 &&
		c.Probability == 100 &&
		c.Ratchet == 1 &&
		!c.VolumeLockEnabled &&
		!c.CutoffLockEnabled &&
		!c.ReverbSendLockEnabled
}

// Snapshot reads the current state of an engine's sequencer and sample
// store into a Bank. Read-only; safe to call from outside the control
// goroutine since it only reads published state, never mutates it.
func Snapshot(e *core.Engine) Bank {
	seq := e.Sequencer()
	store := e.Store()

	tempo := seq.TempoBPM()
	songMode, songLength := seq.SongMode()
	timingMs, velocityPct := seq.Humanize()

	b := Bank{
		TempoBPM:            tempo,
		SongMode:            songMode,
		SongLength:          songLength,
		HumanizeTimingMs:    timingMs,
		HumanizeVelocityPct: velocityPct,
	}

	for t := 0; t < types.NumTracks; t++ {
		ts := seq.Track(t)
		b.Tracks[t] = TrackSnapshot{
			Muted:      ts.Muted,
			Volume:     ts.Volume,
			LoopActive: ts.LoopActive,
			LoopPaused: ts.LoopPaused,
			LoopType:   ts.LoopType,
		}
	}

	arena := seq.Arena()
	for p := 0; p < types.NumPatterns; p++ {
		for t := 0; t < types.NumTracks; t++ {
			for s := 0; s < types.NumSteps; s++ {
				cell := arena.Get(p, t, s)
				if isDefaultCell(cell) {
					continue
				}
				b.Cells = append(b.Cells, CellSnapshot{Pattern: p, Track: t, Step: s, Cell: cell})
			}
		}
	}

	for pad := 0; pad < types.NumPads; pad++ {
		if buf := store.Current(pad); buf != nil {
			b.KitFiles[pad] = buf.Name
		}
	}

	return b
}

// Apply issues the engine commands necessary to bring a live engine's
// sequencer state into agreement with b. The cutoff-lock and
// reverb-send-lock fields of b.Cells are not applied; only on/velocity,
// note length, probability, ratchet, and the volume lock are. Sample
// buffers themselves are not restored here — b.KitFiles is a manifest for a caller (typically
// kitloader) to re-load from disk, since persist never decodes audio.
func Apply(e *core.Engine, b Bank) {
	e.SetTempo(b.TempoBPM)
	e.SetSongMode(b.SongMode, b.SongLength)
	e.SetHumanize(b.HumanizeTimingMs, b.HumanizeVelocityPct)

	for t, ts := range b.Tracks {
		e.MuteTrack(t, ts.Muted)
		e.SetTrackVolume(t, ts.Volume)
		e.SetLoopType(t, ts.LoopType)
		if ts.LoopActive {
			e.ToggleLoop(t)
		}
		if ts.LoopPaused {
			e.PauseLoop(t)
		}
	}

	for _, cs := range b.Cells {
		e.SetStep(cs.Pattern, cs.Track, cs.Step, cs.On)
		e.SetStepVelocity(cs.Pattern, cs.Track, cs.Step, cs.Velocity)
		e.SetStepNoteLen(cs.Pattern, cs.Track, cs.Step, cs.NoteLenDiv)
		e.SetStepProbability(cs.Pattern, cs.Track, cs.Step, cs.Probability)
		e.SetStepRatchet(cs.Pattern, cs.Track, cs.Step, cs.Ratchet)
		if cs.VolumeLockEnabled {
			e.SetStepVolumeLock(cs.Pattern, cs.Track, cs.Step, true, cs.VolumeLockValue)
		}
	}

	e.Flush()
}

// SaveFile marshals b as JSON and writes it to path.
func SaveFile(path string, b Bank) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: marshal bank: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("persist: write %s: %w", path, err)
	}
	return nil
}

// LoadFile reads and unmarshals a Bank previously written by SaveFile.
func LoadFile(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bank{}, fmt.Errorf("persist: read %s: %w", path, err)
	}
	var b Bank
	if err := json.Unmarshal(data, &b); err != nil {
		return Bank{}, fmt.Errorf("persist: unmarshal %s: %w", path, err)
	}
	return b, nil
}

// AutoSaver debounces repeated save requests into at most one write per
// debounce window — kept as an instance here rather than a package-level
// global, consistent with the rest of this module's no-singletons design.
type AutoSaver struct {
	mu           sync.Mutex
	timer        *time.Timer
	debounce     time.Duration
	path         string
	engine       *core.Engine
	onSaveResult func(error)
}

// NewAutoSaver builds a debounced saver targeting path, using the
// teacher's 1-second debounce window.
func NewAutoSaver(path string, e *core.Engine) *AutoSaver {
	return &AutoSaver{debounce: 1 * time.Second, path: path, engine: e}
}

// OnResult registers a callback invoked with the outcome of each debounced
// save (nil on success). Optional; if unset, save errors are silently
// dropped, matching a log-and-continue posture for a background autosave.
func (a *AutoSaver) OnResult(fn func(error)) { a.onSaveResult = fn }

// RequestSave (re)starts the debounce timer. Repeated calls within the
// debounce window collapse into a single save.
func (a *AutoSaver) RequestSave() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, func() {
		b := Snapshot(a.engine)
		err := SaveFile(a.path, b)
		if a.onSaveResult != nil {
			a.onSaveResult(err)
		}
	})
}

// Flush cancels any pending debounce timer and saves immediately.
func (a *AutoSaver) Flush() error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	return SaveFile(a.path, Snapshot(a.engine))
}
