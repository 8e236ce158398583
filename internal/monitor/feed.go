// Package monitor is a read-only bubbletea TUI: it subscribes to the
// engine's event surface and renders the live step grid, the active-voice
// count, and the watched pad's waveform peaks. Much reduced compared to a full
// tracker UI, since this module has no step-editing UI of its own — only a
// live monitor.
package monitor

import (
	"sync"

	"github.com/schollz/drumcore/internal/types"
)

// Feed implements core.Events, buffering the latest published state for
// the bubbletea model to read on each redraw tick. A plain mutex-guarded
// struct rather than channels, since the model only ever wants the most
// recent value of each field, never a backlog — the redraw loop re-reads
// live state on every tick rather than queuing messages.
type Feed struct {
	mu sync.Mutex

	step       int
	pattern    int
	songLength int
	voices     int
	peaks      map[int][][2]int16
}

// NewFeed returns an empty Feed ready to be handed to core.NewEngine as
// its Events implementation.
func NewFeed() *Feed {
	return &Feed{peaks: make(map[int][][2]int16)}
}

func (f *Feed) StepChange(step int) {
	f.mu.Lock()
	f.step = step
	f.mu.Unlock()
}

func (f *Feed) PatternChange(newPattern, songLength int) {
	f.mu.Lock()
	f.pattern = newPattern
	f.songLength = songLength
	f.mu.Unlock()
}

func (f *Feed) VoicesStatus(activeCount int) {
	f.mu.Lock()
	f.voices = activeCount
	f.mu.Unlock()
}

func (f *Feed) WaveformPeaks(pad int, peaks [][2]int16) {
	if !types.ValidPad(pad) {
		return
	}
	f.mu.Lock()
	f.peaks[pad] = peaks
	f.mu.Unlock()
}

// snapshot is an immutable copy of the feed's state for one redraw.
type snapshot struct {
	step       int
	pattern    int
	songLength int
	voices     int
	peaks      [][2]int16
}

func (f *Feed) snapshot(watchedPad int) snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return snapshot{
		step:       f.step,
		pattern:    f.pattern,
		songLength: f.songLength,
		voices:     f.voices,
		peaks:      f.peaks[watchedPad],
	}
}
