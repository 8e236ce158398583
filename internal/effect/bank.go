package effect

import (
	"sync"

	"github.com/schollz/drumcore/internal/types"
)

// Bank owns every Filter instance in the system: one global master filter,
// one per track (0..15), and one per pad (0..23). It enforces the
// "at most 8 active per category" cap and is the sole
// writer; the audio goroutine only calls Filter.Process, which never takes
// a lock.
type Bank struct {
	master *Filter
	track  [types.NumTracks]*Filter
	pad    [types.NumPads]*Filter

	mu               sync.Mutex // guards the active-count bookkeeping only
	activeTrackCount int
	activePadCount   int
}

// NewBank constructs a bank with every filter bypassed (type None).
func NewBank() *Bank {
	b := &Bank{master: NewFilter()}
	for i := range b.track {
		b.track[i] = NewFilter()
	}
	for i := range b.pad {
		b.pad[i] = NewFilter()
	}
	return b
}

// Master returns the global filter instance (used by the master chain).
func (b *Bank) Master() *Filter { return b.master }

// Track returns the per-track filter for t, or nil if t is out of range.
func (b *Bank) Track(t int) *Filter {
	if !types.ValidTrack(t) {
		return nil
	}
	return b.track[t]
}

// Pad returns the per-pad filter for p, or nil if p is out of range.
func (b *Bank) Pad(p int) *Filter {
	if !types.ValidPad(p) {
		return nil
	}
	return b.pad[p]
}

// SetMasterFilter reconfigures the global filter. Cutoff/Q out of range are
// clamped (InvalidParameter) rather than rejected.
func (b *Bank) SetMasterFilter(kind types.FilterType, cutoff, q float64) {
	cutoff = types.ClampF(cutoff, 20, types.SampleRate*0.49)
	q = types.ClampF(q, 0.1, 20)
	b.master.Configure(kind, cutoff, q, 0)
}

// SetTrackFilter reconfigures track t's filter, enforcing the 8-active cap.
// Returns ErrInvalidIndex, ErrTooManyActiveFilters, or nil.
func (b *Bank) SetTrackFilter(t int, kind types.FilterType, cutoff, q, gainDB float64) error {
	if !types.ValidTrack(t) {
		return types.ErrInvalidIndex
	}
	cutoff = types.ClampF(cutoff, 20, types.SampleRate*0.49)
	q = types.ClampF(q, 0.1, 20)
	gainDB = types.ClampF(gainDB, -24, 24)

	b.mu.Lock()
	defer b.mu.Unlock()

	wasActive := b.track[t].Active()
	willBeActive := kind != types.FilterNone
	if !wasActive && willBeActive && b.activeTrackCount >= types.MaxActiveFiltersPerCategory {
		return types.ErrTooManyActiveFilters
	}

	b.track[t].Configure(kind, cutoff, q, gainDB)

	switch {
	case !wasActive && willBeActive:
		b.activeTrackCount++
	case wasActive && !willBeActive:
		b.activeTrackCount--
	}
	return nil
}

// ClearTrackFilter disables track t's filter.
func (b *Bank) ClearTrackFilter(t int) error {
	if !types.ValidTrack(t) {
		return types.ErrInvalidIndex
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.track[t].Active() {
		b.activeTrackCount--
	}
	b.track[t].Configure(types.FilterNone, 0, 0, 0)
	return nil
}

// SetPadFilter reconfigures pad p's filter, enforcing the 8-active cap.
func (b *Bank) SetPadFilter(p int, kind types.FilterType, cutoff, q, gainDB float64) error {
	if !types.ValidPad(p) {
		return types.ErrInvalidIndex
	}
	cutoff = types.ClampF(cutoff, 20, types.SampleRate*0.49)
	q = types.ClampF(q, 0.1, 20)
	gainDB = types.ClampF(gainDB, -24, 24)

	b.mu.Lock()
	defer b.mu.Unlock()

	wasActive := b.pad[p].Active()
	willBeActive := kind != types.FilterNone
	if !wasActive && willBeActive && b.activePadCount >= types.MaxActiveFiltersPerCategory {
		return types.ErrTooManyActiveFilters
	}

	b.pad[p].Configure(kind, cutoff, q, gainDB)

	switch {
	case !wasActive && willBeActive:
		b.activePadCount++
	case wasActive && !willBeActive:
		b.activePadCount--
	}
	return nil
}

// ClearPadFilter disables pad p's filter.
func (b *Bank) ClearPadFilter(p int) error {
	if !types.ValidPad(p) {
		return types.ErrInvalidIndex
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pad[p].Active() {
		b.activePadCount--
	}
	b.pad[p].Configure(types.FilterNone, 0, 0, 0)
	return nil
}

// VoiceFilter resolves which filter (if any) applies to a playing voice:
// pad-filter if live-and-active, else track-filter if
// not-live-and-active, else identity (nil).
func (b *Bank) VoiceFilter(padIndex int, isLivePad bool) *Filter {
	if isLivePad {
		if f := b.Pad(padIndex); f != nil && f.Active() {
			return f
		}
		return nil
	}
	if f := b.Track(padIndex); f != nil && f.Active() {
		return f
	}
	return nil
}
