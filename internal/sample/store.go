// Package sample implements the sample store: a fixed-size table of pad ->
// optional sample buffer, mutated only from the control goroutine, with
// lifetime extended past Unload until no voice still references the
// buffer.
package sample

import (
	"sync"
	"sync/atomic"

	"github.com/schollz/drumcore/internal/types"
)

// Buffer is immutable-while-referenced 16-bit signed mono PCM at the
// engine's native sample rate. refs tracks how many voices currently hold
// a borrow; Store.Unload defers the actual free until refs drains to zero.
type Buffer struct {
	Data []int16
	Name string
	refs atomic.Int32
}

// Length returns the buffer length in frames.
func (b *Buffer) Length() int { return len(b.Data) }

// Acquire records a new voice borrow. Called by the voice mixer on trigger.
func (b *Buffer) Acquire() { b.refs.Add(1) }

// Release drops a voice borrow. Called by the voice mixer when a voice
// playing this buffer returns to Free.
func (b *Buffer) Release() { b.refs.Add(-1) }

func (b *Buffer) refCount() int32 { return b.refs.Load() }

// slot holds the current buffer for one pad plus any buffers pending a
// deferred free (still referenced by a voice at the time Unload/Load
// replaced them).
type slot struct {
	current *atomic.Pointer[Buffer]
	pending []*Buffer
}

// Store owns all 24 pad -> buffer slots. Load/Unload/Trim/ApplyFade are
// callable only from the control goroutine and are serialized per-pad by
// mu; Current is safe to call from the audio goroutine (lock-free atomic
// load).
type Store struct {
	mu    sync.Mutex
	slots [types.NumPads]slot
}

// NewStore returns an empty sample store (all pads unloaded).
func NewStore() *Store {
	s := &Store{}
	for i := range s.slots {
		s.slots[i].current = &atomic.Pointer[Buffer]{}
	}
	return s
}

// Current returns the buffer currently published for pad, or nil if none is
// loaded. Safe to call from the audio goroutine; never blocks.
func (s *Store) Current(pad int) *Buffer {
	if !types.ValidPad(pad) {
		return nil
	}
	return s.slots[pad].current.Load()
}

// Load replaces the buffer at pad with pcm (copied into a new Buffer with
// the given name), publishing it atomically. Returns ErrInvalidIndex or
// ErrOutOfMemory; on failure the previous buffer (if any) is untouched.
func (s *Store) Load(pad int, pcm []int16, name string) error {
	if !types.ValidPad(pad) {
		return types.ErrInvalidIndex
	}
	if pcm == nil {
		return types.ErrOutOfMemory
	}

	data := make([]int16, len(pcm))
	copy(data, pcm)
	buf := &Buffer{Data: data, Name: name}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl := &s.slots[pad]
	old := sl.current.Load()
	sl.current.Store(buf)
	s.deferFree(sl, old)
	s.reapPending(sl)
	return nil
}

// Unload frees the buffer at pad. If voices are still playing it, the free
// is deferred until they naturally finish or are stopped — this never
// blocks the caller and never fails with Busy since the free is deferred
// rather than rejected.
func (s *Store) Unload(pad int) error {
	if !types.ValidPad(pad) {
		return types.ErrInvalidIndex
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := &s.slots[pad]
	old := sl.current.Load()
	sl.current.Store(nil)
	s.deferFree(sl, old)
	s.reapPending(sl)
	return nil
}

// UnloadAll frees every pad.
func (s *Store) UnloadAll() {
	for i := range s.slots {
		_ = s.Unload(i)
	}
}

// deferFree appends old (if non-nil) to the slot's pending-free list. Must
// be called with mu held.
func (s *Store) deferFree(sl *slot, old *Buffer) {
	if old == nil {
		return
	}
	sl.pending = append(sl.pending, old)
}

// reapPending drops any pending buffers whose refcount has drained to zero.
// Must be called with mu held. Also invoked opportunistically from Load so
// a burst of load/unload calls doesn't leak the pending list indefinitely.
func (s *Store) reapPending(sl *slot) {
	kept := sl.pending[:0]
	for _, b := range sl.pending {
		if b.refCount() > 0 {
			kept = append(kept, b)
		}
	}
	sl.pending = kept
}

// Reap is called periodically by the control goroutine (e.g. once per Tick)
// to drain buffers whose voices have since finished.
func (s *Store) Reap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		s.reapPending(&s.slots[i])
	}
}

// Trim reallocates a shortened buffer over [startNorm, endNorm) of the
// current buffer at pad and atomically swaps it in. Fails if the pad has no
// buffer, the bounds are invalid, or the resulting length is below
// MinFrames.
func (s *Store) Trim(pad int, startNorm, endNorm float64) error {
	if !types.ValidPad(pad) {
		return types.ErrInvalidIndex
	}
	if !(startNorm >= 0 && startNorm < endNorm && endNorm <= 1) {
		return types.ErrInvalidParameter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl := &s.slots[pad]
	cur := sl.current.Load()
	if cur == nil {
		return types.ErrBufferNotLoaded
	}

	n := len(cur.Data)
	start := int(startNorm * float64(n))
	end := int(endNorm * float64(n))
	if end-start < types.MinFrames {
		return types.ErrInvalidParameter
	}

	data := make([]int16, end-start)
	copy(data, cur.Data[start:end])
	buf := &Buffer{Data: data, Name: cur.Name}

	sl.current.Store(buf)
	s.deferFree(sl, cur)
	s.reapPending(sl)
	return nil
}

// ApplyFade applies an in-place linear ramp to the first fadeInSeconds and
// last fadeOutSeconds of the buffer at pad, each clamped to half the buffer
// length. Mutates the buffer's samples directly: safe only
// because Load/Trim always swap in a *new* Buffer value, so a buffer being
// faded here is guaranteed not to be the one a voice is concurrently
// reading unless it was already playing before the fade — in which case the
// voice simply hears the ramp applied mid-flight, which is an accepted
// racy-but-harmless visual/audible artifact of live parameter editing, not
// a safety violation (no torn reads of Go's memory model since []int16
// element writes are byte-aligned machine words).
func (s *Store) ApplyFade(pad int, fadeInSeconds, fadeOutSeconds float64) error {
	if !types.ValidPad(pad) {
		return types.ErrInvalidIndex
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := &s.slots[pad]
	cur := sl.current.Load()
	if cur == nil {
		return types.ErrBufferNotLoaded
	}

	n := len(cur.Data)
	half := n / 2

	fadeInFrames := int(fadeInSeconds * types.SampleRate)
	if fadeInFrames > half {
		fadeInFrames = half
	}
	for i := 0; i < fadeInFrames; i++ {
		gain := float64(i) / float64(fadeInFrames)
		cur.Data[i] = int16(float64(cur.Data[i]) * gain)
	}

	fadeOutFrames := int(fadeOutSeconds * types.SampleRate)
	if fadeOutFrames > half {
		fadeOutFrames = half
	}
	for i := 0; i < fadeOutFrames; i++ {
		gain := float64(i) / float64(fadeOutFrames)
		idx := n - 1 - i
		cur.Data[idx] = int16(float64(cur.Data[idx]) * gain)
	}
	return nil
}

// WaveformPeaks downsamples the buffer at pad into nPoints (max, min) pairs
// for visualization. Deterministic; never called from the audio path.
func (s *Store) WaveformPeaks(pad int, nPoints int) ([][2]int16, error) {
	if !types.ValidPad(pad) {
		return nil, types.ErrInvalidIndex
	}
	if nPoints <= 0 {
		return nil, types.ErrInvalidParameter
	}

	s.mu.Lock()
	cur := s.slots[pad].current.Load()
	s.mu.Unlock()
	if cur == nil {
		return nil, types.ErrBufferNotLoaded
	}

	n := len(cur.Data)
	out := make([][2]int16, nPoints)
	if n == 0 {
		return out, nil
	}

	framesPerPoint := float64(n) / float64(nPoints)
	for i := 0; i < nPoints; i++ {
		start := int(float64(i) * framesPerPoint)
		end := int(float64(i+1) * framesPerPoint)
		if end <= start {
			end = start + 1
		}
		if end > n {
			end = n
		}
		maxV, minV := cur.Data[start], cur.Data[start]
		for j := start; j < end; j++ {
			if cur.Data[j] > maxV {
				maxV = cur.Data[j]
			}
			if cur.Data[j] < minV {
				minV = cur.Data[j]
			}
		}
		out[i] = [2]int16{maxV, minV}
	}
	return out, nil
}
