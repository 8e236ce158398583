// Package voice implements the voice mixer: a fixed pool of polyphonic
// voices, trigger/steal/release, and the per-sample read-scale-accumulate
// hot path that runs on the audio goroutine.
package voice

import (
	"sync/atomic"

	"github.com/schollz/drumcore/internal/sample"
)

// Voice is one slot in the fixed 10-voice pool. active is the single
// synchronization point between the control goroutine (which triggers and
// stops voices) and the audio goroutine (which advances and reads them):
// every other field is written by the control goroutine only while active
// observes false, and read by the audio goroutine only while active
// observes true — an atomic active flag with the payload written before
// publish and released after retire, standing in for the original
// firmware's two-core POD sharing.
type Voice struct {
	active atomic.Bool

	buffer    *sample.Buffer
	position  int
	length    int
	maxLength int // 0 = play to end; else hard cut
	velocity  int // 1..127
	volume    int // 0..150%
	loop      bool
	loopStart int
	loopEnd   int
	padIndex  int
	isLivePad bool
	startAge  uint64 // monotonic allocation counter, for oldest-wins stealing
}

// Active reports whether the voice is currently playing.
func (v *Voice) Active() bool { return v.active.Load() }

// PadIndex returns the pad this voice is (or was last) playing.
func (v *Voice) PadIndex() int { return v.padIndex }

// Position and Length expose read-only playback progress, e.g. for a
// visualization adapter; safe to call from any goroutine (a torn read here
// is, at worst, one stale frame of UI feedback, never a correctness issue
// for the audio path itself).
func (v *Voice) Position() int { return v.position }
func (v *Voice) Length() int   { return v.length }

// publish sets every payload field for a newly triggered voice, then
// publishes active=true. Must only be called while active is currently
// false (i.e. after allocate() has already forced it there for a stolen
// voice).
func (v *Voice) publish(buf *sample.Buffer, maxLength, velocity, volume int, loop bool, loopStart, loopEnd, padIndex int, isLivePad bool, age uint64) {
	v.buffer = buf
	v.position = 0
	v.length = buf.Length()
	v.maxLength = maxLength
	v.velocity = velocity
	v.volume = volume
	v.loop = loop
	v.loopStart = loopStart
	v.loopEnd = loopEnd
	v.padIndex = padIndex
	v.isLivePad = isLivePad
	v.startAge = age

	buf.Acquire()
	v.active.Store(true)
}

// release forces the voice to Free exactly once, releasing its buffer
// borrow. Safe to call concurrently from both the control goroutine (an
// explicit Stop) and the audio goroutine (natural end-of-sample); the
// CompareAndSwap ensures only one caller performs the buffer release.
func (v *Voice) release() {
	if v.active.CompareAndSwap(true, false) {
		if v.buffer != nil {
			v.buffer.Release()
		}
	}
}

// readSample produces one scaled, filtered-later sample for the current
// frame and advances position, handling loop wraparound and end-of-sample
// retirement. Returns (sample, ok): ok is false when the voice was already
// Free and no sample was produced; the last sample of a non-looping voice
// is returned with ok true even though the voice is released. Called once per
// output frame, per active voice, from the audio goroutine.
func (v *Voice) readSample() (int32, bool) {
	if !v.active.Load() {
		return 0, false
	}
	if v.position >= v.length {
		v.release()
		return 0, false
	}
	if v.maxLength > 0 && v.position >= v.maxLength {
		v.release()
		return 0, false
	}

	raw := int32(v.buffer.Data[v.position])
	s := raw * int32(v.velocity) / 127
	s = s * int32(v.volume) / 100

	v.position++
	if v.loop && v.position >= v.loopEnd {
		v.position = v.loopStart
	} else if !v.loop && v.position >= v.length {
		v.release()
	} else if v.maxLength > 0 && v.position >= v.maxLength {
		v.release()
	}

	return s, true
}
