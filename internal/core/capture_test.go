package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// pushDecimated pushes v through exactly one decimated slot, matching how
// the audio goroutine's per-sample Push calls collapse into one ring entry
// every captureDecimationFactor samples.
func pushDecimated(r *captureRing, v int16) {
	for i := 0; i < captureDecimationFactor; i++ {
		r.Push(v)
	}
}

func TestCaptureRingDropsOldestWhenFull(t *testing.T) {
	r := newCaptureRing(4)
	for i := int16(0); i < 6; i++ {
		pushDecimated(r, i)
	}
	assert.Equal(t, []int16{2, 3, 4, 5}, r.Snapshot())
}

func TestCaptureRingSnapshotBeforeFull(t *testing.T) {
	r := newCaptureRing(4)
	pushDecimated(r, 1)
	pushDecimated(r, 2)
	assert.Equal(t, []int16{1, 2}, r.Snapshot())
}

func TestCaptureRingSnapshotIsNonDestructive(t *testing.T) {
	r := newCaptureRing(4)
	pushDecimated(r, 1)
	first := r.Snapshot()
	second := r.Snapshot()
	assert.Equal(t, first, second)
}

func TestCaptureRingOnlyStoresEveryDecimationFactorSample(t *testing.T) {
	r := newCaptureRing(4)
	for i := int16(0); i < captureDecimationFactor-1; i++ {
		r.Push(i)
	}
	assert.Equal(t, []int16{}, r.Snapshot())
	r.Push(99)
	assert.Equal(t, []int16{99}, r.Snapshot())
}
