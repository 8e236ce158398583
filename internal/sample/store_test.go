package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schollz/drumcore/internal/types"
)

func sine(frames int) []int16 {
	out := make([]int16, frames)
	for i := range out {
		out[i] = int16(i % 100)
	}
	return out
}

func TestLoadThenCurrent(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Current(0))
	assert.NoError(t, s.Load(0, sine(4410), "kick"))
	buf := s.Current(0)
	assert.NotNil(t, buf)
	assert.Equal(t, 4410, buf.Length())
}

func TestLoadInvalidPad(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.Load(99, sine(10), "x"), types.ErrInvalidIndex)
}

func TestLoadUnloadLoadRoundTrip(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.Load(0, sine(100), "x"))
	assert.NoError(t, s.Unload(0))
	assert.Nil(t, s.Current(0))
	assert.NoError(t, s.Load(0, sine(100), "x"))
	buf := s.Current(0)
	assert.Equal(t, 100, buf.Length())
}

func TestUnloadDefersWhileReferenced(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.Load(0, sine(100), "x"))
	buf := s.Current(0)
	buf.Acquire() // simulate a voice still playing it

	assert.NoError(t, s.Unload(0))
	assert.Nil(t, s.Current(0)) // new triggers see no buffer
	assert.EqualValues(t, 1, buf.refCount())

	buf.Release() // voice finished
	s.Reap()
	// Nothing observable breaks; the buffer is no longer reachable from the
	// store regardless, this just exercises that Reap doesn't panic once
	// refcount drains.
}

func TestTrimShortensBuffer(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.Load(0, sine(1000), "x"))
	assert.NoError(t, s.Trim(0, 0.25, 0.75))
	assert.Equal(t, 500, s.Current(0).Length())
}

func TestTrimRejectsBelowMinFrames(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.Load(0, sine(1000), "x"))
	err := s.Trim(0, 0.0, 0.01) // 10 frames, below MinFrames
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
	assert.Equal(t, 1000, s.Current(0).Length()) // unchanged on failure
}

func TestApplyFadeClampsToHalfBuffer(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.Load(0, sine(200), "x"))
	assert.NoError(t, s.ApplyFade(0, 10, 10)) // way more than half at 44.1kHz
	buf := s.Current(0)
	assert.Equal(t, 200, buf.Length())
}

func TestWaveformPeaksDeterministic(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.Load(0, sine(1000), "x"))
	a, err := s.WaveformPeaks(0, 16)
	assert.NoError(t, err)
	b, _ := s.WaveformPeaks(0, 16)
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestWaveformPeaksRequiresLoadedBuffer(t *testing.T) {
	s := NewStore()
	_, err := s.WaveformPeaks(0, 16)
	assert.ErrorIs(t, err, types.ErrBufferNotLoaded)
}
