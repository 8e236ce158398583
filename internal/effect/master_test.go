package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schollz/drumcore/internal/types"
)

func TestMasterChainBypassIsIdentity(t *testing.T) {
	mc := NewMasterChain(NewFilter())
	assert.EqualValues(t, 1000, mc.Process(1000))
}

func TestBitCrushBypassAt16Bits(t *testing.T) {
	mc := NewMasterChain(NewFilter())
	mc.SetBitDepth(16)
	assert.EqualValues(t, 12345, mc.processBitCrush(12345))
}

func TestBitCrushReducesResolution(t *testing.T) {
	mc := NewMasterChain(NewFilter())
	mc.SetBitDepth(8)
	out := mc.processBitCrush(12345)
	assert.NotEqual(t, int32(12345), out)
	// Low 8 bits must be zeroed.
	assert.EqualValues(t, 0, out&0xFF)
}

func TestSampleRateReductionHoldsSample(t *testing.T) {
	mc := NewMasterChain(NewFilter())
	mc.SetSampleRateReduction(types.SampleRate / 4) // k = 4
	a := mc.processSampleRateReduction(100)
	b := mc.processSampleRateReduction(200)
	c := mc.processSampleRateReduction(300)
	d := mc.processSampleRateReduction(400)
	e := mc.processSampleRateReduction(500)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Equal(t, a, d)
	assert.NotEqual(t, a, e) // 5th sample starts a new held group
}

func TestMasterChainOrderIsFixed(t *testing.T) {
	// Distortion must run before the filter: configure a hard filter
	// (low-pass at very low cutoff, effectively silencing high content) and
	// a distortion stage that would add harmonic energy. If order were
	// Filter-then-Distortion the filter would have nothing to remove after
	// distortion reintroduces energy; this just exercises that Process
	// calls all four stages without panicking and returns an in-range
	// value, which is the externally observable contract.
	f := NewFilter()
	f.Configure(types.FilterLowPass, 200, 0.7, 0)
	mc := NewMasterChain(f)
	mc.SetDistortion(types.DistortionHard, 80)
	mc.SetBitDepth(10)
	mc.SetSampleRateReduction(types.SampleRate / 2)

	out := mc.Process(20000)
	assert.LessOrEqual(t, out, int32(32767))
	assert.GreaterOrEqual(t, out, int32(-32768))
}
