package effect

import (
	"math"
	"sync/atomic"

	"github.com/schollz/drumcore/internal/types"
)

// distortionParams is the atomically-swapped configuration for the master
// distortion stage, mirroring the Filter coefficient-swap discipline so the
// control goroutine can reconfigure it without the audio goroutine ever
// observing a half-written value.
type distortionParams struct {
	mode   types.DistortionMode
	amount float64 // 0..100
}

// MasterChain implements the fixed Distortion -> Filter -> SR-reduce ->
// Bit-crush pipeline — the order is part of the contract and is fixed in
// Process.
type MasterChain struct {
	distortion atomic.Pointer[distortionParams]
	filter     *Filter

	srDecimation atomic.Int64 // k = native_fs / target_fs, 1 = bypass
	srHoldValue  int32
	srHoldCount  int

	bitDepth atomic.Int64 // 1..16, 16 = bypass
}

// NewMasterChain builds a master chain with every stage bypassed.
func NewMasterChain(masterFilter *Filter) *MasterChain {
	mc := &MasterChain{filter: masterFilter}
	mc.distortion.Store(&distortionParams{mode: types.DistortionSoft, amount: 0})
	mc.srDecimation.Store(1)
	mc.bitDepth.Store(16)
	return mc
}

// SetDistortion configures the distortion stage. amount < 0.1 bypasses it.
func (mc *MasterChain) SetDistortion(mode types.DistortionMode, amount float64) {
	amount = types.ClampF(amount, 0, 100)
	p := distortionParams{mode: mode, amount: amount}
	mc.distortion.Store(&p)
}

// SetSampleRateReduction sets the decimation factor from a target sample
// rate. targetFS >= SampleRate disables reduction.
func (mc *MasterChain) SetSampleRateReduction(targetFS int) {
	if targetFS <= 0 || targetFS >= types.SampleRate {
		mc.srDecimation.Store(1)
		return
	}
	k := types.SampleRate / targetFS
	if k < 1 {
		k = 1
	}
	mc.srDecimation.Store(int64(k))
}

// SetBitDepth sets the bit-crush depth, 1..16. 16 bypasses.
func (mc *MasterChain) SetBitDepth(bits int) {
	bits = types.Clamp(bits, 1, 16)
	mc.bitDepth.Store(int64(bits))
}

// Process runs one master sample through Distortion → Filter → SR-reduce →
// Bit-crush, in that fixed order. Called once per output sample from the
// audio goroutine; allocation-free.
func (mc *MasterChain) Process(x int32) int32 {
	x = mc.processDistortion(x)
	x = mc.filter.Process(x)
	x = mc.processSampleRateReduction(x)
	x = mc.processBitCrush(x)
	return x
}

func (mc *MasterChain) processDistortion(x int32) int32 {
	p := mc.distortion.Load()
	if p.amount < 0.1 {
		return x
	}
	norm := float64(x) / 32768.0
	amt := p.amount / 100.0

	var shaped float64
	switch p.mode {
	case types.DistortionSoft:
		shaped = norm / (1 + math.Abs(norm))
	case types.DistortionHard:
		threshold := 1.0 - amt*0.9
		shaped = types.ClampF(norm, -threshold, threshold)
		if threshold > 0 {
			shaped /= threshold
		}
	case types.DistortionTube:
		if norm >= 0 {
			shaped = 1 - math.Exp(-norm*(1+3*amt))
		} else {
			shaped = -(1 - math.Exp(norm*(1+2*amt)))
		}
	case types.DistortionFuzz:
		soft := norm / (1 + math.Abs(norm))
		shaped = soft * soft
		if norm < 0 {
			shaped = -shaped
		}
	default:
		shaped = norm
	}

	blended := norm*(1-amt) + shaped*amt
	return clamp16(blended * 32768.0)
}

func (mc *MasterChain) processSampleRateReduction(x int32) int32 {
	k := int(mc.srDecimation.Load())
	if k <= 1 {
		return x
	}
	if mc.srHoldCount == 0 {
		mc.srHoldValue = x
	}
	mc.srHoldCount++
	if mc.srHoldCount >= k {
		mc.srHoldCount = 0
	}
	return mc.srHoldValue
}

func (mc *MasterChain) processBitCrush(x int32) int32 {
	bits := int(mc.bitDepth.Load())
	if bits >= 16 {
		return x
	}
	shift := uint(16 - bits)
	return (x >> shift) << shift
}
