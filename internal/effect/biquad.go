package effect

import (
	"math"
	"sync/atomic"

	"github.com/schollz/drumcore/internal/types"
)

// Coefficients is a normalized biquad coefficient quintuple (a0 already
// divided out), computed from (type, cutoff, Q, gainDB) per the RBJ audio
// cookbook formulas.
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
	Bypass     bool
}

// computeCoefficients derives a normalized biquad for the given filter type
// at the given sample rate. Unsupported combinations (e.g. cutoff outside
// the Nyquist range) are clamped rather than rejected, never surfaced as
// an error.
func computeCoefficients(kind types.FilterType, cutoff, q, gainDB, fs float64) Coefficients {
	if kind == types.FilterNone {
		return Coefficients{Bypass: true}
	}

	cutoff = types.ClampF(cutoff, 20, fs*0.49)
	if q <= 0 {
		q = 0.707
	}

	omega := 2 * math.Pi * cutoff / fs
	sinW := math.Sin(omega)
	cosW := math.Cos(omega)

	if kind == types.FilterResonant {
		// High-Q low-pass: same transfer function as FilterLowPass with a
		// resonance floor so it always rings.
		kind = types.FilterLowPass
		q = math.Max(q, 4.0)
	}

	alpha := sinW / (2 * q)
	a := math.Pow(10, gainDB/40)

	var b0, b1, b2, a0, a1, a2 float64

	switch kind {
	case types.FilterLowPass:
		b0 = (1 - cosW) / 2
		b1 = 1 - cosW
		b2 = (1 - cosW) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	case types.FilterHighPass:
		b0 = (1 + cosW) / 2
		b1 = -(1 + cosW)
		b2 = (1 + cosW) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	case types.FilterBandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	case types.FilterNotch:
		b0 = 1
		b1 = -2 * cosW
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	case types.FilterAllPass:
		b0 = 1 - alpha
		b1 = -2 * cosW
		b2 = 1 + alpha
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	case types.FilterPeaking:
		b0 = 1 + alpha*a
		b1 = -2 * cosW
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cosW
		a2 = 1 - alpha/a
	case types.FilterLowShelf:
		sq := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) - (a-1)*cosW + sq)
		b1 = 2 * a * ((a - 1) - (a+1)*cosW)
		b2 = a * ((a + 1) - (a-1)*cosW - sq)
		a0 = (a + 1) + (a-1)*cosW + sq
		a1 = -2 * ((a - 1) + (a+1)*cosW)
		a2 = (a + 1) + (a-1)*cosW - sq
	case types.FilterHighShelf:
		sq := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) + (a-1)*cosW + sq)
		b1 = -2 * a * ((a - 1) + (a+1)*cosW)
		b2 = a * ((a + 1) + (a-1)*cosW - sq)
		a0 = (a + 1) - (a-1)*cosW + sq
		a1 = 2 * ((a - 1) - (a+1)*cosW)
		a2 = (a + 1) - (a-1)*cosW - sq
	default:
		return Coefficients{Bypass: true}
	}

	if a0 == 0 {
		return Coefficients{Bypass: true}
	}
	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}

// biquadState is the Direct-Form-II-Transposed delay line (x1, x2).
type biquadState struct {
	x1, x2 float64
}

// Filter is one biquad instance: double-buffered coefficients swapped by an
// atomic pointer so the audio goroutine's read of "the" coefficient set for
// one block is always either the pre- or post-recompute value, never a
// torn mix.
type Filter struct {
	kind   types.FilterType
	cutoff float64
	q      float64
	gainDB float64

	coeffs atomic.Pointer[Coefficients]
	state  biquadState
}

// NewFilter returns a bypassed filter (type None).
func NewFilter() *Filter {
	f := &Filter{}
	c := Coefficients{Bypass: true}
	f.coeffs.Store(&c)
	return f
}

// Configure recomputes and atomically publishes new coefficients. Called
// only from the control goroutine.
func (f *Filter) Configure(kind types.FilterType, cutoff, q, gainDB float64) {
	f.kind, f.cutoff, f.q, f.gainDB = kind, cutoff, q, gainDB
	c := computeCoefficients(kind, cutoff, q, gainDB, types.SampleRate)
	f.coeffs.Store(&c)
}

// Params returns the last configured parameters.
func (f *Filter) Params() (kind types.FilterType, cutoff, q, gainDB float64) {
	return f.kind, f.cutoff, f.q, f.gainDB
}

// Active reports whether the filter currently applies (type != None).
func (f *Filter) Active() bool {
	return !f.coeffs.Load().Bypass
}

// Process runs one sample through the Direct-Form-II-Transposed biquad and
// clamps to 16-bit range. Audio-goroutine hot path: no
// allocation, no locking — just an atomic pointer load.
func (f *Filter) Process(x int32) int32 {
	c := f.coeffs.Load()
	if c.Bypass {
		return x
	}
	xf := float64(x)
	y := c.B0*xf + f.state.x1
	f.state.x1 = c.B1*xf - c.A1*y + f.state.x2
	f.state.x2 = c.B2*xf - c.A2*y

	return clamp16(y)
}

func clamp16(y float64) int32 {
	if y > 32767 {
		return 32767
	}
	if y < -32768 {
		return -32768
	}
	return int32(y)
}
