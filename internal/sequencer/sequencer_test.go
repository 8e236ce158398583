package sequencer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/schollz/drumcore/internal/types"
)

type hit struct {
	track, velocity, volume, noteLen int
}

type recorder struct {
	hits          []hit
	stepChanges   []int
	patternChanges []int
}

func (r *recorder) Step(track, velocity, volume, noteLenSamples int) {
	r.hits = append(r.hits, hit{track, velocity, volume, noteLenSamples})
}
func (r *recorder) StepChange(step int) { r.stepChanges = append(r.stepChanges, step) }
func (r *recorder) PatternChange(pattern, songLength int) {
	r.patternChanges = append(r.patternChanges, pattern)
}

// tick advances the sequencer by exactly one step interval, n times.
func tick(s *Sequencer, n int) {
	now := time.Now()
	s.Tick(now) // primes lastStepTime
	for i := 0; i < n; i++ {
		now = now.Add(time.Duration(s.nextStepIntervalUs) * time.Microsecond)
		s.Tick(now)
	}
}

func TestStepFiresOnSetCell(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 1)
	s.SetTempo(120)
	s.Arena().SetStep(0, 0, 0, true)
	s.Arena().SetStepVelocity(0, 0, 0, 100)
	s.SetPlaying(true)

	tick(s, 1)

	assert.Len(t, rec.hits, 1)
	assert.Equal(t, hit{0, 100, 100, 0}, rec.hits[0])
}

func TestStoppedTransportNeverFires(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 1)
	s.Arena().SetStep(0, 0, 0, true)

	tick(s, 4)
	assert.Empty(t, rec.hits)
}

func TestMutedTrackSkipsPatternAndLoop(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 1)
	s.Arena().SetStep(0, 0, 0, true)
	s.SetLoopActive(0, true)
	s.SetLoopType(0, types.LoopEveryStep)
	s.SetTrackMute(0, true)
	s.SetPlaying(true)

	tick(s, 1)
	assert.Empty(t, rec.hits)
}

func TestProbabilityZeroNeverFires(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 42)
	s.Arena().SetStep(0, 0, 0, true)
	s.Arena().SetStepProbability(0, 0, 0, 0)
	s.SetPlaying(true)

	tick(s, 1)
	assert.Empty(t, rec.hits)
}

func TestProbability100AlwaysFires(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 42)
	s.Arena().SetStep(0, 0, 0, true)
	s.Arena().SetStepProbability(0, 0, 0, 100)
	s.SetPlaying(true)

	tick(s, 1)
	assert.Len(t, rec.hits, 1)
}

// Scenario: a cell with ratchet 4 fires exactly 4 back-to-back triggers
// within the one step it occupies.
func TestRatchetFiresExactCount(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 7)
	s.Arena().SetStep(0, 0, 0, true)
	s.Arena().SetStepRatchet(0, 0, 0, 4)
	s.Arena().SetStepNoteLen(0, 0, 0, 2)
	s.SetPlaying(true)

	tick(s, 1)
	assert.Len(t, rec.hits, 4)
	for _, h := range rec.hits {
		assert.Equal(t, 0, h.track)
		assert.GreaterOrEqual(t, h.noteLen, types.MinFrames)
	}
}

func TestVolumeLockOverridesTrackVolume(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 1)
	s.SetTrackVolume(0, 80)
	s.Arena().SetStep(0, 0, 0, true)
	s.Arena().SetStepVolumeLock(0, 0, 0, true, 150)
	s.SetPlaying(true)

	tick(s, 1)
	assert.Len(t, rec.hits, 1)
	assert.Equal(t, 150, rec.hits[0].volume)
}

func TestLoopEveryBeatFiresEveryFourthStep(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 1)
	s.SetLoopActive(0, true)
	s.SetLoopType(0, types.LoopEveryBeat)
	s.SetPlaying(true)

	tick(s, types.StepsPerBar) // one full bar: steps 0,4,8,12 fire
	assert.Len(t, rec.hits, 4)
}

func TestLoopHalfBeatFiresEveryOtherStep(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 1)
	s.SetLoopActive(0, true)
	s.SetLoopType(0, types.LoopHalfBeat)
	s.SetPlaying(true)

	tick(s, types.StepsPerBar)
	assert.Len(t, rec.hits, types.StepsPerBar/2)
}

func TestLoopPausedSuspendsWithoutResettingPhase(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 1)
	s.SetLoopActive(0, true)
	s.SetLoopType(0, types.LoopEveryStep)
	s.SetLoopPaused(0, true)
	s.SetPlaying(true)

	tick(s, 4)
	assert.Empty(t, rec.hits)
}

func TestSongModeAdvancesPatternOnWrap(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 1)
	s.SetSongMode(true, 3)
	s.SetPlaying(true)

	tick(s, types.StepsPerBar) // exactly one full bar wraps once
	assert.Equal(t, 1, s.CurrentPattern())
	assert.Equal(t, []int{1}, rec.patternChanges)
}

func TestSongModeWrapsAroundChainLength(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 1)
	s.SetSongMode(true, 2)
	s.SetPlaying(true)

	tick(s, types.StepsPerBar*2)
	assert.Equal(t, 0, s.CurrentPattern())
}

func TestWithoutSongModeStepWrapsButPatternStays(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 1)
	s.SetPlaying(true)

	tick(s, types.StepsPerBar)
	assert.Equal(t, 0, s.CurrentPattern())
	assert.Empty(t, rec.patternChanges)
}

func TestTempoClamped(t *testing.T) {
	s := NewSequencer(nil, 1)
	s.SetTempo(1)
	assert.Equal(t, types.MinTempoBPM, s.TempoBPM())
	s.SetTempo(10000)
	assert.Equal(t, types.MaxTempoBPM, s.TempoBPM())
}

// The jitter magnitude derives from the constant max velocity, not from the
// triggering cell's own velocity: a quiet cell (v=1) humanized at 100% must
// still be able to jump well above what a v-scaled delta would ever allow.
func TestHumanizeVelocityDeltaDerivesFromMaxVelocityNotCellVelocity(t *testing.T) {
	s := NewSequencer(nil, 7)
	s.humanizeVelocityPct = 100

	sawLargeJump := false
	for i := 0; i < 200; i++ {
		if v := s.humanizedVelocity(1); v > 10 {
			sawLargeJump = true
			break
		}
	}
	assert.True(t, sawLargeJump, "expected humanize to occasionally push a velocity-1 cell well above 10 when jitter is derived from MaxVelocity")
}

func TestHumanizeVelocityStaysInBounds(t *testing.T) {
	rec := &recorder{}
	s := NewSequencer(rec, 3)
	s.SetHumanize(0, 60)
	s.Arena().SetStep(0, 0, 0, true)
	s.Arena().SetStepVelocity(0, 0, 0, 10)
	s.SetPlaying(true)

	tick(s, 1)
	assert.Len(t, rec.hits, 1)
	assert.GreaterOrEqual(t, rec.hits[0].velocity, 1)
	assert.LessOrEqual(t, rec.hits[0].velocity, types.MaxVelocity)
}

// Given the same pattern, tempo, and seed, the trigger sequence must be
// identical across two independent runs.
func TestDeterministicGivenSameSeed(t *testing.T) {
	build := func() *recorder {
		rec := &recorder{}
		s := NewSequencer(rec, 99)
		s.SetHumanize(20, 30)
		s.Arena().SetStep(0, 0, 0, true)
		s.Arena().SetStep(0, 1, 4, true)
		s.Arena().SetStepRatchet(0, 1, 4, 2)
		s.SetLoopActive(2, true)
		s.SetLoopType(2, types.LoopArrhythmic)
		s.SetPlaying(true)
		tick(s, types.StepsPerBar)
		return rec
	}

	a, b := build(), build()
	assert.Equal(t, a.hits, b.hits)
	assert.Equal(t, a.stepChanges, b.stepChanges)
}

func TestSelectPatternIgnoresInvalidIndex(t *testing.T) {
	s := NewSequencer(nil, 1)
	s.SelectPattern(5)
	s.SelectPattern(-1)
	assert.Equal(t, 5, s.CurrentPattern())
	s.SelectPattern(types.NumPatterns)
	assert.Equal(t, 5, s.CurrentPattern())
}
