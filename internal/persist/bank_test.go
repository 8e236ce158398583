package persist

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/drumcore/internal/core"
	"github.com/schollz/drumcore/internal/types"
)

type fakeSink struct{}

func (fakeSink) WriteBlock(frames []int16) {}

func newTestEngine() *core.Engine {
	return core.NewEngine(fakeSink{}, nil, 1)
}

func TestSnapshotCapturesOnlyNonDefaultCells(t *testing.T) {
	e := newTestEngine()
	e.SetStep(0, 0, 0, true)
	e.SetStepVelocity(0, 0, 0, 90)
	e.Flush()

	b := Snapshot(e)
	require.Len(t, b.Cells, 1)
	assert.Equal(t, 0, b.Cells[0].Pattern)
	assert.Equal(t, 0, b.Cells[0].Track)
	assert.Equal(t, 0, b.Cells[0].Step)
	assert.True(t, b.Cells[0].On)
	assert.Equal(t, 90, b.Cells[0].Velocity)
}

func TestSnapshotCapturesTransportAndTrackState(t *testing.T) {
	e := newTestEngine()
	e.SetTempo(140)
	e.SetSongMode(true, 4)
	e.SetHumanize(10, 20)
	e.MuteTrack(2, true)
	e.SetTrackVolume(3, 75)
	e.Flush()

	b := Snapshot(e)
	assert.Equal(t, 140, b.TempoBPM)
	assert.True(t, b.SongMode)
	assert.Equal(t, 4, b.SongLength)
	assert.Equal(t, 10, b.HumanizeTimingMs)
	assert.Equal(t, 20, b.HumanizeVelocityPct)
	assert.True(t, b.Tracks[2].Muted)
	assert.Equal(t, 75, b.Tracks[3].Volume)
}

func TestApplyRestoresCellsAndTransport(t *testing.T) {
	src := newTestEngine()
	src.SetStep(1, 2, 3, true)
	src.SetStepVelocity(1, 2, 3, 64)
	src.SetStepProbability(1, 2, 3, 50)
	src.SetTempo(90)
	src.Flush()
	b := Snapshot(src)

	dst := newTestEngine()
	Apply(dst, b)

	got := dst.Sequencer().Arena().Get(1, 2, 3)
	assert.True(t, got.On)
	assert.Equal(t, 64, got.Velocity)
	assert.Equal(t, 50, got.Probability)
	assert.Equal(t, 90, dst.Sequencer().TempoBPM())
}

func TestSaveAndLoadFileRoundTrip(t *testing.T) {
	e := newTestEngine()
	e.SetStep(0, 0, 0, true)
	e.SetTempo(128)
	e.Flush()
	b := Snapshot(e)

	path := filepath.Join(t.TempDir(), "bank.json")
	require.NoError(t, SaveFile(path, b))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, b.TempoBPM, loaded.TempoBPM)
	assert.Equal(t, b.Cells, loaded.Cells)
}

func TestLoadFileMissingReturnsError(t *testing.T) {
	_, err := LoadFile("/no/such/bank.json")
	assert.Error(t, err)
}

func TestAutoSaverDebouncesRepeatedRequests(t *testing.T) {
	e := newTestEngine()
	path := filepath.Join(t.TempDir(), "bank.json")
	a := NewAutoSaver(path, e)
	a.debounce = 20 * time.Millisecond

	done := make(chan error, 1)
	a.OnResult(func(err error) { done <- err })

	a.RequestSave()
	a.RequestSave() // collapses into the same debounce window
	a.RequestSave()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("autosave did not fire")
	}

	_, err := LoadFile(path)
	assert.NoError(t, err)
}

func TestAutoSaverFlushSavesImmediately(t *testing.T) {
	e := newTestEngine()
	e.SetTempo(types.MinTempoBPM)
	e.Flush()
	path := filepath.Join(t.TempDir(), "bank.json")
	a := NewAutoSaver(path, e)

	require.NoError(t, a.Flush())

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, types.MinTempoBPM, loaded.TempoBPM)
}
