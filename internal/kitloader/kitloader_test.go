package kitloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMonoWAV writes a minimal valid mono 16-bit PCM WAV file containing
// samples, for use as fixture input to LoadFile/LoadKit.
func writeMonoWAV(t *testing.T, path string, samples []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, 44100, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           samples,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestLoadFileDecodesMonoPCM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kick.wav")
	writeMonoWAV(t, path, []int{100, -100, 200, -200, 0})

	pcm, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int16{100, -100, 200, -200, 0}, pcm)
}

func TestLoadFileRejectsMissingFile(t *testing.T) {
	_, err := LoadFile("/no/such/file.wav")
	assert.Error(t, err)
}

func TestLoadFileRejectsNonWAV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notwav.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file at all"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

type fakeEngine struct {
	loaded map[int]string
}

func (f *fakeEngine) LoadSample(pad int, pcm []int16, name string) {
	if f.loaded == nil {
		f.loaded = map[int]string{}
	}
	f.loaded[pad] = name
}

func TestLoadKitAssignsPadsInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeMonoWAV(t, filepath.Join(dir, "b_snare.wav"), []int{1, 2, 3})
	writeMonoWAV(t, filepath.Join(dir, "a_kick.wav"), []int{4, 5, 6})

	e := &fakeEngine{}
	kits, err := LoadKit(e, dir)
	require.NoError(t, err)
	require.Len(t, kits, 2)

	assert.Equal(t, 0, kits[0].Pad)
	assert.Equal(t, "a_kick.wav", kits[0].Name)
	assert.Equal(t, 1, kits[1].Pad)
	assert.Equal(t, "b_snare.wav", kits[1].Name)

	assert.Equal(t, "a_kick.wav", e.loaded[0])
	assert.Equal(t, "b_snare.wav", e.loaded[1])
}

func TestLoadKitSkipsBadFilesButLoadsRest(t *testing.T) {
	dir := t.TempDir()
	writeMonoWAV(t, filepath.Join(dir, "good.wav"), []int{1, 2, 3})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.wav"), []byte("garbage"), 0o644))

	e := &fakeEngine{}
	kits, err := LoadKit(e, dir)
	assert.Error(t, err)
	require.Len(t, kits, 1)
	assert.Equal(t, "good.wav", kits[0].Name)
}

func TestLoadKitIgnoresNonWAVFiles(t *testing.T) {
	dir := t.TempDir()
	writeMonoWAV(t, filepath.Join(dir, "kick.wav"), []int{1, 2, 3})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hello"), 0o644))

	e := &fakeEngine{}
	kits, err := LoadKit(e, dir)
	require.NoError(t, err)
	assert.Len(t, kits, 1)
}
