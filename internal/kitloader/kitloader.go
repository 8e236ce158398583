// Package kitloader is the WAV-to-PCM loading boundary kept deliberately
// out of the core engine itself: it walks a directory of kit sample files
// and issues LoadSample commands against a core.Engine. Opens each file,
// decodes it with github.com/go-audio/wav, and validates the PCM format
// before trusting header fields.
package kitloader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-audio/wav"

	"github.com/schollz/drumcore/internal/types"
)

// Engine is the narrow slice of core.Engine this package needs — just
// enough to issue LoadSample, never a dependency on the whole engine type
// (avoids an import cycle and keeps the adapter boundary honest).
type Engine interface {
	LoadSample(pad int, pcm []int16, name string)
}

// Kit describes one loaded sample file before it's handed to the engine.
type Kit struct {
	Pad  int
	Name string
	Path string
}

// LoadFile decodes one mono 16-bit PCM WAV file into an int16 buffer. Fails
// if the file is not a valid WAV, is not mono, or is not 16-bit — the
// kit-loading boundary is expected to run ahead of time, off the audio
// path, so returning an error here (rather than silently resampling or
// downmixing) keeps kit-authoring mistakes visible.
func LoadFile(path string) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kitloader: open %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("kitloader: %s is not a valid WAV file", path)
	}
	d.ReadInfo()
	if d.NumChans != 1 {
		return nil, fmt.Errorf("kitloader: %s has %d channels, want mono", path, d.NumChans)
	}
	if d.BitDepth != 16 {
		return nil, fmt.Errorf("kitloader: %s is %d-bit, want 16-bit", path, d.BitDepth)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("kitloader: decode %s: %w", path, err)
	}

	pcm := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		pcm[i] = int16(v)
	}
	return pcm, nil
}

// LoadKit walks dir non-recursively for `.wav` files in lexical order,
// assigns them to pads 0, 1, 2, ... (skipping any beyond types.NumPads),
// and issues a LoadSample command per file. Returns the kit manifest and
// the first error encountered, if any — a failed file does not stop the
// remaining ones from loading — a failed load leaves previous state
// untouched, it never aborts unrelated work.
func LoadKit(e Engine, dir string) ([]Kit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("kitloader: read dir %s: %w", dir, err)
	}

	var names []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(ent.Name()), ".wav") {
			names = append(names, ent.Name())
		}
	}
	sort.Strings(names)

	var kits []Kit
	var firstErr error
	pad := 0
	for _, name := range names {
		if pad >= types.NumPads {
			break
		}
		path := filepath.Join(dir, name)
		pcm, loadErr := LoadFile(path)
		if loadErr != nil {
			if firstErr == nil {
				firstErr = loadErr
			}
			continue
		}
		e.LoadSample(pad, pcm, name)
		kits = append(kits, Kit{Pad: pad, Name: name, Path: path})
		pad++
	}
	return kits, firstErr
}
