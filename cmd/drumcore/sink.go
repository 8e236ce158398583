package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/schollz/drumcore/internal/types"
)

// nullSink discards every block — used when no --out path is given and no
// real DAC binding exists for this port. AudioSink is an abstract boundary;
// this CLI's two concrete sinks are "render to a WAV file" and "discard".
type nullSink struct{}

func (nullSink) WriteBlock(frames []int16) {}

// wavSink renders the engine's output to a WAV file, one block at a time,
// reusing the same go-audio/wav encoder kitloader already depends on for
// decoding — writing and reading the same format with the same library.
type wavSink struct {
	f   *os.File
	enc *wav.Encoder
}

func newWavSink(path string) (*wavSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	enc := wav.NewEncoder(f, types.SampleRate, 16, 2, 1)
	return &wavSink{f: f, enc: enc}, nil
}

func (w *wavSink) WriteBlock(frames []int16) {
	data := make([]int, len(frames))
	for i, s := range frames {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: types.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := w.enc.Write(buf); err != nil {
		log.Printf("wav encode: %v", err)
	}
}

func (w *wavSink) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
