// Package midi adapts a class-compliant USB-MIDI input into the command
// surface: Note On/Off trigger and release pads, and two CCs set track and
// master volume. An inbound listener rather than an outbound note player,
// so it keeps no per-note state and needs no
// cancellable-goroutine-per-note (there is no note-off timer
// to race against here, the physical key itself sends the note-off).
package midi

import (
	"fmt"
	"log"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/schollz/drumcore/internal/types"
)

// Engine is the slice of core.Engine this adapter drives.
type Engine interface {
	TriggerLive(pad, velocity int)
	StopVoice(pad int)
	SetTrackVolume(track, volume int)
	SetMasterVolume(volume int)
}

// Standard MIDI CC numbers this adapter recognizes. Channel volume (CC7) is
// mapped track-by-track via the MIDI channel number; CC1 (mod wheel) is
// mapped to master volume as a simple global performance control.
const (
	ccChannelVolume = 7
	ccModWheel      = 1
)

// Listener owns one open MIDI input port and the note->pad mapping used to
// translate incoming messages into engine commands.
type Listener struct {
	mu      sync.Mutex
	stop    func()
	noteLow int // lowest MIDI note number mapped to pad 0
}

// NewListener maps MIDI notes starting at noteLow to pads 0..types.NumPads-1.
func NewListener(noteLow int) *Listener {
	return &Listener{noteLow: noteLow}
}

// Open finds an input port whose name contains portName (case-sensitive
// substring match) and starts listening. Call Close to stop.
func (l *Listener) Open(portName string, engine Engine) error {
	in, err := midi.FindInPort(portName)
	if err != nil {
		return fmt.Errorf("midi: find input port %q: %w", portName, err)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		l.handle(msg, engine)
	})
	if err != nil {
		return fmt.Errorf("midi: listen on %q: %w", portName, err)
	}

	l.mu.Lock()
	l.stop = stop
	l.mu.Unlock()
	return nil
}

// Close stops listening. Safe to call on an unopened or already-closed
// Listener.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
}

func (l *Listener) handle(msg midi.Message, engine Engine) {
	var ch, key, vel, cc, val uint8

	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		pad := int(key) - l.noteLow
		if !types.ValidPad(pad) {
			return
		}
		if vel == 0 {
			// a zero-velocity "note on" is a note-off by convention
			engine.StopVoice(pad)
			return
		}
		engine.TriggerLive(pad, int(vel))

	case msg.GetNoteOff(&ch, &key, &vel):
		pad := int(key) - l.noteLow
		if !types.ValidPad(pad) {
			return
		}
		engine.StopVoice(pad)

	case msg.GetControlChange(&ch, &cc, &val):
		l.handleCC(ch, cc, val, engine)

	default:
		log.Printf("[midi] unhandled message: %v", msg)
	}
}

func (l *Listener) handleCC(channel, cc, val uint8, engine Engine) {
	percent := int(val) * 100 / 127
	switch cc {
	case ccChannelVolume:
		track := int(channel)
		if types.ValidTrack(track) {
			engine.SetTrackVolume(track, percent)
		}
	case ccModWheel:
		engine.SetMasterVolume(percent)
	}
}
