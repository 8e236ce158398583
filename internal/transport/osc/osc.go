// Package osc is the UDP/OSC adapter: an inbound server maps an address
// space onto the command surface, and an outbound client republishes the
// event surface so a remote controller or visualizer can follow along.
// Uses osc.NewClient/osc.NewMessage with one typed send method per message
// kind on the publish side, and a standard dispatcher keyed by address on
// the receive side.
package osc

import (
	"fmt"
	"log"

	"github.com/hypebeast/go-osc/osc"

	"github.com/schollz/drumcore/internal/types"
)

// Engine is the slice of core.Engine the inbound server drives.
type Engine interface {
	TriggerLive(pad, velocity int)
	StopVoice(pad int)
	SetStep(pattern, track, step int, on bool)
	SetTempo(bpm int)
	SelectPattern(idx int)
	MuteTrack(track int, muted bool)
	SetTrackVolume(track, volume int)
	SetMasterVolume(volume int)
}

// Address space this server answers to, mirroring the command surface
// grouping in commands.go.
const (
	AddrTrigger      = "/drumcore/trigger"
	AddrStop         = "/drumcore/stop"
	AddrStep         = "/drumcore/step"
	AddrTempo        = "/drumcore/tempo"
	AddrSelectPat    = "/drumcore/pattern"
	AddrMute         = "/drumcore/mute"
	AddrTrackVolume  = "/drumcore/track/volume"
	AddrMasterVolume = "/drumcore/master/volume"
)

// Server listens for OSC messages and dispatches them onto an Engine.
type Server struct {
	addr string
	srv  *osc.Server
}

// NewServer builds a dispatcher wired to every address in the address
// space above, bound to engine. Call ListenAndServe to start serving.
func NewServer(addr string, engine Engine) *Server {
	d := osc.NewStandardDispatcher()

	d.AddMsgHandler(AddrTrigger, func(msg *osc.Message) {
		pad, velocity, err := twoInts(msg)
		if err != nil {
			log.Printf("[osc] %s: %v", AddrTrigger, err)
			return
		}
		engine.TriggerLive(pad, velocity)
	})

	d.AddMsgHandler(AddrStop, func(msg *osc.Message) {
		pad, err := oneInt(msg)
		if err != nil {
			log.Printf("[osc] %s: %v", AddrStop, err)
			return
		}
		engine.StopVoice(pad)
	})

	d.AddMsgHandler(AddrStep, func(msg *osc.Message) {
		if len(msg.Arguments) != 4 {
			log.Printf("[osc] %s: want 4 args, got %d", AddrStep, len(msg.Arguments))
			return
		}
		pattern, err1 := argInt(msg.Arguments[0])
		track, err2 := argInt(msg.Arguments[1])
		step, err3 := argInt(msg.Arguments[2])
		on, ok := msg.Arguments[3].(bool)
		if err1 != nil || err2 != nil || err3 != nil || !ok {
			log.Printf("[osc] %s: malformed arguments", AddrStep)
			return
		}
		if !types.ValidPattern(pattern) || !types.ValidTrack(track) || !types.ValidStep(step) {
			return
		}
		engine.SetStep(pattern, track, step, on)
	})

	d.AddMsgHandler(AddrTempo, func(msg *osc.Message) {
		bpm, err := oneInt(msg)
		if err != nil {
			log.Printf("[osc] %s: %v", AddrTempo, err)
			return
		}
		engine.SetTempo(bpm)
	})

	d.AddMsgHandler(AddrSelectPat, func(msg *osc.Message) {
		idx, err := oneInt(msg)
		if err != nil {
			log.Printf("[osc] %s: %v", AddrSelectPat, err)
			return
		}
		engine.SelectPattern(idx)
	})

	d.AddMsgHandler(AddrMute, func(msg *osc.Message) {
		if len(msg.Arguments) != 2 {
			log.Printf("[osc] %s: want 2 args, got %d", AddrMute, len(msg.Arguments))
			return
		}
		track, err := argInt(msg.Arguments[0])
		muted, ok := msg.Arguments[1].(bool)
		if err != nil || !ok {
			log.Printf("[osc] %s: malformed arguments", AddrMute)
			return
		}
		engine.MuteTrack(track, muted)
	})

	d.AddMsgHandler(AddrTrackVolume, func(msg *osc.Message) {
		track, volume, err := twoInts(msg)
		if err != nil {
			log.Printf("[osc] %s: %v", AddrTrackVolume, err)
			return
		}
		engine.SetTrackVolume(track, volume)
	})

	d.AddMsgHandler(AddrMasterVolume, func(msg *osc.Message) {
		volume, err := oneInt(msg)
		if err != nil {
			log.Printf("[osc] %s: %v", AddrMasterVolume, err)
			return
		}
		engine.SetMasterVolume(volume)
	})

	return &Server{addr: addr, srv: &osc.Server{Addr: addr, Dispatcher: d}}
}

// ListenAndServe blocks, serving OSC until the underlying UDP listener is
// closed or errors.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func oneInt(msg *osc.Message) (int, error) {
	if len(msg.Arguments) != 1 {
		return 0, fmt.Errorf("want 1 argument, got %d", len(msg.Arguments))
	}
	return argInt(msg.Arguments[0])
}

func twoInts(msg *osc.Message) (int, int, error) {
	if len(msg.Arguments) != 2 {
		return 0, 0, fmt.Errorf("want 2 arguments, got %d", len(msg.Arguments))
	}
	a, err := argInt(msg.Arguments[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := argInt(msg.Arguments[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func argInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int32:
		return int(n), nil
	case float32:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected argument type %T", v)
	}
}

// Publisher sends the event surface out over OSC to a fixed remote
// address, for a controller or visualizer following along passively.
type Publisher struct {
	client *osc.Client
}

// NewPublisher dials ip:port and holds the client open for repeated sends.
func NewPublisher(ip string, port int) *Publisher {
	return &Publisher{client: osc.NewClient(ip, port)}
}

func (p *Publisher) StepChange(step int) {
	msg := osc.NewMessage("/drumcore/event/step")
	msg.Append(int32(step))
	if err := p.client.Send(msg); err != nil {
		log.Printf("[osc] publish step change: %v", err)
	}
}

func (p *Publisher) PatternChange(newPattern, songLength int) {
	msg := osc.NewMessage("/drumcore/event/pattern")
	msg.Append(int32(newPattern))
	msg.Append(int32(songLength))
	if err := p.client.Send(msg); err != nil {
		log.Printf("[osc] publish pattern change: %v", err)
	}
}

func (p *Publisher) VoicesStatus(activeCount int) {
	msg := osc.NewMessage("/drumcore/event/voices")
	msg.Append(int32(activeCount))
	if err := p.client.Send(msg); err != nil {
		log.Printf("[osc] publish voices status: %v", err)
	}
}

func (p *Publisher) WaveformPeaks(pad int, peaks [][2]int16) {
	msg := osc.NewMessage("/drumcore/event/waveform")
	msg.Append(int32(pad))
	for _, pk := range peaks {
		msg.Append(int32(pk[0]))
		msg.Append(int32(pk[1]))
	}
	if err := p.client.Send(msg); err != nil {
		log.Printf("[osc] publish waveform peaks: %v", err)
	}
}
