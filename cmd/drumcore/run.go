package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/schollz/drumcore/internal/core"
	"github.com/schollz/drumcore/internal/kitloader"
	"github.com/schollz/drumcore/internal/monitor"
	"github.com/schollz/drumcore/internal/persist"
	midiadapter "github.com/schollz/drumcore/internal/transport/midi"
	oscadapter "github.com/schollz/drumcore/internal/transport/osc"
)

type runFlags struct {
	kitDir       string
	bankPath     string
	autosave     bool
	outWav       string
	midiPort     string
	oscListen    string
	oscPublishTo string
	monitorPad   int
	useMonitor   bool
	seed         int64
	durationSec  int
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the engine, optionally loading a kit and bank and attaching the monitor, MIDI, or OSC",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(f)
		},
	}
	cmd.Flags().StringVar(&f.kitDir, "kit", "", "directory of mono 16-bit WAV files to load as the kit")
	cmd.Flags().StringVar(&f.bankPath, "bank", "", "pattern bank JSON file to load at startup")
	cmd.Flags().BoolVar(&f.autosave, "autosave", false, "debounce-save the bank back to --bank as it changes")
	cmd.Flags().StringVar(&f.outWav, "out", "", "render engine output to this WAV file instead of discarding it")
	cmd.Flags().StringVar(&f.midiPort, "midi-port", "", "substring match of a MIDI input port name to listen on")
	cmd.Flags().StringVar(&f.oscListen, "osc-listen", "", "UDP address (host:port) to receive OSC commands on")
	cmd.Flags().StringVar(&f.oscPublishTo, "osc-publish", "", "host:port to publish OSC events to")
	cmd.Flags().IntVar(&f.monitorPad, "monitor-pad", 0, "pad whose waveform the monitor's amplitude strip follows")
	cmd.Flags().BoolVar(&f.useMonitor, "monitor", false, "attach the bubbletea live monitor")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "sequencer RNG seed")
	cmd.Flags().IntVar(&f.durationSec, "duration", 0, "stop automatically after this many seconds (0 = run until interrupted)")
	return cmd
}

func runEngine(f *runFlags) error {
	sink, closeSink, err := buildSink(f.outWav)
	if err != nil {
		return err
	}
	defer closeSink()

	feed := monitor.NewFeed()
	var publisher *oscadapter.Publisher
	if f.oscPublishTo != "" {
		host, port, err := splitHostPort(f.oscPublishTo)
		if err != nil {
			return fmt.Errorf("--osc-publish: %w", err)
		}
		publisher = oscadapter.NewPublisher(host, port)
	}

	events := buildEvents(feed, publisher)
	engine := core.NewEngine(sink, events, f.seed)

	if f.bankPath != "" {
		if bank, err := persist.LoadFile(f.bankPath); err == nil {
			persist.Apply(engine, bank)
		} else {
			log.Printf("bank load %s: %v (starting from a fresh bank)", f.bankPath, err)
		}
	}

	if f.kitDir != "" {
		kits, err := kitloader.LoadKit(engine, f.kitDir)
		if err != nil {
			log.Printf("kit load %s: %v", f.kitDir, err)
		}
		engine.Flush()
		log.Printf("loaded %d sample(s) from %s", len(kits), f.kitDir)
	}

	var autosaver *persist.AutoSaver
	if f.autosave {
		if f.bankPath == "" {
			return fmt.Errorf("--autosave requires --bank")
		}
		autosaver = persist.NewAutoSaver(f.bankPath, engine)
	}

	if f.midiPort != "" {
		listener := midiadapter.NewListener(36)
		if err := listener.Open(f.midiPort, engine); err != nil {
			log.Printf("midi: %v", err)
		} else {
			defer listener.Close()
		}
	}

	if f.oscListen != "" {
		server := oscadapter.NewServer(f.oscListen, engine)
		go func() {
			if err := server.ListenAndServe(); err != nil {
				log.Printf("osc server: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = engine.RunAudio(ctx) }()
	go func() { _ = engine.RunControl(ctx) }()

	engine.Start()
	if autosaver != nil {
		go autosaveOnTick(ctx, autosaver)
	}

	if f.useMonitor {
		return monitor.Run(engine, feed, f.monitorPad)
	}
	return waitForStop(ctx, cancel, f.durationSec)
}

func buildSink(outWav string) (core.AudioSink, func(), error) {
	if outWav == "" {
		return nullSink{}, func() {}, nil
	}
	sink, err := newWavSink(outWav)
	if err != nil {
		return nil, nil, err
	}
	return sink, func() { _ = sink.Close() }, nil
}

func buildEvents(feed *monitor.Feed, publisher *oscadapter.Publisher) eventsTarget {
	if publisher == nil {
		return feed
	}
	return newFanEvents(feed, publisher)
}

func autosaveOnTick(ctx context.Context, a *persist.AutoSaver) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = a.Flush()
			return
		case <-ticker.C:
			a.RequestSave()
		}
	}
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return host, port, nil
}

// waitForStop blocks until either durationSec elapses (when nonzero) or
// SIGINT/SIGTERM arrives.
func waitForStop(ctx context.Context, cancel context.CancelFunc, durationSec int) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	if durationSec > 0 {
		select {
		case <-time.After(time.Duration(durationSec) * time.Second):
		case <-sig:
		}
	} else {
		<-sig
	}
	cancel()
	return nil
}
