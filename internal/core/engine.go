// Package core wires the Sample Store, Voice Mixer, Effect Chain, and Step
// Sequencer into the root Engine value that owns them, as the alternative
// to global singletons, and runs the two goroutines that stand in for the
// original firmware's two cores: RunAudio (the audio task) and RunControl
// (the control task).
package core

import (
	"context"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/schollz/drumcore/internal/effect"
	"github.com/schollz/drumcore/internal/sample"
	"github.com/schollz/drumcore/internal/sequencer"
	"github.com/schollz/drumcore/internal/types"
	"github.com/schollz/drumcore/internal/voice"
)

// AudioSink is the abstract DAC bus. WriteBlock receives one block's worth
// of interleaved stereo i16 frames (len == 2*types.BlockSize) and is
// expected to block for approximately one block period — that blocking
// write is the audio goroutine's only suspension point and its natural
// pacing clock.
type AudioSink interface {
	WriteBlock(frames []int16)
}

// captureRingSize is the visualization snapshot ring's fixed capacity.
const captureRingSize = 256

// Engine is the single root value owning every core subcomponent. There are
// no package-level globals anywhere in this module; every adapter holds an
// explicit *Engine (or a narrower interface carved from it) instead of
// reaching into shared state.
type Engine struct {
	store   *sample.Store
	mixer   *voice.Mixer
	bank    *effect.Bank
	master  *effect.MasterChain
	seq     *sequencer.Sequencer
	capture *captureRing

	sink   AudioSink
	events Events

	commands chan func(*Engine)

	masterVolume atomic.Int64 // percent 0..150, default 100

	processedFrames atomic.Int64
	cpuLoadBits     atomic.Uint64 // math.Float64bits of the last computed load
	windowStart     time.Time
	windowFrames    int64
}

// NewEngine constructs a fully wired Engine. seed determines the
// sequencer's humanize/probability RNG stream. events may be nil
// (NopEvents is used in that case).
func NewEngine(sink AudioSink, events Events, seed int64) *Engine {
	if events == nil {
		events = NopEvents{}
	}
	bank := effect.NewBank()
	e := &Engine{
		store:    sample.NewStore(),
		mixer:    voice.NewMixer(),
		bank:     bank,
		master:   effect.NewMasterChain(bank.Master()),
		capture:  newCaptureRing(captureRingSize),
		sink:     sink,
		events:   events,
		commands: make(chan func(*Engine), 256),
	}
	e.masterVolume.Store(100)
	e.seq = sequencer.NewSequencer(e, seed)
	return e
}

// Enqueue submits a command to be applied on the control goroutine (the
// exported methods below are its typed operations). Safe to call from any
// goroutine — this channel is the one mutex-equivalent allowed between
// transport threads and the control task.
func (e *Engine) Enqueue(cmd func(*Engine)) {
	e.commands <- cmd
}

// Store, Mixer, Bank, Sequencer expose the owned subcomponents read-only to
// adapters that need direct, non-mutating access (e.g. the monitor reading
// Sequencer.CurrentStep for a UI redraw). Mutating an owned subcomponent
// directly from outside RunControl would violate the single-writer
// discipline this engine requires — adapters must go through Enqueue/the
// command methods instead.
func (e *Engine) Store() *sample.Store         { return e.store }
func (e *Engine) Mixer() *voice.Mixer          { return e.mixer }
func (e *Engine) Bank() *effect.Bank           { return e.bank }
func (e *Engine) Sequencer() *sequencer.Sequencer { return e.seq }

// CapturedSamples returns a snapshot of the visualization ring. Safe to
// call from any goroutine.
func (e *Engine) CapturedSamples() []int16 { return e.capture.Snapshot() }

// CPULoad returns the most recently computed fraction of real time spent
// producing audio (every second, load := processed_frames / native_fs).
func (e *Engine) CPULoad() float64 {
	return math.Float64frombits(e.cpuLoadBits.Load())
}

// Step implements sequencer.Callbacks. Tracks map 1:1 to pads 0..15;
// noteLenSamples of 0 means "play to end".
func (e *Engine) Step(track, velocity, volume, noteLenSamples int) {
	e.mixer.TriggerSequencer(e.store, track, velocity, volume, noteLenSamples)
}

// StepChange and PatternChange implement sequencer.Callbacks by forwarding
// to the event surface.
func (e *Engine) StepChange(step int)                 { e.events.StepChange(step) }
func (e *Engine) PatternChange(pattern, length int)   { e.events.PatternChange(pattern, length) }

// RunAudio runs the audio task's block loop until ctx is
// cancelled. It never allocates per block beyond the two fixed-size
// accumulators and the output block buffer, all allocated once before the
// loop starts.
func (e *Engine) RunAudio(ctx context.Context) error {
	accL := make([]int32, types.BlockSize)
	accR := make([]int32, types.BlockSize)
	out := make([]int16, types.BlockSize*2)
	e.windowStart = time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		e.processOneBlock(accL, accR, out)
	}
}

// processOneBlock runs exactly one iteration of the audio task's block
// loop, reusing the caller's accumulators and output buffer so the hot
// path never allocates.
func (e *Engine) processOneBlock(accL, accR []int32, out []int16) {
	for i := range accL {
		accL[i], accR[i] = 0, 0
	}
	e.mixer.ProcessBlock(accL, accR, e.bank)

	// Voices are mono sources summed identically into both channels, so
	// accL and accR agree pointwise; the master chain
	// is stateful (filter memory, SR-reduction hold, bit-crush) and must
	// see exactly one sample per frame, not one per channel.
	vol := int(e.masterVolume.Load())
	for i := 0; i < types.BlockSize; i++ {
		s := clamp16(accL[i] * int32(vol) / 100)
		s = int16(e.master.Process(int32(s)))
		out[2*i] = s
		out[2*i+1] = s
		e.capture.Push(s)
	}

	e.sink.WriteBlock(out)
	e.accountCPU(types.BlockSize)
}

func clamp16(x int32) int16 {
	if x > 32767 {
		return 32767
	}
	if x < -32768 {
		return -32768
	}
	return int16(x)
}

func (e *Engine) accountCPU(frames int) {
	e.processedFrames.Add(int64(frames))
	e.windowFrames += int64(frames)
	elapsed := time.Since(e.windowStart)
	if elapsed >= time.Second {
		load := float64(e.windowFrames) / (elapsed.Seconds() * types.SampleRate)
		e.cpuLoadBits.Store(math.Float64bits(load))
		e.windowFrames = 0
		e.windowStart = time.Now()
	}
}

// RunControl runs the control task: drains queued commands, ticks the
// sequencer, and reaps sample-store garbage, at approximately 500Hz,
// until ctx is cancelled.
func (e *Engine) RunControl(ctx context.Context) error {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-e.commands:
			cmd(e)
		case now := <-ticker.C:
			e.drainCommands()
			e.seq.Tick(now)
			e.store.Reap()
			e.events.VoicesStatus(e.mixer.ActiveCount())
		}
	}
}

func (e *Engine) drainCommands() {
	for {
		select {
		case cmd := <-e.commands:
			cmd(e)
		default:
			return
		}
	}
}

// Flush synchronously applies every command enqueued so far. RunControl
// drains on its own cadence once running; Flush exists for offline callers
// — kit loading at startup, bank restore, tests — that need commands
// applied immediately rather than waiting for the next control tick.
func (e *Engine) Flush() { e.drainCommands() }

// logf is the engine's logging idiom: standard log.Printf with a package tag.
func logf(format string, args ...any) { log.Printf("[core] "+format, args...) }
