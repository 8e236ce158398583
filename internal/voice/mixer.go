package voice

import (
	"log"
	"sync/atomic"

	"github.com/schollz/drumcore/internal/effect"
	"github.com/schollz/drumcore/internal/sample"
	"github.com/schollz/drumcore/internal/types"
)

// Mixer owns the fixed NumVoices pool and the per-sample accumulate loop.
// Trigger/Stop methods are called from the control goroutine; ProcessBlock
// runs on the audio goroutine and never allocates, blocks, or takes a lock.
type Mixer struct {
	voices         [types.NumVoices]*Voice
	ageCounter     atomic.Uint64
	liveVolume     atomic.Int64 // percent 0..150, default 100
	sequencerVolume atomic.Int64 // percent 0..150 bus scalar over track volume, default 100
}

// NewMixer returns a mixer with every voice Free, live volume at 100%, and
// the sequencer bus volume at 100%.
func NewMixer() *Mixer {
	m := &Mixer{}
	for i := range m.voices {
		m.voices[i] = &Voice{}
	}
	m.liveVolume.Store(100)
	m.sequencerVolume.Store(100)
	return m
}

// SetLiveVolume sets the base volume (0..150%) used by TriggerLive before
// the x1.2 live-pad boost.
func (m *Mixer) SetLiveVolume(v int) {
	m.liveVolume.Store(int64(types.Clamp(v, 0, types.MaxVolumePercent)))
}

// SetSequencerVolume sets the sequencer bus volume (0..150%), a scalar
// applied on top of each track's own volume in TriggerSequencer.
func (m *Mixer) SetSequencerVolume(v int) {
	m.sequencerVolume.Store(int64(types.Clamp(v, 0, types.MaxVolumePercent)))
}

// allocate picks a Free voice, or steals the oldest Playing voice by
// monotonic start-age if the pool is full, rather than always falling back
// to voice 0.
func (m *Mixer) allocate() *Voice {
	for _, v := range m.voices {
		if !v.Active() {
			return v
		}
	}
	oldest := m.voices[0]
	for _, v := range m.voices[1:] {
		if v.startAge < oldest.startAge {
			oldest = v
		}
	}
	oldest.release()
	return oldest
}

// TriggerSequencer allocates a voice for a sequencer-fired pad. is_live_pad
// is false; volume is exactly trackVolume; maxSamples is honored as a hard
// note-length cut. Missing buffers and invalid pads are logged and
// ignored — no failure escapes to the audio path.
func (m *Mixer) TriggerSequencer(store *sample.Store, pad, velocity, trackVolume, maxSamples int) {
	if !types.ValidPad(pad) {
		log.Printf("voice: TriggerSequencer invalid pad %d", pad)
		return
	}
	buf := store.Current(pad)
	if buf == nil {
		log.Printf("voice: TriggerSequencer pad %d has no buffer loaded", pad)
		return
	}

	velocity = types.Clamp(velocity, 1, types.MaxVelocity)
	trackVolume = types.Clamp(trackVolume, 0, types.MaxVolumePercent)
	volume := types.Clamp(trackVolume*int(m.sequencerVolume.Load())/100, 0, types.MaxVolumePercent)

	v := m.allocate()
	v.publish(buf, maxSamples, velocity, volume, false, 0, 0, pad, false, m.ageCounter.Add(1))
}

// TriggerLive allocates a voice for a live-pad hit. is_live_pad is true;
// volume is liveVolume x 1.2, clamped at 150; no hard cut (plays to the
// buffer's end).
func (m *Mixer) TriggerLive(store *sample.Store, pad, velocity int) {
	if !types.ValidPad(pad) {
		log.Printf("voice: TriggerLive invalid pad %d", pad)
		return
	}
	buf := store.Current(pad)
	if buf == nil {
		log.Printf("voice: TriggerLive pad %d has no buffer loaded", pad)
		return
	}

	velocity = types.Clamp(velocity, 1, types.MaxVelocity)
	volume := types.Clamp(int(float64(m.liveVolume.Load())*1.2), 0, types.MaxVolumePercent)

	v := m.allocate()
	v.publish(buf, 0, velocity, volume, false, 0, 0, pad, true, m.ageCounter.Add(1))
}

// TriggerLooped behaves like TriggerSequencer/TriggerLive but additionally
// enables looping over [loopStart, loopEnd). The sequencer's loop
// processor does not use it: its fires reach TriggerSequencer via
// Engine.Step.
func (m *Mixer) TriggerLooped(store *sample.Store, pad, velocity, volume, loopStart, loopEnd int, isLivePad bool) {
	if !types.ValidPad(pad) {
		return
	}
	buf := store.Current(pad)
	if buf == nil {
		return
	}
	if loopStart < 0 {
		loopStart = 0
	}
	if loopEnd <= loopStart || loopEnd > buf.Length() {
		loopEnd = buf.Length()
	}

	velocity = types.Clamp(velocity, 1, types.MaxVelocity)
	volume = types.Clamp(volume, 0, types.MaxVolumePercent)

	v := m.allocate()
	v.publish(buf, 0, velocity, volume, true, loopStart, loopEnd, pad, isLivePad, m.ageCounter.Add(1))
}

// Stop releases every voice currently playing pad. Observed by the audio
// goroutine no later than the next block.
func (m *Mixer) Stop(pad int) {
	for _, v := range m.voices {
		if v.Active() && v.PadIndex() == pad {
			v.release()
		}
	}
}

// StopAll releases every voice.
func (m *Mixer) StopAll() {
	for _, v := range m.voices {
		v.release()
	}
}

// ActiveCount returns how many voices are currently Playing (for the
// VoicesStatus event).
func (m *Mixer) ActiveCount() int {
	n := 0
	for _, v := range m.voices {
		if v.Active() {
			n++
		}
	}
	return n
}

// ProcessBlock advances every active voice by len(accL) frames, applying
// the per-sample read/scale/filter formula and summing into the
// caller-provided int32 stereo accumulators (mono source, written
// identically to both channels). No allocation; the only "blocking" here is
// an atomic load per voice per frame.
func (m *Mixer) ProcessBlock(accL, accR []int32, filters *effect.Bank) {
	n := len(accL)
	for _, v := range m.voices {
		if !v.Active() {
			continue
		}
		f := filters.VoiceFilter(v.PadIndex(), v.isLivePad)
		for i := 0; i < n; i++ {
			s, active := v.readSample()
			if !active {
				break
			}
			if f != nil {
				s = f.Process(s)
			}
			accL[i] += s
			accR[i] += s
		}
	}
}
