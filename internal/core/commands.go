package core

import "github.com/schollz/drumcore/internal/types"

// This file is the command surface: one exported method per named
// operation, each enqueuing a closure that runs on the control
// goroutine. Go has no sum-type/enum syntax that reads better than a plain
// method per command, so "Command" here is simply `func(*Engine)` — the
// exported methods below are its only producers. The transport's own
// "Stop" and a voice-level "Stop" would otherwise collide; Go can't
// overload by arity, so the voice-level operations are named
// StopVoice/StopAllVoices here (documented per method).

// --- Transport ---

// Start begins the transport.
func (e *Engine) Start() { e.Enqueue(func(e *Engine) { e.seq.SetPlaying(true) }) }

// StopTransport halts the transport without touching any playing voice —
// distinct from StopVoice/StopAllVoices.
func (e *Engine) StopTransport() { e.Enqueue(func(e *Engine) { e.seq.SetPlaying(false) }) }

// SetTempo sets the transport tempo in BPM.
func (e *Engine) SetTempo(bpm int) { e.Enqueue(func(e *Engine) { e.seq.SetTempo(bpm) }) }

// SelectPattern switches the pattern the transport plays from.
func (e *Engine) SelectPattern(idx int) { e.Enqueue(func(e *Engine) { e.seq.SelectPattern(idx) }) }

// SetSongMode enables/disables song-mode pattern chaining.
func (e *Engine) SetSongMode(on bool, length int) {
	e.Enqueue(func(e *Engine) { e.seq.SetSongMode(on, length) })
}

// SetHumanize sets the transport's timing/velocity jitter parameters.
func (e *Engine) SetHumanize(timingMs, velocityPct int) {
	e.Enqueue(func(e *Engine) { e.seq.SetHumanize(timingMs, velocityPct) })
}

// --- Pattern edit ---

func (e *Engine) SetStep(p, t, s int, on bool) {
	e.Enqueue(func(e *Engine) { e.seq.Arena().SetStep(p, t, s, on) })
}

func (e *Engine) SetStepVelocity(p, t, s, v int) {
	e.Enqueue(func(e *Engine) { e.seq.Arena().SetStepVelocity(p, t, s, v) })
}

func (e *Engine) SetStepNoteLen(p, t, s, div int) {
	e.Enqueue(func(e *Engine) { e.seq.Arena().SetStepNoteLen(p, t, s, div) })
}

func (e *Engine) SetStepProbability(p, t, s, pct int) {
	e.Enqueue(func(e *Engine) { e.seq.Arena().SetStepProbability(p, t, s, pct) })
}

func (e *Engine) SetStepRatchet(p, t, s, r int) {
	e.Enqueue(func(e *Engine) { e.seq.Arena().SetStepRatchet(p, t, s, r) })
}

func (e *Engine) SetStepVolumeLock(p, t, s int, enabled bool, value int) {
	e.Enqueue(func(e *Engine) { e.seq.Arena().SetStepVolumeLock(p, t, s, enabled, value) })
}

func (e *Engine) SetPatternBulk(p int, steps [types.NumTracks][types.StepsPerBar]bool, vels [types.NumTracks][types.StepsPerBar]int) {
	e.Enqueue(func(e *Engine) { e.seq.Arena().SetPatternBulk(p, steps, vels) })
}

func (e *Engine) ClearPattern(p int) { e.Enqueue(func(e *Engine) { e.seq.Arena().ClearPattern(p) }) }

func (e *Engine) ClearTrack(t int) { e.Enqueue(func(e *Engine) { e.seq.Arena().ClearTrack(t) }) }

func (e *Engine) CopyPattern(src, dst int) {
	e.Enqueue(func(e *Engine) { e.seq.Arena().CopyPattern(src, dst) })
}

// --- Mixer ---

func (e *Engine) MuteTrack(t int, on bool) { e.Enqueue(func(e *Engine) { e.seq.SetTrackMute(t, on) }) }

func (e *Engine) SetTrackVolume(t, v int) { e.Enqueue(func(e *Engine) { e.seq.SetTrackVolume(t, v) }) }

// SetMasterVolume sets the output stage's overall volume.
func (e *Engine) SetMasterVolume(v int) {
	e.Enqueue(func(e *Engine) { e.masterVolume.Store(int64(types.Clamp(v, 0, types.MaxVolumePercent))) })
}

// SetSequencerVolume sets the bus scalar applied to every sequencer-fired
// voice on top of its track volume.
func (e *Engine) SetSequencerVolume(v int) {
	e.Enqueue(func(e *Engine) { e.mixer.SetSequencerVolume(v) })
}

func (e *Engine) SetLiveVolume(v int) { e.Enqueue(func(e *Engine) { e.mixer.SetLiveVolume(v) }) }

// --- Voices ---

func (e *Engine) TriggerLive(pad, velocity int) {
	e.Enqueue(func(e *Engine) { e.mixer.TriggerLive(e.store, pad, velocity) })
}

func (e *Engine) TriggerSequencer(pad, velocity, trackVolume, noteLen int) {
	e.Enqueue(func(e *Engine) { e.mixer.TriggerSequencer(e.store, pad, velocity, trackVolume, noteLen) })
}

// StopVoice releases every voice playing pad.
func (e *Engine) StopVoice(pad int) { e.Enqueue(func(e *Engine) { e.mixer.Stop(pad) }) }

// StopAllVoices releases every voice.
func (e *Engine) StopAllVoices() { e.Enqueue(func(e *Engine) { e.mixer.StopAll() }) }

// --- Loops ---

// ToggleLoop flips a track's loop-active flag.
func (e *Engine) ToggleLoop(t int) { e.Enqueue(func(e *Engine) { e.seq.ToggleLoopActive(t) }) }

func (e *Engine) SetLoopType(t int, lt types.LoopType) {
	e.Enqueue(func(e *Engine) { e.seq.SetLoopType(t, lt) })
}

// PauseLoop toggles a track's loop-paused flag. A second call resumes.
func (e *Engine) PauseLoop(t int) { e.Enqueue(func(e *Engine) { e.seq.TogglePauseLoop(t) }) }

// --- Effects ---

func (e *Engine) SetGlobalFilter(kind types.FilterType, cutoff, q float64) {
	e.Enqueue(func(e *Engine) { e.bank.SetMasterFilter(kind, cutoff, q) })
}

func (e *Engine) SetGlobalDistortion(amount float64, mode types.DistortionMode) {
	e.Enqueue(func(e *Engine) { e.master.SetDistortion(mode, amount) })
}

func (e *Engine) SetBitDepth(bits int) { e.Enqueue(func(e *Engine) { e.master.SetBitDepth(bits) }) }

func (e *Engine) SetSampleRate(targetFS int) {
	e.Enqueue(func(e *Engine) { e.master.SetSampleRateReduction(targetFS) })
}

func (e *Engine) SetTrackFilter(t int, kind types.FilterType, cutoff, q, gainDB float64) {
	e.Enqueue(func(e *Engine) {
		if err := e.bank.SetTrackFilter(t, kind, cutoff, q, gainDB); err != nil {
			logf("SetTrackFilter(%d): %v", t, err)
		}
	})
}

func (e *Engine) ClearTrackFilter(t int) {
	e.Enqueue(func(e *Engine) { _ = e.bank.ClearTrackFilter(t) })
}

func (e *Engine) SetPadFilter(pad int, kind types.FilterType, cutoff, q, gainDB float64) {
	e.Enqueue(func(e *Engine) {
		if err := e.bank.SetPadFilter(pad, kind, cutoff, q, gainDB); err != nil {
			logf("SetPadFilter(%d): %v", pad, err)
		}
	})
}

func (e *Engine) ClearPadFilter(pad int) {
	e.Enqueue(func(e *Engine) { _ = e.bank.ClearPadFilter(pad) })
}

// --- Samples ---

func (e *Engine) LoadSample(pad int, pcm []int16, name string) {
	e.Enqueue(func(e *Engine) {
		if err := e.store.Load(pad, pcm, name); err != nil {
			logf("LoadSample(%d): %v", pad, err)
		}
	})
}

func (e *Engine) UnloadSample(pad int) {
	e.Enqueue(func(e *Engine) { _ = e.store.Unload(pad) })
}

func (e *Engine) UnloadAll() { e.Enqueue(func(e *Engine) { e.store.UnloadAll() }) }

func (e *Engine) TrimSample(pad int, startNorm, endNorm float64) {
	e.Enqueue(func(e *Engine) {
		if err := e.store.Trim(pad, startNorm, endNorm); err != nil {
			logf("TrimSample(%d): %v", pad, err)
		}
	})
}

func (e *Engine) ApplyFade(pad int, fadeInSeconds, fadeOutSeconds float64) {
	e.Enqueue(func(e *Engine) {
		if err := e.store.ApplyFade(pad, fadeInSeconds, fadeOutSeconds); err != nil {
			logf("ApplyFade(%d): %v", pad, err)
		}
	})
}

// RequestWaveformPeaks computes waveform peaks for pad and pushes them to
// the event surface; never called from the audio path.
func (e *Engine) RequestWaveformPeaks(pad, nPoints int) {
	e.Enqueue(func(e *Engine) {
		peaks, err := e.store.WaveformPeaks(pad, nPoints)
		if err != nil {
			logf("RequestWaveformPeaks(%d): %v", pad, err)
			return
		}
		e.events.WaveformPeaks(pad, peaks)
	})
}
