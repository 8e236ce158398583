package sequencer

import "github.com/schollz/drumcore/internal/types"

// TrackState holds the per-track mixer/loop state the sequencer itself
// owns: mute, track volume (read by pattern-step processing
// as the default out-volume absent a per-cell lock), and the independent
// loop processor's enable/pause/type/phase-counter.
type TrackState struct {
	Muted     bool
	Volume    int // 0..150%, default 100
	LoopActive bool
	LoopPaused bool
	LoopType   types.LoopType

	loopStepCounter int
}

func newTrackState() TrackState {
	return TrackState{Volume: 100}
}

// SetTrackMute mutes/unmutes a track. Muted tracks fire neither their loop
// processor nor their pattern steps.
func (s *Sequencer) SetTrackMute(t int, muted bool) {
	if !types.ValidTrack(t) {
		return
	}
	s.tracks[t].Muted = muted
}

// SetTrackVolume sets a track's default volume (0..150%), used whenever a
// firing cell has no volume lock.
func (s *Sequencer) SetTrackVolume(t, v int) {
	if !types.ValidTrack(t) {
		return
	}
	s.tracks[t].Volume = types.Clamp(v, 0, types.MaxVolumePercent)
}

// SetLoopActive enables/disables a track's independent loop processor.
func (s *Sequencer) SetLoopActive(t int, active bool) {
	if !types.ValidTrack(t) {
		return
	}
	s.tracks[t].LoopActive = active
	if active {
		s.tracks[t].loopStepCounter = 0
	}
}

// SetLoopPaused pauses/resumes a track's loop processor without resetting
// its phase counter.
func (s *Sequencer) SetLoopPaused(t int, paused bool) {
	if !types.ValidTrack(t) {
		return
	}
	s.tracks[t].LoopPaused = paused
}

// ToggleLoopActive flips a track's loop-active flag.
func (s *Sequencer) ToggleLoopActive(t int) {
	if !types.ValidTrack(t) {
		return
	}
	s.SetLoopActive(t, !s.tracks[t].LoopActive)
}

// TogglePauseLoop flips a track's loop-paused flag. A second call resumes.
func (s *Sequencer) TogglePauseLoop(t int) {
	if !types.ValidTrack(t) {
		return
	}
	s.tracks[t].LoopPaused = !s.tracks[t].LoopPaused
}

// SetLoopType selects when a track's loop processor fires.
func (s *Sequencer) SetLoopType(t int, lt types.LoopType) {
	if !types.ValidTrack(t) {
		return
	}
	s.tracks[t].LoopType = lt
}

// SetPlaying starts/stops the transport. Stopping does not reset
// currentStep or currentPattern — resume picks up where it left off.
func (s *Sequencer) SetPlaying(playing bool) {
	s.playing = playing
	if !playing {
		s.lastStepTime = zeroTime
	}
}

// Playing reports whether the transport is running.
func (s *Sequencer) Playing() bool { return s.playing }

// CurrentStep and CurrentPattern expose read-only playhead position, e.g.
// for a monitor adapter.
func (s *Sequencer) CurrentStep() int    { return s.currentStep }
func (s *Sequencer) CurrentPattern() int { return s.currentPattern }

// SelectPattern switches the pattern the transport is currently playing
// from. Out-of-range indices are ignored.
func (s *Sequencer) SelectPattern(p int) {
	if !types.ValidPattern(p) {
		return
	}
	s.currentPattern = p
}

// SetTempo sets the transport tempo in BPM, clamped to
// [MinTempoBPM, MaxTempoBPM], and recomputes the step interval
// (step_interval_us := 60_000_000 / bpm / 4).
func (s *Sequencer) SetTempo(bpm int) {
	s.tempoBPM = types.Clamp(bpm, types.MinTempoBPM, types.MaxTempoBPM)
	s.stepIntervalUs = stepIntervalForTempo(s.tempoBPM)
	s.nextStepIntervalUs = s.stepIntervalUs
}

func stepIntervalForTempo(bpm int) int64 {
	return int64(60_000_000 / float64(bpm) / 4.0)
}

// TempoBPM returns the current transport tempo.
func (s *Sequencer) TempoBPM() int { return s.tempoBPM }

// SetSongMode enables/disables song-mode pattern chaining and sets the
// chain length (clamped 1..NumPatterns). In song mode, wrapping from step
// StepsPerBar-1 back to 0 advances currentPattern modulo songLength.
func (s *Sequencer) SetSongMode(enabled bool, length int) {
	s.songMode = enabled
	s.songLength = types.Clamp(length, 1, types.NumPatterns)
}

// SetHumanize sets the transport's timing jitter (±ms, 0..MaxHumanizeTimingMS)
// and velocity jitter (±percent, 0..MaxHumanizeVelocityPercent).
func (s *Sequencer) SetHumanize(timingMs, velocityPct int) {
	s.humanizeTimingMs = types.Clamp(timingMs, 0, types.MaxHumanizeTimingMS)
	s.humanizeVelocityPct = types.Clamp(velocityPct, 0, types.MaxHumanizeVelocityPercent)
}

// SongMode reports whether song-mode chaining is enabled and its chain
// length, for a persistence or monitor adapter to read back out.
func (s *Sequencer) SongMode() (enabled bool, length int) { return s.songMode, s.songLength }

// Humanize reports the transport's current timing/velocity jitter bounds.
func (s *Sequencer) Humanize() (timingMs, velocityPct int) {
	return s.humanizeTimingMs, s.humanizeVelocityPct
}

// Track returns a copy of track t's mixer/loop state. Returns the zero
// value for an out-of-range index.
func (s *Sequencer) Track(t int) TrackState {
	if !types.ValidTrack(t) {
		return TrackState{}
	}
	return s.tracks[t]
}
