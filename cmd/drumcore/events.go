package main

// fanEvents republishes the engine's event surface to every listener it
// wraps — used when both the monitor feed and the OSC publisher are
// active at once, since core.NewEngine takes exactly one Events value.
type fanEvents struct {
	listeners []eventsTarget
}

// eventsTarget mirrors core.Events; declared locally to avoid importing
// core just for the interface name here.
type eventsTarget interface {
	StepChange(step int)
	PatternChange(newPattern, songLength int)
	VoicesStatus(activeCount int)
	WaveformPeaks(pad int, peaks [][2]int16)
}

func newFanEvents(listeners ...eventsTarget) *fanEvents {
	return &fanEvents{listeners: listeners}
}

func (f *fanEvents) StepChange(step int) {
	for _, l := range f.listeners {
		l.StepChange(step)
	}
}

func (f *fanEvents) PatternChange(newPattern, songLength int) {
	for _, l := range f.listeners {
		l.PatternChange(newPattern, songLength)
	}
}

func (f *fanEvents) VoicesStatus(activeCount int) {
	for _, l := range f.listeners {
		l.VoicesStatus(activeCount)
	}
}

func (f *fanEvents) WaveformPeaks(pad int, peaks [][2]int16) {
	for _, l := range f.listeners {
		l.WaveformPeaks(pad, peaks)
	}
}
