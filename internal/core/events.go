package core

// Events is the narrow event surface the core exposes to the outside
// world, modeled as a small capability interface. An
// adapter (the monitor TUI, the OSC transport) implements this to observe
// the engine without reaching through any global state.
type Events interface {
	StepChange(step int)
	PatternChange(newPattern, songLength int)
	VoicesStatus(activeCount int)
	WaveformPeaks(pad int, peaks [][2]int16)
}

// NopEvents implements Events with no-ops, for callers that don't need an
// observer (e.g. headless benchmarking, or tests of Engine alone).
type NopEvents struct{}

func (NopEvents) StepChange(int)                    {}
func (NopEvents) PatternChange(int, int)             {}
func (NopEvents) VoicesStatus(int)                   {}
func (NopEvents) WaveformPeaks(int, [][2]int16)      {}
