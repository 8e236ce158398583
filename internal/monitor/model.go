package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/schollz/drumcore/internal/core"
	"github.com/schollz/drumcore/internal/types"
)

const refreshFPS = 30

// tickMsg drives the redraw loop: a steady UI refresh independent of the
// transport's own clock.
type tickMsg struct{}

func tick() tea.Cmd {
	interval := time.Second / refreshFPS
	return tea.Tick(interval, func(time.Time) tea.Msg { return tickMsg{} })
}

type styles struct {
	active   lipgloss.Style
	current  lipgloss.Style
	inactive lipgloss.Style
	muted    lipgloss.Style
	label    lipgloss.Style
}

func newStyles() styles {
	return styles{
		active:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		current:  lipgloss.NewStyle().Background(lipgloss.Color("7")).Foreground(lipgloss.Color("0")),
		inactive: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// Model is the bubbletea model for the monitor. It holds only a reference
// to the engine and the feed fed by its Events surface; all state it
// renders is either read straight from the engine (the step grid, which
// changes rarely) or from the feed (the playhead, voice count, and
// waveform, which change every block).
type Model struct {
	engine     *core.Engine
	feed       *Feed
	watchedPad int
	styles     styles
	cpuMeter   progress.Model
	width      int
	height     int
	quitting   bool
}

// NewModel builds a monitor model watching pad watchedPad's waveform feed.
func NewModel(engine *core.Engine, feed *Feed, watchedPad int) *Model {
	return &Model{
		engine:     engine,
		feed:       feed,
		watchedPad: watchedPad,
		styles:     newStyles(),
		cpuMeter:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

func (m *Model) Init() tea.Cmd { return tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.feed.snapshot(m.watchedPad)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  pattern %3d/%d   step %2d   voices %2d/%d\n\n",
		m.styles.label.Render("drumcore"),
		snap.pattern, snap.songLength, snap.step, snap.voices, types.NumVoices)

	b.WriteString(m.renderGrid(snap))
	b.WriteString("\n")
	b.WriteString(m.renderWaveform(snap))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", m.styles.label.Render("cpu"), m.cpuMeter.ViewAs(m.engine.CPULoad()))
	b.WriteString("\nq to quit\n")
	return b.String()
}

// renderGrid draws one row per track, one column per step of the
// currently playing pattern, highlighting the live step and dimming muted
// tracks.
func (m *Model) renderGrid(snap snapshot) string {
	arena := m.engine.Sequencer().Arena()
	var b strings.Builder
	for t := 0; t < types.NumTracks; t++ {
		track := m.engine.Sequencer().Track(t)
		rowLabel := fmt.Sprintf("%2d ", t)
		if track.Muted {
			b.WriteString(m.styles.muted.Render(rowLabel))
		} else {
			b.WriteString(m.styles.label.Render(rowLabel))
		}
		for s := 0; s < types.StepsPerBar; s++ {
			cell := arena.Get(snap.pattern, t, s)
			glyph := "."
			if cell.On {
				glyph = "#"
			}
			style := m.styles.inactive
			switch {
			case s == snap.step:
				style = m.styles.current
			case cell.On && !track.Muted:
				style = m.styles.active
			}
			b.WriteString(style.Render(glyph))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderWaveform draws the watched pad's most recent peaks as a simple
// Braille-less bar strip, using go-colorful to pick a hue by amplitude
// (green for quiet, shading to red for loud). Deliberately simpler than a full Braille waveform
// renderer — this is a monitor glance, not a sample editor.
func (m *Model) renderWaveform(snap snapshot) string {
	if len(snap.peaks) == 0 {
		return m.styles.inactive.Render("(no waveform data for pad " + fmt.Sprint(m.watchedPad) + ")")
	}
	var b strings.Builder
	bars := []rune(" ▁▂▃▄▅▆▇█")
	for _, pk := range snap.peaks {
		amp := pk[0]
		if -pk[1] > amp {
			amp = -pk[1]
		}
		level := float64(amp) / 32768.0
		idx := int(level * float64(len(bars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(bars) {
			idx = len(bars) - 1
		}
		c := colorful.Hsv(120*(1-level), 1, 1)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
		b.WriteString(style.Render(string(bars[idx])))
	}
	return b.String()
}

// Run starts the bubbletea program and blocks until the user quits.
func Run(engine *core.Engine, feed *Feed, watchedPad int) error {
	p := tea.NewProgram(NewModel(engine, feed, watchedPad), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
