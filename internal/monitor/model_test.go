package monitor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/drumcore/internal/core"
)

type fakeSink struct{}

func (fakeSink) WriteBlock(frames []int16) {}

func TestViewRendersGridAndHeader(t *testing.T) {
	feed := NewFeed()
	e := core.NewEngine(fakeSink{}, feed, 1)
	e.SetStep(0, 0, 0, true)
	e.Flush()
	feed.PatternChange(0, 1)
	feed.StepChange(0)

	m := NewModel(e, feed, 0)
	out := m.View()
	assert.Contains(t, out, "drumcore")
	assert.Contains(t, out, "#")
}

func TestQuitKeySetsQuittingAndReturnsQuitCmd(t *testing.T) {
	e := core.NewEngine(fakeSink{}, nil, 1)
	feed := NewFeed()
	m := NewModel(e, feed, 0)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Equal(t, "", m.View())
}

func TestWindowSizeMsgUpdatesDimensions(t *testing.T) {
	e := core.NewEngine(fakeSink{}, nil, 1)
	feed := NewFeed()
	m := NewModel(e, feed, 0)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 40, m.height)
}

func TestRenderWaveformWithNoPeaksShowsPlaceholder(t *testing.T) {
	e := core.NewEngine(fakeSink{}, nil, 1)
	feed := NewFeed()
	m := NewModel(e, feed, 3)
	out := m.renderWaveform(feed.snapshot(3))
	assert.Contains(t, out, "no waveform data")
}
