package tui

import (
	"context"
	"io"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/internal/config"
	"github.com/lox/thirteenlanes/internal/engine"
	"github.com/lox/thirteenlanes/internal/randutil"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newModel(t *testing.T) *Model {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	opts := engine.DefaultOptions
	opts.Search.Timeout = 0
	eng := engine.New(opts, nil, logger)
	m, err := New(context.Background(), eng, Options{
		Player: "you",
		Bots:   []config.BotConfig{{Name: "north", Objective: "balanced"}, {Name: "east", Objective: "aggressive"}},
	}, randutil.New(5), logger)
	require.NoError(t, err)
	return m
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestNewDealsSortedHand(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	require.Len(t, m.hand, arrange.HandSize)
	for i := 1; i < len(m.hand); i++ {
		assert.False(t, m.hand[i-1].Less(m.hand[i]), "hand should be sorted high to low")
	}
	assert.Equal(t, 13, m.count(unassigned))
	assert.Equal(t, "balanced", m.opts.Objective)
}

func TestAssignMovesCursorAndRespectsCapacity(t *testing.T) {
	t.Parallel()
	m := newModel(t)

	press(m, "t", "t", "t")
	assert.Equal(t, 3, m.count(arrange.Top))
	assert.Equal(t, 3, m.cursor)

	press(m, "t")
	assert.Equal(t, 3, m.count(arrange.Top))
	assert.Contains(t, m.status, "top lane is full")

	press(m, "left", "u")
	assert.Equal(t, 2, m.count(arrange.Top))
	assert.Equal(t, unassigned, m.lanes[2])

	press(m, "c")
	assert.Equal(t, 13, m.count(unassigned))
}

func TestSubmitNeedsEveryCard(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	press(m, "b", "b")
	cmd := press(m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, phaseArranging, m.phase)
	assert.Contains(t, m.status, "place every card")
}

func TestPreviewShowsFoulBeforeSubmit(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	// Highest cards on top, lowest on bottom.
	press(m, "t", "t", "t", "m", "m", "m", "m", "m", "b", "b", "b", "b", "b")
	require.Zero(t, m.count(unassigned))

	v := m.engine.Validate(m.hand, m.arrangement())
	view := m.View()
	if v.Fouled {
		assert.Contains(t, view, "FOUL")
	} else {
		assert.Contains(t, view, "legal")
	}
	assert.Contains(t, view, "(3/3)")
	assert.Contains(t, view, "(5/5)")
}

func TestSuggestSubmitAndSettle(t *testing.T) {
	t.Parallel()
	m := newModel(t)

	cmd := press(m, "s")
	require.NotNil(t, cmd)
	m.Update(cmd())
	require.Zero(t, m.count(unassigned))
	assert.False(t, m.engine.Validate(m.hand, m.arrangement()).Fouled)
	assert.Contains(t, m.View(), "legal")

	cmd = press(m, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, phaseWaiting, m.phase)
	require.NotNil(t, m.verdict)
	assert.False(t, m.verdict.Fouled)

	// Keys are ignored while the bots arrange.
	press(m, "c")
	assert.Zero(t, m.count(unassigned))

	m.Update(cmd())
	assert.Equal(t, phaseSettled, m.phase)
	require.NotNil(t, m.result)
	require.Len(t, m.result.Players, 3)
	sum := 0
	for _, p := range m.result.Players {
		sum += p.Delta
	}
	assert.Zero(t, sum)
	require.Len(t, m.history, 1)
	assert.Contains(t, m.View(), "Round 1")

	press(m, "n")
	assert.Equal(t, phaseArranging, m.phase)
	assert.Nil(t, m.result)
	assert.Equal(t, 13, m.count(unassigned))
}

func TestSettleErrorAbandonsRound(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	m.phase = phaseWaiting
	m.Update(settledMsg{err: context.Canceled})
	assert.Equal(t, phaseSettled, m.phase)
	assert.Contains(t, m.status, "round failed")

	press(m, "n")
	assert.Equal(t, phaseArranging, m.phase)
}

func TestQuitAndHelp(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	press(m, "?")
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "suggest")

	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestNewRejectsBadSeating(t *testing.T) {
	t.Parallel()
	eng := engine.New(engine.DefaultOptions, nil, nil)
	_, err := New(context.Background(), eng, Options{Player: "you"}, randutil.New(1), nil)
	assert.Error(t, err)
}
