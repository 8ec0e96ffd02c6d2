// Package tui is the local play screen: the player sorts a dealt hand into
// lanes with a live preview while bots at the same table arrange theirs
// with the search.
package tui

import (
	"context"
	"fmt"
	"io"
	rand "math/rand/v2"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/internal/config"
	"github.com/lox/thirteenlanes/internal/engine"
	"github.com/lox/thirteenlanes/internal/render"
	"github.com/lox/thirteenlanes/internal/table"
	"github.com/lox/thirteenlanes/poker"
)

const unassigned = arrange.Lane(-1)

type phase int

const (
	phaseArranging phase = iota
	phaseWaiting
	phaseSettled
)

// settledMsg carries the bots' arrangements and the scored round.
type settledMsg struct {
	result table.RoundResult
	err    error
}

// suggestMsg carries a search result for the player's own hand.
type suggestMsg struct {
	arrangement arrange.Arrangement
	err         error
}

// Options configure the play screen.
type Options struct {
	Player string
	Bots   []config.BotConfig
	// Objective is used for the suggest key.
	Objective string
}

// Model is the bubbletea model for one local session.
type Model struct {
	ctx    context.Context
	engine *engine.Engine
	table  *table.Table
	rng    *rand.Rand
	opts   Options
	logger *log.Logger

	keys keyMap
	help help.Model

	phase    phase
	hand     []poker.Card
	lanes    []arrange.Lane
	cursor   int
	verdict  *arrange.Verdict
	result   *table.RoundResult
	history  []string
	status   string
	quitting bool
}

// New seats the player against the bots and deals the first round.
func New(ctx context.Context, eng *engine.Engine, opts Options, rng *rand.Rand, logger *log.Logger) (*Model, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Objective == "" {
		opts.Objective = "balanced"
	}
	seats := []table.Seat{{ID: opts.Player}}
	for _, bot := range opts.Bots {
		seats = append(seats, table.Seat{ID: bot.Name, Bot: true, Objective: bot.Objective})
	}
	t, err := table.New(uuid.NewString(), seats, eng, logger)
	if err != nil {
		return nil, err
	}

	m := &Model{
		ctx:    ctx,
		engine: eng,
		table:  t,
		rng:    rng,
		opts:   opts,
		logger: logger.WithPrefix("tui"),
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
	if err := m.deal(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) deal() error {
	if _, err := m.table.Deal(m.rng); err != nil {
		return err
	}
	hand, err := m.table.Hand(m.opts.Player)
	if err != nil {
		return err
	}
	poker.SortCards(hand)

	m.hand = hand
	m.lanes = make([]arrange.Lane, len(hand))
	for i := range m.lanes {
		m.lanes[i] = unassigned
	}
	m.cursor = 0
	m.verdict = nil
	m.result = nil
	m.phase = phaseArranging
	m.status = ""
	return nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case suggestMsg:
		if msg.err != nil {
			m.status = render.ErrorStyle.Render("suggest failed: " + msg.err.Error())
			return m, nil
		}
		if m.phase == phaseArranging {
			m.apply(msg.arrangement)
			m.status = render.InfoStyle.Render("suggested arrangement (" + m.opts.Objective + ")")
		}

	case settledMsg:
		m.phase = phaseSettled
		if msg.err != nil {
			m.table.Abandon()
			m.status = render.ErrorStyle.Render("round failed: " + msg.err.Error())
			return m, nil
		}
		res := msg.result
		m.result = &res
		for _, p := range res.Players {
			if p.ID == m.opts.Player {
				m.history = append(m.history, fmt.Sprintf("Round %d: %+d (total %d)", res.Number, p.Delta, p.Total))
			}
		}
		m.status = ""

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.phase {
	case phaseSettled:
		if key.Matches(msg, m.keys.Next) {
			if err := m.deal(); err != nil {
				m.status = render.ErrorStyle.Render(err.Error())
			}
		}
		return m, nil
	case phaseWaiting:
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		m.cursor = (m.cursor + len(m.hand) - 1) % len(m.hand)
	case key.Matches(msg, m.keys.Right):
		m.cursor = (m.cursor + 1) % len(m.hand)
	case key.Matches(msg, m.keys.Top):
		m.assign(arrange.Top)
	case key.Matches(msg, m.keys.Middle):
		m.assign(arrange.Middle)
	case key.Matches(msg, m.keys.Bottom):
		m.assign(arrange.Bottom)
	case key.Matches(msg, m.keys.Unassign):
		m.lanes[m.cursor] = unassigned
		m.status = ""
	case key.Matches(msg, m.keys.Clear):
		for i := range m.lanes {
			m.lanes[i] = unassigned
		}
		m.status = ""
	case key.Matches(msg, m.keys.Suggest):
		return m, m.suggestCmd()
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	}
	return m, nil
}

func (m *Model) assign(lane arrange.Lane) {
	if m.lanes[m.cursor] != lane && m.count(lane) >= laneSize(lane) {
		m.status = render.WarningStyle.Render(lane.String() + " lane is full")
		return
	}
	m.lanes[m.cursor] = lane
	m.status = ""
	for i := 1; i < len(m.hand); i++ {
		next := (m.cursor + i) % len(m.hand)
		if m.lanes[next] == unassigned {
			m.cursor = next
			break
		}
	}
}

func (m *Model) apply(a arrange.Arrangement) {
	index := make(map[poker.Card]int, len(m.hand))
	for i, c := range m.hand {
		index[c] = i
	}
	for i := range m.lanes {
		m.lanes[i] = unassigned
	}
	for _, lane := range arrange.Lanes {
		for _, c := range a.Lane(lane) {
			if i, ok := index[c]; ok {
				m.lanes[i] = lane
			}
		}
	}
}

func (m *Model) suggestCmd() tea.Cmd {
	ctx, eng, objective := m.ctx, m.engine, m.opts.Objective
	hand := append([]poker.Card(nil), m.hand...)
	return func() tea.Msg {
		report, err := eng.Search(ctx, hand, objective)
		return suggestMsg{arrangement: report.Arrangement, err: err}
	}
}

func (m *Model) submit() tea.Cmd {
	for _, lane := range arrange.Lanes {
		if m.count(lane) != laneSize(lane) {
			m.status = render.WarningStyle.Render("place every card before submitting")
			return nil
		}
	}
	v, err := m.table.Submit(m.opts.Player, m.arrangement())
	if err != nil {
		m.status = render.ErrorStyle.Render(err.Error())
		return nil
	}
	m.verdict = &v
	m.phase = phaseWaiting
	m.status = render.InfoStyle.Render("waiting for bots...")
	m.logger.Debug("Submitted arrangement", "fouled", v.Fouled)

	ctx, t := m.ctx, m.table
	return func() tea.Msg {
		if err := t.AutoArrange(ctx); err != nil {
			return settledMsg{err: err}
		}
		res, err := t.Settle()
		return settledMsg{result: res, err: err}
	}
}

func (m *Model) count(lane arrange.Lane) int {
	n := 0
	for _, l := range m.lanes {
		if l == lane {
			n++
		}
	}
	return n
}

func (m *Model) arrangement() arrange.Arrangement {
	var a arrange.Arrangement
	for i, c := range m.hand {
		switch m.lanes[i] {
		case arrange.Top:
			a.Top = append(a.Top, c)
		case arrange.Middle:
			a.Middle = append(a.Middle, c)
		case arrange.Bottom:
			a.Bottom = append(a.Bottom, c)
		}
	}
	return a
}

func laneSize(lane arrange.Lane) int {
	if lane == arrange.Top {
		return arrange.TopSize
	}
	return arrange.MiddleSize
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(render.HeaderStyle.Render("Thirteen Lanes"))
	b.WriteString("  ")
	b.WriteString(m.totalsLine())
	b.WriteString("\n\n")

	if m.phase == phaseSettled && m.result != nil {
		b.WriteString(render.RoundResult(*m.result))
		b.WriteString("\n")
	} else {
		b.WriteString(m.handView())
		b.WriteString("\n\n")
		b.WriteString(m.preview())
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if n := len(m.history); n > 0 {
		b.WriteString("\n" + render.InfoStyle.Render(m.history[n-1]) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m *Model) totalsLine() string {
	totals := m.table.Totals()
	var parts []string
	for _, s := range m.table.Seats() {
		parts = append(parts, fmt.Sprintf("%s %d", s.ID, totals[s.ID]))
	}
	return render.InfoStyle.Render(strings.Join(parts, " · "))
}

// handView shows the dealt hand with a lane marker under each card.
func (m *Model) handView() string {
	cards := make([]string, len(m.hand))
	marks := make([]string, len(m.hand))
	for i, c := range m.hand {
		card := render.Card(c)
		if i == m.cursor && m.phase == phaseArranging {
			card = render.SelectedStyle.Render(card)
		}
		cards[i] = lipgloss.NewStyle().Width(3).Render(card)
		mark := "·"
		if m.lanes[i] != unassigned {
			mark = strings.ToUpper(m.lanes[i].String()[:1])
		}
		marks[i] = lipgloss.NewStyle().Width(3).Render(mark)
	}
	return strings.Join(cards, "") + "\n" + render.InfoStyle.Render(strings.Join(marks, ""))
}

// preview evaluates each full lane and, once every card is placed, shows
// whether the arrangement would foul.
func (m *Model) preview() string {
	a := m.arrangement()
	var lines []string
	for _, lane := range arrange.Lanes {
		cards := a.Lane(lane)
		var eval *poker.Evaluation
		if len(cards) == laneSize(lane) {
			var e poker.Evaluation
			var err error
			if lane == arrange.Top {
				e, err = m.engine.Evaluate3(cards)
			} else {
				e, err = m.engine.Evaluate5(cards)
			}
			if err == nil {
				eval = &e
			}
		}
		counter := render.InfoStyle.Render(fmt.Sprintf("(%d/%d) ", len(cards), laneSize(lane)))
		lines = append(lines, counter+render.Lane(lane, cards, eval))
	}

	switch {
	case m.verdict != nil:
		lines = append(lines, render.Verdict(*m.verdict))
	case m.count(unassigned) == 0:
		lines = append(lines, render.Verdict(m.engine.Validate(m.hand, a)))
	}
	return strings.Join(lines, "\n")
}

// Run starts the program and blocks until the player quits.
func Run(m *Model, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
