// Package render draws cards, arrangements and round results for the
// terminal with lipgloss.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/internal/table"
	"github.com/lox/thirteenlanes/poker"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	LaneLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true).
			Width(8)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#3C3C3C")).
			Underline(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// Card renders one card as rank and suit symbol, coloured by suit.
func Card(c poker.Card) string {
	if !c.Valid() {
		return InfoStyle.Render("??")
	}
	text := c.Rank().String() + c.Suit().Symbol()
	if c.Suit().IsRed() {
		return RedCardStyle.Render(text)
	}
	return BlackCardStyle.Render(text)
}

// Cards renders cards separated by spaces.
func Cards(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = Card(c)
	}
	return strings.Join(parts, " ")
}

// Lane renders one labelled lane, with its description when known.
func Lane(lane arrange.Lane, cards []poker.Card, eval *poker.Evaluation) string {
	line := LaneLabelStyle.Render(lane.String()) + Cards(cards)
	if eval != nil {
		line += "  " + InfoStyle.Render(poker.Describe(*eval))
	}
	return line
}

// Arrangement renders the three lanes top to bottom followed by the verdict.
func Arrangement(a arrange.Arrangement, v arrange.Verdict) string {
	var b strings.Builder
	for _, lane := range arrange.Lanes {
		var eval *poker.Evaluation
		if v.Lanes != nil {
			e := v.Lanes.Lane(lane)
			eval = &e
		}
		b.WriteString(Lane(lane, a.Lane(lane), eval))
		b.WriteByte('\n')
	}
	b.WriteString(Verdict(v))
	return b.String()
}

// Verdict renders a foul warning or a legal marker.
func Verdict(v arrange.Verdict) string {
	if v.Fouled {
		return ErrorStyle.Render("FOUL: " + string(v.Reason))
	}
	return SuccessStyle.Render("legal")
}

// Delta renders a signed score change.
func Delta(d int) string {
	switch {
	case d > 0:
		return SuccessStyle.Render(fmt.Sprintf("+%d", d))
	case d < 0:
		return ErrorStyle.Render(fmt.Sprintf("%d", d))
	default:
		return InfoStyle.Render("0")
	}
}

// RoundResult renders every player's arrangement, delta and total.
func RoundResult(res table.RoundResult) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Round %d", res.Number)))
	b.WriteString("\n\n")
	for _, p := range res.Players {
		fmt.Fprintf(&b, "%s  %s (total %d)\n", SuccessStyle.Render(p.ID), Delta(p.Delta), p.Total)
		if p.Fouled {
			b.WriteString(ErrorStyle.Render("FOUL: "+string(p.Reason)) + "\n")
		}
		for _, lane := range arrange.Lanes {
			b.WriteString("  " + Lane(lane, p.Arrangement.Lane(lane), nil) + "\n")
		}
	}
	var sweeps []string
	for _, m := range res.Matchups {
		switch {
		case m.Sweep && m.Delta > 0:
			sweeps = append(sweeps, fmt.Sprintf("%s swept %s", m.A, m.B))
		case m.Sweep:
			sweeps = append(sweeps, fmt.Sprintf("%s swept %s", m.B, m.A))
		}
	}
	if len(sweeps) > 0 {
		b.WriteString("\n" + WarningStyle.Render(strings.Join(sweeps, ", ")) + "\n")
	}
	return BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
