package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/internal/render"
	"github.com/lox/thirteenlanes/internal/scoring"
	"github.com/lox/thirteenlanes/poker"
)

// EvaluateCmd classifies one lane.
type EvaluateCmd struct {
	Cards string `arg:"" help:"Three or five cards, e.g. \"As Ks Qs Js Ts\""`
}

func (c *EvaluateCmd) Run(g *Globals) error {
	cards, err := poker.ParseCards(c.Cards)
	if err != nil {
		return err
	}
	eng := g.engine()
	var eval poker.Evaluation
	if len(cards) == arrange.TopSize {
		eval, err = eng.Evaluate3(cards)
	} else {
		eval, err = eng.Evaluate5(cards)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", render.Cards(cards), poker.Describe(eval))
	fmt.Printf("category=%s score=%#x percentile=%.4f\n", eval.Category, eval.Score(), poker.Percentile(eval))
	return nil
}

// ArrangeCmd searches the best arrangement of a hand.
type ArrangeCmd struct {
	Hand      string `arg:"" help:"Thirteen cards"`
	Objective string `short:"o" default:"balanced" enum:"balanced,aggressive" help:"Search objective (balanced, aggressive)"`
	JSON      bool   `help:"Print the arrangement as JSON"`
}

func (c *ArrangeCmd) Run(g *Globals) error {
	hand, err := poker.ParseCards(c.Hand)
	if err != nil {
		return err
	}
	eng := g.engine()
	report, err := eng.Search(context.Background(), hand, c.Objective)
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report.Arrangement)
	}

	fmt.Println(render.Arrangement(report.Arrangement, eng.Validate(hand, report.Arrangement)))
	fmt.Println(render.InfoStyle.Render(fmt.Sprintf("objective=%s value=%.6g considered=%d elapsed=%s fallback=%t",
		report.Objective, report.Value, report.Considered, report.Elapsed, report.Fallback)))
	return nil
}

// ValidateCmd checks an arrangement.
type ValidateCmd struct {
	Hand   string `arg:"" help:"The thirteen dealt cards"`
	Top    string `required:"" help:"Three top lane cards"`
	Middle string `required:"" help:"Five middle lane cards"`
	Bottom string `required:"" help:"Five bottom lane cards"`
}

func (c *ValidateCmd) Run(g *Globals) error {
	hand, err := poker.ParseCards(c.Hand)
	if err != nil {
		return err
	}
	a, err := parseLanes(c.Top, c.Middle, c.Bottom)
	if err != nil {
		return err
	}
	fmt.Println(render.Arrangement(a, g.engine().Validate(hand, a)))
	return nil
}

// ScoreCmd scores arrangements given as name=top/middle/bottom.
type ScoreCmd struct {
	Players []string `arg:"" help:"Players as name=\"top/middle/bottom\", e.g. ada=\"Qh Jc 2h/Ac Ad Kh Kd 9d/7s 6s 5s 4s 3s\""`
}

func (c *ScoreCmd) Run(g *Globals) error {
	eng := g.engine()
	seats := make([]scoring.Seat, 0, len(c.Players))
	for _, p := range c.Players {
		name, lanes, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("player %q: expected name=top/middle/bottom", p)
		}
		parts := strings.Split(lanes, "/")
		if len(parts) != 3 {
			return fmt.Errorf("player %s: expected three lanes separated by /", name)
		}
		a, err := parseLanes(parts[0], parts[1], parts[2])
		if err != nil {
			return fmt.Errorf("player %s: %w", name, err)
		}
		// No dealt hand is given, so the arrangement is checked against its
		// own cards: lane sizes, duplicates and ordering.
		v := eng.Validate(a.Cards(), a)
		if v.Fouled {
			fmt.Printf("%s fouled: %s\n", name, v.Reason)
		}
		seats = append(seats, scoring.Seat{ID: name, Arrangement: a, Fouled: v.Fouled})
	}

	res, err := eng.Score(seats)
	if err != nil {
		return err
	}
	for _, m := range res.Matchups {
		fmt.Printf("%s vs %s: lanes %v sweep=%t foul=%t delta %+d\n", m.A, m.B, m.Lanes, m.Sweep, m.Foul, m.Delta)
	}
	for _, s := range seats {
		fmt.Printf("%-12s %s\n", s.ID, render.Delta(res.Deltas[s.ID]))
	}
	return nil
}

func parseLanes(top, middle, bottom string) (arrange.Arrangement, error) {
	var a arrange.Arrangement
	var err error
	if a.Top, err = poker.ParseCards(top); err != nil {
		return a, fmt.Errorf("top: %w", err)
	}
	if a.Middle, err = poker.ParseCards(middle); err != nil {
		return a, fmt.Errorf("middle: %w", err)
	}
	if a.Bottom, err = poker.ParseCards(bottom); err != nil {
		return a, fmt.Errorf("bottom: %w", err)
	}
	return a, nil
}
