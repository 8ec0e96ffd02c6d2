// Package engine is the single entry point the session layer uses for the
// core operations: lane evaluation, arrangement validation, round scoring
// and arrangement search. The server, the local play screen and the
// simulator all go through it so the rules cannot drift between them.
package engine

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/internal/scoring"
	"github.com/lox/thirteenlanes/internal/search"
	"github.com/lox/thirteenlanes/poker"
)

// Options configure an Engine.
type Options struct {
	Rules  scoring.Rules
	Search search.Options
}

// DefaultOptions uses the standard scoring constants.
var DefaultOptions = Options{
	Rules:  scoring.DefaultRules,
	Search: search.DefaultOptions,
}

// Engine holds the scoring rules and the search pool. It is safe for
// concurrent use.
type Engine struct {
	rules    scoring.Rules
	searcher *search.Searcher
	logger   *log.Logger
}

// New creates an engine. A nil clock uses the real clock.
func New(opts Options, clock quartz.Clock, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		rules:    opts.Rules,
		searcher: search.NewSearcher(opts.Search, clock, logger),
		logger:   logger.WithPrefix("engine"),
	}
}

// Rules returns the scoring constants in use.
func (e *Engine) Rules() scoring.Rules {
	return e.rules
}

// Evaluate3 classifies a top lane.
func (e *Engine) Evaluate3(cards []poker.Card) (poker.Evaluation, error) {
	return poker.Evaluate3(cards)
}

// Evaluate5 classifies a middle or bottom lane.
func (e *Engine) Evaluate5(cards []poker.Card) (poker.Evaluation, error) {
	return poker.Evaluate5(cards)
}

// Validate checks a submitted arrangement against the dealt hand.
func (e *Engine) Validate(hand []poker.Card, a arrange.Arrangement) arrange.Verdict {
	v := arrange.Validate(hand, a)
	if v.Fouled {
		e.logger.Debug("Arrangement fouled", "reason", v.Reason, "arrangement", a)
	}
	return v
}

// Score settles one round.
func (e *Engine) Score(seats []scoring.Seat) (scoring.Result, error) {
	return e.rules.Score(seats)
}

// Search arranges a hand with the named objective on the bounded pool.
func (e *Engine) Search(ctx context.Context, hand []poker.Card, objective string) (search.Report, error) {
	return e.searcher.Search(ctx, hand, objective)
}

// AutoArrange searches and then validates the result like any other
// submission, so a timed-out fallback split is still checked for fouls.
func (e *Engine) AutoArrange(ctx context.Context, hand []poker.Card, objective string) (arrange.Arrangement, arrange.Verdict, error) {
	report, err := e.Search(ctx, hand, objective)
	if err != nil {
		return arrange.Arrangement{}, arrange.Verdict{}, err
	}
	v := e.Validate(hand, report.Arrangement)
	if report.Fallback {
		e.logger.Warn("Auto-arrange used fallback split", "objective", objective, "fouled", v.Fouled)
	}
	return report.Arrangement, v, nil
}
