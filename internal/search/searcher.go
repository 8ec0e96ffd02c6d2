package search

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/semaphore"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/poker"
)

// Options configure a Searcher.
type Options struct {
	// MaxConcurrent bounds the number of searches running at once.
	MaxConcurrent int
	// Workers is the parallelism inside one search. Zero uses GOMAXPROCS.
	Workers int
	// Timeout is the watchdog budget per search. Zero disables it.
	Timeout time.Duration
}

// DefaultOptions suit a small server.
var DefaultOptions = Options{
	MaxConcurrent: 4,
	Workers:       2,
	Timeout:       2 * time.Second,
}

// Searcher runs searches on a bounded pool so auto-arranging one seat
// cannot starve the goroutines serving other sessions.
type Searcher struct {
	opts   Options
	sem    *semaphore.Weighted
	clock  quartz.Clock
	logger *log.Logger
}

// NewSearcher creates a Searcher. A nil clock uses the real clock and a nil
// logger discards output.
func NewSearcher(opts Options, clock quartz.Clock, logger *log.Logger) *Searcher {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultOptions.MaxConcurrent
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Searcher{
		opts:   opts,
		sem:    semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		clock:  clock,
		logger: logger.WithPrefix("search"),
	}
}

// Report is a search result with timing.
type Report struct {
	Result
	Objective string
	Elapsed   time.Duration
}

// Search arranges hand with the named objective. When the watchdog fires
// first, the rank-sorted split is returned with Fallback set and no error.
// Cancelling ctx returns ctx's error.
func (s *Searcher) Search(ctx context.Context, hand []poker.Card, objective string) (Report, error) {
	obj, err := ObjectiveByName(objective)
	if err != nil {
		return Report{}, err
	}
	return s.run(ctx, hand, objective, obj)
}

func (s *Searcher) run(ctx context.Context, hand []poker.Card, objective string, obj Objective) (Report, error) {
	if _, err := fixedHand(hand); err != nil {
		return Report{}, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Report{}, err
	}
	defer s.sem.Release(1)

	start := s.clock.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	timedOut := make(chan struct{})
	if s.opts.Timeout > 0 {
		timer := s.clock.AfterFunc(s.opts.Timeout, func() {
			close(timedOut)
			cancel()
		})
		defer timer.Stop()
	}

	res, err := ArrangeParallel(runCtx, hand, obj, s.opts.Workers)
	report := Report{Objective: objective}

	switch {
	case err == nil:
		report.Result = res
	case isClosed(timedOut) && ctx.Err() == nil && errors.Is(err, context.Canceled):
		s.logger.Warn("Search timed out, using sorted split",
			"objective", objective,
			"timeout", s.opts.Timeout)
		report.Result = Result{Arrangement: arrange.SortedSplit(hand), Fallback: true}
	default:
		return Report{}, err
	}

	report.Elapsed = s.clock.Since(start)
	s.logger.Debug("Search complete",
		"objective", objective,
		"considered", report.Considered,
		"fallback", report.Fallback,
		"elapsed", report.Elapsed)
	return report, nil
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
