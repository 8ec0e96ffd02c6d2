// Package simulator plays bot-only tables to compare search objectives.
// Every deal is replayed once per seat rotation so each contestant plays
// every hand, which cancels out most of the card luck.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/thirteenlanes/internal/engine"
	"github.com/lox/thirteenlanes/internal/randutil"
	"github.com/lox/thirteenlanes/internal/scoring"
	"github.com/lox/thirteenlanes/internal/statistics"
	"github.com/lox/thirteenlanes/internal/table"
)

// ErrContestants is returned for fewer than 2 or more than 4 contestants.
var ErrContestants = errors.New("simulation needs 2 to 4 contestants")

// Contestant is a bot in the simulation.
type Contestant struct {
	Name      string
	Objective string
}

// Config holds configuration for running simulations
type Config struct {
	Deals       int
	Contestants []Contestant
	Seed        int64
	// Timeout bounds a single round, searches included.
	Timeout time.Duration
	// Parallel is how many deals run at once. Zero means one.
	Parallel int
	Logger   *log.Logger
}

// Report is the outcome of a simulation.
type Report struct {
	Deals   int
	Rounds  int
	Results map[string]*statistics.Statistics
}

// Simulator runs duplicate-deal simulations.
type Simulator struct {
	config Config
	engine *engine.Engine
}

// New creates a simulator.
func New(config Config, eng *engine.Engine) *Simulator {
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Parallel <= 0 {
		config.Parallel = 1
	}
	return &Simulator{config: config, engine: eng}
}

// Run plays every deal under every seat rotation.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	n := len(s.config.Contestants)
	if n < scoring.MinPlayers || n > scoring.MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrContestants, n)
	}

	perDeal := make([][]table.RoundResult, s.config.Deals)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for deal := 0; deal < s.config.Deals; deal++ {
		g.Go(func() error {
			results, err := s.playDeal(gctx, deal)
			if err != nil {
				return fmt.Errorf("deal %d: %w", deal+1, err)
			}
			perDeal[deal] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Deals: s.config.Deals, Results: make(map[string]*statistics.Statistics, n)}
	for _, c := range s.config.Contestants {
		report.Results[c.Name] = &statistics.Statistics{}
	}
	for deal, rounds := range perDeal {
		for _, res := range rounds {
			report.Rounds++
			for seat, p := range res.Players {
				report.Results[p.ID].Add(roundResult(res, seat, s.config.Seed+int64(deal)))
			}
		}
	}

	for name, stats := range report.Results {
		if stats.Rounds == 0 {
			continue
		}
		if err := stats.Validate(); err != nil {
			return nil, fmt.Errorf("statistics validation failed for %s: %w", name, err)
		}
	}
	return report, nil
}

// playDeal plays one deal once per rotation. Every rotation reuses the
// deal's seed, so the hand dealt to each seat is the same while the
// contestant in that seat changes.
func (s *Simulator) playDeal(ctx context.Context, deal int) ([]table.RoundResult, error) {
	n := len(s.config.Contestants)
	results := make([]table.RoundResult, 0, n)
	for rotation := 0; rotation < n; rotation++ {
		seats := make([]table.Seat, n)
		for i := range seats {
			c := s.config.Contestants[(i+rotation)%n]
			seats[i] = table.Seat{ID: c.Name, Bot: true, Objective: c.Objective}
		}
		t, err := table.New(fmt.Sprintf("sim-%d-%d", deal, rotation), seats, s.engine, s.config.Logger)
		if err != nil {
			return nil, err
		}

		res, err := s.playWithTimeout(ctx, t, deal)
		if err != nil {
			return nil, fmt.Errorf("rotation %d: %w", rotation, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Simulator) playWithTimeout(ctx context.Context, t *table.Table, deal int) (table.RoundResult, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	res, err := t.Play(ctx, randutil.ForDeal(s.config.Seed, deal))
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return res, fmt.Errorf("round timed out after %v (seed: %d, deal: %d)", s.config.Timeout, s.config.Seed, deal)
	}
	return res, err
}

// roundResult pulls one seat's line out of a settled round.
func roundResult(res table.RoundResult, seat int, seed int64) statistics.RoundResult {
	p := res.Players[seat]
	out := statistics.RoundResult{Delta: p.Delta, Seed: seed, Seat: seat, Fouled: p.Fouled}
	for _, m := range res.Matchups {
		var sign int
		switch p.ID {
		case m.A:
			sign = 1
		case m.B:
			sign = -1
		default:
			continue
		}
		for _, lane := range m.Lanes {
			switch lane * sign {
			case 1:
				out.LanesWon++
			case -1:
				out.LanesLost++
			}
		}
		if m.Sweep {
			if m.Delta*sign > 0 {
				out.SweepsWon++
			} else {
				out.SweepsLost++
			}
		}
	}
	return out
}

// Ranking returns contestant names ordered by mean delta, best first.
func (r *Report) Ranking() []string {
	names := make([]string, 0, len(r.Results))
	for name := range r.Results {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		ma, mb := r.Results[a].Mean(), r.Results[b].Mean()
		switch {
		case ma > mb:
			return -1
		case ma < mb:
			return 1
		}
		return strings.Compare(a, b)
	})
	return names
}

// Contestants builds a line-up from objective names, labelling repeats so
// every name is unique.
func Contestants(objectives []string) []Contestant {
	seen := make(map[string]int, len(objectives))
	out := make([]Contestant, len(objectives))
	for i, obj := range objectives {
		seen[obj]++
		name := obj
		if seen[obj] > 1 {
			name = fmt.Sprintf("%s-%d", obj, seen[obj])
		}
		out[i] = Contestant{Name: name, Objective: obj}
	}
	return out
}

// PrintSummary writes a per-contestant summary, best mean first.
func PrintSummary(w io.Writer, report *Report) {
	fmt.Fprintf(w, "\n=== FINAL RESULTS ===\n")
	fmt.Fprintf(w, "Deals: %d, rounds played: %d\n", report.Deals, report.Rounds)

	for _, name := range report.Ranking() {
		stats := report.Results[name]
		low, high := stats.ConfidenceInterval95()
		fmt.Fprintf(w, "\n--- %s ---\n", name)
		fmt.Fprintf(w, "Mean: %.4f points/round (median %.1f)\n", stats.Mean(), stats.Median())
		fmt.Fprintf(w, "Std Dev: %.4f, Std Error: %.4f\n", stats.StdDev(), stats.StdError())
		fmt.Fprintf(w, "95%% CI: [%.4f, %.4f]\n", low, high)
		fmt.Fprintf(w, "Rounds: %d won, %d lost, %d pushed (best %+d, worst %+d)\n",
			stats.Wins, stats.Losses, stats.Pushes, stats.Best, stats.Worst)
		fmt.Fprintf(w, "Lanes: %d won, %d lost\n", stats.LanesWon, stats.LanesLost)
		fmt.Fprintf(w, "Sweeps: %d won, %d lost\n", stats.SweepsWon, stats.SweepsLost)
		fmt.Fprintf(w, "Fouls: %d (%.1f%%)\n", stats.Fouls, stats.FoulRate()*100)
		for seat := range statistics.MaxSeats {
			if ss := stats.SeatResults[seat]; ss.Rounds > 0 {
				fmt.Fprintf(w, "Seat %d: %d rounds, %.3f points/round\n", seat+1, ss.Rounds, stats.SeatMean(seat))
			}
		}
	}
}
