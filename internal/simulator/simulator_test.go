package simulator

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/thirteenlanes/internal/engine"
	"github.com/lox/thirteenlanes/internal/scoring"
	"github.com/lox/thirteenlanes/internal/table"
)

func newSimulator(cfg Config) *Simulator {
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
	cfg.Logger = logger
	opts := engine.DefaultOptions
	opts.Search.Timeout = 0
	return New(cfg, engine.New(opts, nil, logger))
}

func TestContestants(t *testing.T) {
	t.Parallel()
	got := Contestants([]string{"balanced", "aggressive", "balanced"})
	assert.Equal(t, []Contestant{
		{Name: "balanced", Objective: "balanced"},
		{Name: "aggressive", Objective: "aggressive"},
		{Name: "balanced-2", Objective: "balanced"},
	}, got)
}

func TestRun_MirroredObjectivesCancelOut(t *testing.T) {
	t.Parallel()
	sim := newSimulator(Config{
		Deals:       3,
		Contestants: Contestants([]string{"balanced", "balanced"}),
		Seed:        7,
		Timeout:     30 * time.Second,
		Parallel:    2,
	})

	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Deals)
	assert.Equal(t, 6, report.Rounds)

	// Both seats play every hand with the same objective, so whatever one
	// wins with a hand it gives back in the mirrored rotation.
	for name, stats := range report.Results {
		assert.Equal(t, 6, stats.Rounds, name)
		assert.Zero(t, stats.Sum, name)
		assert.Zero(t, stats.Fouls, name)
		assert.Equal(t, 3, stats.SeatResults[0].Rounds, name)
		assert.Equal(t, 3, stats.SeatResults[1].Rounds, name)
	}
	assert.Equal(t, report.Results["balanced"].LanesWon, report.Results["balanced-2"].LanesLost)
	assert.Equal(t, report.Results["balanced"].SweepsWon, report.Results["balanced-2"].SweepsLost)
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()
	cfg := Config{
		Deals:       2,
		Contestants: Contestants([]string{"balanced", "aggressive", "balanced"}),
		Seed:        99,
		Timeout:     30 * time.Second,
	}
	a, err := newSimulator(cfg).Run(context.Background())
	require.NoError(t, err)
	cfg.Parallel = 2
	b, err := newSimulator(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, a.Rounds)
	total := 0.0
	for name, stats := range a.Results {
		assert.Equal(t, stats.Values, b.Results[name].Values, name)
		total += stats.Sum
	}
	assert.Zero(t, total)
	assert.Len(t, a.Ranking(), 3)
}

func TestRun_ContestantCount(t *testing.T) {
	t.Parallel()
	_, err := newSimulator(Config{Deals: 1, Contestants: Contestants([]string{"balanced"})}).Run(context.Background())
	assert.ErrorIs(t, err, ErrContestants)

	five := Contestants([]string{"balanced", "balanced", "balanced", "balanced", "balanced"})
	_, err = newSimulator(Config{Deals: 1, Contestants: five}).Run(context.Background())
	assert.ErrorIs(t, err, ErrContestants)
}

func TestRun_UnknownObjective(t *testing.T) {
	t.Parallel()
	_, err := newSimulator(Config{
		Deals:       1,
		Contestants: Contestants([]string{"balanced", "yolo"}),
	}).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newSimulator(Config{
		Deals:       2,
		Contestants: Contestants([]string{"balanced", "aggressive"}),
	}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRoundResult(t *testing.T) {
	t.Parallel()
	res := table.RoundResult{
		Players: []table.PlayerResult{{ID: "a", Delta: 5}, {ID: "b", Delta: -2}, {ID: "c", Delta: -3}},
		Matchups: []scoring.Matchup{
			{A: "a", B: "b", Lanes: [3]int{1, 1, -1}, Delta: 1},
			{A: "a", B: "c", Lanes: [3]int{1, 1, 1}, Sweep: true, Delta: 6},
			{A: "b", B: "c", Lanes: [3]int{-1, 0, -1}, Delta: -2},
		},
	}

	a := roundResult(res, 0, 11)
	assert.Equal(t, 5, a.LanesWon)
	assert.Equal(t, 1, a.LanesLost)
	assert.Equal(t, 1, a.SweepsWon)
	assert.Equal(t, int64(11), a.Seed)

	c := roundResult(res, 2, 11)
	assert.Equal(t, 2, c.LanesWon)
	assert.Equal(t, 3, c.LanesLost)
	assert.Equal(t, 1, c.SweepsLost)
	assert.Equal(t, 2, c.Seat)
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()
	report, err := newSimulator(Config{
		Deals:       1,
		Contestants: Contestants([]string{"aggressive", "balanced"}),
		Seed:        3,
	}).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, report)
	out := buf.String()
	assert.Contains(t, out, "Deals: 1, rounds played: 2")
	assert.Contains(t, out, "--- aggressive ---")
	assert.Contains(t, out, "--- balanced ---")
	assert.Contains(t, out, "95% CI")
}
