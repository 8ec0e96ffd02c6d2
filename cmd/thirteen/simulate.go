package main

import (
	"os"
	"time"

	"github.com/lox/thirteenlanes/internal/randutil"
	"github.com/lox/thirteenlanes/internal/simulator"
)

// SimulateCmd pits objectives against each other on duplicate deals.
type SimulateCmd struct {
	Deals      int           `default:"200" help:"Number of deals; each is replayed once per seat rotation"`
	Objectives []string      `default:"balanced,aggressive" help:"Objective for each seat (2 to 4)"`
	Seed       *int64        `help:"Deterministic RNG seed (optional)"`
	Parallel   int           `default:"4" help:"Deals played concurrently"`
	Timeout    time.Duration `default:"30s" help:"Time limit per round"`
	Output     string        `short:"o" type:"path" help:"Also write a JSON summary to this file"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
	}
	ctx, stop := signalContext(g)
	defer stop()

	cfg := simulator.Config{
		Deals:       c.Deals,
		Contestants: simulator.Contestants(c.Objectives),
		Seed:        seed,
		Timeout:     c.Timeout,
		Parallel:    c.Parallel,
		Logger:      g.logger,
	}
	g.logger.Info("Running simulation",
		"deals", c.Deals,
		"objectives", c.Objectives,
		"seed", seed,
		"parallel", c.Parallel)

	start := time.Now()
	report, err := simulator.New(cfg, g.engine()).Run(ctx)
	if err != nil {
		return err
	}
	g.logger.Info("Simulation complete", "rounds", report.Rounds, "elapsed", time.Since(start).Round(time.Millisecond))
	simulator.PrintSummary(os.Stdout, report)

	if c.Output != "" {
		if err := report.Summarize(seed).Save(c.Output); err != nil {
			return err
		}
		g.logger.Info("Wrote summary", "file", c.Output)
	}
	return nil
}
