package main

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/thirteenlanes/internal/engine"
	"github.com/lox/thirteenlanes/internal/randutil"
	"github.com/lox/thirteenlanes/internal/tui"
)

// PlayCmd opens the local play screen.
type PlayCmd struct {
	Name      string `default:"you" help:"Your seat name"`
	Objective string `default:"balanced" enum:"balanced,aggressive" help:"Objective used by the suggest key"`
	Seed      *int64 `help:"Deterministic RNG seed for deals (optional)"`
	LogFile   string `type:"path" help:"Write logs to this file while the screen is open"`
}

func (c *PlayCmd) Run(g *Globals) error {
	// The screen owns the terminal, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	logger := log.NewWithOptions(out, log.Options{Level: g.cfg.LogLevel(), ReportTimestamp: true})

	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
	}
	logger.Info("Starting local game", "player", c.Name, "seed", seed)

	ctx, stop := signalContext(g)
	defer stop()

	eng := engine.New(g.cfg.EngineOptions(), nil, logger)
	m, err := tui.New(ctx, eng, tui.Options{
		Player:    c.Name,
		Bots:      g.cfg.Bots,
		Objective: c.Objective,
	}, randutil.New(seed), logger)
	if err != nil {
		return err
	}
	return tui.Run(m, tea.WithAltScreen(), tea.WithContext(ctx))
}
