package main

import (
	"github.com/lox/thirteenlanes/internal/randutil"
	"github.com/lox/thirteenlanes/internal/server"
)

// ServeCmd runs the websocket service.
type ServeCmd struct {
	Address string `help:"Listen address (overrides the config file)"`
	Port    int    `help:"Listen port (overrides the config file)"`
	Seed    *int64 `help:"Deterministic RNG seed for deals (optional)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	if c.Address != "" {
		g.cfg.Server.Address = c.Address
	}
	if c.Port != 0 {
		g.cfg.Server.Port = c.Port
	}
	if err := g.cfg.Validate(); err != nil {
		return err
	}

	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
		g.logger.Info("Using deterministic seed", "seed", seed)
	}

	bots := make([]string, len(g.cfg.Bots))
	for i, b := range g.cfg.Bots {
		bots[i] = b.Name + ":" + b.Objective
	}
	g.logger.Info("Starting thirteen lanes server",
		"address", g.cfg.ServerAddress(),
		"bots", bots,
		"search_timeout", g.cfg.Search.Timeout,
		"max_concurrent", g.cfg.Search.MaxConcurrent)

	ctx, stop := signalContext(g)
	defer stop()

	s := server.NewServer(g.cfg.ServerAddress(), g.engine(), g.cfg.Bots, seed, g.logger)
	s.AllowOrigins(g.cfg.Server.AllowedOrigins...)
	return s.Start(ctx)
}
