package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/thirteenlanes/internal/config"
	"github.com/lox/thirteenlanes/internal/engine"
)

// version is set by ldflags during build
var version = "dev"

// Globals are shared by every subcommand.
type Globals struct {
	Config   string `short:"c" default:"thirteen.hcl" type:"path" help:"HCL configuration file (skipped when missing)"`
	LogLevel string `help:"Override the configured log level (debug, info, warn, error)"`

	cfg    *config.Config
	logger *log.Logger
}

// load reads the file, environment overrides and global flags, in that order.
func (g *Globals) load() error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", g.Config, err)
	}
	g.cfg = cfg
	g.logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           cfg.LogLevel(),
		ReportTimestamp: true,
	})
	return nil
}

func (g *Globals) engine() *engine.Engine {
	return engine.New(g.cfg.EngineOptions(), nil, g.logger)
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Evaluate EvaluateCmd      `cmd:"" help:"Evaluate a 3 or 5 card lane"`
	Arrange  ArrangeCmd       `cmd:"" help:"Find the best arrangement of a 13 card hand"`
	Validate ValidateCmd      `cmd:"" help:"Check an arrangement against a dealt hand"`
	Score    ScoreCmd         `cmd:"" help:"Score a round between 2 to 4 arrangements"`
	Simulate SimulateCmd      `cmd:"" help:"Compare objectives over duplicate deals"`
	Serve    ServeCmd         `cmd:"" help:"Run the websocket server"`
	Play     PlayCmd          `cmd:"" help:"Play against bots in the terminal"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("thirteen"),
		kong.Description("Thirteen lanes: arrange, validate, score and play 13 card hands"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	ctx.FatalIfErrorf(cli.Globals.load())
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
