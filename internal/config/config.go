// Package config loads the HCL configuration file and applies THIRTEEN_*
// environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/kelseyhightower/envconfig"

	"github.com/lox/thirteenlanes/internal/engine"
	"github.com/lox/thirteenlanes/internal/scoring"
	"github.com/lox/thirteenlanes/internal/search"
)

// EnvPrefix prefixes every environment override, e.g. THIRTEEN_SERVER_PORT.
const EnvPrefix = "thirteen"

// Config is the complete configuration.
type Config struct {
	Server  ServerSettings  `envconfig:"server"`
	Search  SearchSettings  `envconfig:"search"`
	Scoring ScoringSettings `envconfig:"scoring"`
	Bots    []BotConfig     `ignored:"true"`
}

// ServerSettings configure the websocket service and logging.
type ServerSettings struct {
	Address  string `hcl:"address,optional" envconfig:"address"`
	Port     int    `hcl:"port,optional" envconfig:"port"`
	LogLevel string `hcl:"log_level,optional" envconfig:"log_level"`
	// AllowedOrigins lists browser origins accepted on /ws besides the
	// server's own host. "*" accepts any origin.
	AllowedOrigins []string `hcl:"allowed_origins,optional" envconfig:"allowed_origins"`
}

// SearchSettings configure the auto-arrange pool.
type SearchSettings struct {
	MaxConcurrent int `hcl:"max_concurrent,optional" envconfig:"max_concurrent"`
	// Workers of 0 means one per CPU.
	Workers int `hcl:"workers,optional" envconfig:"workers"`
	// Timeout is a Go duration string. "0s" disables the watchdog.
	Timeout string `hcl:"timeout,optional" envconfig:"timeout"`
}

// ScoringSettings override the scoring constants. Nil keeps the default,
// so an explicit zero is honoured.
type ScoringSettings struct {
	FoulPenalty *int `hcl:"foul_penalty,optional" envconfig:"foul_penalty"`
	SweepBonus  *int `hcl:"sweep_bonus,optional" envconfig:"sweep_bonus"`
}

// BotConfig seats an automated player.
type BotConfig struct {
	Name      string `hcl:"name,label"`
	Objective string `hcl:"objective,optional"`
}

// fileConfig mirrors the file layout; every block is optional.
type fileConfig struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Search  *SearchSettings  `hcl:"search,block"`
	Scoring *ScoringSettings `hcl:"scoring,block"`
	Bots    []BotConfig      `hcl:"bot,block"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Search.MaxConcurrent == 0 {
		c.Search.MaxConcurrent = search.DefaultOptions.MaxConcurrent
	}
	if c.Search.Timeout == "" {
		c.Search.Timeout = search.DefaultOptions.Timeout.String()
	}
	if len(c.Bots) == 0 {
		c.Bots = []BotConfig{
			{Name: "north", Objective: "balanced"},
			{Name: "east", Objective: "aggressive"},
			{Name: "west", Objective: "balanced"},
		}
	}
	for i := range c.Bots {
		if c.Bots[i].Objective == "" {
			c.Bots[i].Objective = "balanced"
		}
	}
}

// Load reads filename (defaults are used when it does not exist), then
// applies environment overrides. Call Validate before use.
func Load(filename string) (*Config, error) {
	c := &Config{}
	if filename != "" {
		if err := c.loadFile(filename); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) loadFile(filename string) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if fc.Server != nil {
		c.Server = *fc.Server
	}
	if fc.Search != nil {
		c.Search = *fc.Search
	}
	if fc.Scoring != nil {
		c.Scoring = *fc.Scoring
	}
	c.Bots = fc.Bots
	return nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	if c.Search.MaxConcurrent < 1 {
		return fmt.Errorf("search: max_concurrent must be at least 1")
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search: workers must not be negative")
	}
	if d, err := time.ParseDuration(c.Search.Timeout); err != nil || d < 0 {
		return fmt.Errorf("search: invalid timeout %q", c.Search.Timeout)
	}
	rules := c.Rules()
	if rules.FoulPenalty < 0 || rules.SweepBonus < 0 {
		return fmt.Errorf("scoring: penalties must not be negative")
	}
	if len(c.Bots) < 1 || len(c.Bots) > scoring.MaxPlayers-1 {
		return fmt.Errorf("between 1 and %d bots must be configured", scoring.MaxPlayers-1)
	}
	seen := make(map[string]bool, len(c.Bots))
	for _, bot := range c.Bots {
		if seen[bot.Name] {
			return fmt.Errorf("bot %s: duplicate name", bot.Name)
		}
		seen[bot.Name] = true
		if _, err := search.ObjectiveByName(bot.Objective); err != nil {
			return fmt.Errorf("bot %s: %w", bot.Name, err)
		}
	}
	return nil
}

// ServerAddress returns host:port.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// LogLevel returns the parsed level, falling back to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Rules returns the scoring constants with overrides applied.
func (c *Config) Rules() scoring.Rules {
	rules := scoring.DefaultRules
	if c.Scoring.FoulPenalty != nil {
		rules.FoulPenalty = *c.Scoring.FoulPenalty
	}
	if c.Scoring.SweepBonus != nil {
		rules.SweepBonus = *c.Scoring.SweepBonus
	}
	return rules
}

// EngineOptions converts the configuration for engine.New. Validate first;
// an unparseable timeout falls back to the default.
func (c *Config) EngineOptions() engine.Options {
	timeout, err := time.ParseDuration(c.Search.Timeout)
	if err != nil {
		timeout = search.DefaultOptions.Timeout
	}
	return engine.Options{
		Rules: c.Rules(),
		Search: search.Options{
			MaxConcurrent: c.Search.MaxConcurrent,
			Workers:       c.Search.Workers,
			Timeout:       timeout,
		},
	}
}
