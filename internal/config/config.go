// Package config loads the HCL configuration shared by the equity server and
// the command line tool: engine tuning, server settings and a catalog of
// named preset scenarios.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/ev"
)

// Config represents the complete configuration file.
type Config struct {
	Engine  *EngineSettings `hcl:"engine,block"`
	Server  *ServerSettings `hcl:"server,block"`
	Presets []Preset        `hcl:"preset,block"`
}

// EngineSettings are the calculator defaults. Zero values keep the built-in
// defaults.
type EngineSettings struct {
	MaxTrials          int64   `hcl:"max_trials,optional"`
	TargetRadius       float64 `hcl:"target_radius,optional"`
	Confidence         float64 `hcl:"confidence,optional"`
	BatchSize          int64   `hcl:"batch_size,optional"`
	MinTrials          int64   `hcl:"min_trials,optional"`
	EnumerationCeiling int64   `hcl:"enumeration_ceiling,optional"`
	TimeBudget         string  `hcl:"time_budget,optional"`
	Method             string  `hcl:"method,optional"`
	Seed               *int64  `hcl:"seed,optional"`
	Workers            int     `hcl:"workers,optional"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address        string `hcl:"address,optional"`
	Port           int    `hcl:"port,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	RequestTimeout string `hcl:"request_timeout,optional"`
	MaxMessageSize int64  `hcl:"max_message_size,optional"`
}

// Preset is a named scenario with an optional betting context.
type Preset struct {
	Name        string   `hcl:"name,label" json:"name"`
	Description string   `hcl:"description,optional" json:"description,omitempty"`
	Hero        string   `hcl:"hero" json:"hero"`
	Board       string   `hcl:"board,optional" json:"board,omitempty"`
	Villains    []string `hcl:"villains,optional" json:"villains,omitempty"`
	Opponents   int      `hcl:"opponents,optional" json:"opponents,omitempty"`

	Pot        float64 `hcl:"pot,optional" json:"pot,omitempty"`
	ToCall     float64 `hcl:"to_call,optional" json:"to_call,omitempty"`
	Stack      float64 `hcl:"stack,optional" json:"stack,omitempty"`
	RaiseSize  float64 `hcl:"raise_size,optional" json:"raise_size,omitempty"`
	FoldEquity float64 `hcl:"fold_equity,optional" json:"fold_equity,omitempty"`
	Implied    float64 `hcl:"implied_odds,optional" json:"implied_odds,omitempty"`
}

const (
	defaultAddress        = "localhost"
	defaultPort           = 8080
	defaultLogLevel       = "info"
	defaultRequestTimeout = "30s"
	defaultMaxMessageSize = 8192
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{
		Presets: []Preset{
			{
				Name:        "aces-preflop",
				Description: "Pocket aces against one random hand before the flop",
				Hero:        "AsAh",
			},
			{
				Name:        "turn-overcards",
				Description: "Ace-king on a dry turn against one random hand",
				Hero:        "AsKh",
				Board:       "2c7d9hJc",
				Pot:         100,
				ToCall:      50,
			},
			{
				Name:        "flush-draw",
				Description: "Nut flush draw facing a strong range on the flop",
				Hero:        "AhKh",
				Board:       "Qh7h2c",
				Villains:    []string{"JJ+,AQs+,AQo+"},
				Pot:         60,
				ToCall:      20,
				Stack:       200,
				RaiseSize:   60,
				FoldEquity:  0.25,
			},
		},
	}
	c.applyDefaults()
	return c
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Engine == nil {
		c.Engine = &EngineSettings{}
	}
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Server.RequestTimeout == "" {
		c.Server.RequestTimeout = defaultRequestTimeout
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = defaultMaxMessageSize
	}
}

// Validate checks the server settings, the engine tuning and every preset.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	if c.Server.MaxMessageSize < 0 {
		return fmt.Errorf("max message size must not be negative: %d", c.Server.MaxMessageSize)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine: workers must not be negative: %d", c.Engine.Workers)
	}

	tuning, err := c.Tuning()
	if err != nil {
		return err
	}
	if err := tuning.Merge(analysis.DefaultTuning()).Validate(tuning.TargetRadius > 0); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	seen := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		if seen[p.Name] {
			return fmt.Errorf("preset %s: defined more than once", p.Name)
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Tuning converts the engine block into calculator defaults.
func (c *Config) Tuning() (analysis.Tuning, error) {
	e := c.Engine
	method, err := analysis.ParseMethod(e.Method)
	if err != nil {
		return analysis.Tuning{}, fmt.Errorf("engine: %w", err)
	}
	var budget time.Duration
	if e.TimeBudget != "" {
		budget, err = time.ParseDuration(e.TimeBudget)
		if err != nil {
			return analysis.Tuning{}, fmt.Errorf("engine: invalid time_budget %q: %w", e.TimeBudget, err)
		}
	}
	if e.EnumerationCeiling < 0 {
		return analysis.Tuning{}, fmt.Errorf("engine: enumeration_ceiling must not be negative: %d", e.EnumerationCeiling)
	}
	return analysis.Tuning{
		MaxTrials:          e.MaxTrials,
		TargetRadius:       e.TargetRadius,
		Confidence:         e.Confidence,
		BatchSize:          e.BatchSize,
		MinTrials:          e.MinTrials,
		Seed:               e.Seed,
		TimeBudget:         budget,
		EnumerationCeiling: uint64(e.EnumerationCeiling),
		Method:             method,
	}, nil
}

// RequestTimeout parses the server request timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid request_timeout %q: %w", c.Server.RequestTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("request_timeout must be positive, got %s", d)
	}
	return d, nil
}

// Address returns the full server listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Preset returns a preset by name.
func (c *Config) Preset(name string) (Preset, bool) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// ScenarioText returns the preset's scenario in textual form.
func (p Preset) ScenarioText() analysis.ScenarioText {
	return analysis.ScenarioText{
		Hero:      p.Hero,
		Board:     p.Board,
		Villains:  p.Villains,
		Opponents: p.Opponents,
	}
}

// BettingContext returns the preset's betting situation, or nil when it
// defines none.
func (p Preset) BettingContext() *ev.Context {
	if p.Pot == 0 && p.ToCall == 0 {
		return nil
	}
	return &ev.Context{
		Pot:         p.Pot,
		ToCall:      p.ToCall,
		Stack:       p.Stack,
		RaiseSize:   p.RaiseSize,
		FoldEquity:  p.FoldEquity,
		ImpliedOdds: p.Implied,
	}
}

// Validate parses the preset's cards and ranges and checks its betting
// context.
func (p Preset) Validate() error {
	s, err := p.ScenarioText().Scenario(analysis.Tuning{})
	if err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	if err := analysis.Validate(s); err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	if bc := p.BettingContext(); bc != nil {
		if err := bc.Validate(); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
	}
	return nil
}
