package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newCLI(t *testing.T) *CLI {
	t.Helper()
	return &CLI{
		Config:  filepath.Join(t.TempDir(), "missing.hcl"),
		Method:  "auto",
		NoColor: true,
	}
}

func TestRunExactTurn(t *testing.T) {
	cli := newCLI(t)
	cli.Hero = "AsKh"
	cli.Board = "2c7d9hJc"
	cli.Pot = 100
	cli.ToCall = 50

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cli, &out, testLogger()))

	got := out.String()
	assert.Contains(t, got, "exact: 45540 outcomes")
	assert.Contains(t, got, "As Kh")
	assert.Contains(t, got, "Premium")
	assert.Contains(t, got, "2c 7d 9h Jc")
	assert.Contains(t, got, "hero holds High Card [A K J 9 7]")
	assert.Contains(t, got, "pot odds 33.3%")
	assert.Contains(t, got, "fold")
	assert.Contains(t, got, "call")
}

func TestRunSimulatedRange(t *testing.T) {
	cli := newCLI(t)
	cli.Hero = "AhKh"
	cli.Villain = []string{"QQ+,AKs"}
	cli.Opponents = 2
	cli.Trials = 5000
	cli.Seed = func() *int64 { s := int64(9); return &s }()
	cli.Method = "mc"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cli, &out, testLogger()))

	got := out.String()
	assert.Contains(t, got, "monte_carlo: 5000 trials")
	assert.Contains(t, got, "seed 9")
	assert.Contains(t, got, "vs 1: QQ+,AKs")
	assert.Contains(t, got, "vs 2: random")
	assert.NotContains(t, got, "pot odds")
	assert.NotContains(t, got, "hero holds")
}

func TestRunWritesReport(t *testing.T) {
	cli := newCLI(t)
	cli.Hero = "AsAh"
	cli.Board = "2c7d9hJcQd"
	cli.Villain = []string{"KsKh"}
	cli.Output = filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, run(context.Background(), cli, io.Discard, testLogger()))

	data, err := os.ReadFile(cli.Output)
	require.NoError(t, err)
	var rep report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, analysis.MethodExact, rep.Result.Method)
	assert.Equal(t, 1.0, rep.Result.Win)
	assert.Nil(t, rep.EV)
}

func TestRunPreset(t *testing.T) {
	cli := newCLI(t)
	cli.Preset = "turn-overcards"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cli, &out, testLogger()))
	assert.Contains(t, out.String(), "exact")
	assert.Contains(t, out.String(), "pot odds", "preset betting context is shown")
}

func TestRunListPresets(t *testing.T) {
	cli := newCLI(t)
	cli.ListPresets = true

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cli, &out, testLogger()))
	for _, p := range config.Default().Presets {
		assert.Contains(t, out.String(), p.Name)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CLI)
		target error
		msg    string
	}{
		{"missing hero", func(c *CLI) {}, nil, "hero cards are required"},
		{"unknown preset", func(c *CLI) { c.Preset = "nope" }, nil, "unknown preset"},
		{"duplicate card", func(c *CLI) { c.Hero = "AsKh"; c.Board = "As7d9h" }, analysis.ErrValidation, ""},
		{"forced exact preflop", func(c *CLI) { c.Hero = "AsKh"; c.Method = "exact" }, analysis.ErrInfeasible, ""},
		{"bad betting context", func(c *CLI) { c.Hero = "AsKh"; c.Board = "2c7d9hJcQd"; c.Pot = 10; c.FoldEquity = 3 }, analysis.ErrValidation, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := newCLI(t)
			tt.modify(cli)
			err := run(context.Background(), cli, io.Discard, testLogger())
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}
