package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/ev"
	"github.com/lox/pokerequity/internal/config"
	"github.com/lox/pokerequity/internal/fileutil"
	"github.com/lox/pokerequity/poker"
)

type CLI struct {
	Hero      string   `arg:"" optional:"" help:"Hero hole cards, e.g. 'AsKh'"`
	Board     string   `short:"b" help:"Community cards (0, 3, 4 or 5), e.g. 'Td7s8h'"`
	Villain   []string `short:"v" sep:"none" help:"Opponent hole cards or range, repeatable (e.g. 'QsQh', 'TT+,AQs+@50%', 'random')"`
	Opponents int      `short:"o" help:"Total number of opponents; seats beyond --villain hold random hands"`

	Pot        float64 `help:"Pot size before the decision"`
	ToCall     float64 `help:"Amount the hero must call"`
	Stack      float64 `help:"Hero's remaining stack (enables the all-in option)"`
	Raise      float64 `help:"Raise size to evaluate"`
	FoldEquity float64 `help:"Probability the opponent folds to a raise"`
	Implied    float64 `help:"Implied odds multiplier applied to future winnings"`

	Trials     int64         `short:"t" help:"Maximum Monte Carlo trials"`
	Target     float64       `help:"Stop simulating once the confidence radius reaches this value (negative runs every trial)"`
	TimeBudget time.Duration `help:"Stop simulating after this long"`
	Seed       *int64        `help:"Random seed for reproducible results"`
	Method     string        `short:"m" enum:"auto,exact,mc,batch" default:"auto" help:"Computation method (auto, exact, mc, batch)"`
	Workers    int           `short:"w" help:"Goroutines for the batch simulator (default from config or CPU count)"`

	Preset      string `short:"p" help:"Use a named preset scenario from the config"`
	ListPresets bool   `help:"List presets and exit"`
	Config      string `short:"c" default:"pokerequity.hcl" help:"Path to HCL configuration file"`
	Output      string `short:"O" type:"path" help:"Also write the result as JSON to this file"`
	NoColor     bool   `help:"Disable colored output"`
	Verbose     bool   `help:"Log method selection and fallbacks"`
}

type styles struct {
	header, hand, win, tie, lose, dim lipgloss.Style
}

func newStyles(out io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(out)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		hand:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		win:    r.NewStyle().Foreground(lipgloss.Color("10")),
		tie:    r.NewStyle().Foreground(lipgloss.Color("11")),
		lose:   r.NewStyle().Foreground(lipgloss.Color("9")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("poker-odds"),
		kong.Description("Texas Hold'em equity and EV calculator"))

	logger := log.New(os.Stderr)
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, &cli, os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		kctx.Exit(1)
	}
}

func run(ctx context.Context, cli *CLI, out io.Writer, logger *log.Logger) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	st := newStyles(out, cli.NoColor || termenv.EnvNoColor())

	if cli.ListPresets {
		return listPresets(out, cfg.Presets, st)
	}

	text, betting, err := resolveScenario(cli, cfg)
	if err != nil {
		return err
	}

	defaults, err := cfg.Tuning()
	if err != nil {
		return err
	}
	method, err := analysis.ParseMethod(cli.Method)
	if err != nil {
		return err
	}
	scenario, err := text.Scenario(analysis.Tuning{
		MaxTrials:    cli.Trials,
		TargetRadius: cli.Target,
		TimeBudget:   cli.TimeBudget,
		Seed:         cli.Seed,
		Method:       method,
	})
	if err != nil {
		return err
	}

	opts := []analysis.Option{analysis.WithLogger(logger), analysis.WithDefaults(defaults)}
	switch {
	case cli.Workers > 0:
		opts = append(opts, analysis.WithWorkers(cli.Workers))
	case cfg.Engine.Workers > 0:
		opts = append(opts, analysis.WithWorkers(cfg.Engine.Workers))
	}
	res, err := analysis.NewCalculator(opts...).Compute(ctx, scenario)
	if err != nil {
		return err
	}

	var evResult *ev.Result
	if betting != nil {
		r, err := ev.Analyze(res, *betting)
		if err != nil {
			return err
		}
		evResult = &r
	}

	displayResult(out, st, scenario, res, evResult)
	if cli.Output != "" {
		rep := report{Scenario: scenario.String(), Result: res, EV: evResult}
		if err := fileutil.WriteJSON(cli.Output, rep); err != nil {
			return err
		}
		logger.Debug("Wrote report", "path", cli.Output)
	}
	return nil
}

// report is the JSON written by --output.
type report struct {
	Scenario string                `json:"scenario"`
	Result   analysis.EquityResult `json:"result"`
	EV       *ev.Result            `json:"ev,omitempty"`
}

// resolveScenario merges a preset with the command line. Flags win over
// preset values.
func resolveScenario(cli *CLI, cfg *config.Config) (analysis.ScenarioText, *ev.Context, error) {
	var text analysis.ScenarioText
	var betting *ev.Context
	if cli.Preset != "" {
		p, ok := cfg.Preset(cli.Preset)
		if !ok {
			return text, nil, fmt.Errorf("unknown preset %q", cli.Preset)
		}
		text = p.ScenarioText()
		betting = p.BettingContext()
	}

	if cli.Hero != "" {
		text.Hero = cli.Hero
	}
	if cli.Board != "" {
		text.Board = cli.Board
	}
	if len(cli.Villain) > 0 {
		text.Villains = cli.Villain
	}
	if cli.Opponents > 0 {
		text.Opponents = cli.Opponents
	}
	if text.Hero == "" {
		return text, nil, errors.New("hero cards are required (or use --preset)")
	}

	if cli.Pot > 0 || cli.ToCall > 0 {
		betting = &ev.Context{
			Pot:         cli.Pot,
			ToCall:      cli.ToCall,
			Stack:       cli.Stack,
			RaiseSize:   cli.Raise,
			FoldEquity:  cli.FoldEquity,
			ImpliedOdds: cli.Implied,
		}
	}
	return text, betting, nil
}

func listPresets(out io.Writer, presets []config.Preset, st styles) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		st.header.Render("preset"), st.header.Render("hero"), st.header.Render("board"), st.header.Render("description"))
	for _, p := range presets {
		board := p.Board
		if board == "" {
			board = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.hand.Render(p.Name), p.Hero, board, st.dim.Render(p.Description))
	}
	return w.Flush()
}

func displayResult(out io.Writer, st styles, s analysis.Scenario, res analysis.EquityResult, r *ev.Result) {
	if len(s.Board) > 0 {
		fmt.Fprintf(out, "%s\n%s\n", st.header.Render("board"), poker.FormatCards(s.Board, " "))
		if made, err := poker.EvaluateHand(poker.NewHand(s.Hero...) | poker.NewHand(s.Board...)); err == nil {
			fmt.Fprintf(out, "%s %s\n", st.dim.Render("hero holds"), made.Describe())
		}
		fmt.Fprintln(out)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		st.header.Render("hand"), st.header.Render("class"), st.header.Render("win"),
		st.header.Render("tie"), st.header.Render("lose"), st.header.Render("equity"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		st.hand.Render(poker.FormatCards(s.Hero, " ")),
		st.dim.Render(string(poker.CategorizeHoleCards(s.Hero[0], s.Hero[1]))),
		st.win.Render(pct(res.Win)), st.tie.Render(pct(res.Tie)),
		st.lose.Render(pct(res.Lose)), pct(res.Equity()))
	for i, opp := range s.Opponents {
		fmt.Fprintf(w, "%s\t\t\t\t\t\n", st.dim.Render(fmt.Sprintf("vs %d: %s", i+1, opp)))
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	if res.Exact() {
		fmt.Fprintf(out, "%s: %d outcomes in %v\n", res.Method, res.Samples, res.Elapsed.Truncate(time.Millisecond))
	} else {
		fmt.Fprintf(out, "%s: %d trials in %v, win ±%.2f%% (CI %s to %s), seed %d\n",
			res.Method, res.Samples, res.Elapsed.Truncate(time.Millisecond),
			res.ConfidenceRadius*100, pct(res.CILow), pct(res.CIHigh), res.Seed)
	}

	if r == nil {
		return
	}
	fmt.Fprintf(out, "\n%s %s  %s %s  %s %+.1f%%\n",
		st.header.Render("pot odds"), pct(r.PotOdds),
		st.header.Render("required"), pct(r.RequiredEquity),
		st.header.Render("surplus"), r.Surplus*100)

	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n", st.header.Render("action"), st.header.Render("amount"), st.header.Render("ev"))
	for _, a := range r.Actions {
		name := string(a.Action)
		if a.Action == r.Recommended {
			name = st.win.Render(name + " *")
		}
		fmt.Fprintf(w, "%s\t%.2f\t%+.2f\n", name, a.Amount, a.EV)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "\n%s (%s confidence, kelly %.2f)\n", r.Reason, r.Confidence, r.Kelly)
}

func pct(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
