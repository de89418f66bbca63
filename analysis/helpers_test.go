package analysis

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func seed(n int64) *int64 { return &n }

// mustScenario builds a scenario from text; villains default to one random
// opponent.
func mustScenario(t *testing.T, hero, board string, villains ...string) Scenario {
	t.Helper()
	s, err := ScenarioText{Hero: hero, Board: board, Villains: villains}.Scenario(Tuning{})
	require.NoError(t, err)
	return s
}

func mustFixed(t *testing.T, text string) FixedHole {
	t.Helper()
	f, err := NewFixedHole(text)
	require.NoError(t, err)
	return f
}

// steppingClock advances the mock by step on every Now call, so each batch
// of a simulation observes time moving forward.
type steppingClock struct {
	*quartz.Mock
	step time.Duration
}

func (c *steppingClock) Now(tags ...string) time.Time {
	c.Mock.Advance(c.step)
	return c.Mock.Now(tags...)
}
