package report_test

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/AbdelazizMoustafa10m/kestrel/engine"
	"github.com/AbdelazizMoustafa10m/kestrel/report"
)

// scriptedRun replays a fixed event sequence through an environment with
// the reporter under test installed.
func scriptedRun(env *engine.Env) {
	env.Report(engine.Event{Type: engine.EventBeginTestNS, Namespace: "demo"})
	env.Report(engine.Event{
		Type:    engine.EventPass,
		Var:     "add",
		Message: "sums small ints",
	})
	env.Report(engine.Event{
		Type:     engine.EventFail,
		Var:      "add",
		Message:  "sums big ints",
		Expected: 5,
		Actual:   4,
		Contexts: []string{"overflow", "edge"},
	})
	env.Report(engine.Event{
		Type:    engine.EventError,
		Var:     "boom",
		Message: "uncaught panic",
		Actual:  "kaboom",
	})
	env.Report(engine.Event{Type: engine.EventEndTestNS, Namespace: "demo"})
	env.Report(engine.Event{
		Type:     engine.EventSummary,
		Counters: &engine.Counters{Test: 3, Pass: 1, Fail: 1, Error: 1},
	})
	env.Report(engine.Event{
		Type:     engine.EventEndRunTests,
		Counters: &engine.Counters{Test: 3, Pass: 1, Fail: 1, Error: 1},
	})
}

func TestConsole_Golden(t *testing.T) {
	var buf bytes.Buffer
	env := engine.NewEnv()
	report.NewConsole(&buf, report.WithoutColor()).Install(env.Dispatch())

	scriptedRun(env)

	g := goldie.New(t)
	g.Assert(t, "console", buf.Bytes())
}

func TestConsole_SummaryWithoutCountersIsIgnored(t *testing.T) {
	var buf bytes.Buffer
	env := engine.NewEnv()
	report.NewConsole(&buf, report.WithoutColor()).Install(env.Dispatch())

	env.Report(engine.Event{Type: engine.EventSummary})

	assert.Empty(t, buf.String())
}

func TestConsole_EndRunTestsPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	env := engine.NewEnv()
	report.NewConsole(&buf, report.WithoutColor()).Install(env.Dispatch())

	env.Report(engine.Event{
		Type:     engine.EventEndRunTests,
		Counters: &engine.Counters{Test: 1, Pass: 1},
	})

	assert.Empty(t, buf.String(), "the terminal event is for machine consumers, not the console")
}
