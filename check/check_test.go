package check_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/kestrel/check"
	"github.com/AbdelazizMoustafa10m/kestrel/engine"
)

// install sets up a recording ambient environment for the duration of
// the test and returns the event slice it appends to.
func install(t *testing.T) *[]engine.Event {
	t.Helper()
	var events []engine.Event
	engine.SetCurrent(engine.NewEnv(engine.WithFallback(func(_ *engine.Env, ev engine.Event) {
		events = append(events, ev)
	})))
	t.Cleanup(engine.ClearCurrent)
	return &events
}

func single(t *testing.T, events *[]engine.Event) engine.Event {
	t.Helper()
	require.Len(t, *events, 1)
	return (*events)[0]
}

func TestIs(t *testing.T) {
	events := install(t)

	assert.True(t, check.Is(1 < 2, "ordering holds"))
	assert.Equal(t, engine.EventPass, single(t, events).Type)

	*events = nil
	assert.False(t, check.Is(2 < 1, "ordering holds"))
	ev := single(t, events)
	assert.Equal(t, engine.EventFail, ev.Type)
	assert.Equal(t, "ordering holds", ev.Message)
	assert.Equal(t, true, ev.Expected)
	assert.Equal(t, false, ev.Actual)
}

func TestEqual(t *testing.T) {
	events := install(t)

	assert.True(t, check.Equal([]int{1, 2}, []int{1, 2}, "slices compare deeply"))
	assert.Equal(t, engine.EventPass, single(t, events).Type)

	*events = nil
	assert.False(t, check.Equal(4, 5, "sum"))
	ev := single(t, events)
	assert.Equal(t, engine.EventFail, ev.Type)
	assert.Equal(t, 4, ev.Expected)
	assert.Equal(t, 5, ev.Actual)
}

func TestNotEqual(t *testing.T) {
	events := install(t)

	assert.True(t, check.NotEqual(1, 2, "differs"))
	assert.Equal(t, engine.EventPass, single(t, events).Type)

	*events = nil
	assert.False(t, check.NotEqual(3, 3, "differs"))
	ev := single(t, events)
	assert.Equal(t, engine.EventFail, ev.Type)
	assert.Equal(t, 3, ev.Actual)
}

func TestFail(t *testing.T) {
	events := install(t)

	check.Fail("unreachable branch taken")
	ev := single(t, events)
	assert.Equal(t, engine.EventFail, ev.Type)
	assert.Equal(t, "unreachable branch taken", ev.Message)
}

func TestAbort_PanicsWithFailureMarker(t *testing.T) {
	defer func() {
		f, ok := recover().(*engine.Failure)
		require.True(t, ok, "Abort must panic with the engine's failure marker")
		assert.Equal(t, "bad precondition", f.Message)
	}()
	check.Abort("bad precondition")
}

func TestPanics(t *testing.T) {
	events := install(t)

	assert.True(t, check.Panics("divides by zero", func() {
		zero := 0
		_ = 1 / zero
	}))
	assert.Equal(t, engine.EventPass, single(t, events).Type)

	*events = nil
	assert.False(t, check.Panics("calm function", func() {}))
	ev := single(t, events)
	assert.Equal(t, engine.EventFail, ev.Type)
	assert.Equal(t, "no panic", ev.Actual)
}

func TestPanics_NilPanicValueCounts(t *testing.T) {
	events := install(t)

	assert.True(t, check.Panics("panics with nil", func() {
		panic(nil)
	}))
	assert.Equal(t, engine.EventPass, single(t, events).Type)
}

func TestPanicsMatching(t *testing.T) {
	events := install(t)

	assert.True(t, check.PanicsMatching("index error", `out of range`, func() {
		panic("index 3 out of range")
	}))
	assert.Equal(t, engine.EventPass, single(t, events).Type)

	*events = nil
	assert.False(t, check.PanicsMatching("index error", `out of range`, func() {
		panic("nil map write")
	}))
	ev := single(t, events)
	assert.Equal(t, engine.EventFail, ev.Type)
	assert.Equal(t, "nil map write", ev.Actual)

	*events = nil
	assert.False(t, check.PanicsMatching("index error", `out of range`, func() {}))
	assert.Equal(t, "no panic", single(t, events).Actual)
}

func TestPanicsMatching_BadPatternPanics(t *testing.T) {
	install(t)

	// A malformed pattern is a defect in the test itself; inside a
	// scheduled run it surfaces as an error event via panic isolation.
	assert.Panics(t, func() {
		check.PanicsMatching("broken", `[`, func() {})
	})
}

func TestErrorIs(t *testing.T) {
	events := install(t)
	sentinel := errors.New("not found")

	assert.True(t, check.ErrorIs(fmt.Errorf("lookup: %w", sentinel), sentinel, "wraps sentinel"))
	assert.Equal(t, engine.EventPass, single(t, events).Type)

	*events = nil
	assert.False(t, check.ErrorIs(errors.New("other"), sentinel, "wraps sentinel"))
	assert.Equal(t, engine.EventFail, single(t, events).Type)
}

func TestErrorMatching(t *testing.T) {
	events := install(t)

	assert.True(t, check.ErrorMatching(errors.New("connect: refused"), `refused`, "connection error"))
	assert.Equal(t, engine.EventPass, single(t, events).Type)

	*events = nil
	assert.False(t, check.ErrorMatching(nil, `refused`, "connection error"))
	ev := single(t, events)
	assert.Equal(t, engine.EventFail, ev.Type)
	assert.Equal(t, "nil error", ev.Actual)
}

func TestChecks_PanicWithoutEnvironment(t *testing.T) {
	engine.ClearCurrent()

	assert.PanicsWithValue(t, engine.ErrNoActiveEnvironment, func() {
		check.Is(true, "orphan check")
	})
}

func TestChecks_CountAgainstEnvironment(t *testing.T) {
	install(t)

	check.Is(true, "a")
	check.Is(false, "b")
	check.Equal(1, 2, "c")

	env, err := engine.Current()
	require.NoError(t, err)
	assert.Equal(t, engine.Counters{Pass: 1, Fail: 2}, env.Counters)
}
