package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/kestrel/engine"
)

// syncAction returns an action that appends name to ran and completes
// synchronously.
func syncAction(ran *[]string, name string) engine.Action {
	return func() engine.Continuation {
		*ran = append(*ran, name)
		return nil
	}
}

// asyncAction returns an action that suspends the scheduler and parks its
// completion callback in done.
func asyncAction(ran *[]string, name string, done *func()) engine.Action {
	return func() engine.Continuation {
		*ran = append(*ran, name)
		return func(d func()) {
			*done = d
		}
	}
}

func TestScheduler_RunsSynchronousBlockInOrder(t *testing.T) {
	t.Parallel()

	var ran []string
	var finished bool
	s := engine.NewScheduler(engine.NewEnv())

	err := s.Run(engine.Block{
		syncAction(&ran, "a"),
		syncAction(&ran, "b"),
		syncAction(&ran, "c"),
	}, func() { finished = true })

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ran)
	assert.True(t, finished)
	assert.Equal(t, engine.StateFinished, s.State())
}

func TestScheduler_SuspendsAndResumes(t *testing.T) {
	t.Parallel()

	var ran []string
	var finished bool
	var done func()
	s := engine.NewScheduler(engine.NewEnv())

	err := s.Run(engine.Block{
		syncAction(&ran, "before"),
		asyncAction(&ran, "async", &done),
		syncAction(&ran, "after"),
	}, func() { finished = true })
	require.NoError(t, err)

	// Run returned at the suspension point; the tail has not executed.
	assert.Equal(t, engine.StateSuspended, s.State())
	assert.Equal(t, []string{"before", "async"}, ran)
	assert.False(t, finished)
	require.NotNil(t, done)

	done()

	assert.Equal(t, []string{"before", "async", "after"}, ran)
	assert.True(t, finished)
	assert.Equal(t, engine.StateFinished, s.State())
}

func TestScheduler_RejectsBlockWhileInFlight(t *testing.T) {
	t.Parallel()

	var ran []string
	var done func()
	s := engine.NewScheduler(engine.NewEnv())

	require.NoError(t, s.Run(engine.Block{asyncAction(&ran, "async", &done)}, nil))
	require.Equal(t, engine.StateSuspended, s.State())

	err := s.Run(engine.Block{syncAction(&ran, "late")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has a block in flight")

	// The rejected submission must not disturb the suspended block.
	done()
	assert.Equal(t, []string{"async"}, ran)
	assert.Equal(t, engine.StateFinished, s.State())
}

func TestScheduler_ReusableAfterFinish(t *testing.T) {
	t.Parallel()

	var ran []string
	s := engine.NewScheduler(engine.NewEnv())

	require.NoError(t, s.Run(engine.Block{syncAction(&ran, "first")}, nil))
	require.NoError(t, s.Run(engine.Block{syncAction(&ran, "second")}, nil))

	assert.Equal(t, []string{"first", "second"}, ran)
}

func TestScheduler_RequiresEnvironment(t *testing.T) {
	t.Parallel()

	s := engine.NewScheduler(nil)
	err := s.Run(engine.Block{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no environment")
}

func TestScheduler_IsolatesActionPanics(t *testing.T) {
	t.Parallel()

	var events []engine.Event
	var ran []string
	env := recordingEnv(&events)
	s := engine.NewScheduler(env)

	err := s.Run(engine.Block{
		func() engine.Continuation { panic("boom") },
		syncAction(&ran, "survivor"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"survivor"}, ran, "run continues past a panicking action")
	assert.Equal(t, engine.StateFinished, s.State())

	require.Len(t, events, 1)
	assert.Equal(t, engine.EventError, events[0].Type)
	assert.Equal(t, "uncaught panic", events[0].Message)
	assert.Equal(t, "boom", events[0].Actual)
	assert.Equal(t, 1, env.Counters.Error)
}

func TestScheduler_FailurePanicBecomesFailEvent(t *testing.T) {
	t.Parallel()

	var events []engine.Event
	env := recordingEnv(&events)
	s := engine.NewScheduler(env)

	err := s.Run(engine.Block{
		func() engine.Continuation {
			panic(&engine.Failure{Message: "want 4", Expected: 4, Actual: 5})
		},
	}, nil)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, engine.EventFail, events[0].Type)
	assert.Equal(t, "want 4", events[0].Message)
	assert.Equal(t, 4, events[0].Expected)
	assert.Equal(t, 5, events[0].Actual)
	assert.Equal(t, engine.Counters{Fail: 1}, env.Counters)
}

func TestScheduler_ContinuationPanicStillResumes(t *testing.T) {
	t.Parallel()

	var events []engine.Event
	var ran []string
	env := recordingEnv(&events)
	s := engine.NewScheduler(env)

	err := s.Run(engine.Block{
		func() engine.Continuation {
			return func(func()) { panic("no callback arranged") }
		},
		syncAction(&ran, "after"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"after"}, ran, "a panicking continuation must not stall the run")
	require.Len(t, events, 1)
	assert.Equal(t, engine.EventError, events[0].Type)
	assert.Equal(t, engine.StateFinished, s.State())
}

func TestScheduler_MissingEnvironmentPanicIsFatal(t *testing.T) {
	t.Parallel()

	s := engine.NewScheduler(engine.NewEnv())

	// ErrNoActiveEnvironment marks engine misuse, not a test outcome; it
	// must escape the isolation layer.
	assert.PanicsWithValue(t, engine.ErrNoActiveEnvironment, func() {
		_ = s.Run(engine.Block{
			func() engine.Continuation { panic(engine.ErrNoActiveEnvironment) },
		}, nil)
	})
}

func TestSchedState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", engine.StateIdle.String())
	assert.Equal(t, "running", engine.StateRunning.String())
	assert.Equal(t, "suspended", engine.StateSuspended.String())
	assert.Equal(t, "finished", engine.StateFinished.String())
	assert.Equal(t, "state(42)", engine.SchedState(42).String())
}
