package engine

import (
	"errors"

	"github.com/charmbracelet/log"
)

// ErrNoActiveEnvironment is returned (or panicked, from internal call
// sites) when an ambient-environment operation runs before SetCurrent.
// It signals a misconfigured runner, never a test outcome: the scheduler
// re-panics it instead of converting it to a report event.
var ErrNoActiveEnvironment = errors.New("engine: no active environment")

// Counters tallies test outcomes for a run or a single namespace. Values
// only ever grow while a run is in progress.
type Counters struct {
	Test  int `json:"test"`
	Pass  int `json:"pass"`
	Fail  int `json:"fail"`
	Error int `json:"error"`
}

// Add folds o into c counter-wise.
func (c *Counters) Add(o Counters) {
	c.Test += o.Test
	c.Pass += o.Pass
	c.Fail += o.Fail
	c.Error += o.Error
}

// Failed reports whether the tally contains any failures or errors.
// Callers deciding a process exit status should use this.
func (c Counters) Failed() bool {
	return c.Fail > 0 || c.Error > 0
}

// Env is the mutable, run-scoped state threaded through a test run: the
// testing-context stack, the stack of vars currently executing, outcome
// counters, and the per-namespace fixture registries.
//
// An Env is exclusively owned by a single scheduler run and is never
// accessed concurrently, so it carries no locking.
type Env struct {
	// Counters tallies outcomes for the namespace currently executing.
	// The run aggregator snapshots and zeroes it between namespaces.
	Counters Counters

	contexts []string
	vars     []*Var

	onceFixtures map[string][]Fixture
	eachFixtures map[string][]Fixture

	dispatch *Dispatch
	logger   *log.Logger
}

// EnvOption configures an Env at construction time.
type EnvOption func(*Env)

// WithLogger attaches a charmbracelet/log Logger. Report events are
// echoed at debug level. A nil logger keeps the environment silent.
func WithLogger(logger *log.Logger) EnvOption {
	return func(e *Env) { e.logger = logger }
}

// WithHandler registers a dispatch handler for one event type.
func WithHandler(t EventType, h Handler) EnvOption {
	return func(e *Env) { e.dispatch.Register(t, h) }
}

// WithFallback sets the dispatch handler for event types that have no
// dedicated handler.
func WithFallback(h Handler) EnvOption {
	return func(e *Env) { e.dispatch.SetFallback(h) }
}

// NewEnv creates an environment with zeroed counters, an empty context
// stack, empty fixture registries, and a fresh event dispatch.
func NewEnv(opts ...EnvOption) *Env {
	e := &Env{
		onceFixtures: make(map[string][]Fixture),
		eachFixtures: make(map[string][]Fixture),
		dispatch:     NewDispatch(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatch exposes the environment's event dispatch so reporters can
// install handlers after construction.
func (e *Env) Dispatch() *Dispatch { return e.dispatch }

// Contexts returns a copy of the current testing-context stack, outermost
// label first.
func (e *Env) Contexts() []string {
	out := make([]string, len(e.contexts))
	copy(out, e.contexts)
	return out
}

func (e *Env) pushContext(label string) { e.contexts = append(e.contexts, label) }

func (e *Env) popContext() {
	if len(e.contexts) > 0 {
		e.contexts = e.contexts[:len(e.contexts)-1]
	}
}

func (e *Env) pushVar(v *Var) { e.vars = append(e.vars, v) }

func (e *Env) popVar() {
	if len(e.vars) > 0 {
		e.vars = e.vars[:len(e.vars)-1]
	}
}

// currentVar returns the innermost var under execution, or nil outside a
// test invocation.
func (e *Env) currentVar() *Var {
	if len(e.vars) == 0 {
		return nil
	}
	return e.vars[len(e.vars)-1]
}

func (e *Env) log(msg string, kvs ...any) {
	if e.logger == nil {
		return
	}
	e.logger.Debug(msg, kvs...)
}

// current is the ambient environment pointer. The engine supports at most
// one ambient run at a time; callers that need several concurrent
// environments must thread explicit *Env handles instead.
var current *Env

// SetCurrent installs env as the ambient current environment.
func SetCurrent(env *Env) { current = env }

// Current returns the ambient environment, or ErrNoActiveEnvironment when
// none has been set.
func Current() (*Env, error) {
	if current == nil {
		return nil, ErrNoActiveEnvironment
	}
	return current, nil
}

// ClearCurrent discards the ambient environment.
func ClearCurrent() { current = nil }

// UpdateCurrent applies fn to the ambient environment. It returns
// ErrNoActiveEnvironment when none has been set.
func UpdateCurrent(fn func(*Env)) error {
	env, err := Current()
	if err != nil {
		return err
	}
	fn(env)
	return nil
}

// mustCurrent is the internal accessor for call sites where a missing
// environment is a programming defect rather than a recoverable
// condition. The panic value wraps ErrNoActiveEnvironment so the
// scheduler's isolation layer lets it propagate.
func mustCurrent() *Env {
	if current == nil {
		panic(ErrNoActiveEnvironment)
	}
	return current
}

// Testing pushes label onto the ambient environment's testing-context
// stack, runs body, and pops the label. The pop is guaranteed on every
// exit path, including panicking bodies, so the stack depth after a test
// always equals its depth before.
func Testing(label string, body func()) {
	env := mustCurrent()
	env.pushContext(label)
	defer env.popContext()
	body()
}
