// Package suite is the registration collaborator for the kestrel engine.
// Test discovery is an explicit construction step: a Suite records each
// test's name and the source line it was registered at, and the engine
// later orders execution by those lines. Nothing is discovered by
// reflecting over symbols at run time.
package suite

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/AbdelazizMoustafa10m/kestrel/engine"
)

// Suite collects the tests, fixtures, and optional namespace hook of one
// namespace. Methods return the suite so registration chains:
//
//	suite.Register(suite.New("store").
//		Each(withTempDir).
//		Add("put then get", func() { ... }))
type Suite struct {
	name string
	vars []*engine.Var
	once []engine.Fixture
	each []engine.Fixture
	hook engine.Action
}

// New creates an empty suite for the named namespace.
func New(name string) *Suite {
	return &Suite{name: name}
}

// Name returns the suite's namespace name.
func (s *Suite) Name() string { return s.name }

// Len returns the number of registered tests.
func (s *Suite) Len() int { return len(s.vars) }

// TestNames returns the registered test names in execution order, that
// is, ascending by the source line each test was registered at.
func (s *Suite) TestNames() []string {
	vars := make([]*engine.Var, len(s.vars))
	copy(vars, s.vars)
	sort.SliceStable(vars, func(i, j int) bool { return vars[i].Line < vars[j].Line })

	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	return names
}

// Add registers a synchronous test. The caller's source line is captured
// so tests execute in declaration order.
func (s *Suite) Add(name string, body func()) *Suite {
	line := callerLine()
	s.vars = append(s.vars, &engine.Var{
		Namespace: s.name,
		Name:      name,
		Line:      line,
		Body: func() engine.Continuation {
			body()
			return nil
		},
	})
	return s
}

// AddAsync registers an asynchronously-completing test. The body receives
// the scheduler's completion callback and must call it exactly once after
// its last assertion; a body that never calls done stalls the run.
func (s *Suite) AddAsync(name string, body func(done func())) *Suite {
	line := callerLine()
	s.vars = append(s.vars, &engine.Var{
		Namespace: s.name,
		Name:      name,
		Line:      line,
		Body: func() engine.Continuation {
			return engine.Continuation(body)
		},
	})
	return s
}

// AddVar registers a prebuilt engine.Var directly. Intended for callers
// that assemble vars programmatically and manage lines themselves.
func (s *Suite) AddVar(v *engine.Var) *Suite {
	s.vars = append(s.vars, v)
	return s
}

// AddCases registers one test per group of arity arguments, applying fn
// to each group. A length of args that does not divide into groups of
// arity is a configuration error: it aborts suite construction
// immediately and never becomes a report event.
func (s *Suite) AddCases(name string, arity int, fn func(args []any), args ...any) error {
	if arity < 1 {
		return fmt.Errorf("suite: %s: case arity must be at least 1, got %d", name, arity)
	}
	if len(args)%arity != 0 {
		return fmt.Errorf("suite: %s: %d case arguments do not divide into groups of %d", name, len(args), arity)
	}

	line := callerLine()
	for i := 0; i*arity < len(args); i++ {
		group := args[i*arity : (i+1)*arity]
		s.vars = append(s.vars, &engine.Var{
			Namespace: s.name,
			Name:      fmt.Sprintf("%s[%d]", name, i),
			Line:      line,
			Body: func() engine.Continuation {
				fn(group)
				return nil
			},
		})
	}
	return nil
}

// Once appends fixtures that wrap the whole namespace, in nesting order.
func (s *Suite) Once(fixtures ...engine.Fixture) *Suite {
	s.once = append(s.once, fixtures...)
	return s
}

// Each appends fixtures that wrap every individual test, in nesting
// order.
func (s *Suite) Each(fixtures ...engine.Fixture) *Suite {
	s.each = append(s.each, fixtures...)
	return s
}

// SetHook installs a namespace hook. A hooked namespace runs the hook
// instead of its registered tests, with no fixtures applied.
func (s *Suite) SetHook(hook engine.Action) *Suite {
	s.hook = hook
	return s
}

// Namespace builds the engine.Namespace for this suite.
func (s *Suite) Namespace() *engine.Namespace {
	vars := make([]*engine.Var, len(s.vars))
	copy(vars, s.vars)
	return &engine.Namespace{Name: s.name, Vars: vars, Hook: s.hook}
}

// Bind registers the suite's fixtures into env.
func (s *Suite) Bind(env *engine.Env) error {
	if err := env.RegisterFixtures(s.name, engine.OnceFixtures, s.once...); err != nil {
		return err
	}
	return env.RegisterFixtures(s.name, engine.EachFixtures, s.each...)
}

// callerLine returns the source line of the caller's caller.
func callerLine() int {
	_, _, line, ok := runtime.Caller(2)
	if !ok {
		return 0
	}
	return line
}
