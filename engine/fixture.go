package engine

import "fmt"

// Fixture wraps the execution of a test (or a namespace's whole test
// sequence). A fixture receives the inner action and returns a
// replacement that must invoke the inner action exactly once as part of
// its own execution:
//
//	func withServer(inner engine.Action) engine.Action {
//		return func() engine.Continuation {
//			srv := start()
//			defer srv.stop()
//			return inner()
//		}
//	}
//
// Fixtures are synchronous wrappers. A deferred teardown around an inner
// action that suspends runs before the continuation completes; fixtures
// guarding asynchronous tests should tear down from the test itself.
//
// A fixture that never invokes its inner action silently skips that
// test's body; the run continues and the test still counts as attempted.
type Fixture func(inner Action) Action

// FixtureKind selects which registry RegisterFixtures adds to.
type FixtureKind int

const (
	// OnceFixtures wrap a namespace's entire test sequence one time.
	OnceFixtures FixtureKind = iota

	// EachFixtures wrap every individual test in a namespace.
	EachFixtures
)

// String returns the registry name for the kind.
func (k FixtureKind) String() string {
	switch k {
	case OnceFixtures:
		return "once"
	case EachFixtures:
		return "each"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ComposeFixtures folds fixtures into a single wrapper. Composition is in
// slice order, first fixture outermost, so registration order is the
// nesting order. An empty slice composes to the identity.
func ComposeFixtures(fixtures []Fixture) Fixture {
	return func(inner Action) Action {
		wrapped := inner
		for i := len(fixtures) - 1; i >= 0; i-- {
			wrapped = fixtures[i](wrapped)
		}
		return wrapped
	}
}

// RegisterFixtures adds fixtures to one of env's per-namespace
// registries. An unrecognized kind is a configuration error reported
// immediately: suite construction must abort, and no report event is
// emitted for it.
func (e *Env) RegisterFixtures(ns string, kind FixtureKind, fixtures ...Fixture) error {
	switch kind {
	case OnceFixtures:
		e.onceFixtures[ns] = append(e.onceFixtures[ns], fixtures...)
	case EachFixtures:
		e.eachFixtures[ns] = append(e.eachFixtures[ns], fixtures...)
	default:
		return fmt.Errorf("engine: unrecognized fixture kind %v for namespace %q", kind, ns)
	}
	return nil
}

// onceFixture returns the composed once-fixture for ns, or nil when none
// are registered.
func (e *Env) onceFixture(ns string) Fixture {
	fs := e.onceFixtures[ns]
	if len(fs) == 0 {
		return nil
	}
	return ComposeFixtures(fs)
}

// eachFixture returns the composed each-fixture for ns, or nil when none
// are registered.
func (e *Env) eachFixture(ns string) Fixture {
	fs := e.eachFixtures[ns]
	if len(fs) == 0 {
		return nil
	}
	return ComposeFixtures(fs)
}
