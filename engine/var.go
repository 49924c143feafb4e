package engine

import (
	"errors"
	"fmt"
)

// Var is one named test: its namespace, name, the source line it was
// registered at (used only for execution ordering and event attribution),
// and the body thunk. A body returning nil completed synchronously; a
// body returning a Continuation makes the whole invocation asynchronous.
type Var struct {
	Namespace string
	Name      string
	Line      int
	Body      func() Continuation
}

// Failure is the discriminating marker for an aborted assertion. A test
// body (or assertion collaborator) that panics with a *Failure produces a
// fail event; any other panic value produces an error event.
type Failure struct {
	Message  string
	Expected any
	Actual   any
}

// Error implements error so a *Failure reads naturally in logs.
func (f *Failure) Error() string {
	return fmt.Sprintf("assertion failed: %s", f.Message)
}

// thrownEvent converts a recovered panic value into a report event.
// Values wrapping ErrNoActiveEnvironment are re-panicked: they mean the
// engine was operated without an environment, which is a fatal
// programming defect, not a test outcome.
func thrownEvent(r any) Event {
	if err, ok := r.(error); ok && errors.Is(err, ErrNoActiveEnvironment) {
		panic(r)
	}
	if f, ok := r.(*Failure); ok {
		return Event{
			Type:     EventFail,
			Message:  f.Message,
			Expected: f.Expected,
			Actual:   f.Actual,
		}
	}
	return Event{
		Type:    EventError,
		Message: "uncaught panic",
		Actual:  fmt.Sprint(r),
	}
}

// varBlock wraps one var into the three-action sequence the scheduler
// executes for it: a begin action that counts the test and reports
// begin-test-var, the (optionally each-fixture-wrapped) body action, and
// an end action reporting end-test-var.
//
// The test counter is incremented by the begin action, before any
// each-fixture runs. A fixture that never invokes its inner thunk
// therefore skips the body and its outcome events, but the var still
// counts as attempted.
func varBlock(v *Var, each Fixture) Block {
	body := bodyAction(v)
	if each != nil {
		body = each(body)
	}

	return Block{
		func() Continuation {
			env := mustCurrent()
			env.Counters.Test++
			env.pushVar(v)
			env.Report(Event{
				Type:      EventBeginTestVar,
				Namespace: v.Namespace,
				Var:       v.Name,
				Line:      v.Line,
			})
			return nil
		},
		body,
		func() Continuation {
			env := mustCurrent()
			env.Report(Event{
				Type:      EventEndTestVar,
				Namespace: v.Namespace,
				Var:       v.Name,
				Line:      v.Line,
			})
			env.popVar()
			return nil
		},
	}
}

// bodyAction converts a var's body into an action with failure
// classification on both the synchronous and the asynchronous path. An
// asynchronous body's continuation is wrapped so a panic inside it is
// reported and still resumes the scheduler.
func bodyAction(v *Var) Action {
	return func() (cont Continuation) {
		defer func() {
			if r := recover(); r != nil {
				mustCurrent().Report(thrownEvent(r))
				cont = nil
			}
		}()

		inner := v.Body()
		if inner == nil {
			return nil
		}
		return func(done func()) {
			defer func() {
				if r := recover(); r != nil {
					mustCurrent().Report(thrownEvent(r))
					done()
				}
			}()
			inner(done)
		}
	}
}
