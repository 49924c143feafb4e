// Package check is the assertion collaborator for the kestrel engine.
// Every check emits exactly one pass or fail report event against the
// ambient environment; checks therefore only work inside a scheduled
// test body. The engine consumes the resulting event stream and never
// produces pass/fail distinctions itself.
package check

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/AbdelazizMoustafa10m/kestrel/engine"
)

// Is reports a pass event when ok is true and a fail event otherwise.
// It returns ok so callers can guard follow-up checks.
func Is(ok bool, msg string) bool {
	if ok {
		engine.Report(engine.Event{Type: engine.EventPass, Message: msg})
		return true
	}
	engine.Report(engine.Event{
		Type:     engine.EventFail,
		Message:  msg,
		Expected: true,
		Actual:   false,
	})
	return false
}

// Equal reports a pass event when expected and actual are deeply equal.
func Equal(expected, actual any, msg string) bool {
	if reflect.DeepEqual(expected, actual) {
		engine.Report(engine.Event{Type: engine.EventPass, Message: msg})
		return true
	}
	engine.Report(engine.Event{
		Type:     engine.EventFail,
		Message:  msg,
		Expected: expected,
		Actual:   actual,
	})
	return false
}

// NotEqual reports a pass event when expected and actual differ.
func NotEqual(expected, actual any, msg string) bool {
	if !reflect.DeepEqual(expected, actual) {
		engine.Report(engine.Event{Type: engine.EventPass, Message: msg})
		return true
	}
	engine.Report(engine.Event{
		Type:     engine.EventFail,
		Message:  msg,
		Expected: fmt.Sprintf("anything but %v", expected),
		Actual:   actual,
	})
	return false
}

// Fail unconditionally reports a fail event.
func Fail(msg string) {
	engine.Report(engine.Event{Type: engine.EventFail, Message: msg})
}

// Abort panics with the engine's failure marker, aborting the enclosing
// test body with a fail event instead of an error event. Use it when
// continuing after a failed precondition would only produce noise.
func Abort(msg string) {
	panic(&engine.Failure{Message: msg})
}

// Panics runs fn and reports a pass event when it panics.
func Panics(msg string, fn func()) bool {
	if _, panicked := capture(fn); panicked {
		engine.Report(engine.Event{Type: engine.EventPass, Message: msg})
		return true
	}
	engine.Report(engine.Event{
		Type:     engine.EventFail,
		Message:  msg,
		Expected: "panic",
		Actual:   "no panic",
	})
	return false
}

// PanicsMatching runs fn and reports a pass event when it panics with a
// value whose string form matches pattern. A malformed pattern panics and
// surfaces as an error event for the enclosing test.
func PanicsMatching(msg, pattern string, fn func()) bool {
	re := regexp.MustCompile(pattern)
	r, panicked := capture(fn)
	if panicked && re.MatchString(fmt.Sprint(r)) {
		engine.Report(engine.Event{Type: engine.EventPass, Message: msg})
		return true
	}
	actual := "no panic"
	if panicked {
		actual = fmt.Sprint(r)
	}
	engine.Report(engine.Event{
		Type:     engine.EventFail,
		Message:  msg,
		Expected: fmt.Sprintf("panic matching %q", pattern),
		Actual:   actual,
	})
	return false
}

// ErrorIs reports a pass event when err wraps target.
func ErrorIs(err, target error, msg string) bool {
	if errors.Is(err, target) {
		engine.Report(engine.Event{Type: engine.EventPass, Message: msg})
		return true
	}
	engine.Report(engine.Event{
		Type:     engine.EventFail,
		Message:  msg,
		Expected: fmt.Sprintf("error wrapping %v", target),
		Actual:   fmt.Sprintf("%v", err),
	})
	return false
}

// ErrorMatching reports a pass event when err is non-nil and its message
// matches pattern.
func ErrorMatching(err error, pattern, msg string) bool {
	re := regexp.MustCompile(pattern)
	if err != nil && re.MatchString(err.Error()) {
		engine.Report(engine.Event{Type: engine.EventPass, Message: msg})
		return true
	}
	actual := "nil error"
	if err != nil {
		actual = err.Error()
	}
	engine.Report(engine.Event{
		Type:     engine.EventFail,
		Message:  msg,
		Expected: fmt.Sprintf("error matching %q", pattern),
		Actual:   actual,
	})
	return false
}

// capture runs fn and returns the recovered value and whether fn
// panicked. A nil panic value still counts as a panic.
func capture(fn func()) (r any, panicked bool) {
	defer func() {
		r = recover()
	}()
	panicked = true
	fn()
	panicked = false
	return nil, false
}
