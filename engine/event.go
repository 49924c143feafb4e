package engine

// EventType identifies the kind of a report event. String values are used
// (not iota) so events round-trip cleanly through NDJSON reporters.
const (
	// EventBeginTestNS is emitted before any test in a namespace runs.
	EventBeginTestNS EventType = "begin-test-ns"

	// EventEndTestNS is emitted after the last test in a namespace.
	EventEndTestNS EventType = "end-test-ns"

	// EventBeginTestVar is emitted when a single test starts.
	EventBeginTestVar EventType = "begin-test-var"

	// EventEndTestVar is emitted when a single test finishes, whether it
	// passed, failed, or errored.
	EventEndTestVar EventType = "end-test-var"

	// EventPass records one successful assertion.
	EventPass EventType = "pass"

	// EventFail records one failed assertion.
	EventFail EventType = "fail"

	// EventError records an uncaught panic in a test body, fixture, or
	// action.
	EventError EventType = "error"

	// EventSummary carries the merged counters for the whole run.
	EventSummary EventType = "summary"

	// EventEndRunTests is the terminal event of a run. It repeats the
	// summary counters so a caller observing only this event can decide
	// an exit status.
	EventEndRunTests EventType = "end-run-tests"
)

// EventType is the discriminator tag of a report event.
type EventType string

// Event is an immutable record describing one outcome or run-lifecycle
// milestone. Events are transient: the engine hands them to the dispatch
// and keeps no history. Their emission order is a contract (begin-test-ns
// precedes all outcomes of that namespace, which precede end-test-ns,
// even across asynchronous suspension).
type Event struct {
	Type      EventType `json:"type"`
	Namespace string    `json:"ns,omitempty"`
	Var       string    `json:"var,omitempty"`
	Line      int       `json:"line,omitempty"`
	Contexts  []string  `json:"contexts,omitempty"`
	Message   string    `json:"message,omitempty"`
	Expected  any       `json:"expected,omitempty"`
	Actual    any       `json:"actual,omitempty"`

	// Counters is set on summary and end-run-tests events. The embedded
	// pointer flattens to test/pass/fail/error JSON fields.
	*Counters
}

// Handler consumes one report event. Handlers are pure observers: counter
// updates happen in Env.Report before dispatch, so a handler can neither
// double-count nor drop a count.
type Handler func(*Env, Event)

// Dispatch routes events to handlers by event type, with an optional
// fallback for types that have no dedicated handler. It is the extension
// point reporters install themselves into.
type Dispatch struct {
	handlers map[EventType]Handler
	fallback Handler
}

// NewDispatch creates an empty dispatch. With no handlers installed all
// events are silently discarded (counting still happens in Env.Report).
func NewDispatch() *Dispatch {
	return &Dispatch{handlers: make(map[EventType]Handler)}
}

// Register installs h for event type t, replacing any previous handler.
func (d *Dispatch) Register(t EventType, h Handler) { d.handlers[t] = h }

// SetFallback installs the handler used for event types without a
// dedicated handler.
func (d *Dispatch) SetFallback(h Handler) { d.fallback = h }

func (d *Dispatch) dispatch(env *Env, ev Event) {
	if h, ok := d.handlers[ev.Type]; ok {
		h(env, ev)
		return
	}
	if d.fallback != nil {
		d.fallback(env, ev)
	}
}

// Report records ev against the environment and dispatches it. Outcome
// events (pass, fail, error) are attributed to the var and testing
// contexts currently executing when the event does not name them already,
// and increment the matching counter exactly once.
func (e *Env) Report(ev Event) {
	switch ev.Type {
	case EventPass, EventFail, EventError:
		if v := e.currentVar(); v != nil && ev.Var == "" {
			ev.Namespace = v.Namespace
			ev.Var = v.Name
			ev.Line = v.Line
		}
		if ev.Contexts == nil && len(e.contexts) > 0 {
			ev.Contexts = e.Contexts()
		}
	}

	switch ev.Type {
	case EventPass:
		e.Counters.Pass++
	case EventFail:
		e.Counters.Fail++
	case EventError:
		e.Counters.Error++
	}

	e.log("report", "type", ev.Type, "ns", ev.Namespace, "var", ev.Var)
	e.dispatch.dispatch(e, ev)
}

// Report records ev against the ambient environment. It panics with
// ErrNoActiveEnvironment when no environment is set; assertion
// collaborators must only run inside a scheduled test.
func Report(ev Event) {
	mustCurrent().Report(ev)
}
