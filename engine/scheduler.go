package engine

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// SchedState is the lifecycle state of a Scheduler.
type SchedState int

const (
	// StateIdle means no block has been submitted yet.
	StateIdle SchedState = iota

	// StateRunning means the scheduler is executing actions.
	StateRunning

	// StateSuspended means the scheduler handed control back to its
	// caller and is waiting for a continuation's completion callback.
	StateSuspended

	// StateFinished means the submitted block ran to completion.
	// Finished is terminal; per-action failures are isolated as error
	// events, so there is no failed terminal state.
	StateFinished
)

// String returns the lower-case state name.
func (s SchedState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Scheduler drives a block to completion one action at a time,
// suspending at asynchronous boundaries and resuming when the pending
// continuation calls back. Execution is strictly ordered: no action runs
// before every earlier action of the block has completed, even across
// suspension. A scheduler holds at most one pending continuation.
//
// Per-action panics are isolated: the panic becomes an error event
// attributed to the active testing context and the run continues with the
// next action. The only exception is a panic wrapping
// ErrNoActiveEnvironment, which indicates the scheduler itself was
// miswired and is allowed to propagate.
type Scheduler struct {
	env    *Env
	logger *log.Logger

	state  SchedState
	block  Block
	next   int
	onDone func()
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger attaches a charmbracelet/log Logger. When nil the
// scheduler operates silently.
func WithSchedulerLogger(logger *log.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

// NewScheduler creates a scheduler bound to env. The environment must not
// be nil; it receives the error events for isolated action panics.
func NewScheduler(env *Env, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{env: env}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the scheduler's current lifecycle state.
func (s *Scheduler) State() SchedState { return s.state }

// Run submits a block for execution and drives it until it either
// finishes or suspends at an asynchronous boundary. In the latter case
// Run returns with the scheduler suspended and onDone fires only after
// the final action completes, possibly many callback deliveries later.
//
// Run fails when the scheduler is nil-environment or already has a block
// in flight.
func (s *Scheduler) Run(block Block, onDone func()) error {
	if s.env == nil {
		return fmt.Errorf("engine: scheduler has no environment")
	}
	if s.state == StateRunning || s.state == StateSuspended {
		return fmt.Errorf("engine: scheduler already has a block in flight (state %s)", s.state)
	}

	s.block = block
	s.next = 0
	s.onDone = onDone
	s.state = StateRunning
	s.log("block started", "actions", len(block))
	s.step()
	return nil
}

// step executes actions from the current index until the block is
// exhausted or an action suspends.
func (s *Scheduler) step() {
	for s.next < len(s.block) {
		idx := s.next
		s.next++

		cont := s.invoke(s.block[idx])
		if cont != nil {
			s.state = StateSuspended
			s.log("block suspended", "action", idx)
			s.begin(cont)
			return
		}
	}

	s.state = StateFinished
	s.log("block finished", "actions", len(s.block))
	if s.onDone != nil {
		s.onDone()
	}
}

// invoke runs one action with panic isolation. A panicking action yields
// an error event and a nil continuation so the run proceeds.
func (s *Scheduler) invoke(act Action) (cont Continuation) {
	defer func() {
		if r := recover(); r != nil {
			s.env.Report(thrownEvent(r))
			cont = nil
		}
	}()
	return act()
}

// begin invokes a continuation exactly once with the resume callback. A
// continuation that panics before arranging its callback is reported and
// the scheduler resumes immediately so the run is not stalled.
func (s *Scheduler) begin(cont Continuation) {
	defer func() {
		if r := recover(); r != nil {
			s.env.Report(thrownEvent(r))
			s.resume()
		}
	}()
	cont(s.resume)
}

// resume continues execution at the action after the suspension point.
func (s *Scheduler) resume() {
	s.state = StateRunning
	s.log("block resumed", "action", s.next)
	s.step()
}

func (s *Scheduler) log(msg string, kvs ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(msg, kvs...)
}
