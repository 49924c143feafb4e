package engine

import "sync"

// Continuation is the capability an asynchronously-completing action hands
// back to the scheduler. The scheduler invokes it exactly once, passing a
// completion callback; the continuation must call that callback exactly
// once when its work is finished. Never calling it stalls the run
// indefinitely. Calling it more than once is a correctness violation the
// engine does not guard against.
type Continuation func(done func())

// Action is a zero-argument deferred operation, the atom blocks are
// composed from. A nil return value means the action completed
// synchronously; a non-nil Continuation makes the scheduler suspend until
// the continuation signals completion.
type Action func() Continuation

// Block is an ordered sequence of actions, the unit the scheduler
// executes. Blocks have no identity beyond their sequence and compose by
// concatenation.
type Block []Action

// Concat splices blocks into one, preserving order.
func Concat(blocks ...Block) Block {
	var n int
	for _, b := range blocks {
		n += len(b)
	}
	out := make(Block, 0, n)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}

// BlockAction folds an entire block into a single action by driving it
// with a nested scheduler. If the block runs to completion synchronously
// the action completes synchronously; otherwise the action suspends and
// resumes its caller when the nested run finishes.
//
// This is how a once-fixture, which wraps a single inner thunk, can wrap
// a namespace's whole test sequence.
func BlockAction(env *Env, b Block) Action {
	return func() Continuation {
		// The handshake below is the one place a completion callback
		// delivered from a timer goroutine can race the suspending
		// caller, so it is guarded.
		var mu sync.Mutex
		var completed bool
		var pending func()

		sub := NewScheduler(env)
		// Run cannot fail here: the scheduler is fresh and env is the
		// caller's.
		_ = sub.Run(b, func() {
			mu.Lock()
			completed = true
			done := pending
			mu.Unlock()
			if done != nil {
				done()
			}
		})

		mu.Lock()
		finished := completed
		mu.Unlock()
		if finished {
			return nil
		}

		return func(done func()) {
			mu.Lock()
			if completed {
				mu.Unlock()
				done()
				return
			}
			pending = done
			mu.Unlock()
		}
	}
}
