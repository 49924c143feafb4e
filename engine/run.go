package engine

import "sort"

// Namespace groups the vars of one test namespace. A non-nil Hook
// replaces the per-var enumeration entirely: the hook runs instead of the
// vars, with no fixtures applied (single override, not composed).
type Namespace struct {
	Name string
	Vars []*Var
	Hook Action
}

// NamespaceBlock assembles the block for one namespace: a begin-test-ns
// event, the fixture-wrapped test sequence (vars sorted ascending by
// source line, registration order breaking ties), and an end-test-ns
// event. When once-fixtures are registered for the namespace the entire
// inner sequence is folded into a single action and wrapped.
//
// The first action installs env as the ambient environment if none is
// set, so a namespace block is runnable on its own.
func NamespaceBlock(env *Env, ns *Namespace) Block {
	b := Block{
		func() Continuation {
			if current == nil {
				SetCurrent(env)
			}
			env.Report(Event{Type: EventBeginTestNS, Namespace: ns.Name})
			return nil
		},
	}

	switch {
	case ns.Hook != nil:
		b = append(b, ns.Hook)
	default:
		inner := varsBlock(env, ns)
		if once := env.onceFixture(ns.Name); once != nil {
			b = append(b, once(BlockAction(env, inner)))
		} else {
			b = Concat(b, inner)
		}
	}

	return append(b, func() Continuation {
		env.Report(Event{Type: EventEndTestNS, Namespace: ns.Name})
		return nil
	})
}

// varsBlock orders a namespace's vars and splices their per-var blocks.
func varsBlock(env *Env, ns *Namespace) Block {
	vars := make([]*Var, len(ns.Vars))
	copy(vars, ns.Vars)
	sort.SliceStable(vars, func(i, j int) bool { return vars[i].Line < vars[j].Line })

	each := env.eachFixture(ns.Name)
	var b Block
	for _, v := range vars {
		b = Concat(b, varBlock(v, each))
	}
	return b
}

// RunTestsBlock assembles the block for a complete multi-namespace run.
// Namespaces execute in the order supplied. After each namespace's block
// a merge action folds the environment's counters into the running
// summary and zeroes them, so counters stay per-namespace while the
// summary accumulates the whole run.
//
// The trailing actions report the summary event and the terminal
// end-run-tests event (both carrying the merged counters), clear the
// ambient environment, and invoke onSummary when non-nil.
func RunTestsBlock(env *Env, onSummary func(Counters), namespaces ...*Namespace) Block {
	summary := &Counters{}

	var b Block
	for _, ns := range namespaces {
		b = Concat(b, NamespaceBlock(env, ns))
		b = append(b, func() Continuation {
			summary.Add(env.Counters)
			env.Counters = Counters{}
			return nil
		})
	}

	return append(b,
		func() Continuation {
			c := *summary
			env.Report(Event{Type: EventSummary, Counters: &c})
			return nil
		},
		func() Continuation {
			c := *summary
			env.Report(Event{Type: EventEndRunTests, Counters: &c})
			return nil
		},
		func() Continuation {
			ClearCurrent()
			if onSummary != nil {
				onSummary(*summary)
			}
			return nil
		},
	)
}

// RunTests installs env as the ambient environment and submits the full
// run block to sched. Like every block run this is asynchronous: RunTests
// returns as soon as the block first suspends, and onSummary fires only
// when the terminal end-run-tests event has been emitted.
func RunTests(env *Env, sched *Scheduler, onSummary func(Counters), namespaces ...*Namespace) error {
	SetCurrent(env)
	return sched.Run(RunTestsBlock(env, onSummary, namespaces...), nil)
}
