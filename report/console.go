// Package report renders the kestrel engine's event stream. Reporters
// install themselves into an environment's dispatch and only observe:
// counting stays inside the engine, so a reporter can never affect the
// run summary.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/AbdelazizMoustafa10m/kestrel/engine"
)

// Console is a human-readable stream reporter: one header per namespace,
// one line per assertion outcome, and a final summary line.
type Console struct {
	w io.Writer

	noColor bool

	header  lipgloss.Style
	pass    lipgloss.Style
	fail    lipgloss.Style
	errored lipgloss.Style
	dim     lipgloss.Style
	summary lipgloss.Style
}

// ConsoleOption configures a Console reporter.
type ConsoleOption func(*Console)

// WithoutColor forces the ASCII color profile so output carries no
// escape sequences, regardless of the terminal.
func WithoutColor() ConsoleOption {
	return func(c *Console) { c.noColor = true }
}

// NewConsole creates a console reporter writing to w.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{w: w}
	for _, opt := range opts {
		opt(c)
	}

	var renderer *lipgloss.Renderer
	if c.noColor {
		renderer = lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii))
	} else {
		renderer = lipgloss.NewRenderer(w)
	}

	c.header = renderer.NewStyle().Bold(true)
	c.pass = renderer.NewStyle().Foreground(lipgloss.Color("10"))
	c.fail = renderer.NewStyle().Foreground(lipgloss.Color("9"))
	c.errored = renderer.NewStyle().Foreground(lipgloss.Color("11"))
	c.dim = renderer.NewStyle().Faint(true)
	c.summary = renderer.NewStyle().Bold(true)
	return c
}

// Install registers the console handlers into d.
func (c *Console) Install(d *engine.Dispatch) {
	d.Register(engine.EventBeginTestNS, c.beginNS)
	d.Register(engine.EventEndTestNS, c.endNS)
	d.Register(engine.EventPass, c.outcome)
	d.Register(engine.EventFail, c.outcome)
	d.Register(engine.EventError, c.outcome)
	d.Register(engine.EventSummary, c.printSummary)
}

func (c *Console) beginNS(_ *engine.Env, ev engine.Event) {
	fmt.Fprintln(c.w, c.header.Render("==> "+ev.Namespace))
}

func (c *Console) endNS(_ *engine.Env, _ engine.Event) {
	fmt.Fprintln(c.w)
}

func (c *Console) outcome(_ *engine.Env, ev engine.Event) {
	var line string
	switch ev.Type {
	case engine.EventPass:
		line = c.pass.Render("  + " + label(ev))
	case engine.EventFail:
		line = c.fail.Render("  x " + label(ev))
	case engine.EventError:
		line = c.errored.Render("  ! " + label(ev))
	}
	fmt.Fprintln(c.w, line)

	if len(ev.Contexts) > 0 {
		fmt.Fprintln(c.w, c.dim.Render("      in: "+strings.Join(ev.Contexts, " > ")))
	}
	if ev.Type == engine.EventFail && (ev.Expected != nil || ev.Actual != nil) {
		fmt.Fprintln(c.w, c.dim.Render(fmt.Sprintf("      expected: %v", ev.Expected)))
		fmt.Fprintln(c.w, c.dim.Render(fmt.Sprintf("      actual:   %v", ev.Actual)))
	}
	if ev.Type == engine.EventError && ev.Actual != nil {
		fmt.Fprintln(c.w, c.dim.Render(fmt.Sprintf("      panic: %v", ev.Actual)))
	}
}

func (c *Console) printSummary(_ *engine.Env, ev engine.Event) {
	if ev.Counters == nil {
		return
	}
	fmt.Fprintln(c.w, c.summary.Render(fmt.Sprintf(
		"Ran %d tests: %d passed, %d failed, %d errors",
		ev.Test, ev.Pass, ev.Fail, ev.Error,
	)))
}

// label renders "var: message", dropping whichever side is empty.
func label(ev engine.Event) string {
	switch {
	case ev.Var != "" && ev.Message != "":
		return ev.Var + ": " + ev.Message
	case ev.Var != "":
		return ev.Var
	default:
		return ev.Message
	}
}
