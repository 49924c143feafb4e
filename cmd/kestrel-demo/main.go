// kestrel-demo is a sample test binary showing how a project embeds the
// kestrel harness: suites are registered up front, then Execute takes
// over the command line.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/AbdelazizMoustafa10m/kestrel/check"
	"github.com/AbdelazizMoustafa10m/kestrel/engine"
	"github.com/AbdelazizMoustafa10m/kestrel/harness"
	"github.com/AbdelazizMoustafa10m/kestrel/suite"
)

func main() {
	registerArithmetic()
	registerClock()
	os.Exit(harness.Execute())
}

func registerArithmetic() {
	s := suite.New("demo/arithmetic").
		Add("addition", func() {
			check.Equal(4, 2+2, "2+2")
			engine.Testing("negative operands", func() {
				check.Equal(-4, -2+-2, "-2+-2")
			})
		}).
		Add("division panics on zero", func() {
			check.Panics("divide by zero", func() {
				d := 0
				_ = 1 / d
			})
		})

	err := s.AddCases("doubling", 2, func(args []any) {
		in := args[0].(int)
		want := args[1].(int)
		check.Equal(want, in*2, fmt.Sprintf("double(%d)", in))
	}, 1, 2, 2, 4, 5, 10)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	suite.Register(s)
}

func registerClock() {
	var started time.Time

	s := suite.New("demo/clock").
		Once(func(inner engine.Action) engine.Action {
			return func() engine.Continuation {
				started = time.Now()
				return inner()
			}
		}).
		Add("fixture ran first", func() {
			check.Is(!started.IsZero(), "start time recorded")
		}).
		AddAsync("timer fires", func(done func()) {
			time.AfterFunc(10*time.Millisecond, func() {
				check.Is(time.Since(started) > 0, "elapsed is positive")
				done()
			})
		})

	suite.Register(s)
}
