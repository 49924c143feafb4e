package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/kestrel/engine"
)

// tracingFixture records name around the inner action.
func tracingFixture(ran *[]string, name string) engine.Fixture {
	return func(inner engine.Action) engine.Action {
		return func() engine.Continuation {
			*ran = append(*ran, name+" setup")
			cont := inner()
			*ran = append(*ran, name+" teardown")
			return cont
		}
	}
}

func TestComposeFixtures_FirstIsOutermost(t *testing.T) {
	t.Parallel()

	var ran []string
	composed := engine.ComposeFixtures([]engine.Fixture{
		tracingFixture(&ran, "outer"),
		tracingFixture(&ran, "inner"),
	})

	cont := composed(syncAction(&ran, "body"))()

	assert.Nil(t, cont)
	assert.Equal(t, []string{
		"outer setup",
		"inner setup",
		"body",
		"inner teardown",
		"outer teardown",
	}, ran)
}

func TestComposeFixtures_EmptyIsIdentity(t *testing.T) {
	t.Parallel()

	var ran []string
	composed := engine.ComposeFixtures(nil)

	require.Nil(t, composed(syncAction(&ran, "body"))())
	assert.Equal(t, []string{"body"}, ran)
}

func TestRegisterFixtures_UnknownKind(t *testing.T) {
	t.Parallel()

	env := engine.NewEnv()
	err := env.RegisterFixtures("ns", engine.FixtureKind(7), tracingFixture(nil, "x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized fixture kind")
}

func TestFixtureKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "once", engine.OnceFixtures.String())
	assert.Equal(t, "each", engine.EachFixtures.String())
	assert.Equal(t, "kind(9)", engine.FixtureKind(9).String())
}
