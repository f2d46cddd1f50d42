package interp

import (
	"testing"

	"github.com/hupe1980/agentscript/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv_DefineAndGet(t *testing.T) {
	env := NewEnv(nil)
	env.Define("x", core.Number(1))

	v, ok := env.Get("x")
	require.True(t, ok)
	assert.Equal(t, core.Number(1), v)

	_, ok = env.Get("y")
	assert.False(t, ok)
}

func TestEnv_ChildFallsThroughToParent(t *testing.T) {
	parent := NewEnv(nil)
	parent.Define("x", core.Number(1))
	child := NewEnv(parent)

	v, ok := child.Get("x")
	require.True(t, ok)
	assert.Equal(t, core.Number(1), v)
}

func TestEnv_Shadowing(t *testing.T) {
	parent := NewEnv(nil)
	parent.Define("x", core.Number(1))
	child := NewEnv(parent)
	child.Define("x", core.Number(2))

	v, _ := child.Get("x")
	assert.Equal(t, core.Number(2), v)

	// The parent binding is untouched.
	v, _ = parent.Get("x")
	assert.Equal(t, core.Number(1), v)
}

func TestEnv_AssignRebindsDeclaringScope(t *testing.T) {
	parent := NewEnv(nil)
	parent.Define("x", core.Number(1))
	child := NewEnv(parent)

	require.NoError(t, child.Assign("x", core.Number(5)))
	v, _ := parent.Get("x")
	assert.Equal(t, core.Number(5), v)
}

func TestEnv_AssignUndeclaredFails(t *testing.T) {
	env := NewEnv(nil)
	err := env.Assign("missing", core.Number(1))
	require.Error(t, err)
	assert.Equal(t, core.ErrUndefinedVariable, core.CodeOf(err))
}

func TestEnv_AssignFromChildFailsWhenUndeclaredEverywhere(t *testing.T) {
	parent := NewEnv(nil)
	child := NewEnv(parent)

	err := child.Assign("x", core.Number(1))
	require.Error(t, err)
	assert.Equal(t, core.ErrUndefinedVariable, core.CodeOf(err))

	_, ok := parent.Get("x")
	assert.False(t, ok)
	_, ok = child.Get("x")
	assert.False(t, ok)
}
