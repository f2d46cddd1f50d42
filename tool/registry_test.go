package tool

import (
	"errors"
	"sync"
	"testing"

	"github.com/hupe1980/agentscript/core"
	"github.com/hupe1980/agentscript/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
	fn   func(tc *Context, args []core.Value) (core.Value, error)
}

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return "stub" }
func (t *stubTool) Call(tc *Context, args []core.Value) (core.Value, error) {
	return t.fn(tc, args)
}

func testContext() *Context {
	return NewContext("caller", nil, logging.NoOpLogger{})
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{name: "Echo"}))

	err := r.Register(&stubTool{name: "Echo"})
	require.Error(t, err)
	assert.Equal(t, core.ErrDuplicateTool, core.CodeOf(err))
	assert.True(t, r.Has("Echo"))
}

func TestRegistry_ExecuteUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(testContext(), "Missing")
	require.Error(t, err)
	assert.Equal(t, core.ErrUnknownTool, core.CodeOf(err))
}

func TestRegistry_UsageAccounting(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{
		name: "Echo",
		fn: func(_ *Context, args []core.Value) (core.Value, error) {
			return args[0], nil
		},
	}))

	before, ok := r.UsageOf("Echo")
	require.True(t, ok)
	assert.Equal(t, uint64(0), before.Calls)
	assert.True(t, before.LastUsed.IsZero())

	out, err := r.Execute(testContext(), "Echo", core.String("hi"))
	require.NoError(t, err)
	assert.Equal(t, core.String("hi"), out)

	after, ok := r.UsageOf("Echo")
	require.True(t, ok)
	assert.Equal(t, uint64(1), after.Calls)
	assert.False(t, after.LastUsed.IsZero())
}

func TestRegistry_ExecuteWrapsHandlerFailure(t *testing.T) {
	boom := errors.New("backend unavailable")
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{
		name: "Flaky",
		fn: func(_ *Context, _ []core.Value) (core.Value, error) {
			return nil, boom
		},
	}))

	_, err := r.Execute(testContext(), "Flaky")
	require.Error(t, err)
	assert.Equal(t, core.ErrToolExecution, core.CodeOf(err))
	assert.ErrorIs(t, err, boom)

	// Failed calls still count as usage.
	usage, _ := r.UsageOf("Flaky")
	assert.Equal(t, uint64(1), usage.Calls)
}

func TestRegistry_Builtins(t *testing.T) {
	r := NewBuiltinRegistry()
	assert.Equal(t, []string{ToolAgentRouting, ToolCalculator, ToolFileManager, ToolWebSearch}, r.Names())

	stats := r.Stats()
	require.Len(t, stats, 4)
	for name, usage := range stats {
		assert.Equal(t, uint64(0), usage.Calls, "tool %s should start unused", name)
	}
}

func TestRegistry_ConcurrentExecute(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{
		name: "Echo",
		fn: func(_ *Context, args []core.Value) (core.Value, error) {
			return args[0], nil
		},
	}))

	const workers = 10
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := r.Execute(testContext(), "Echo", core.Number(1)); err != nil {
					t.Errorf("execute: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	usage, _ := r.UsageOf("Echo")
	assert.Equal(t, uint64(workers*perWorker), usage.Calls)
}

func TestBuiltin_WebSearchAndFileManager(t *testing.T) {
	r := NewBuiltinRegistry()

	out, err := r.Execute(testContext(), ToolWebSearch, core.String("golang actors"))
	require.NoError(t, err)
	assert.Equal(t, core.String("search results for: golang actors"), out)

	out, err = r.Execute(testContext(), ToolFileManager, core.String("list /tmp"))
	require.NoError(t, err)
	assert.Equal(t, core.String("file operation: list /tmp"), out)
}

func TestBuiltin_NonStringArgument(t *testing.T) {
	r := NewBuiltinRegistry()
	_, err := r.Execute(testContext(), ToolWebSearch, core.Number(42))
	require.Error(t, err)
	assert.Equal(t, core.ErrToolExecution, core.CodeOf(err))
}
