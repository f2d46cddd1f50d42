package interp

import (
	"github.com/hupe1980/agentscript/core"
)

// Env is a lexically scoped variable binding table. Each block gets a child
// env whose lookups fall through to the parent chain. Envs are confined to
// the interpreter goroutine and need no locking.
type Env struct {
	parent *Env
	vars   map[string]core.Value
}

// NewEnv creates a scope. A nil parent makes it the root scope.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: map[string]core.Value{}}
}

// Define binds a name in this scope, shadowing any outer binding.
func (e *Env) Define(name string, v core.Value) {
	e.vars[name] = v
}

// Get resolves a name through the scope chain.
func (e *Env) Get(name string) (core.Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign rebinds an existing name in whichever scope declared it. It fails
// with UndefinedVariable when no scope in the chain holds the name.
func (e *Env) Assign(name string, v core.Value) error {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return nil
		}
	}
	return core.NewError(core.ErrUndefinedVariable, "undefined variable %q", name)
}
