// Package runtime owns the live agents of a script run. Spawning an agent
// registers a mailbox on the bus and starts its single worker goroutine;
// the runtime tracks agents by name and id, resolves model references to
// responders, and shuts everything down on Close.
package runtime

import (
	"context"
	"sync"

	"github.com/hupe1980/agentscript/bus"
	"github.com/hupe1980/agentscript/core"
	"github.com/hupe1980/agentscript/logging"
	"github.com/hupe1980/agentscript/model"
	"github.com/hupe1980/agentscript/tool"
)

// Options configures a Runtime instance.
type Options struct {
	// Bus routes messages between agents. A fresh bus is created when nil.
	Bus *bus.Bus
	// Tools is the registry agents execute tools against. Defaults to the
	// built-in registry.
	Tools *tool.Registry
	// Resolver maps model references to responders. Defaults to a resolver
	// with no providers, answering via the echo responder.
	Resolver *model.Resolver
	// Logger receives lifecycle diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Runtime manages the spawned agents and their workers.
type Runtime struct {
	mu      sync.RWMutex
	byName  map[string]*Agent
	byID    map[string]*Agent
	workers sync.WaitGroup

	bus      *bus.Bus
	tools    *tool.Registry
	resolver *model.Resolver
	logger   logging.Logger
	closed   bool
}

// New creates a Runtime.
func New(optFns ...func(o *Options)) *Runtime {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Bus == nil {
		opts.Bus = bus.New()
	}
	if opts.Tools == nil {
		opts.Tools = tool.NewBuiltinRegistry()
	}
	if opts.Resolver == nil {
		opts.Resolver = model.NewResolver()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Runtime{
		byName:   map[string]*Agent{},
		byID:     map[string]*Agent{},
		bus:      opts.Bus,
		tools:    opts.Tools,
		resolver: opts.Resolver,
		logger:   opts.Logger,
	}
}

// Bus exposes the runtime's message bus.
func (r *Runtime) Bus() *bus.Bus { return r.bus }

// Tools exposes the runtime's tool registry.
func (r *Runtime) Tools() *tool.Registry { return r.tools }

// Spawn creates an agent, registers its mailbox and starts its worker.
// Agent names are unique within a runtime.
func (r *Runtime) Spawn(name, modelRef string) (*Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, core.NewError(core.ErrUnknownAgent, "runtime is closed")
	}
	if _, ok := r.byName[name]; ok {
		return nil, core.NewError(core.ErrDuplicateName, "agent %q already exists", name)
	}

	a := newAgent(name, modelRef)
	if err := r.bus.Register(a.id); err != nil {
		return nil, err
	}
	r.byName[name] = a
	r.byID[a.id] = a

	responder := r.resolver.ResponderFor(modelRef)
	r.workers.Add(1)
	go r.work(a, responder)

	r.logger.Info("agent spawned", "agent", name, "id", a.id, "model", modelRef)
	return a, nil
}

// Lookup returns the agent with the given name.
func (r *Runtime) Lookup(name string) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	return a, ok
}

// LookupID returns the agent with the given id.
func (r *Runtime) LookupID(id string) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// Agents returns metadata for all spawned agents. Order is not
// guaranteed; callers sort as needed.
func (r *Runtime) Agents() []core.AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.AgentInfo, 0, len(r.byName))
	for _, a := range r.byName {
		out = append(out, a.Info())
	}
	return out
}

// work is the per-agent message loop. It serializes handler execution for
// one agent and survives handler failures.
func (r *Runtime) work(a *Agent, responder model.Responder) {
	defer r.workers.Done()
	for {
		msg, ok := r.bus.Receive(a.id)
		if !ok {
			return
		}
		a.setStatus(core.StatusBusy)

		switch msg.Kind {
		case core.KindAsk:
			reply, err := responder.Respond(context.Background(), a.Info(), msg.Payload)
			if err != nil {
				a.setStatus(core.StatusError)
				r.bus.RespondError(msg.Correlation, err)
				r.logger.Error("ask handler failed", "agent", a.name, "error", err)
				continue
			}
			r.bus.Respond(msg.Correlation, reply)
		case core.KindTell:
			r.logger.Debug("tell received", "agent", a.name, "payload", msg.Payload.Format())
		}

		a.setStatus(core.StatusIdle)
	}
}

// Close shuts down the bus and waits for all workers to exit.
func (r *Runtime) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.bus.Close()
	r.workers.Wait()
}
