// Package model defines the provider abstraction behind agent responses.
// A Descriptor names a model as "provider/name" (for example "openai/gpt-4o");
// the Resolver maps the provider prefix onto a registered Provider and wraps
// it as a Responder. When no provider matches, a deterministic echo responder
// is used so scripts run without any API credentials.
package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentscript/core"
)

// Descriptor identifies a model by provider prefix and model name.
type Descriptor struct {
	Provider string
	Name     string
}

// ParseDescriptor splits a "provider/name" model reference. A reference
// without a slash is treated as a bare model name with no provider.
func ParseDescriptor(ref string) Descriptor {
	if idx := strings.Index(ref, "/"); idx >= 0 {
		return Descriptor{Provider: ref[:idx], Name: ref[idx+1:]}
	}
	return Descriptor{Name: ref}
}

// String renders the descriptor back into its "provider/name" form.
func (d Descriptor) String() string {
	if d.Provider == "" {
		return d.Name
	}
	return d.Provider + "/" + d.Name
}

// Responder produces an agent's answer to an incoming ask payload.
type Responder interface {
	// Respond computes the reply for the given agent and payload.
	Respond(ctx context.Context, agent core.AgentInfo, payload core.Value) (core.Value, error)
}

// Provider is a minimal completion backend. Adapters for concrete SDKs
// (openai, anthropic) implement this with a single non-streaming call.
type Provider interface {
	// Complete runs a single-turn completion against the named model.
	Complete(ctx context.Context, model, system, prompt string) (string, error)
}

// EchoResponder answers deterministically without calling any backend.
// It is the default responder so scripts are runnable offline and tests
// can assert exact reply values.
type EchoResponder struct{}

// Respond returns a stable reply derived from the agent name and payload.
func (EchoResponder) Respond(_ context.Context, agent core.AgentInfo, payload core.Value) (core.Value, error) {
	return core.String(fmt.Sprintf("%s: %s", agent.Name, payload.Format())), nil
}

// Resolver maps provider prefixes onto registered providers and builds
// responders for agents. It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	providers map[string]Provider
	fallback  Responder
}

// NewResolver creates a resolver with no providers and an echo fallback.
func NewResolver() *Resolver {
	return &Resolver{
		providers: map[string]Provider{},
		fallback:  EchoResponder{},
	}
}

// RegisterProvider binds a provider prefix (for example "openai") to a backend.
// Registering the same prefix again replaces the previous backend.
func (r *Resolver) RegisterProvider(prefix string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[prefix] = p
}

// SetFallback replaces the responder used when no provider matches.
func (r *Resolver) SetFallback(resp Responder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = resp
}

// ResponderFor returns the responder for a model reference. A registered
// provider matching the descriptor's prefix wins; otherwise the fallback.
func (r *Resolver) ResponderFor(ref string) Responder {
	d := ParseDescriptor(ref)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[d.Provider]; ok {
		return &providerResponder{provider: p, model: d.Name}
	}
	return r.fallback
}

// providerResponder adapts a Provider into a Responder by rendering the
// agent goal as the system prompt and the payload as the user prompt.
type providerResponder struct {
	provider Provider
	model    string
}

func (pr *providerResponder) Respond(ctx context.Context, agent core.AgentInfo, payload core.Value) (core.Value, error) {
	system := agent.Goal
	if system == "" {
		system = fmt.Sprintf("You are %s.", agent.Name)
	}
	text, err := pr.provider.Complete(ctx, pr.model, system, payload.Format())
	if err != nil {
		return nil, fmt.Errorf("model completion failed: %w", err)
	}
	return core.String(text), nil
}
