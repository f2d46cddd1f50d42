package model

import (
	"context"
	"testing"

	"github.com/hupe1980/agentscript/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	model  string
	system string
	prompt string
}

func (p *recordingProvider) Complete(_ context.Context, model, system, prompt string) (string, error) {
	p.model, p.system, p.prompt = model, system, prompt
	return "provider says hi", nil
}

func TestParseDescriptor(t *testing.T) {
	d := ParseDescriptor("openai/gpt-4o")
	assert.Equal(t, "openai", d.Provider)
	assert.Equal(t, "gpt-4o", d.Name)
	assert.Equal(t, "openai/gpt-4o", d.String())

	d = ParseDescriptor("local-model")
	assert.Empty(t, d.Provider)
	assert.Equal(t, "local-model", d.Name)
	assert.Equal(t, "local-model", d.String())

	// Only the first slash splits; model names may carry more.
	d = ParseDescriptor("anthropic/claude-3-5-sonnet/latest")
	assert.Equal(t, "anthropic", d.Provider)
	assert.Equal(t, "claude-3-5-sonnet/latest", d.Name)
}

func TestEchoResponder_Deterministic(t *testing.T) {
	agent := core.AgentInfo{Name: "helper"}
	for i := 0; i < 3; i++ {
		out, err := EchoResponder{}.Respond(context.Background(), agent, core.String("ping"))
		require.NoError(t, err)
		assert.Equal(t, core.String("helper: ping"), out)
	}
}

func TestResolver_ProviderSelection(t *testing.T) {
	r := NewResolver()
	rec := &recordingProvider{}
	r.RegisterProvider("openai", rec)

	// Descriptor with a registered provider hits the backend.
	resp := r.ResponderFor("openai/gpt-4o")
	out, err := resp.Respond(context.Background(), core.AgentInfo{Name: "a", Goal: "be helpful"}, core.String("question"))
	require.NoError(t, err)
	assert.Equal(t, core.String("provider says hi"), out)
	assert.Equal(t, "gpt-4o", rec.model)
	assert.Equal(t, "be helpful", rec.system)
	assert.Equal(t, "question", rec.prompt)

	// Unregistered prefixes fall back to the echo responder.
	resp = r.ResponderFor("anthropic/claude-3-5-sonnet")
	out, err = resp.Respond(context.Background(), core.AgentInfo{Name: "b"}, core.String("hello"))
	require.NoError(t, err)
	assert.Equal(t, core.String("b: hello"), out)
}

func TestResolver_GoallessAgentGetsDefaultSystemPrompt(t *testing.T) {
	r := NewResolver()
	rec := &recordingProvider{}
	r.RegisterProvider("openai", rec)

	_, err := r.ResponderFor("openai/gpt-4o").Respond(context.Background(), core.AgentInfo{Name: "scout"}, core.String("q"))
	require.NoError(t, err)
	assert.Equal(t, "You are scout.", rec.system)
}
