package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
}

func (s stubTool) Name() string                 { return s.name }
func (s stubTool) Description() string          { return "stub " + s.name }
func (s stubTool) InputSchema() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }
func (s stubTool) Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error) {
	return &ToolsCallResult{Content: []ContentBlock{TextContent("ok")}}, nil
}

type stubPrompt struct{ name string }

func (s stubPrompt) Definition() PromptDefinition { return PromptDefinition{Name: s.name} }
func (s stubPrompt) Get(arguments map[string]string) (*PromptsGetResult, error) {
	return &PromptsGetResult{Messages: []PromptMessage{}}, nil
}

type stubResource struct{ uri string }

func (s stubResource) Definition() ResourceDefinition { return ResourceDefinition{URI: s.uri} }
func (s stubResource) Read() (*ResourcesReadResult, error) {
	return &ResourcesReadResult{Contents: []ResourceContent{{URI: s.uri}}}, nil
}

func TestRegisterAndGetTool(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "set_scope"})

	got := r.Get("set_scope")
	require.NotNil(t, got)
	assert.Equal(t, "set_scope", got.Name())
	assert.Nil(t, r.Get("unknown_tool"))
}

func TestRegisterDuplicateToolPanics(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "finish"})
	assert.Panics(t, func() { r.Register(stubTool{name: "finish"}) })
}

func TestListReturnsToolsInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "first"})
	r.Register(stubTool{name: "second"})
	r.Register(stubTool{name: "third"})

	defs := r.List()
	require.Len(t, defs, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{defs[0].Name, defs[1].Name, defs[2].Name})
}

func TestHasPromptsAndResourcesFalseWhenEmpty(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.HasPrompts())
	assert.False(t, r.HasResources())
}

func TestRegisterPromptAndResource(t *testing.T) {
	r := NewRegistry()
	r.RegisterPrompt(stubPrompt{name: "onboarding"})
	r.RegisterResource(stubResource{uri: "chainguard://status"})

	assert.True(t, r.HasPrompts())
	assert.True(t, r.HasResources())
	require.NotNil(t, r.GetPrompt("onboarding"))
	require.NotNil(t, r.GetResource("chainguard://status"))
	assert.Nil(t, r.GetPrompt("missing"))
}

func TestRegisterDuplicatePromptPanics(t *testing.T) {
	r := NewRegistry()
	r.RegisterPrompt(stubPrompt{name: "x"})
	assert.Panics(t, func() { r.RegisterPrompt(stubPrompt{name: "x"}) })
}

func TestRegisterDuplicateResourcePanics(t *testing.T) {
	r := NewRegistry()
	r.RegisterResource(stubResource{uri: "chainguard://x"})
	assert.Panics(t, func() { r.RegisterResource(stubResource{uri: "chainguard://x"}) })
}
