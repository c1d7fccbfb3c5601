package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartScopePromptMentionsSetScope(t *testing.T) {
	p := &StartScopePrompt{}
	assert.Equal(t, "start-scope", p.Definition().Name)

	result, err := p.Get(nil)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Contains(t, result.Messages[0].Content.Text, "set_scope")
}

func TestFinishChecklistPromptListsOrderedConditions(t *testing.T) {
	p := &FinishChecklistPrompt{}
	assert.Equal(t, "finish-checklist", p.Definition().Name)

	result, err := p.Get(nil)
	require.NoError(t, err)
	assert.Contains(t, result.Messages[0].Content.Text, "analyze_impact must have been called")
}

func TestModesResourceListsAllFiveModes(t *testing.T) {
	r := &ModesResource{}
	assert.Equal(t, "chainguard://modes", r.Definition().URI)

	result, err := r.Read()
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	for _, mode := range []string{"programming", "content", "devops", "research", "generic"} {
		assert.Contains(t, result.Contents[0].Text, mode)
	}
}

func TestGuardrailsResourceReadReturnsNonEmptyContent(t *testing.T) {
	r := &GuardrailsResource{}
	result, err := r.Read()
	require.NoError(t, err)
	assert.NotEmpty(t, result.Contents[0].Text)
}

func TestToolReferenceResourceReadReturnsNonEmptyContent(t *testing.T) {
	r := &ToolReferenceResource{}
	assert.Equal(t, "chainguard://tool-reference", r.Definition().URI)

	result, err := r.Read()
	require.NoError(t, err)
	assert.NotEmpty(t, result.Contents[0].Text)
}
