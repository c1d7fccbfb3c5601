package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextReturnsMarkerAndScopeSummary(t *testing.T) {
	_, reg, dir := testDeps(t)

	callTool(t, reg, "set_scope", map[string]any{
		"working_dir": dir,
		"description": "impl A",
		"modules":     []string{"**"},
	})

	result := callTool(t, reg, "context", map[string]any{"working_dir": dir})
	assert.Contains(t, result.Content[0].Text, `"has_scope": true`)
	assert.Contains(t, result.Content[0].Text, "impl A")
	assert.Contains(t, result.Content[0].Text, `"ctx"`)
}

func TestContextHasScopeFalseBeforeSetScope(t *testing.T) {
	_, reg, dir := testDeps(t)

	result := callTool(t, reg, "context", map[string]any{"working_dir": dir})
	assert.Contains(t, result.Content[0].Text, `"has_scope": false`)
}
