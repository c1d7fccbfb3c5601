package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryReturnsTrackedEntries(t *testing.T) {
	_, reg, dir := testDeps(t)

	callTool(t, reg, "set_scope", map[string]any{
		"working_dir": dir,
		"description": "impl A",
		"modules":     []string{"**"},
	})
	callTool(t, reg, "track_file", map[string]any{
		"working_dir": dir,
		"file":        "src/handler.go",
		"action":      "edit",
	})

	result := callTool(t, reg, "history", map[string]any{"working_dir": dir})
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "handler.go")
}

func TestLearnRecordsResolutionAndIsFindable(t *testing.T) {
	_, reg, dir := testDeps(t)

	result := callTool(t, reg, "learn", map[string]any{
		"working_dir":   dir,
		"file":          "src/handler.go",
		"error_type":    "syntax",
		"error_message": "unexpected token",
		"resolution":    "added missing closing brace",
	})
	assert.False(t, result.IsError)

	matches := callTool(t, reg, "find_similar_errors", map[string]any{
		"working_dir": dir,
		"query":       "unexpected token",
	})
	assert.Contains(t, matches.Content[0].Text, "added missing closing brace")
}
