package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/chainguard-dev/chainguard/internal/config"
	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDeps wires a full Deps against a throwaway storage home, matching
// how cmd/chainguard-server assembles the server at startup.
func testDeps(t *testing.T) (*Deps, *mcp.Registry, string) {
	cfg := &config.Config{
		Storage:  config.StorageConfig{Home: t.TempDir(), ProjectCap: 10},
		Debounce: config.DebounceConfig{WindowMillis: 30},
		Schema: config.SchemaConfig{
			CheckTTLSeconds: 600,
			Patterns:        []string{"*.sql", "*migration*"},
		},
		HTTP:       config.HTTPConfig{SessionCap: 10, SessionTTLHours: 1},
		Validation: config.ValidationConfig{TimeoutSeconds: 5},
		Checklist:  config.ChecklistConfig{TimeoutSeconds: 5},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr, err := project.NewManager(cfg, logger)
	require.NoError(t, err)

	d := NewDeps(mgr, cfg)
	reg := mcp.NewRegistry()
	RegisterAll(reg, d)

	return d, reg, t.TempDir()
}

func callTool(t *testing.T, reg *mcp.Registry, name string, args any) *mcp.ToolsCallResult {
	t.Helper()
	tool := reg.Get(name)
	require.NotNil(t, tool, "tool %q not registered", name)

	raw, err := json.Marshal(args)
	require.NoError(t, err)

	result, err := tool.Execute(context.Background(), raw)
	require.NoError(t, err)
	return result
}

func TestSetScopeResponseStartsWithCheckmarkSummary(t *testing.T) {
	_, reg, dir := testDeps(t)

	result := callTool(t, reg, "set_scope", map[string]any{
		"working_dir": dir,
		"description": "impl A",
		"modules":     []string{"src/**"},
	})

	require.NotEmpty(t, result.Content)
	assert.Equal(t, "✓ Scope: impl A", result.Content[0].Text)
	assert.False(t, result.IsError)
}

func TestTrackFileInvalidatesSchemaCheckOnSchemaPatternFile(t *testing.T) {
	d, reg, dir := testDeps(t)

	callTool(t, reg, "set_scope", map[string]any{
		"working_dir": dir,
		"description": "impl A",
		"modules":     []string{"**"},
	})

	sess, err := d.Manager.Acquire(dir)
	require.NoError(t, err)
	now := sess.State.LastActivity
	sess.State.DBSchemaCheckedAt = &now
	require.NoError(t, sess.Save(true))
	sess.Release()

	callTool(t, reg, "track_file", map[string]any{
		"working_dir": dir,
		"file":        "db/migration_001.sql",
		"action":      "edit",
	})

	sess2, err := d.Manager.Acquire(dir)
	require.NoError(t, err)
	defer sess2.Release()
	assert.Nil(t, sess2.State.DBSchemaCheckedAt, "tracking a schema-pattern file must invalidate the cached schema check")
}

func TestTrackFileLeavesSchemaCheckAloneForUnrelatedFile(t *testing.T) {
	d, reg, dir := testDeps(t)

	callTool(t, reg, "set_scope", map[string]any{
		"working_dir": dir,
		"description": "impl A",
		"modules":     []string{"**"},
	})

	sess, err := d.Manager.Acquire(dir)
	require.NoError(t, err)
	now := sess.State.LastActivity
	sess.State.DBSchemaCheckedAt = &now
	require.NoError(t, sess.Save(true))
	sess.Release()

	callTool(t, reg, "track_file", map[string]any{
		"working_dir": dir,
		"file":        "src/handler.go",
		"action":      "edit",
	})

	sess2, err := d.Manager.Acquire(dir)
	require.NoError(t, err)
	defer sess2.Release()
	assert.NotNil(t, sess2.State.DBSchemaCheckedAt)
}

func TestTrackFileOutOfScopeIsRecorded(t *testing.T) {
	_, reg, dir := testDeps(t)

	callTool(t, reg, "set_scope", map[string]any{
		"working_dir": dir,
		"description": "impl A",
		"modules":     []string{"src/auth/**"},
	})

	callTool(t, reg, "track_file", map[string]any{
		"working_dir": dir,
		"file":        "src/billing/invoice.go",
		"action":      "edit",
	})

	result := callTool(t, reg, "out_of_scope", map[string]any{"working_dir": dir})
	assert.Contains(t, result.Content[0].Text, "invoice.go")
}

func TestFinishRequiresImpactReportBeforeSucceeding(t *testing.T) {
	_, reg, dir := testDeps(t)

	// generic mode carries no HTTP/checklist/criteria enforcement, so once
	// the impact-report gate is satisfied nothing else blocks finish.
	callTool(t, reg, "set_scope", map[string]any{
		"working_dir": dir,
		"description": "impl A",
		"modules":     []string{"**"},
		"mode":        "generic",
	})

	result := callTool(t, reg, "finish", map[string]any{"working_dir": dir})
	assert.Contains(t, result.Content[0].Text, "false")

	callTool(t, reg, "analyze_impact", map[string]any{"working_dir": dir})
	result2 := callTool(t, reg, "finish", map[string]any{"working_dir": dir})
	assert.Contains(t, result2.Content[0].Text, "true")
}

func TestFinishBlockedByPendingValidationFailure(t *testing.T) {
	d, reg, dir := testDeps(t)

	callTool(t, reg, "set_scope", map[string]any{
		"working_dir": dir,
		"description": "impl A",
		"modules":     []string{"**"},
	})
	callTool(t, reg, "analyze_impact", map[string]any{"working_dir": dir})

	sess, err := d.Manager.Acquire(dir)
	require.NoError(t, err)
	sess.State.ValidationPending = true
	require.NoError(t, sess.Save(true))
	sess.Release()

	result := callTool(t, reg, "finish", map[string]any{"working_dir": dir})
	assert.Contains(t, result.Content[0].Text, `"finished": false`)
	assert.Contains(t, result.Content[0].Text, "validations_must_pass")

	forced := callTool(t, reg, "finish", map[string]any{"working_dir": dir, "force": true})
	assert.Contains(t, forced.Content[0].Text, `"finished": true`)
}

func TestCriteriaUpdateRejectsUnknownCriterion(t *testing.T) {
	_, reg, dir := testDeps(t)
	callTool(t, reg, "set_scope", map[string]any{
		"working_dir":         dir,
		"description":         "impl A",
		"acceptance_criteria": []string{"tests pass"},
	})

	result := callTool(t, reg, "criteria_update", map[string]any{
		"working_dir": dir,
		"criterion":   "not a real criterion",
		"met":         true,
	})
	assert.True(t, result.IsError)
}

func TestWordCountAccumulatesTotal(t *testing.T) {
	_, reg, dir := testDeps(t)
	file := dir + "/notes.txt"
	require.NoError(t, os.WriteFile(file, []byte("one two three four"), 0o644))

	result := callTool(t, reg, "word_count", map[string]any{
		"working_dir": dir,
		"file":        file,
	})
	assert.Contains(t, result.Content[0].Text, `"words": 4`)
}
