package content

import "github.com/chainguard-dev/chainguard/internal/mcp"

// --- chainguard://modes resource ---

// ModesResource documents the five task modes and the features each enables.
type ModesResource struct{}

func (r *ModesResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "chainguard://modes",
		Name:        "Task Modes",
		Description: "Reference of every task mode and the enforcement features it enables",
		MimeType:    "text/markdown",
	}
}

func (r *ModesResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{URI: "chainguard://modes", MimeType: "text/markdown", Text: modesContent},
		},
	}, nil
}

const modesContent = `# Task Modes

| Mode | Syntax validation | DB enforcement | HTTP enforcement | Scope enforcement | File tracking | Word count | Chapters | Command log | Checkpoints | Health checks | Sources | Facts |
|---|---|---|---|---|---|---|---|---|---|---|---|---|
| programming | yes | yes | yes | yes | yes | no | no | no | no | no | no | no |
| content | no | no | no | no | yes | yes | yes | no | no | no | no | no |
| devops | no | no | yes | yes | yes | no | no | yes | yes | yes | no | no |
| research | no | no | no | no | no | no | no | no | no | no | yes | yes |
| generic | no | no | no | no | yes | no | no | no | no | no | no | no |

An unrecognized mode string falls back to programming.
`

// --- chainguard://guardrails resource ---

// GuardrailsResource documents the scope gate and completion gate.
type GuardrailsResource struct{}

func (r *GuardrailsResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "chainguard://guardrails",
		Name:        "Guardrails",
		Description: "Reference of the scope gate and completion gate checks, their severity, and override rules",
		MimeType:    "text/markdown",
	}
}

func (r *GuardrailsResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{URI: "chainguard://guardrails", MimeType: "text/markdown", Text: guardrailsContent},
		},
	}, nil
}

const guardrailsContent = `# Guardrails

## Scope gate (dispatch-time)

Runs before every tool call outside the always-allowed set
(set_scope, projects, config, and the kanban tools). HARD_BLOCK, no
override: there must be an active scope.

## Completion gate (finish)

Runs in this order when finish is called:

1. impact_report_required — HARD_BLOCK, no override.
2. no_blocking_alerts — HARD_BLOCK, no override (acknowledge instead).
3. http_tests_required — SOFT_BLOCK, force=true overrides.
4. checklist_must_pass — SOFT_BLOCK, force=true overrides.
5. acceptance_criteria_met — SOFT_BLOCK, force=true overrides.
6. validations_must_pass — SOFT_BLOCK, force=true overrides.

## Schema freshness (edit-time, chainguard-hook)

The chainguard-hook binary blocks a write to a schema-sensitive path (any
path segment matching one of the default schema patterns) when
db_schema has not been run within the schema-check TTL. The hook exits
with code 2; there is no force override.
`

// --- chainguard://tool-reference resource ---

// ToolReferenceResource is a quick-reference card for every registered tool.
type ToolReferenceResource struct{}

func (r *ToolReferenceResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "chainguard://tool-reference",
		Name:        "Tool Reference",
		Description: "Quick reference for every tool exposed by the server",
		MimeType:    "text/markdown",
	}
}

func (r *ToolReferenceResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{URI: "chainguard://tool-reference", MimeType: "text/markdown", Text: toolReferenceContent},
		},
	}, nil
}

const toolReferenceContent = `# Tool Reference

## Always allowed (no scope required)
set_scope, projects, config, kanban_init, kanban, kanban_show,
kanban_add, kanban_move, kanban_detail, kanban_update, kanban_delete,
kanban_archive, kanban_history

## Scope-gated

- status, phase, context — read/update project phase and current task
- track_file, track_batch, out_of_scope — file change tracking
- checklist, checklist_run — manage and run the scope checklist
- criteria, criteria_update — acceptance criteria status
- validate_syntax — syntax-check a file
- alerts, alert, clear_alerts — raise, review, and clear alerts
- db_connect, db_schema, db_table, db_disconnect — connect to and inspect the database
- http_login, http_test, set_base_url, clear_session, ensure_session — authenticated HTTP testing
- run_tests, test_config, test_status — execute and configure the project's test command
- analyze_impact — generate the impact report finish requires
- finish — the completion gate
- recall, history, find_similar_errors, record_error, learn — error history and recall
- word_count, track_chapter — content-mode tracking
- log_command, checkpoint, health_check — devops-mode tracking
- add_source, index_fact, sources, facts — research-mode tracking
`
