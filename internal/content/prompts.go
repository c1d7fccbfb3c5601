// Package content provides MCP prompts and resources for the
// chainguard server.
package content

import "github.com/chainguard-dev/chainguard/internal/mcp"

// --- start-scope prompt ---

// StartScopePrompt walks the agent through declaring a scope before it
// starts editing (spec.md §4.2 "set_scope must precede other tools").
type StartScopePrompt struct{}

func (p *StartScopePrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "start-scope",
		Description: "Guide for declaring a task scope before editing begins.",
		Arguments:   []mcp.PromptArgument{},
	}
}

func (p *StartScopePrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	return &mcp.PromptsGetResult{
		Description: "Guide for starting a new scope",
		Messages: []mcp.PromptMessage{
			{Role: "user", Content: mcp.TextContent(startScopeGuide)},
		},
	}, nil
}

const startScopeGuide = `# Start a Scope

Every tool call other than set_scope, projects, config, and the kanban
tools is blocked until a scope is active. Before editing anything:

1. Call set_scope with:
   - description: a one- or two-sentence summary of the task (truncated past 500 characters)
   - modules: glob patterns describing which files this task is allowed to touch
   - acceptance_criteria: a checklist of conditions that must hold for the task to be done
   - mode: one of programming, content, devops, research, or generic

2. Pick the mode that matches the work:
   - programming: syntax validation, scope enforcement, file tracking
   - content: word count and chapter tracking instead of syntax checks
   - devops: command logging, checkpoints, health checks
   - research: source and fact indexing
   - generic: minimal tracking only

3. Keep the scope narrow. Editing a file outside modules is recorded as
   an out-of-scope touch and surfaces in the impact report.

4. When the task changes meaningfully, call set_scope again — this
   resets scope-local counters (HTTP tests performed, checklist
   results, criteria status) but keeps project-level history intact.
`

// --- finish-checklist prompt ---

// FinishChecklistPrompt explains the two-phase completion gate.
type FinishChecklistPrompt struct{}

func (p *FinishChecklistPrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "finish-checklist",
		Description: "Explains what finish requires before it will succeed.",
		Arguments:   []mcp.PromptArgument{},
	}
}

func (p *FinishChecklistPrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	return &mcp.PromptsGetResult{
		Description: "Guide for the completion gate",
		Messages: []mcp.PromptMessage{
			{Role: "user", Content: mcp.TextContent(finishChecklistGuide)},
		},
	}, nil
}

const finishChecklistGuide = `# Before Calling finish

finish runs an ordered set of conditions. Each either blocks
unconditionally or can be overridden with force=true:

1. analyze_impact must have been called this session (no override).
2. No unacknowledged blocking-severity alerts (no override — acknowledge
   them with clear_alerts first).
3. At least one passing HTTP test, if the active mode requires it
   (force=true overrides).
4. No failing checklist items (force=true overrides).
5. Every acceptance criterion marked met (force=true overrides).
6. No tracked file still failing syntax validation (force=true overrides).

Call analyze_impact first. Read its findings. Resolve what you can,
then call finish. Use force=true only when you have a specific reason
to proceed with an open item.
`
