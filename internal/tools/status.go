package tools

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/model"
)

func registerStatus(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("status",
		"Return the full current project state: phase, mode, counters, scope, alerts, and recent actions.",
		`{"type": "object", "properties": {"working_dir": {"type": "string"}}}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			a, err := decodeArgs[workingDir](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()
			return jsonResult(sess.State)
		}))

	reg.Register(newTool("phase",
		"Set the project's lifecycle phase (planning, implementation, testing, review, done) and optionally the current task description.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"phase": {"type": "string"},
				"current_task": {"type": "string"}
			},
			"required": ["phase"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Phase       string `json:"phase"`
				CurrentTask string `json:"current_task"`
			}
			a, err := decodeArgs[args](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a.workingDir)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			sess.State.Phase = model.Phase(a.Phase)
			if a.CurrentTask != "" {
				sess.State.CurrentTask = a.CurrentTask
			}
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving phase: %v", err)
			}
			return jsonResult(map[string]any{"phase": sess.State.Phase, "current_task": sess.State.CurrentTask})
		}))

	reg.Register(newTool("context",
		"Return the context marker the agent must echo on every call, plus a compact summary of the active scope and phase (spec.md §4.2 context marker).",
		`{"type": "object", "properties": {"working_dir": {"type": "string"}}}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			a, err := decodeArgs[workingDir](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			ps := sess.State
			description := ""
			if ps.Scope != nil {
				description = ps.Scope.Description
			}
			return jsonResult(map[string]any{
				"ctx":               d.Config.Dispatch.ContextMarker,
				"phase":             ps.Phase,
				"mode":              ps.Mode,
				"has_scope":         ps.Scope != nil,
				"scope_description": description,
			})
		}))

	reg.Register(newTool("projects",
		"List every project currently resident in the server's cache.",
		`{"type": "object", "properties": {}}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			projects := d.Manager.Projects()
			summaries := make([]map[string]any, 0, len(projects))
			for _, p := range projects {
				summaries = append(summaries, map[string]any{
					"project_id":   p.ProjectID,
					"project_name": p.ProjectName,
					"project_path": p.ProjectPath,
					"phase":        p.Phase,
					"mode":         p.Mode,
					"last_activity": p.LastActivity,
				})
			}
			return jsonResult(map[string]any{"projects": summaries})
		}))

	reg.Register(newTool("config",
		"Return the server's effective configuration (storage, thresholds, whitelist, version).",
		`{"type": "object", "properties": {}}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			return jsonResult(d.Config)
		}))
}
