package tools

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/chainguard/internal/checklist"
	"github.com/chainguard-dev/chainguard/internal/mcp"
)

func registerChecklist(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("checklist",
		"Return the active scope's checklist and the last known pass/fail status for each item.",
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

			if sess.State.Scope == nil {
				return errResult("no active scope")
			}
			return jsonResult(map[string]any{
				"checklist": sess.State.Scope.Checklist,
				"results":   sess.State.ChecklistResults,
			})
		}))

	reg.Register(newTool("checklist_run",
		"Run every checklist item for the active scope concurrently against the configured command whitelist, and record pass/fail per item.",
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
			if ps.Scope == nil || len(ps.Scope.Checklist) == 0 {
				return jsonResult(map[string]any{"results": []any{}})
			}

			runner := checklist.New(d.Config.Checklist.Whitelist, d.Config.ChecklistTimeout(), ps.ProjectPath)
			results, err := runner.RunAll(ctx, ps.Scope.Checklist)
			if err != nil {
				return errResult("running checklist: %v", err)
			}

			for _, r := range results {
				ps.ChecklistResults[r.Item] = r.Passed
			}
			ps.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving checklist results: %v", err)
			}

			return jsonResult(map[string]any{"results": results})
		}))
}
