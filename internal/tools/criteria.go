package tools

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/chainguard/internal/mcp"
)

func registerCriteria(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("criteria",
		"Return the active scope's acceptance criteria and their met/unmet status.",
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
				"acceptance_criteria": sess.State.Scope.AcceptanceCriteria,
				"status":              sess.State.CriteriaStatus,
			})
		}))

	reg.Register(newTool("criteria_update",
		"Mark one acceptance criterion met or unmet.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"criterion": {"type": "string"},
				"met": {"type": "boolean"}
			},
			"required": ["criterion", "met"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Criterion string `json:"criterion"`
				Met       bool   `json:"met"`
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

			if sess.State.Scope == nil {
				return errResult("no active scope")
			}
			if _, ok := sess.State.CriteriaStatus[a.Criterion]; !ok {
				return errResult("unknown criterion: %s", a.Criterion)
			}
			sess.State.CriteriaStatus[a.Criterion] = a.Met
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving criteria: %v", err)
			}
			return jsonResult(map[string]any{"criterion": a.Criterion, "met": a.Met})
		}))
}
