package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/model"
)

func registerScope(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("set_scope",
		"Declare the active task scope: description, module globs, acceptance criteria, checklist, and mode. Required before any other scope-gated tool.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"description": {"type": "string"},
				"modules": {"type": "array", "items": {"type": "string"}},
				"acceptance_criteria": {"type": "array", "items": {"type": "string"}},
				"checklist": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {"item": {"type": "string"}, "check": {"type": "string"}},
						"required": ["item", "check"]
					}
				},
				"mode": {"type": "string"}
			},
			"required": ["description"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Description        string                `json:"description"`
				Modules            []string              `json:"modules"`
				AcceptanceCriteria []string              `json:"acceptance_criteria"`
				Checklist          []model.ChecklistItem `json:"checklist"`
				Mode               string                `json:"mode"`
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

			mode := model.ParseMode(a.Mode)
			scope := model.NewScope(a.Description, a.Modules, a.AcceptanceCriteria, a.Checklist)
			sess.State.SetScope(scope, mode)
			sess.State.Touch()

			if err := sess.Save(true); err != nil {
				return errResult("saving scope: %v", err)
			}

			detail, err := jsonResult(map[string]any{
				"project_id":            sess.State.ProjectID,
				"mode":                  mode,
				"description_truncated": scope.DescriptionTruncated,
				"preamble":              model.Preamble(mode),
				"features":              model.Features(mode),
			})
			if err != nil {
				return nil, err
			}
			summary := mcp.TextContent(fmt.Sprintf("✓ Scope: %s", scope.Description))
			return &mcp.ToolsCallResult{Content: append([]mcp.ContentBlock{summary}, detail.Content...)}, nil
		}))
}
