package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chainguard-dev/chainguard/internal/history"
	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/model"
)

func registerDevops(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("log_command",
		"Record a shell command run against the project, for devops-mode auditing.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"command": {"type": "string"},
				"exit_code": {"type": "integer"}
			},
			"required": ["command"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Command  string `json:"command"`
				ExitCode int    `json:"exit_code"`
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

			ps := sess.State
			status := "ok"
			if a.ExitCode != 0 {
				status = "failed"
			}
			ps.PushRecentAction("command: " + a.Command)
			ps.Touch()

			store := history.New(d.Manager.HistoryPath(ps.ProjectID), d.Manager.ErrorIndexPath(ps.ProjectID))
			if err := store.Append(model.HistoryEntry{
				Timestamp:  sessNow(),
				File:       a.Command,
				Action:     model.Action("command"),
				Validation: status,
			}); err != nil {
				return errResult("appending history: %v", err)
			}
			if err := sess.Save(false); err != nil {
				return errResult("saving state: %v", err)
			}
			return jsonResult(map[string]any{"command": a.Command, "status": status})
		}))

	reg.Register(newTool("checkpoint",
		"Record a named checkpoint before a risky devops change, so recall() can surface it later.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"label": {"type": "string"}
			},
			"required": ["label"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Label string `json:"label"`
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

			ps := sess.State
			ps.PushRecentAction("checkpoint: " + a.Label)
			ps.Touch()

			store := history.New(d.Manager.HistoryPath(ps.ProjectID), d.Manager.ErrorIndexPath(ps.ProjectID))
			if err := store.Append(model.HistoryEntry{
				Timestamp:  sessNow(),
				File:       a.Label,
				Action:     model.Action("checkpoint"),
				Validation: "ok",
			}); err != nil {
				return errResult("appending history: %v", err)
			}
			if err := sess.Save(true); err != nil {
				return errResult("saving checkpoint: %v", err)
			}
			return jsonResult(map[string]any{"label": a.Label, "checkpointed_at": ps.LastActivity})
		}))

	reg.Register(newTool("health_check",
		"Probe a configured endpoint after a deploy and record whether it responded healthy.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"url": {"type": "string"}
			},
			"required": ["url"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				URL string `json:"url"`
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

			session := d.HTTP.Ensure(sess.State.ProjectID, a.URL)
			result, err := session.TestEndpoint(ctx, "GET", "/", nil)
			if err != nil {
				return errResult("probing %s: %v", a.URL, err)
			}

			healthy := result.StatusCode >= 200 && result.StatusCode < 300
			ps := sess.State
			ps.PushRecentAction("health_check: " + a.URL)
			if !healthy {
				ps.AddAlert(fmt.Sprintf("health_check failed for %s: status %d", a.URL, result.StatusCode), model.SeverityBlocking)
			}
			ps.Touch()
			if err := sess.Save(!healthy); err != nil {
				return errResult("saving state: %v", err)
			}
			return jsonResult(map[string]any{"url": a.URL, "healthy": healthy, "status_code": result.StatusCode})
		}))
}
