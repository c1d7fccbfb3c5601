package tools

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/model"
)

// validSeverities are the only severity values alert accepts (spec.md
// §3 "alert severity" and invariant I3, which only blocks on "blocking").
var validSeverities = map[string]model.Severity{
	"info":     model.SeverityInfo,
	"warn":     model.SeverityWarn,
	"blocking": model.SeverityBlocking,
}

func registerAlerts(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("alerts",
		"List all alerts for the project, including acknowledged ones.",
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
			return jsonResult(map[string]any{"alerts": sess.State.Alerts})
		}))

	reg.Register(newTool("alert",
		"Raise a new alert against the project. A blocking alert refuses finish until it is acknowledged (spec invariant I3), even with force=true.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"message": {"type": "string"},
				"severity": {"type": "string", "enum": ["info", "warn", "blocking"]}
			},
			"required": ["message"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Message  string `json:"message"`
				Severity string `json:"severity"`
			}
			a, err := decodeArgs[args](params)
			if err != nil {
				return errResult("%v", err)
			}
			if a.Message == "" {
				return errResult("message is required")
			}
			severity := model.SeverityWarn
			if a.Severity != "" {
				sev, ok := validSeverities[a.Severity]
				if !ok {
					return errResult("unknown severity %q: must be info, warn, or blocking", a.Severity)
				}
				severity = sev
			}

			sess, err := acquire(d, a.workingDir)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			sess.State.AddAlert(a.Message, severity)
			sess.State.Touch()
			if err := sess.Save(severity == model.SeverityBlocking); err != nil {
				return errResult("saving alert: %v", err)
			}
			return jsonResult(map[string]any{"message": a.Message, "severity": severity})
		}))

	reg.Register(newTool("clear_alerts",
		"Acknowledge every currently unacknowledged alert, clearing them from the completion gate's blocking check.",
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

			n := sess.State.AcknowledgeAlerts()
			sess.State.Touch()
			if err := sess.Save(true); err != nil {
				return errResult("saving alerts: %v", err)
			}
			return jsonResult(map[string]any{"acknowledged": n})
		}))
}
