package tools

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/chainguard/internal/analyzer"
	"github.com/chainguard-dev/chainguard/internal/guards"
	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/model"
)

func registerFinish(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("analyze_impact",
		"Generate an impact report covering out-of-scope edits, schema-sensitive file changes, and unacknowledged alerts. finish refuses to run until this has been called.",
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

			report := analyzer.Analyze(sess.State, d.Config.Schema.Patterns)
			sess.State.ImpactCheckPending = true
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving impact check state: %v", err)
			}
			return jsonResult(report)
		}))

	reg.Register(newTool("finish",
		"Run the completion gate and, if it passes (or is overridden with force), clear the active scope.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"force": {"type": "boolean"}
			}
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Force bool `json:"force"`
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
			gctx := &guards.GuardContext{
				Force:                 a.Force,
				ImpactReportAvailable: ps.ImpactCheckPending,
				BlockingAlertCount:    len(ps.UnacknowledgedBlockingAlerts()),
				HTTPRequired:          ps.Features().HTTPEnforcement,
				HTTPTestsPassed:       ps.HTTPTestsPerformed,
				ChecklistFailures:     countFalse(ps.ChecklistResults),
				UnmetCriteriaCount:    countFalse(ps.CriteriaStatus),
				ValidationPending:     ps.ValidationPending,
			}

			runner := guards.NewRunner()
			outcome := runner.Run(ctx, gctx, guards.CompletionGate)

			if outcome.Blocked {
				return jsonResult(map[string]any{
					"finished": false,
					"message":  outcome.FormatBlockMessage(),
					"outcome":  outcome,
				})
			}

			ps.ClearScope()
			ps.Phase = model.PhaseDone
			ps.Touch()
			if err := sess.Save(true); err != nil {
				return errResult("saving finished state: %v", err)
			}

			return jsonResult(map[string]any{
				"finished": true,
				"advisory": outcome.FormatAdvisoryMessage(),
				"outcome":  outcome,
			})
		}))
}

func countFalse(m map[string]bool) int {
	n := 0
	for _, v := range m {
		if !v {
			n++
		}
	}
	return n
}
