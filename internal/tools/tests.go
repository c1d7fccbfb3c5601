package tools

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/model"
	"github.com/chainguard-dev/chainguard/internal/testrunner"
)

func registerTests(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("run_tests",
		"Execute the project's configured test command (or auto-detect one from package.json/phpunit.xml/pytest config) and report parsed pass/fail counts.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"command": {"type": "string"},
				"args": {"type": "array", "items": {"type": "string"}}
			}
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Command string   `json:"command"`
				Args    []string `json:"args"`
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

			cfg := sess.State.TestConfig
			switch {
			case a.Command != "":
				cfg = &model.TestConfig{Command: a.Command, Args: a.Args, WorkingDir: sess.State.ProjectPath}
			case cfg == nil:
				detected, derr := testrunner.DetectCommand(sess.State.ProjectPath)
				if derr != nil {
					return errResult("no test command configured and none could be detected: %v", derr)
				}
				cfg = &detected
			}
			sess.State.TestConfig = cfg

			result := d.Tests.Run(ctx, *cfg)
			sess.State.TestResults = &result
			if result.Success {
				sess.State.TestsPassed++
			} else {
				sess.State.TestsFailed++
			}
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving test results: %v", err)
			}

			return jsonResult(result)
		}))

	reg.Register(newTool("test_config",
		"Get or set the project's test command without running it.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"command": {"type": "string"},
				"args": {"type": "array", "items": {"type": "string"}},
				"timeout_seconds": {"type": "integer"}
			}
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Command        string   `json:"command"`
				Args           []string `json:"args"`
				TimeoutSeconds int      `json:"timeout_seconds"`
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

			if a.Command != "" {
				sess.State.TestConfig = &model.TestConfig{
					Command:    a.Command,
					Args:       a.Args,
					Timeout:    a.TimeoutSeconds,
					WorkingDir: sess.State.ProjectPath,
				}
				sess.State.Touch()
				if err := sess.Save(false); err != nil {
					return errResult("saving test config: %v", err)
				}
			}
			return jsonResult(map[string]any{"test_config": sess.State.TestConfig})
		}))

	reg.Register(newTool("test_status",
		"Return the project's configured test command and the outcome of the most recent run_tests call.",
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

			return jsonResult(map[string]any{
				"test_config":  sess.State.TestConfig,
				"last_result":  sess.State.TestResults,
				"tests_passed": sess.State.TestsPassed,
				"tests_failed": sess.State.TestsFailed,
			})
		}))
}
