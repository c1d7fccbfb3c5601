package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chainguard-dev/chainguard/internal/chainerr"
	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/project"
)

// decodeArgs unmarshals raw tool-call arguments into T, tolerating an
// absent/empty argument object (every field then takes its zero value).
func decodeArgs[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, chainerr.Wrap(chainerr.InvalidInput, "invalid arguments", err)
	}
	return v, nil
}

// workingDir is embedded in nearly every tool's argument struct so
// handlers can resolve which project they're operating on.
type workingDir struct {
	WorkingDir string `json:"working_dir,omitempty"`
}

// acquire resolves a project.Session for args.WorkingDir, defaulting to
// the server process's current directory.
func acquire(d *Deps, wd workingDir) (*project.Session, error) {
	dir, err := project.ResolveWorkingDir(wd.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return d.Manager.Acquire(dir)
}

func jsonResult(v any) (*mcp.ToolsCallResult, error) { return mcp.JSONResult(v) }

func errResult(format string, args ...any) (*mcp.ToolsCallResult, error) {
	return mcp.ErrorResult(fmt.Sprintf(format, args...)), nil
}

// rawSchema is a convenience alias for inline JSON Schema literals.
func rawSchema(s string) json.RawMessage { return json.RawMessage(s) }

// funcTool adapts a name/description/schema/handler tuple into mcp.Tool,
// avoiding a boilerplate struct per tool across the 55 tools registered.
type funcTool struct {
	name        string
	description string
	schema      json.RawMessage
	handler     func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error)
}

func (t *funcTool) Name() string                  { return t.name }
func (t *funcTool) Description() string           { return t.description }
func (t *funcTool) InputSchema() json.RawMessage  { return t.schema }
func (t *funcTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	return t.handler(ctx, params)
}

func newTool(name, description, schema string, handler func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error)) mcp.Tool {
	return &funcTool{name: name, description: description, schema: rawSchema(schema), handler: handler}
}
