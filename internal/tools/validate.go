package tools

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/chainguard/internal/mcp"
)

func registerValidate(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("validate_syntax",
		"Syntax-check a single file with the interpreter/compiler appropriate for its extension (php -l, node --check, tsc --noEmit, py_compile, or JSON parsing). Unsupported extensions are reported as skipped, not failed.",
		`{
			"type": "object",
			"properties": {"path": {"type": "string"}},
			"required": ["path"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				Path string `json:"path"`
			}
			a, err := decodeArgs[args](params)
			if err != nil {
				return errResult("%v", err)
			}
			if a.Path == "" {
				return errResult("path is required")
			}
			result := d.Validator.Validate(ctx, a.Path)
			return jsonResult(result)
		}))
}
