package tools

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/chainguard/internal/mcp"
)

func registerResearch(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("add_source",
		"Register a source (URL, citation, or file reference) consulted during research.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"source": {"type": "string"}
			},
			"required": ["source"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Source string `json:"source"`
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

			for _, s := range sess.State.Sources {
				if s == a.Source {
					return jsonResult(map[string]any{"sources": sess.State.Sources, "added": false})
				}
			}
			sess.State.Sources = append(sess.State.Sources, a.Source)
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving source: %v", err)
			}
			return jsonResult(map[string]any{"sources": sess.State.Sources, "added": true})
		}))

	reg.Register(newTool("index_fact",
		"Record a fact discovered during research so it can be recalled later.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"fact": {"type": "string"}
			},
			"required": ["fact"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Fact string `json:"fact"`
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

			sess.State.Facts = append(sess.State.Facts, a.Fact)
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving fact: %v", err)
			}
			return jsonResult(map[string]any{"facts": sess.State.Facts})
		}))

	reg.Register(newTool("sources",
		"List all sources registered for the project.",
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
			return jsonResult(map[string]any{"sources": sess.State.Sources})
		}))

	reg.Register(newTool("facts",
		"List all facts indexed for the project.",
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
			return jsonResult(map[string]any{"facts": sess.State.Facts})
		}))
}
