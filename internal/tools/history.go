package tools

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/chainguard/internal/history"
	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/model"
)

func registerHistory(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("recall",
		"Return the most recent history entries for the project.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"limit": {"type": "integer"}
			}
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Limit int `json:"limit"`
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

			limit := a.Limit
			if limit <= 0 {
				limit = 20
			}
			store := history.New(d.Manager.HistoryPath(sess.State.ProjectID), d.Manager.ErrorIndexPath(sess.State.ProjectID))
			entries, err := store.Recent(limit)
			if err != nil {
				return errResult("reading history: %v", err)
			}
			return jsonResult(map[string]any{"entries": entries})
		}))

	reg.Register(newTool("history",
		"Return the project's full chronological activity log (every track_file/track_batch/command/checkpoint entry), independent of the truncated recent_actions summary in status.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"limit": {"type": "integer"}
			}
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Limit int `json:"limit"`
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

			limit := a.Limit
			if limit <= 0 {
				limit = 100
			}
			store := history.New(d.Manager.HistoryPath(sess.State.ProjectID), d.Manager.ErrorIndexPath(sess.State.ProjectID))
			entries, err := store.Recent(limit)
			if err != nil {
				return errResult("reading history: %v", err)
			}
			return jsonResult(map[string]any{"entries": entries})
		}))

	reg.Register(newTool("learn",
		"Record the resolution to a past error so find_similar_errors surfaces it for the next agent that hits the same failure.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"file": {"type": "string"},
				"error_type": {"type": "string"},
				"error_message": {"type": "string"},
				"resolution": {"type": "string"}
			},
			"required": ["file", "error_message", "resolution"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				File         string `json:"file"`
				ErrorType    string `json:"error_type"`
				ErrorMessage string `json:"error_message"`
				Resolution   string `json:"resolution"`
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

			scopeDesc := ""
			if sess.State.Scope != nil {
				scopeDesc = sess.State.Scope.Description
			}

			store := history.New(d.Manager.HistoryPath(sess.State.ProjectID), d.Manager.ErrorIndexPath(sess.State.ProjectID))
			entry := model.ErrorEntry{
				Timestamp:   sessNow(),
				FilePattern: model.FilePatternOf(a.File),
				ErrorType:   a.ErrorType,
				ErrorMsg:    a.ErrorMessage,
				ScopeDesc:   scopeDesc,
				ProjectID:   sess.State.ProjectID,
				Resolution:  a.Resolution,
			}
			if err := store.RecordError(entry); err != nil {
				return errResult("recording lesson: %v", err)
			}
			return jsonResult(entry)
		}))

	reg.Register(newTool("find_similar_errors",
		"Search the project's error index for past failures similar to a query string, ranked by token overlap with the error message, file pattern, and scope description.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"query": {"type": "string"}
			},
			"required": ["query"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Query string `json:"query"`
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

			store := history.New(d.Manager.HistoryPath(sess.State.ProjectID), d.Manager.ErrorIndexPath(sess.State.ProjectID))
			matches := store.FindSimilar(a.Query)
			return jsonResult(map[string]any{"matches": matches})
		}))

	reg.Register(newTool("record_error",
		"Manually index an error (and optionally its resolution) for future recall.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"file": {"type": "string"},
				"error_type": {"type": "string"},
				"error_message": {"type": "string"},
				"resolution": {"type": "string"}
			},
			"required": ["file", "error_message"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				File         string `json:"file"`
				ErrorType    string `json:"error_type"`
				ErrorMessage string `json:"error_message"`
				Resolution   string `json:"resolution"`
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

			scopeDesc := ""
			if sess.State.Scope != nil {
				scopeDesc = sess.State.Scope.Description
			}

			store := history.New(d.Manager.HistoryPath(sess.State.ProjectID), d.Manager.ErrorIndexPath(sess.State.ProjectID))
			entry := model.ErrorEntry{
				Timestamp:   sessNow(),
				FilePattern: model.FilePatternOf(a.File),
				ErrorType:   a.ErrorType,
				ErrorMsg:    a.ErrorMessage,
				ScopeDesc:   scopeDesc,
				ProjectID:   sess.State.ProjectID,
				Resolution:  a.Resolution,
			}
			if err := store.RecordError(entry); err != nil {
				return errResult("recording error: %v", err)
			}
			return jsonResult(entry)
		}))
}
