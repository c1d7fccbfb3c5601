package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/chainguard-dev/chainguard/internal/history"
	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/model"
)

// matchesSchemaPattern reports whether rel looks like a schema-sensitive
// file per the project's configured patterns (spec.md §4.4 "schema
// invalidation": tracking such a file clears db_schema_checked_at).
func matchesSchemaPattern(patterns []string, rel string) bool {
	base := filepath.Base(rel)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

func sessNow() time.Time { return time.Now().UTC() }

// trackedFile is one file/action pair, shared by track_file's single-item
// schema and track_batch's array schema.
type trackedFile struct {
	File   string `json:"file"`
	Action string `json:"action"`
}

// trackOneFile applies one file-tracking event to ps: scope membership,
// syntax validation, changed-file bookkeeping, schema invalidation, and
// a history.jsonl entry. It's the shared core of track_file (one file)
// and track_batch (many), so both see identical per-file semantics.
func trackOneFile(ctx context.Context, d *Deps, ps *model.ProjectState, store *history.Store, tf trackedFile) map[string]any {
	rel := relativeTo(ps.ProjectPath, tf.File)

	inScope := ps.Scope != nil && ps.Scope.Matches(rel)
	if ps.Scope != nil && !inScope {
		ps.PushOutOfScopeFile(rel)
	}

	validation := "SKIP"
	if ps.Features().SyntaxValidation && tf.Action != "delete" {
		result := d.Validator.Validate(ctx, tf.File)
		switch {
		case result.Skipped:
			validation = "SKIP"
		case result.Valid:
			validation = "PASS"
			ps.ValidationsPassed++
			ps.ValidationPending = false
		default:
			validation = "FAIL: " + result.Message
			ps.ValidationsFailed++
			ps.ValidationPending = true
			recordValidationError(d, ps, store, rel, result.Tool, result.Message)
		}
		ps.FilesSinceValidation = 0
		now := sessNow()
		ps.LastValidation = &now
	} else {
		ps.FilesSinceValidation++
	}

	ps.PushChangedFile(rel)
	ps.FilesChanged++
	ps.PushRecentAction(tf.Action + " " + rel)
	if matchesSchemaPattern(d.Config.Schema.Patterns, rel) {
		ps.InvalidateSchemaCheck()
		ps.AddAlert("schema-sensitive file "+rel+" changed; re-run db_schema before the next schema-gated edit", model.SeverityWarn)
	}

	scopeDesc := ""
	if ps.Scope != nil {
		scopeDesc = ps.Scope.Description
	}
	entry := model.HistoryEntry{
		Timestamp:  sessNow(),
		File:       rel,
		Action:     model.Action(tf.Action),
		Validation: validation,
		ScopeDesc:  scopeDesc,
	}
	_ = store.Append(entry) // best-effort: one bad entry never blocks the whole batch

	return map[string]any{
		"file":       rel,
		"in_scope":   inScope || ps.Scope == nil,
		"validation": validation,
	}
}

func registerTracking(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("track_file",
		"Record that a file was edited, created, or deleted, validating its syntax when the mode requires it and logging the result to project history.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"file": {"type": "string"},
				"action": {"type": "string", "enum": ["edit", "create", "delete"]}
			},
			"required": ["file", "action"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				trackedFile
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
			store := history.New(d.Manager.HistoryPath(ps.ProjectID), d.Manager.ErrorIndexPath(ps.ProjectID))
			result := trackOneFile(ctx, d, ps, store, a.trackedFile)
			ps.Touch()

			if err := sess.Save(false); err != nil {
				return errResult("saving state: %v", err)
			}
			return jsonResult(result)
		}))

	reg.Register(newTool("track_batch",
		"Record several file edits/creates/deletes in one call, applying the same validation and scope bookkeeping track_file does to each.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"files": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"file": {"type": "string"},
							"action": {"type": "string", "enum": ["edit", "create", "delete"]}
						},
						"required": ["file", "action"]
					}
				}
			},
			"required": ["files"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Files []trackedFile `json:"files"`
			}
			a, err := decodeArgs[args](params)
			if err != nil {
				return errResult("%v", err)
			}
			if len(a.Files) == 0 {
				return errResult("files must contain at least one entry")
			}
			sess, err := acquire(d, a.workingDir)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			ps := sess.State
			store := history.New(d.Manager.HistoryPath(ps.ProjectID), d.Manager.ErrorIndexPath(ps.ProjectID))
			results := make([]map[string]any, 0, len(a.Files))
			for _, tf := range a.Files {
				results = append(results, trackOneFile(ctx, d, ps, store, tf))
			}
			ps.Touch()

			if err := sess.Save(false); err != nil {
				return errResult("saving state: %v", err)
			}
			return jsonResult(map[string]any{"results": results})
		}))

	reg.Register(newTool("out_of_scope",
		"List files touched outside the current scope's declared modules.",
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
			return jsonResult(map[string]any{"out_of_scope_files": sess.State.OutOfScopeFiles})
		}))
}

func relativeTo(root, path string) string {
	if root == "" {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && !filepath.IsAbs(rel) {
		return rel
	}
	return path
}

// recordValidationError indexes a syntax failure for later recall via
// find_similar_errors (spec.md §4.6). Best-effort: a write failure here
// never fails the track_file call.
func recordValidationError(d *Deps, ps *model.ProjectState, store *history.Store, rel, tool, message string) {
	scopeDesc := ""
	if ps.Scope != nil {
		scopeDesc = ps.Scope.Description
	}
	_ = store.RecordError(model.ErrorEntry{
		Timestamp:   sessNow(),
		FilePattern: model.FilePatternOf(rel),
		ErrorType:   tool,
		ErrorMsg:    message,
		ScopeDesc:   scopeDesc,
		ProjectID:   ps.ProjectID,
	})
}
