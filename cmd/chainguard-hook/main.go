// Command chainguard-hook is invoked by the host runtime before each
// file-writing action. It independently re-derives the same project ID
// the server uses, reads that project's enforcement snapshot, and
// decides whether to block the action — without depending on the
// server process being reachable (spec.md §6 "Hook contract").
//
// Input is a single JSON object on stdin: {tool_name, tool_input, cwd}.
// tool_input.file_path, when present, is used to locate the project
// root; cwd is the fallback.
//
// Exit codes: 0 allow, 2 block. A block message is printed to stdout.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chainguard-dev/chainguard/internal/idkey"
	"github.com/chainguard-dev/chainguard/internal/project"
)

// schemaTTLSeconds is the fallback freshness window used when the
// enforcement snapshot doesn't carry its own TTL (older server
// versions); kept in sync with config.defaults().Schema.CheckTTLSeconds.
const schemaTTLSeconds = 600

// defaultSchemaPatterns mirrors config.defaults().Schema.Patterns. The
// hook can't load chainguard.toml (it may run with a trimmed
// environment), so it re-derives the check from the fixed default set.
var defaultSchemaPatterns = []string{
	"*.sql", "*migration*", "*migrate*", "*schema*", "*database*",
}

type hookInput struct {
	ToolName  string         `json:"tool_name"`
	ToolInput map[string]any `json:"tool_input"`
	Cwd       string         `json:"cwd"`
}

func main() {
	os.Exit(run())
}

func run() int {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chainguard-hook: reading stdin: %v\n", err)
		return 0 // fail open: malformed input never blocks the host action
	}

	var in hookInput
	if err := json.Unmarshal(raw, &in); err != nil {
		fmt.Fprintf(os.Stderr, "chainguard-hook: parsing input: %v\n", err)
		return 0
	}

	filePath, _ := in.ToolInput["file_path"].(string)
	projectDir := in.Cwd
	if filePath != "" {
		projectDir = idkey.ProjectDirFromFile(filePath)
	}
	if projectDir == "" {
		projectDir = in.Cwd
	}

	projectID, _, err := idkey.Derive(projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chainguard-hook: deriving project id: %v\n", err)
		return 0
	}

	home := os.Getenv("CHAINGUARD_HOME")
	if home == "" {
		if hd, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(hd, ".chainguard")
		}
	}
	snapPath := filepath.Join(home, "projects", projectID, "enforcement-state.json")

	snap, err := readSnapshot(snapPath)
	if err != nil {
		// No snapshot yet means no scope has ever been set for this
		// project: nothing to enforce.
		return 0
	}

	if msg, block := evaluate(snap, filePath); block {
		fmt.Println(msg)
		return 2
	}
	return 0
}

func readSnapshot(path string) (project.EnforcementSnapshot, error) {
	var snap project.EnforcementSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

// evaluate applies the hook's block rules in order: stale schema check
// on a schema-sensitive write, then any unacknowledged blocking alert.
func evaluate(snap project.EnforcementSnapshot, filePath string) (string, bool) {
	if filePath != "" && matchesSchemaPattern(filePath) {
		ttl := time.Duration(snap.SchemaCheckTTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = schemaTTLSeconds * time.Second
		}
		if snap.SchemaCheckedAt == nil || time.Since(*snap.SchemaCheckedAt) >= ttl {
			return fmt.Sprintf("SCHEMA STALE: %s matches a schema-sensitive pattern but the database "+
				"schema has not been inspected in the last %s. Run db_schema before editing this file.",
				filePath, ttl), true
		}
	}

	if len(snap.BlockingAlerts) > 0 {
		return fmt.Sprintf("BLOCKED: %d unacknowledged blocking alert(s) for this project: %s. "+
			"Acknowledge them with clear_alerts before continuing.",
			len(snap.BlockingAlerts), strings.Join(snap.BlockingAlerts, "; ")), true
	}

	return "", false
}

// matchesSchemaPattern reports whether any segment of path (a directory
// name or the file name) matches one of defaultSchemaPatterns.
func matchesSchemaPattern(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		for _, p := range defaultSchemaPatterns {
			if ok, _ := filepath.Match(p, seg); ok {
				return true
			}
		}
	}
	return false
}
