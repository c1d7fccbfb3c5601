package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// runInfo handles the "chainguard-server info" subcommand.
// It prints general configuration information and, with flags,
// client-specific MCP configuration snippets.
func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	opencode := fs.Bool("opencode", false, "show OpenCode MCP client configuration")
	claude := fs.Bool("claude", false, "show Claude Desktop MCP client configuration")
	cursor := fs.Bool("cursor", false, "show Cursor MCP client configuration")
	fs.Parse(args)

	switch {
	case *opencode:
		printOpenCodeConfig()
	case *claude:
		printClaudeConfig()
	case *cursor:
		printCursorConfig()
	default:
		printGeneralInfo()
	}
}

func printGeneralInfo() {
	fmt.Fprintf(os.Stdout, `chainguard %s — coordination service for AI coding agents

chainguard sits between a coding agent and the host project, tracking
scope, validating edits, and enforcing a completion gate before the
agent can call a task finished. A companion enforcement hook reads the
state this server writes and blocks risky tool calls out of process.

TRANSPORT

  stdio (only mode)
    Communicates over stdin/stdout using JSON-RPC 2.0 (MCP protocol).
    Launched as a subprocess by an MCP client; one server instance per
    project working directory.

STORAGE

  Per-project state lives under $CHAINGUARD_HOME/projects/<id>/
  (default: ~/.chainguard), where <id> is a 16-character fingerprint
  derived from the project's git remote, git top-level path, or cwd.

MODES

  programming  syntax validation, DB schema freshness, scope
               enforcement, HTTP endpoint testing, file tracking
  content      word count and chapter tracking
  devops       command logging, checkpoints, health checks
  research     source and fact indexing
  generic      file tracking only

TOOLS

  Scope & status:     set_scope, status, phase, context, projects, config
  File tracking:       track_file, track_batch, out_of_scope
  Checklist/criteria:  checklist, checklist_run, criteria, criteria_update
  Validation:          validate_syntax
  Alerts:              alerts, alert, clear_alerts
  Database:            db_connect, db_schema, db_table, db_disconnect
  HTTP:                http_login, http_test, set_base_url, clear_session, ensure_session
  Tests:               run_tests, test_config, test_status
  Completion gate:     analyze_impact, finish
  History:             recall, history, find_similar_errors, record_error, learn
  Content mode:        word_count, track_chapter
  Devops mode:         log_command, checkpoint, health_check
  Research mode:       add_source, index_fact, sources, facts
  Kanban:              kanban_init, kanban, kanban_show, kanban_add,
                       kanban_move, kanban_detail, kanban_update,
                       kanban_delete, kanban_archive, kanban_history

PROMPTS

  start-scope          Guide for declaring a task scope before editing
  finish-checklist      Explains what finish requires before it will pass

RESOURCES

  chainguard://modes          Task mode reference
  chainguard://guardrails     Scope gate / completion gate reference
  chainguard://tool-reference Quick reference for every tool

GETTING STARTED

  1. Call set_scope with a description, file-glob modules, acceptance
     criteria, and a mode.
  2. Work normally; track_file validates and records each edit.
  3. Call analyze_impact, resolve anything it flags, then call finish.

CLIENT CONFIGURATION

  To see configuration for a specific MCP client, run:

    chainguard-server info --opencode
    chainguard-server info --claude
    chainguard-server info --cursor
`, Version)
}

func printOpenCodeConfig() {
	printStdioConfig("OpenCode", ".opencode.json or opencode.json", `{
  "mcpServers": {
    "chainguard": {
      "command": "chainguard-server"
    }
  }
}`)
}

func printClaudeConfig() {
	printStdioConfig("Claude Desktop", "claude_desktop_config.json", `{
  "mcpServers": {
    "chainguard": {
      "command": "chainguard-server"
    }
  }
}`)
}

func printCursorConfig() {
	printStdioConfig("Cursor", ".cursor/mcp.json", `{
  "mcpServers": {
    "chainguard": {
      "command": "chainguard-server"
    }
  }
}`)
}

func printStdioConfig(client, file, config string) {
	fmt.Fprintf(os.Stdout, `%s — stdio mode
%s

Add to %s:

%s

chainguard-server runs as a subprocess, one per project directory. Set
CHAINGUARD_HOME to change where state is stored (default ~/.chainguard).

`, client, strings.Repeat("─", len(client)+14), file, config)
}
