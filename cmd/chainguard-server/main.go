// Command chainguard-server runs the chainguard coordination service.
//
// It communicates over stdio using JSON-RPC 2.0 (MCP protocol) and
// persists per-project state under $CHAINGUARD_HOME (default
// ~/.chainguard), including the enforcement snapshot the companion
// chainguard-hook binary reads.
//
// Optional environment variables:
//
//	CHAINGUARD_HOME       - storage root (default: ~/.chainguard)
//	CHAINGUARD_CONFIG     - explicit path to chainguard.toml
//	CHAINGUARD_LOG_LEVEL  - debug, info, warn, error (default: info)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chainguard-dev/chainguard/internal/config"
	"github.com/chainguard-dev/chainguard/internal/content"
	"github.com/chainguard-dev/chainguard/internal/guards"
	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/project"
	"github.com/chainguard-dev/chainguard/internal/scheduler"
	"github.com/chainguard-dev/chainguard/internal/tools"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "info" {
		runInfo(os.Args[2:])
		return
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chainguard-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CHAINGUARD_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}
	logger.Info("starting chainguard-server", "version", version, "storage_home", cfg.Storage.Home)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mgr, err := project.NewManager(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating project manager: %w", err)
	}

	registry := mcp.NewRegistry()
	deps := tools.NewDeps(mgr, cfg)
	tools.RegisterAll(registry, deps)

	registry.RegisterPrompt(&content.StartScopePrompt{})
	registry.RegisterPrompt(&content.FinishChecklistPrompt{})
	registry.RegisterResource(&content.ModesResource{})
	registry.RegisterResource(&content.GuardrailsResource{})
	registry.RegisterResource(&content.ToolReferenceResource{})

	server := mcp.NewServer(registry, mcp.ServerInfo{
		Name:    cfg.Server.Name,
		Version: version,
	}, logger)
	server.SetGate(scopeGate(mgr), cfg.Dispatch.AlwaysAllowed)
	server.SetContextMarker(cfg.Dispatch.ContextMarker)

	sched := scheduler.NewScheduler(logger)
	sched.AddJob(&project.FlushJob{Manager: mgr}, 30*time.Second)
	sched.Start(ctx)
	defer sched.Stop()

	err = server.Run(ctx)
	if flushErr := mgr.Shutdown(); flushErr != nil {
		logger.Error("final flush failed", "error", flushErr)
	}
	return err
}

// scopeGate builds the dispatcher Gate that runs guards.DispatchGate
// before every non-always-allowed tool call (spec.md §4.2). It operates
// on the server process's own working directory, since stdio MCP
// clients run one server per project.
func scopeGate(mgr *project.Manager) mcp.Gate {
	return func(ctx context.Context, toolName string) *mcp.ToolsCallResult {
		dir, err := project.ResolveWorkingDir("")
		if err != nil {
			return mcp.ErrorResult(fmt.Sprintf("resolving working directory: %v", err))
		}
		sess, err := mgr.Acquire(dir)
		if err != nil {
			return mcp.ErrorResult(fmt.Sprintf("acquiring project session: %v", err))
		}
		defer sess.Release()

		gctx := &guards.GuardContext{
			ToolName: toolName,
			HasScope: sess.State.Scope != nil,
		}
		outcome := guards.NewRunner().Run(ctx, gctx, guards.DispatchGate)
		if outcome.Blocked {
			return mcp.ErrorResult(outcome.FormatBlockMessage())
		}
		return nil
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
