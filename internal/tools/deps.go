// Package tools implements every MCP tool chainguard exposes, each as
// a funcTool (built by newTool) satisfying mcp.Tool, grouped into one file per
// functional area (spec.md §4 "External interfaces / tool surface").
package tools

import (
	"time"

	"github.com/chainguard-dev/chainguard/internal/config"
	"github.com/chainguard-dev/chainguard/internal/dbinspect"
	"github.com/chainguard-dev/chainguard/internal/httpsession"
	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/project"
	"github.com/chainguard-dev/chainguard/internal/testrunner"
	"github.com/chainguard-dev/chainguard/internal/validatesyntax"
)

// Deps bundles every shared component a tool handler needs. Tools are
// thin: they acquire a project.Session, read/mutate ProjectState, and
// delegate the actual work to one of these.
type Deps struct {
	Manager   *project.Manager
	Config    *config.Config
	Validator *validatesyntax.Validator
	HTTP      *httpsession.Manager
	Tests     *testrunner.Runner
	DB        *dbinspect.Inspector
}

// NewDeps wires every component from a loaded config.
func NewDeps(mgr *project.Manager, cfg *config.Config) *Deps {
	return &Deps{
		Manager:   mgr,
		Config:    cfg,
		Validator: validatesyntax.New(cfg.ValidationTimeout()),
		HTTP:      httpsession.NewManager(cfg.HTTP.SessionCap, cfg.SessionTTL(), cfg.HTTP.CSRFFieldNames),
		Tests:     testrunner.New(10 * time.Second),
		DB:        dbinspect.New(cfg.SchemaCheckTTL()),
	}
}

// RegisterAll registers every tool this package defines onto reg.
func RegisterAll(reg *mcp.Registry, d *Deps) {
	registerScope(reg, d)
	registerStatus(reg, d)
	registerTracking(reg, d)
	registerChecklist(reg, d)
	registerCriteria(reg, d)
	registerValidate(reg, d)
	registerAlerts(reg, d)
	registerDB(reg, d)
	registerHTTP(reg, d)
	registerTests(reg, d)
	registerFinish(reg, d)
	registerHistory(reg, d)
	registerContent(reg, d)
	registerDevops(reg, d)
	registerResearch(reg, d)
	registerKanban(reg, d)
}
