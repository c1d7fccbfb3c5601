package project

import (
	"time"

	"github.com/chainguard-dev/chainguard/internal/model"
)

// EnforcementSnapshot is the compact document the out-of-process hook
// binary reads on every tool call (spec.md §6 "Enforcement snapshot").
// It carries exactly the fields the hook needs to decide block/allow
// without depending on the full ProjectState shape.
type EnforcementSnapshot struct {
	ProjectID           string    `json:"project_id"`
	Mode                string    `json:"mode"`
	HasScope            bool      `json:"has_scope"`
	SchemaCheckedAt     *time.Time `json:"db_schema_checked_at,omitempty"`
	SchemaCheckTTLSeconds int     `json:"schema_check_ttl_seconds"`
	BlockingAlerts      []string  `json:"blocking_alerts"`
	ImpactCheckPending  bool      `json:"impact_check_pending"`
	WrittenAt           time.Time `json:"written_at"`
}

// buildSnapshot derives the hook-facing snapshot from full project state.
func buildSnapshot(ps *model.ProjectState, ttlSeconds int) EnforcementSnapshot {
	blocking := make([]string, 0)
	for _, a := range ps.UnacknowledgedBlockingAlerts() {
		blocking = append(blocking, a.Message)
	}
	return EnforcementSnapshot{
		ProjectID:             ps.ProjectID,
		Mode:                  string(ps.Mode),
		HasScope:              ps.Scope != nil,
		SchemaCheckedAt:       ps.DBSchemaCheckedAt,
		SchemaCheckTTLSeconds: ttlSeconds,
		BlockingAlerts:        blocking,
		ImpactCheckPending:    ps.ImpactCheckPending,
		WrittenAt:             time.Now(),
	}
}

// writeSnapshot atomically persists the enforcement snapshot, serialized
// under the same path-lock discipline as the main state file.
func (m *Manager) writeSnapshot(id string, ps *model.ProjectState) error {
	path := m.enforcementPath(id)
	lock := m.pathLocks.Lock(path)
	lock.Lock()
	defer lock.Unlock()

	snap := buildSnapshot(ps, m.cfg.Schema.CheckTTLSeconds)
	return atomicWriteJSON(path, snap)
}
