// Package project implements the per-project state manager: a bounded
// LRU of projects, debounced coalesced writes, per-path write locks,
// deterministic project-ID derivation, and the enforcement snapshot
// consumed by the out-of-process hook (spec.md §4.1).
package project

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chainguard-dev/chainguard/internal/cache"
	"github.com/chainguard-dev/chainguard/internal/config"
	"github.com/chainguard-dev/chainguard/internal/idkey"
	"github.com/chainguard-dev/chainguard/internal/model"
)

// StateFileName, EnforcementFileName, HistoryFileName, and
// ErrorIndexFileName name the four files under each project's storage
// directory (spec.md §6 "Persisted state layout").
const (
	StateFileName      = "state.json"
	EnforcementFileName = "enforcement-state.json"
	HistoryFileName    = "history.jsonl"
	ErrorIndexFileName = "error_index.json"
)

// Manager owns the in-memory map of ProjectState and serializes disk
// access through the path-lock map (spec.md §3 "Ownership").
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger

	mu        sync.Mutex // guards locks/timers/dirty maps below
	lru       *cache.ProjectLRU[*model.ProjectState]
	locks     map[string]*sync.Mutex
	timers    map[string]*time.Timer
	dirty     map[string]bool
	pathLocks cache.PathLocks
}

// NewManager creates a Manager rooted at cfg.Storage.Home.
func NewManager(cfg *config.Config, logger *slog.Logger) (*Manager, error) {
	if err := os.MkdirAll(cfg.Storage.Home, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage home %s: %w", cfg.Storage.Home, err)
	}

	m := &Manager{
		cfg:    cfg,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
		timers: make(map[string]*time.Timer),
		dirty:  make(map[string]bool),
	}

	lru, err := cache.NewProjectLRU[*model.ProjectState](cfg.Storage.ProjectCap, m.onEvict)
	if err != nil {
		return nil, fmt.Errorf("creating project LRU: %w", err)
	}
	m.lru = lru
	return m, nil
}

// onEvict flushes a project's pending write before it drops out of the
// bounded cache, then prunes its path lock (spec.md §4.1).
func (m *Manager) onEvict(id string, ps *model.ProjectState) {
	if m.isDirty(id) {
		if err := m.writeState(id, ps); err != nil {
			m.logger.Error("flush on eviction failed", "project_id", id, "error", err)
		}
	}
	m.clearDirty(id)
	m.pathLocks.Prune(m.stateFilePath(id))
}

// Dir returns the storage directory for a project ID.
func (m *Manager) Dir(id string) string {
	return filepath.Join(m.cfg.Storage.Home, "projects", id)
}

func (m *Manager) stateFilePath(id string) string      { return filepath.Join(m.Dir(id), StateFileName) }
func (m *Manager) enforcementPath(id string) string    { return filepath.Join(m.Dir(id), EnforcementFileName) }

// HistoryPath returns the path to a project's append-only history log.
func (m *Manager) HistoryPath(id string) string { return filepath.Join(m.Dir(id), HistoryFileName) }

// ErrorIndexPath returns the path to a project's error index document.
func (m *Manager) ErrorIndexPath(id string) string { return filepath.Join(m.Dir(id), ErrorIndexFileName) }

// projectLock returns (creating if needed) the exclusive lock for id.
func (m *Manager) projectLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// Session is a handler's exclusive view of one project's state, held
// for the duration of its read-modify cycle (spec.md §5 "a handler
// holds the per-project lock for the duration of its read-modify
// cycle").
type Session struct {
	mgr   *Manager
	lock  *sync.Mutex
	State *model.ProjectState
}

// Release unlocks the project. Always call via defer immediately after Acquire.
func (s *Session) Release() { s.lock.Unlock() }

// Save marks the project dirty and either schedules a debounced write
// or, if immediate is true, writes synchronously (spec.md §4.1
// "Debounced save"). The enforcement snapshot is always refreshed
// synchronously regardless of immediate, per spec.md §4.1.
func (s *Session) Save(immediate bool) error {
	return s.mgr.save(s.State, immediate)
}

// ResolveWorkingDir resolves an optional explicit working directory
// argument, defaulting to the process's current directory.
func ResolveWorkingDir(arg string) (string, error) {
	if arg != "" {
		return filepath.Abs(arg)
	}
	return os.Getwd()
}

// Acquire resolves workingDir to a project ID, locks that project, and
// loads its state (from cache, from disk, or a fresh cold-start
// ProjectState on read failure — spec.md §4.1 "Failure semantics").
func (m *Manager) Acquire(workingDir string) (*Session, error) {
	id, _, err := idkey.Derive(workingDir)
	if err != nil {
		return nil, fmt.Errorf("deriving project id: %w", err)
	}

	lock := m.projectLock(id)
	lock.Lock()

	ps, ok := m.lru.Get(id)
	if !ok {
		ps = m.loadOrCold(id, workingDir)
		m.lru.Add(id, ps)
	}

	return &Session{mgr: m, lock: lock, State: ps}, nil
}

// loadOrCold reads state.json, falling back to a fresh ProjectState on
// any read failure (spec.md §4.1: "A read failure returns a fresh
// ProjectState (cold start)").
func (m *Manager) loadOrCold(id, workingDir string) *model.ProjectState {
	path := m.stateFilePath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		name := filepath.Base(workingDir)
		return model.New(id, name, workingDir)
	}

	var ps model.ProjectState
	if err := json.Unmarshal(data, &ps); err != nil {
		m.logger.Warn("state.json corrupt, cold-starting", "project_id", id, "error", err)
		name := filepath.Base(workingDir)
		return model.New(id, name, workingDir)
	}
	return &ps
}

func (m *Manager) isDirty(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty[id]
}

func (m *Manager) clearDirty(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dirty, id)
	if t, ok := m.timers[id]; ok {
		t.Stop()
		delete(m.timers, id)
	}
}

// save implements the debounced/immediate write plus the always-synchronous
// enforcement snapshot refresh (spec.md §4.1).
func (m *Manager) save(ps *model.ProjectState, immediate bool) error {
	id := ps.ProjectID

	m.mu.Lock()
	m.dirty[id] = true
	if t, ok := m.timers[id]; ok {
		t.Stop()
	}
	m.mu.Unlock()

	if immediate {
		err := m.writeState(id, ps)
		m.clearDirty(id)
		if snapErr := m.writeSnapshot(id, ps); snapErr != nil {
			m.logger.Error("enforcement snapshot write failed", "project_id", id, "error", snapErr)
		}
		return err
	}

	// Debounced: arm (or re-arm) a single coalesced-write timer.
	m.mu.Lock()
	m.timers[id] = time.AfterFunc(m.cfg.DebounceWindow(), func() {
		if err := m.writeState(id, ps); err != nil {
			m.logger.Error("debounced write failed", "project_id", id, "error", err)
			return
		}
		m.clearDirty(id)
	})
	m.mu.Unlock()

	// The snapshot is never debounced — it must reflect this save
	// immediately so the hook never sees stale flags (spec.md §4.1, §5).
	return m.writeSnapshot(id, ps)
}

// writeState atomically persists state.json, serialized per-path via
// the global path-lock map (spec.md §3 "Concurrency").
func (m *Manager) writeState(id string, ps *model.ProjectState) error {
	path := m.stateFilePath(id)
	lock := m.pathLocks.Lock(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating project dir: %w", err)
	}
	return atomicWriteJSON(path, ps)
}

// Flush awaits every pending debounced write (spec.md §5 "flush()
// awaits every pending task").
func (m *Manager) Flush() error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.dirty))
	for id := range m.dirty {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		ps, ok := m.lru.Get(id)
		if !ok {
			continue
		}
		if err := m.writeState(id, ps); err != nil && firstErr == nil {
			firstErr = err
		}
		m.clearDirty(id)
		_ = m.writeSnapshot(id, ps)
	}
	return firstErr
}

// Shutdown flushes all pending writes (spec.md §4.1 "Shutdown must
// flush all pending writes").
func (m *Manager) Shutdown() error { return m.Flush() }

// Projects lists every project currently resident in the LRU (backs
// the always-allowed "projects" tool).
func (m *Manager) Projects() []*model.ProjectState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ProjectState, 0, m.lru.Len())
	for _, id := range m.lru.Keys() {
		if ps, ok := m.lru.Get(id); ok {
			out = append(out, ps)
		}
	}
	return out
}

// Config exposes the manager's configuration to handlers that need
// thresholds (schema TTL, context marker, always-allowed set, ...).
func (m *Manager) Config() *config.Config { return m.cfg }

func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file for %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming temp file for %s: %w", filepath.Base(path), err)
	}
	return nil
}
