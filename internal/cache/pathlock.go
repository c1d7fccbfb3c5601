package cache

import "sync"

// PathLocks is the global path→lock map spec.md §4.1/§5 requires for
// serializing disk writes: "File writes serialize per-path via a global
// path→lock map whose locks are lazily created and pruned when the
// cached project is evicted." The map itself is guarded by a
// lazily-initialized mutex (spec.md §5: "Global structures ... are
// guarded by a lazily-initialized mutex — the laziness is required
// because initialization may occur outside a running event loop").
type PathLocks struct {
	once  sync.Once
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (p *PathLocks) init() {
	p.once.Do(func() {
		p.locks = make(map[string]*sync.Mutex)
	})
}

// Lock returns the mutex for path, creating it on first use.
func (p *PathLocks) Lock(path string) *sync.Mutex {
	p.init()
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[path]
	if !ok {
		l = &sync.Mutex{}
		p.locks[path] = l
	}
	return l
}

// Prune removes path's lock. Safe to call even while another goroutine
// holds the returned *sync.Mutex from a prior Lock call — the map entry
// is simply replaced on next use; the held lock is unaffected.
func (p *PathLocks) Prune(path string) {
	p.init()
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.locks, path)
}

// Len reports how many path locks are currently tracked.
func (p *PathLocks) Len() int {
	p.init()
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
