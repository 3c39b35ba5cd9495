// Tracks which store files are currently open within the process.

package docstore

import "sync"

// Registry tracks the set of paths owned by live [Store] instances and
// guarantees at most one owner per path. The zero value is not usable; use
// [NewRegistry].
//
// The registry is process-local only. It does not protect against another
// process opening the same file.
type Registry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewRegistry creates an empty registry. Pass it through [Options.Registry]
// to scope path ownership to an application-owned component instead of the
// package-level default.
func NewRegistry() *Registry {
	return &Registry{paths: make(map[string]struct{})}
}

// register claims path. It returns false if the path is already owned.
func (r *Registry) register(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.paths[path]; ok {
		return false
	}
	r.paths[path] = struct{}{}
	return true
}

// unregister releases path. Releasing an unclaimed path is a no-op.
func (r *Registry) unregister(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.paths, path)
}

// defaultRegistry backs stores opened without an explicit registry.
var defaultRegistry = NewRegistry()
