// Package registry provides the process-wide map from execution id to work
// log. Exactly one Registry instance exists per process, constructed at
// startup and injected into every component that needs it.
package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/regulata/researchd/pkg/worklog"
)

// Registry maps execution ids to live work logs. It holds shared, non-owning
// references: work logs are not copied, so mutations by the executing
// workflow are visible to concurrent readers. The map itself is guarded by a
// RWMutex; correctness depends only on individual map operations being
// atomic, not on transactions spanning a Get followed by a Set.
type Registry struct {
	workLogs map[string]*worklog.WorkLog
	mu       sync.RWMutex
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{workLogs: make(map[string]*worklog.WorkLog)}
}

// Get returns the work log registered under id, or nil if none exists.
func (r *Registry) Get(id string) *worklog.WorkLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workLogs[id]
}

// Set registers a work log under id, replacing any previous entry.
func (r *Registry) Set(id string, w *worklog.WorkLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workLogs[id] = w
}

// Contains reports whether an entry exists for id.
func (r *Registry) Contains(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.workLogs[id]
	return ok
}

// UpdateStatus sets the overall status of the work log registered under id.
// It returns false if no such entry exists.
func (r *Registry) UpdateStatus(id string, status worklog.TaskStatus) bool {
	r.mu.RLock()
	w, ok := r.workLogs[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	w.Status = status
	return true
}

// Delete removes the entry for id, reporting whether it existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workLogs[id]; !ok {
		return false
	}
	delete(r.workLogs, id)
	return true
}

// Len returns the number of registered work logs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workLogs)
}

// IDs returns the registered execution ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.workLogs))
	for id := range r.workLogs {
		ids = append(ids, id)
	}
	return ids
}

// PurgeExpired removes every entry whose expiry is in the past and returns
// how many were removed. Entries with no expiry are never purged. Safe to
// call concurrently with Get/Set/UpdateStatus: a reader that already fetched
// a reference keeps using its work log after removal.
func (r *Registry) PurgeExpired() int {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, w := range r.workLogs {
		if w.Expired(now) {
			delete(r.workLogs, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("Purged expired work logs", "count", removed, "remaining", len(r.workLogs))
	}
	return removed
}
