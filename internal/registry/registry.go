// Package registry tracks every launched child process from spawn to
// exit. It is the single piece of shared mutable state in the
// execution subsystem; each record is mutated and removed only by the
// exit path of the launcher goroutine that owns the process.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// ErrDuplicatePID reports an Insert for a pid that is already tracked.
// OS pid allocation makes this unreachable in practice; it is a
// checked invariant, not an expected condition.
var ErrDuplicatePID = errors.New("pid already registered")

// Record is the live entry for one child process.
type Record struct {
	PID         int
	CommandLine string      // exact invocation string, for audit/listing
	StartTime   time.Time   // captured at spawn
	LogPath     string      // empty for inline executions without a sink
	Running     bool        // true from spawn until the exit path removes the record
	Process     *os.Process // owned by the launcher, referenced here
}

// Snapshot is a copy of a Record safe to hand to callers; it drops the
// process handle.
type Snapshot struct {
	PID         int       `json:"pid"`
	CommandLine string    `json:"command"`
	StartTime   time.Time `json:"start_time"`
	LogPath     string    `json:"log_file,omitempty"`
	Running     bool      `json:"running"`
}

func (r *Record) snapshot() Snapshot {
	return Snapshot{
		PID:         r.PID,
		CommandLine: r.CommandLine,
		StartTime:   r.StartTime,
		LogPath:     r.LogPath,
		Running:     r.Running,
	}
}

// Registry is a concurrency-safe pid → Record table preserving
// insertion order for listings.
type Registry struct {
	mu    sync.Mutex
	items map[int]*Record
	order []int
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{items: make(map[int]*Record)}
}

// Insert adds a record. It fails with ErrDuplicatePID if the pid is
// already present.
func (g *Registry) Insert(rec *Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.items[rec.PID]; ok {
		return fmt.Errorf("inserting pid %d: %w", rec.PID, ErrDuplicatePID)
	}
	g.items[rec.PID] = rec
	g.order = append(g.order, rec.PID)
	return nil
}

// Remove deletes the record for pid. Removing an absent pid is a no-op.
func (g *Registry) Remove(pid int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.items[pid]; !ok {
		return
	}
	delete(g.items, pid)
	for i, p := range g.order {
		if p == pid {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Get returns a snapshot of the record for pid.
func (g *Registry) Get(pid int) (Snapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.items[pid]
	if !ok {
		return Snapshot{}, false
	}
	return rec.snapshot(), true
}

// List returns snapshots of all tracked records in insertion order.
func (g *Registry) List() []Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Snapshot, 0, len(g.order))
	for _, pid := range g.order {
		out = append(out, g.items[pid].snapshot())
	}
	return out
}

// Len returns the number of tracked records.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.items)
}
