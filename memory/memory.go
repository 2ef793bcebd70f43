// Package memory implements the bounded, ordered conversation log and its
// snapshot mechanism (spec §3, §4.8). It is the leaf state the Orchestrator
// owns and the only component with write access to it (spec §5: one writer
// per request).
package memory

import (
	"sync"
	"time"
)

// Role distinguishes the two kinds of conversation participants the core
// models.
type Role string

const (
	// RoleUser marks an entry produced by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks an entry produced by the agent.
	RoleAssistant Role = "assistant"
)

// Entry is a single, immutable turn in the conversation log.
type Entry struct {
	Role      Role
	Content   string
	Timestamp time.Time
	Metadata  map[string]any
}

const defaultCapacity = 100

// Memory is an ordered, bounded sequence of Entry with FIFO eviction and a
// single-slot snapshot mechanism enabling "previous/just-now" time-semantic
// queries (spec §3 MemorySnapshot, §4.8).
//
// Grounded on runtime/agents/memory/inmem.Store: an in-process, mutex-guarded
// store that defensively copies slices on every read and write so callers
// can never observe or cause a data race by holding a reference.
type Memory struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
	snapshot []Entry
	hasSnap  bool
}

// New constructs a Memory with the given capacity. A non-positive capacity
// falls back to the spec default of 100.
func New(capacity int) *Memory {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Memory{capacity: capacity}
}

// Append adds entry to the live log, evicting the oldest entry if the log is
// at capacity. O(1) amortized.
func (m *Memory) Append(entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	if over := len(m.entries) - m.capacity; over > 0 {
		m.entries = m.entries[over:]
	}
}

// Len returns the number of entries currently in the live log.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// CreateSnapshot takes a shallow copy of the current live sequence. At most
// one snapshot is active at a time; a second call overwrites the first. The
// Orchestrator calls this immediately before appending the current user
// entry so that history queries never see the in-flight question (spec §3
// invariant).
func (m *Memory) CreateSnapshot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = append([]Entry(nil), m.entries...)
	m.hasSnap = true
}

// ClearSnapshot releases the active snapshot, if any.
func (m *Memory) ClearSnapshot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	m.hasSnap = false
}

// HasSnapshot reports whether a snapshot is currently active.
func (m *Memory) HasSnapshot() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasSnap
}

// Recent returns the last n entries from the snapshot (if useSnapshot is true
// and a snapshot is active) or from the live log otherwise. n <= 0 returns
// all available entries. The returned slice is a fresh copy safe for the
// caller to retain.
func (m *Memory) Recent(n int, useSnapshot bool) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.entries
	if useSnapshot && m.hasSnap {
		src = m.snapshot
	}
	if n <= 0 || n > len(src) {
		n = len(src)
	}
	out := make([]Entry, n)
	copy(out, src[len(src)-n:])
	return out
}

// LastUser returns the most recent user entry from the chosen view, or
// (Entry{}, false) if none exists.
func (m *Memory) LastUser(useSnapshot bool) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.entries
	if useSnapshot && m.hasSnap {
		src = m.snapshot
	}
	for i := len(src) - 1; i >= 0; i-- {
		if src[i].Role == RoleUser {
			return src[i], true
		}
	}
	return Entry{}, false
}

// All returns every entry in the chosen view, oldest first.
func (m *Memory) All(useSnapshot bool) []Entry {
	return m.Recent(0, useSnapshot)
}
