package core

import (
	"context"
	"sync"
	"time"
)

// AuditEntry records a committed mutation with the change set it produced.
type AuditEntry struct {
	Operation  string    `json:"operation"`
	Changes    []Change  `json:"changes"`
	RecordedAt time.Time `json:"recorded_at"`
}

// MemoryAuditSink retains audit entries in memory, most recent last. It is
// safe for concurrent use.
type MemoryAuditSink struct {
	mu      sync.Mutex
	entries []AuditEntry
	nowFn   func() time.Time
}

// NewMemoryAuditSink constructs an empty in-memory audit sink.
func NewMemoryAuditSink() *MemoryAuditSink {
	return &MemoryAuditSink{nowFn: func() time.Time { return time.Now().UTC() }}
}

// Record implements AuditSink. Operations that committed no changes are not
// recorded.
func (s *MemoryAuditSink) Record(_ context.Context, operation string, changes []Change) {
	if len(changes) == 0 {
		return
	}
	cpy := make([]Change, len(changes))
	copy(cpy, changes)
	s.mu.Lock()
	s.entries = append(s.entries, AuditEntry{
		Operation:  operation,
		Changes:    cpy,
		RecordedAt: s.nowFn(),
	})
	s.mu.Unlock()
}

// Entries returns a copy of all recorded audit entries in commit order.
func (s *MemoryAuditSink) Entries() []AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
