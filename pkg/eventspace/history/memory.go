package history

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory journal for testing and for servers that do
// not need the journal to survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	closed  bool
}

// NewMemoryStore creates a new in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (m *MemoryStore) Append(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.records = append(m.records, rec)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(limit int) ([]Record, error) {
	return m.list(limit, func(Record) bool { return true })
}

// ListByType implements Store.
func (m *MemoryStore) ListByType(eventType string, limit int) ([]Record, error) {
	return m.list(limit, func(rec Record) bool { return rec.EventType == eventType })
}

func (m *MemoryStore) list(limit int, keep func(Record) bool) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	var out []Record
	for _, rec := range m.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceiveTime.After(out[j].ReceiveTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.records), nil
}

// Prune implements Store.
func (m *MemoryStore) Prune(before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	kept := m.records[:0]
	for _, rec := range m.records {
		if !rec.ReceiveTime.Before(before) {
			kept = append(kept, rec)
		}
	}
	m.records = kept
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	return nil
}
