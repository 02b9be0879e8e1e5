package route

import "sync"

// MemoryStore is an in-process Store with full history semantics. Used when
// the sqlite history cannot be opened, and by tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Route
	cursor  int // index into entries; -1 when empty
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cursor: -1}
}

// Current returns the entry under the cursor.
func (m *MemoryStore) Current() (Route, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor < 0 {
		return Route{}, false, nil
	}
	return m.entries[m.cursor], true, nil
}

// Push drops any forward branch and appends a new entry.
func (m *MemoryStore) Push(r Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.cursor+1], r)
	m.cursor = len(m.entries) - 1
	return nil
}

// Replace rewrites the entry under the cursor, or seeds the history when
// empty.
func (m *MemoryStore) Replace(r Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor < 0 {
		m.entries = append(m.entries, r)
		m.cursor = 0
		return nil
	}
	m.entries[m.cursor] = r
	return nil
}

// Back moves the cursor one entry back.
func (m *MemoryStore) Back() (Route, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor <= 0 {
		return Route{}, false, nil
	}
	m.cursor--
	return m.entries[m.cursor], true, nil
}

// Forward moves the cursor one entry forward.
func (m *MemoryStore) Forward() (Route, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor < 0 || m.cursor >= len(m.entries)-1 {
		return Route{}, false, nil
	}
	m.cursor++
	return m.entries[m.cursor], true, nil
}

// Len returns the number of history entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
