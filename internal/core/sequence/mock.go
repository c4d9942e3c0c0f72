package sequence

import (
	"context"
	"strconv"
	"sync"
)

// MockAllocator is an in-memory Allocator for unit tests.
// It ignores tenant context and keys counters by (kind, year) only.
type MockAllocator struct {
	mu       sync.Mutex
	counters map[string]int64
	settings map[string]Settings

	// NextCalls counts Next invocations, useful for asserting that a
	// creating operation allocates exactly one identifier.
	NextCalls int
}

// NewMockAllocator creates an empty mock allocator.
func NewMockAllocator() *MockAllocator {
	return &MockAllocator{
		counters: make(map[string]int64),
		settings: make(map[string]Settings),
	}
}

var _ Allocator = (*MockAllocator)(nil)

func (m *MockAllocator) key(kind Kind, year int) string {
	return string(kind) + "/" + strconv.Itoa(year)
}

// Next implements Allocator.
func (m *MockAllocator) Next(ctx context.Context, kind Kind, year int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NextCalls++
	k := m.key(kind, year)
	m.counters[k]++
	return Format(kind, m.settingsFor(k, kind), year, m.counters[k]), nil
}

// PeekNext implements Allocator.
func (m *MockAllocator) PeekNext(ctx context.Context, kind Kind, year int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(kind, year)
	return Format(kind, m.settingsFor(k, kind), year, m.counters[k]+1), nil
}

// ResetTo implements Allocator.
func (m *MockAllocator) ResetTo(ctx context.Context, kind Kind, year int, value int64, settings *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(kind, year)
	m.counters[k] = value
	if settings != nil {
		m.settings[k] = *settings
	}
	return nil
}

// CurrentSettings implements Allocator.
func (m *MockAllocator) CurrentSettings(ctx context.Context, kind Kind, year int) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settingsFor(m.key(kind, year), kind), nil
}

func (m *MockAllocator) settingsFor(key string, kind Kind) Settings {
	if s, ok := m.settings[key]; ok {
		return s
	}
	return DefaultSettings(kind)
}

// Value returns the current counter value for assertions.
func (m *MockAllocator) Value(kind Kind, year int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[m.key(kind, year)]
}
