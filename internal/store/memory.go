package store

import (
	"fmt"
	"sync"
)

// Memory keeps values and their history in process. Snapshot ids are the
// decimal seq.
type Memory struct {
	mu      sync.Mutex
	current map[string]string
	history []Snapshot
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{current: map[string]string{}}
}

// Get returns the current value of key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.current[key]
	return v, ok, nil
}

// Set records a new value for key.
func (m *Memory) Set(key, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := int64(len(m.history) + 1)
	m.history = append(m.history, Snapshot{ID: fmt.Sprint(seq), Key: key, Value: text, Seq: seq})
	m.current[key] = text
	return nil
}

// History returns every value written to key, oldest first.
func (m *Memory) History(key string) []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Snapshot{}
	for _, s := range m.history {
		if s.Key == key {
			out = append(out, s)
		}
	}
	return out
}
