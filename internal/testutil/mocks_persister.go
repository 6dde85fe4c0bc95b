package testutil

import (
	"sync"

	"github.com/Norgate-AV/fader/internal/config"
)

// MockPersister records every saved configuration
type MockPersister struct {
	mu    sync.Mutex
	Saved []*config.Config
	Err   error
}

func NewMockPersister() *MockPersister {
	return &MockPersister{Saved: []*config.Config{}}
}

func (m *MockPersister) Save(cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Saved = append(m.Saved, cfg.Clone())
	return m.Err
}

// Last returns the most recent save, or nil if nothing was saved
func (m *MockPersister) Last() *config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Saved) == 0 {
		return nil
	}

	return m.Saved[len(m.Saved)-1]
}

// Count returns the number of saves
func (m *MockPersister) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Saved)
}

func (m *MockPersister) WithError(err error) *MockPersister {
	m.Err = err
	return m
}
