package testutil

import "github.com/Norgate-AV/fader/internal/hud"

// MockKeyStatePoller reports a fixed set of held keys
type MockKeyStatePoller struct {
	Held  map[int]bool
	Polls []int
}

func NewMockKeyStatePoller() *MockKeyStatePoller {
	return &MockKeyStatePoller{
		Held:  make(map[int]bool),
		Polls: []int{},
	}
}

func (m *MockKeyStatePoller) IsKeyDown(vk int) bool {
	m.Polls = append(m.Polls, vk)
	return m.Held[vk]
}

func (m *MockKeyStatePoller) WithHeld(vk int, held bool) *MockKeyStatePoller {
	m.Held[vk] = held
	return m
}

// MockConditionSource returns queued snapshots in order, then repeats the last one
type MockConditionSource struct {
	Snapshots []hud.Conditions
	Err       error
	index     int
}

func NewMockConditionSource(snapshots ...hud.Conditions) *MockConditionSource {
	return &MockConditionSource{Snapshots: snapshots}
}

func (m *MockConditionSource) Conditions() (hud.Conditions, error) {
	if m.Err != nil {
		return hud.Conditions{}, m.Err
	}

	if len(m.Snapshots) == 0 {
		return hud.Conditions{}, nil
	}

	c := m.Snapshots[m.index]
	if m.index < len(m.Snapshots)-1 {
		m.index++
	}

	return c, nil
}

func (m *MockConditionSource) WithError(err error) *MockConditionSource {
	m.Err = err
	return m
}
