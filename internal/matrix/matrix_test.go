package matrix_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/fader/internal/hud"
	"github.com/Norgate-AV/fader/internal/matrix"
)

func TestGet_DefaultsToSkip(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	for _, e := range hud.TrackedElements() {
		for _, s := range hud.ResolvableStates() {
			assert.Equal(t, hud.Skip, m.Get(e, s), "%s/%s should default to skip", e, s)
		}
	}

	assert.Equal(t, hud.Skip, m.Get(hud.QuestLog, hud.Combat))
	assert.Equal(t, hud.Skip, m.Get(hud.Chat, hud.None))
	assert.Equal(t, hud.Skip, m.Get(hud.ElementID(500), hud.State(500)))
}

func TestSet_Overwrites(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	require.NoError(t, m.Set(hud.Chat, hud.Combat, hud.Hide))
	assert.Equal(t, hud.Hide, m.Get(hud.Chat, hud.Combat))

	require.NoError(t, m.Set(hud.Chat, hud.Combat, hud.Show))
	assert.Equal(t, hud.Show, m.Get(hud.Chat, hud.Combat))

	assert.Equal(t, hud.Skip, m.Get(hud.Chat, hud.Idle), "Other cells are untouched")
}

func TestSet_RejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		element hud.ElementID
		state   hud.State
		rule    hud.Rule
		err     error
	}{
		{"ignored quest log", hud.QuestLog, hud.Combat, hud.Hide, matrix.ErrInvalidKey},
		{"ignored nameplates", hud.Nameplates, hud.Idle, hud.Show, matrix.ErrInvalidKey},
		{"unknown element", hud.Unknown, hud.Idle, hud.Show, matrix.ErrInvalidKey},
		{"none state", hud.Chat, hud.None, hud.Hide, matrix.ErrInvalidKey},
		{"invalid rule", hud.Chat, hud.Combat, hud.Rule(7), matrix.ErrInvalidRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := matrix.New()
			err := m.Set(tt.element, tt.state, tt.rule)
			assert.ErrorIs(t, err, tt.err)
			assert.Empty(t, m.Entries())
		})
	}
}

func TestCycle_ThreeTimesReturnsToOriginal(t *testing.T) {
	t.Parallel()

	for _, start := range []hud.Rule{hud.Skip, hud.Hide, hud.Show} {
		m := matrix.New()
		require.NoError(t, m.Set(hud.Job, hud.Duty, start))

		seen := make([]hud.Rule, 0, 3)
		for range 3 {
			r, err := m.Cycle(hud.Job, hud.Duty)
			require.NoError(t, err)
			seen = append(seen, r)
		}

		assert.Equal(t, start, m.Get(hud.Job, hud.Duty))
		assert.Equal(t, start, seen[2])
	}
}

func TestCycle_Sequence(t *testing.T) {
	t.Parallel()

	m := matrix.New()

	r, err := m.Cycle(hud.Minimap, hud.Idle)
	require.NoError(t, err)
	assert.Equal(t, hud.Hide, r)

	r, _ = m.Cycle(hud.Minimap, hud.Idle)
	assert.Equal(t, hud.Show, r)

	r, _ = m.Cycle(hud.Minimap, hud.Idle)
	assert.Equal(t, hud.Skip, r)
	assert.Empty(t, m.Entries(), "Skip cells are not stored")

	_, err = m.Cycle(hud.QuestLog, hud.Idle)
	assert.ErrorIs(t, err, matrix.ErrInvalidKey)
}

func TestOnChange_NotifiedOnSetAndCycle(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	var got []matrix.Entry
	m.OnChange(func(e matrix.Entry) { got = append(got, e) })

	require.NoError(t, m.Set(hud.Chat, hud.Combat, hud.Hide))
	_, err := m.Cycle(hud.Chat, hud.Combat)
	require.NoError(t, err)
	_ = m.Set(hud.QuestLog, hud.Combat, hud.Hide)

	require.Len(t, got, 2)
	assert.Equal(t, hud.Hide, got[0].Rule)
	assert.Equal(t, hud.Show, got[1].Rule)
	assert.Equal(t, hud.Chat, got[1].Element)
}

func TestEntries_Ordered(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	require.NoError(t, m.Set(hud.Chat, hud.Idle, hud.Hide))
	require.NoError(t, m.Set(hud.Hotbar1, hud.Combat, hud.Show))
	require.NoError(t, m.Set(hud.Chat, hud.Combat, hud.Show))

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, matrix.Key{Element: hud.Hotbar1, State: hud.Combat}, entries[0].Key)
	assert.Equal(t, matrix.Key{Element: hud.Chat, State: hud.Combat}, entries[1].Key)
	assert.Equal(t, matrix.Key{Element: hud.Chat, State: hud.Idle}, entries[2].Key)
}

func TestReplace_DropsInvalidEntries(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	require.NoError(t, m.Set(hud.Minimap, hud.Idle, hud.Hide))

	notified := false
	m.OnChange(func(matrix.Entry) { notified = true })

	rejected := m.Replace([]matrix.Entry{
		{Key: matrix.Key{Element: hud.Chat, State: hud.Combat}, Rule: hud.Show},
		{Key: matrix.Key{Element: hud.Nameplates, State: hud.Combat}, Rule: hud.Show},
		{Key: matrix.Key{Element: hud.Job, State: hud.Idle}, Rule: hud.Skip},
	})

	require.Len(t, rejected, 1)
	assert.Equal(t, hud.Nameplates, rejected[0].Element)
	assert.Equal(t, hud.Show, m.Get(hud.Chat, hud.Combat))
	assert.Equal(t, hud.Skip, m.Get(hud.Minimap, hud.Idle), "Previous cells are discarded")
	assert.Len(t, m.Entries(), 1)
	assert.False(t, notified)
}

func TestMatrix_ConcurrentReadsDuringEdits(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 500 {
			_, _ = m.Cycle(hud.Chat, hud.Combat)
			m.Replace([]matrix.Entry{{Key: matrix.Key{Element: hud.Job, State: hud.Idle}, Rule: hud.Hide}})
		}
	}()

	go func() {
		defer wg.Done()
		for range 500 {
			r := m.Get(hud.Chat, hud.Combat)
			assert.True(t, r.Valid())
			_ = m.Entries()
		}
	}()

	wg.Wait()
}
