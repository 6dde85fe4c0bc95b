package applier_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/fader/internal/applier"
	"github.com/Norgate-AV/fader/internal/hud"
	"github.com/Norgate-AV/fader/internal/logger"
	"github.com/Norgate-AV/fader/internal/matrix"
	"github.com/Norgate-AV/fader/internal/testutil"
)

func newApplier(driver *testutil.MockVisibilityDriver) *applier.Applier {
	return applier.New(logger.NewNoOpLogger(), driver)
}

func TestApply_ShowAndHideCallDriver(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	require.NoError(t, m.Set(hud.Chat, hud.Combat, hud.Hide))
	require.NoError(t, m.Set(hud.Job, hud.Combat, hud.Show))

	driver := testutil.NewMockVisibilityDriver()
	res := newApplier(driver).Apply(m, hud.Combat)

	assert.Equal(t, []testutil.SetVisibleCall{
		{Element: hud.Job, Visible: true},
		{Element: hud.Chat, Visible: false},
	}, driver.Calls())
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, len(hud.TrackedElements())-2, res.Skipped)
	assert.Zero(t, res.Failed())
}

func TestApply_SkipIssuesNoCall(t *testing.T) {
	t.Parallel()

	driver := testutil.NewMockVisibilityDriver()
	res := newApplier(driver).Apply(matrix.New(), hud.Idle)

	assert.Empty(t, driver.Calls())
	assert.Zero(t, res.Applied)
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	require.NoError(t, m.Set(hud.Minimap, hud.Idle, hud.Hide))

	driver := testutil.NewMockVisibilityDriver()
	a := newApplier(driver)

	a.Apply(m, hud.Idle)
	for range 5 {
		res := a.Apply(m, hud.Idle)
		assert.Zero(t, res.Applied)
		assert.Equal(t, 1, res.Unchanged)
	}

	assert.Len(t, driver.CallsFor(hud.Minimap), 1)
}

func TestApply_ReissuesOnRuleChange(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	require.NoError(t, m.Set(hud.Minimap, hud.Idle, hud.Hide))
	require.NoError(t, m.Set(hud.Minimap, hud.Combat, hud.Show))

	driver := testutil.NewMockVisibilityDriver()
	a := newApplier(driver)

	a.Apply(m, hud.Idle)
	a.Apply(m, hud.Combat)
	a.Apply(m, hud.Combat)
	a.Apply(m, hud.Duty) // Skip: no call
	a.Apply(m, hud.Idle) // Hide again after an intervening Skip

	assert.Equal(t, []testutil.SetVisibleCall{
		{Element: hud.Minimap, Visible: false},
		{Element: hud.Minimap, Visible: true},
		{Element: hud.Minimap, Visible: false},
	}, driver.CallsFor(hud.Minimap))
}

func TestApply_SameRuleAcrossStatesNotReissued(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	require.NoError(t, m.Set(hud.Chat, hud.Combat, hud.Hide))
	require.NoError(t, m.Set(hud.Chat, hud.Duty, hud.Hide))

	driver := testutil.NewMockVisibilityDriver()
	a := newApplier(driver)

	a.Apply(m, hud.Combat)
	a.Apply(m, hud.Duty)

	assert.Len(t, driver.CallsFor(hud.Chat), 1)
}

func TestApply_FailureIsolated(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	for _, e := range []hud.ElementID{hud.Hotbar1, hud.Chat, hud.PartyList} {
		require.NoError(t, m.Set(e, hud.Combat, hud.Hide))
	}

	boom := errors.New("unknown addon")
	driver := testutil.NewMockVisibilityDriver().WithFailure(hud.Chat, boom)
	a := newApplier(driver)

	res := a.Apply(m, hud.Combat)
	assert.Equal(t, 2, res.Applied)
	require.Equal(t, 1, res.Failed())
	assert.Equal(t, hud.Chat, res.Failures[0].Element)
	assert.ErrorIs(t, &res.Failures[0], boom)
	assert.Len(t, driver.CallsFor(hud.PartyList), 1, "Elements after the failure are still applied")

	_, recorded := a.LastApplied(hud.Chat)
	assert.False(t, recorded)

	// Failed element is retried on the next pass, the others are not
	delete(driver.Failures, hud.Chat)
	res = a.Apply(m, hud.Combat)
	assert.Equal(t, 1, res.Applied)
	assert.Len(t, driver.CallsFor(hud.Chat), 2)
	assert.Len(t, driver.CallsFor(hud.Hotbar1), 1)
}

func TestApply_DriverPanicIsolated(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	require.NoError(t, m.Set(hud.Job, hud.Idle, hud.Show))
	require.NoError(t, m.Set(hud.Chat, hud.Idle, hud.Show))

	driver := testutil.NewMockVisibilityDriver().WithPanic(hud.Job)

	var res applier.Result
	assert.NotPanics(t, func() {
		res = newApplier(driver).Apply(m, hud.Idle)
	})
	assert.Equal(t, 1, res.Applied)
	require.Equal(t, 1, res.Failed())
	assert.Contains(t, res.Failures[0].Error(), "driver panic")
}

func TestApply_NeverTouchesIgnoredElements(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	for _, e := range hud.TrackedElements() {
		require.NoError(t, m.Set(e, hud.Idle, hud.Show))
	}

	driver := testutil.NewMockVisibilityDriver()
	a := newApplier(driver)
	a.Apply(m, hud.Idle)

	for _, c := range driver.Calls() {
		assert.False(t, c.Element.Ignored(), "%s should never reach the driver", c.Element)
	}
	assert.Len(t, driver.Calls(), len(hud.TrackedElements()))

	for _, ignored := range []hud.ElementID{hud.QuestLog, hud.Nameplates, hud.Unknown, hud.ElementID(99)} {
		assert.NoError(t, a.ApplyElement(m, ignored, hud.Idle))
	}
	assert.Len(t, driver.Calls(), len(hud.TrackedElements()))
}

func TestApplyElement(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	require.NoError(t, m.Set(hud.CastBar, hud.Crafting, hud.Hide))

	boom := errors.New("boom")
	driver := testutil.NewMockVisibilityDriver().WithFailure(hud.CastBar, boom)
	a := newApplier(driver)

	err := a.ApplyElement(m, hud.CastBar, hud.Crafting)
	assert.ErrorIs(t, err, boom)

	delete(driver.Failures, hud.CastBar)
	require.NoError(t, a.ApplyElement(m, hud.CastBar, hud.Crafting))

	r, ok := a.LastApplied(hud.CastBar)
	assert.True(t, ok)
	assert.Equal(t, hud.Hide, r)
}

func TestForget_ReissuesForcedRules(t *testing.T) {
	t.Parallel()

	m := matrix.New()
	require.NoError(t, m.Set(hud.Chat, hud.Idle, hud.Show))

	driver := testutil.NewMockVisibilityDriver()
	a := newApplier(driver)

	a.Apply(m, hud.Idle)
	a.Forget()
	a.Apply(m, hud.Idle)

	assert.Len(t, driver.CallsFor(hud.Chat), 2)
}
