package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyprophet/internal/balancer"
	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/engine"
	"github.com/rshade/energyprophet/internal/narrative"
)

var (
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyReset = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

// newTestBalanceModel builds a model for Switzerland with a 10 TWh gap, so
// five increases balance it.
func newTestBalanceModel(t *testing.T, analyzeFn AnalyzeFunc) *BalanceModel {
	t.Helper()
	country, err := catalog.Builtin().GetCountry(context.Background(), "che")
	require.NoError(t, err)

	session := balancer.NewSession(country, country.TotalGeneration+10, nil, balancer.DefaultOptions())
	return NewBalanceModel(context.Background(), country.Name, 2050, session,
		balancer.NewDebounce(time.Millisecond), analyzeFn)
}

func press(t *testing.T, m *BalanceModel, msg tea.KeyMsg) tea.Cmd {
	t.Helper()
	next, cmd := m.Update(msg)
	require.Same(t, m, next)
	return cmd
}

// settle runs a debounce timer command and feeds its message back.
func settle(t *testing.T, m *BalanceModel, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	_, ok := msg.(balanceSettleMsg)
	require.True(t, ok, "expected a settle message, got %T", msg)
	m.Update(msg)
}

func balance(t *testing.T, m *BalanceModel) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for range 5 {
		cmd = press(t, m, keyRight)
	}
	require.True(t, m.Session().IsBalanced())
	return cmd
}

func TestNewBalanceModel(t *testing.T) {
	m := newTestBalanceModel(t, nil)

	assert.Equal(t, BalanceStateEditing, m.State())
	assert.Nil(t, m.Init(), "an unbalanced session schedules nothing")
	assert.InDelta(t, 2.0, m.Session().Step(), 1e-9)
}

func TestBalanceModel_Init_StartsOnTarget(t *testing.T) {
	country, err := catalog.Builtin().GetCountry(context.Background(), "che")
	require.NoError(t, err)
	session := balancer.NewSession(country, country.TotalGeneration, nil, balancer.DefaultOptions())
	m := NewBalanceModel(context.Background(), country.Name, 2050, session, balancer.NewDebounce(time.Millisecond), nil)

	settle(t, m, m.Init())
	assert.True(t, m.debounce.Settled())
}

func TestBalanceModel_Navigation(t *testing.T) {
	m := newTestBalanceModel(t, nil)

	press(t, m, keyUp)
	assert.Equal(t, 0, m.focused, "cannot move above the first row")

	for range 10 {
		press(t, m, keyDown)
	}
	assert.Equal(t, len(m.Session().IDs())-1, m.focused, "cannot move below the last row")

	press(t, m, keyRight)
	last := m.Session().IDs()[m.focused]
	assert.InDelta(t, 2.0, m.Session().Delta(last), 1e-9)
}

func TestBalanceModel_IncreaseDecreaseReset(t *testing.T) {
	m := newTestBalanceModel(t, nil)
	hydro := m.Session().IDs()[0]

	assert.Nil(t, press(t, m, keyRight))
	assert.InDelta(t, 2.0, m.Session().Delta(hydro), 1e-9)

	press(t, m, keyLeft)
	assert.False(t, m.Session().HasChanges())

	press(t, m, keyRight)
	press(t, m, keyRight)
	press(t, m, keyReset)
	assert.False(t, m.Session().HasChanges())
}

func TestBalanceModel_DebouncedBalance(t *testing.T) {
	m := newTestBalanceModel(t, nil)

	cmd := balance(t, m)
	assert.Equal(t, balancer.StatePending, m.debounce.State())
	assert.Contains(t, m.View(), "checking")

	settle(t, m, cmd)
	assert.Equal(t, balancer.StateBalanced, m.debounce.State())
	assert.Contains(t, m.View(), "balanced")
}

func TestBalanceModel_NewEditCancelsPendingTimer(t *testing.T) {
	m := newTestBalanceModel(t, nil)

	stale := balance(t, m)
	press(t, m, keyLeft)
	fresh := press(t, m, keyRight)
	require.NotNil(t, fresh)

	settle(t, m, stale)
	assert.False(t, m.debounce.Settled(), "an earlier timer cannot settle a newer edit")

	settle(t, m, fresh)
	assert.True(t, m.debounce.Settled())
}

func TestBalanceModel_AnalyzeRequiresSettledBalance(t *testing.T) {
	called := false
	m := newTestBalanceModel(t, func(context.Context, string, []engine.UserChange) (*engine.AnalysisResult, error) {
		called = true
		return nil, nil
	})

	assert.Nil(t, press(t, m, keyEnter))
	assert.Equal(t, NotBalancedTip, m.tip)
	assert.Contains(t, m.View(), NotBalancedTip)

	// Balanced but not yet settled.
	balance(t, m)
	assert.Nil(t, press(t, m, keyEnter))
	assert.False(t, called)
}

func TestBalanceModel_Analyze(t *testing.T) {
	var gotCountry string
	var gotChanges []engine.UserChange
	m := newTestBalanceModel(t, func(ctx context.Context, countryID string, changes []engine.UserChange) (*engine.AnalysisResult, error) {
		gotCountry = countryID
		gotChanges = changes
		country, err := catalog.Builtin().GetCountry(ctx, countryID)
		if err != nil {
			return nil, err
		}
		summary, err := engine.Enrich(country, changes)
		if err != nil {
			return nil, err
		}
		return &engine.AnalysisResult{Summary: summary, Narrative: "Hydro carries the growth.", NarrativeAvailable: true}, nil
	})

	settle(t, m, balance(t, m))

	cmd := press(t, m, keyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, BalanceStateAnalyzing, m.State())
	assert.Contains(t, m.View(), "Analyzing")

	// Keys other than quit are ignored while analyzing.
	assert.Nil(t, press(t, m, keyRight))

	m.Update(cmd())
	assert.Equal(t, BalanceStateResult, m.State())
	assert.Equal(t, "che", gotCountry)
	require.Len(t, gotChanges, 1)
	assert.Equal(t, "hydro", gotChanges[0].ID)

	view := m.View()
	assert.Contains(t, view, "SCENARIO ANALYSIS")
	assert.Contains(t, view, "Hydro carries the growth.")
	require.NotNil(t, m.Result())

	press(t, m, keyDown)
	assert.Equal(t, BalanceStateEditing, m.State())
}

func TestBalanceModel_AnalyzeWithoutNarrative(t *testing.T) {
	m := newTestBalanceModel(t, func(context.Context, string, []engine.UserChange) (*engine.AnalysisResult, error) {
		return &engine.AnalysisResult{Summary: &engine.AnalysisSummary{CountryID: "che", CountryName: "Switzerland"}}, nil
	})
	m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	settle(t, m, balance(t, m))

	m.Update(press(t, m, keyEnter)())
	assert.Contains(t, m.View(), narrative.FailureMessage)
}

func TestBalanceModel_AnalyzeError(t *testing.T) {
	m := newTestBalanceModel(t, func(context.Context, string, []engine.UserChange) (*engine.AnalysisResult, error) {
		return nil, errors.New("catalog offline")
	})
	settle(t, m, balance(t, m))

	m.Update(press(t, m, keyEnter)())
	assert.Equal(t, BalanceStateError, m.State())
	assert.Contains(t, m.View(), "catalog offline")

	press(t, m, keyRight)
	assert.Equal(t, BalanceStateEditing, m.State())
}

func TestBalanceModel_Quit(t *testing.T) {
	m := newTestBalanceModel(t, nil)

	cmd := press(t, m, keyQuit)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, BalanceStateQuitting, m.State())
	assert.Empty(t, m.View())
}

func TestBalanceModel_WindowSize(t *testing.T) {
	m := newTestBalanceModel(t, nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
	assert.Equal(t, 116, m.bar.Width)
}

func TestBalanceModel_View(t *testing.T) {
	m := newTestBalanceModel(t, nil)
	view := m.View()

	assert.Contains(t, view, "Energy Mix Balancer")
	assert.Contains(t, view, "Switzerland")
	assert.Contains(t, view, "2050")
	assert.Contains(t, view, "Hydro")
	assert.Contains(t, view, "still to assign")
	assert.Contains(t, view, "increase")
}
