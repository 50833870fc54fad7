package dashboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/model"
	agg "github.com/verte-zerg/typeflow/internal/progress"
	"github.com/verte-zerg/typeflow/internal/store"
)

func newTestDashboard(t *testing.T, withLog bool) *Model {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "typeflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	p := agg.New(st, catalog.Default())
	require.NoError(t, p.Load(ctx))
	for i := 0; i < 4; i++ {
		p.RecordKeyPress("x")
	}
	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	result := model.SessionResult{
		Mode:                   model.ModeTimed,
		StartedAt:              start,
		EndedAt:                start.Add(time.Minute),
		WordsPerMinute:         52,
		AccuracyPercent:        96,
		CorrectCount:           250,
		IncorrectCount:         1,
		DurationSeconds:        60,
		MistakesByExpectedChar: map[string]int{"x": 1},
	}
	_, err = p.CompleteTest(ctx, result)
	require.NoError(t, err)
	_, err = st.InsertSession(ctx, result)
	require.NoError(t, err)

	var log *store.Store
	if withLog {
		log = st
	}
	m := NewModel(p, log, model.StatsConfig{CurveWindow: 5})
	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestOverviewShowsProgress(t *testing.T) {
	m := newTestDashboard(t, false)
	out := m.renderOverview(120)
	assert.Contains(t, out, "Best WPM")
	assert.Contains(t, out, "52")
	assert.Contains(t, out, "Daily goal: 1/3 tests")
	assert.Contains(t, out, "Key Heatmap")
	assert.Contains(t, m.View(), "Overview")
}

func TestWeakKeysTab(t *testing.T) {
	m := newTestDashboard(t, false)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabWeakKeys, m.activeTab)
	assert.True(t, m.weakTable.Focused())
	view := m.View()
	assert.Contains(t, view, "25.0%")
	assert.Contains(t, view, "Presses")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, tabAchievements, m.activeTab)
	assert.False(t, m.weakTable.Focused())
}

func TestHistoryUsesSessionLog(t *testing.T) {
	without := newTestDashboard(t, false)
	out := without.renderHistory(120)
	assert.Contains(t, out, "Recent WPM")
	assert.NotContains(t, out, "Learning Curves")

	with := newTestDashboard(t, true)
	out = with.renderHistory(120)
	assert.Contains(t, out, "Learning Curves")
	assert.Contains(t, out, "Char x")
}

func TestLessonsAndAchievements(t *testing.T) {
	m := newTestDashboard(t, false)
	lessons := renderLessons(m.progress.Lessons())
	assert.Contains(t, lessons, "[ ] 1. Home Row")
	assert.Contains(t, lessons, "[-] 2. Top Row")

	achievements := renderAchievements(m.progress.Achievements())
	assert.Contains(t, achievements, "* First Steps")
	assert.Contains(t, achievements, "?  Perfectionist")
}

func TestCurveWindowKeys(t *testing.T) {
	m := newTestDashboard(t, true)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'='}})
	assert.Equal(t, 10, m.cfg.CurveWindow)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	assert.Equal(t, 1, m.cfg.CurveWindow)
	assert.Empty(t, m.errMsg)

	assert.Equal(t, 5, nextCurveWindow(3))
	assert.Equal(t, 15, nextCurveWindow(12))
	assert.Equal(t, 10, prevCurveWindow(12))
}

func TestQuit(t *testing.T) {
	m := newTestDashboard(t, false)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestFitLines(t *testing.T) {
	assert.Equal(t, "ab  \n    ", fitLines("ab", 4, 2))
	assert.Equal(t, "abc", fitLines("abc\ndef", 3, 1))
	assert.Equal(t, "ab...", truncateLine("abcdefgh", 5))
}
