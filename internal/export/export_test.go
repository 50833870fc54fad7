package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/model"
)

func TestWriteFileSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "progress.xlsx")
	started := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	data := Data{
		State: model.ProgressState{
			BestWordsPerMinute:     72,
			RunningAverageAccuracy: 94,
			SessionsCompleted:      12,
			XP:                     640,
			StreakDays:             4,
		},
		Level:   catalog.Level{Number: 2, Name: "Apprentice", MinXP: 500},
		History: []model.HistoryEntry{{Date: "2026-04-30", WPM: 60}, {Date: "2026-05-01", WPM: 72}},
		WeakKeys: []model.WeakKey{
			{Char: "q", ErrorRate: 0.25, ErrorCount: 2, PressCount: 8},
		},
		Sessions: []model.SessionRecord{
			{ID: 1, StartedAt: started, Mode: "timed", WPM: 72, Accuracy: 96, Correct: 360, Incorrect: 15, DurationSeconds: 60},
		},
		Achievements: []string{"First Steps"},
	}
	require.NoError(t, WriteFile(path, data))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetSummary, SheetHistory, SheetWeakKeys, SheetSessions}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(summary), 3)
	assert.Equal(t, []string{"Metric", "Value"}, summary[0])
	assert.Equal(t, []string{"Level", "2 Apprentice"}, summary[1])
	assert.Equal(t, []string{"XP", "640"}, summary[2])

	history, err := f.GetRows(SheetHistory)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"2026-05-01", "72"}, history[2])

	weak, err := f.GetRows(SheetWeakKeys)
	require.NoError(t, err)
	require.Len(t, weak, 2)
	assert.Equal(t, []string{"q", "2", "8", "25"}, weak[1])

	sessions, err := f.GetRows(SheetSessions)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "timed", sessions[1][1])
	assert.Equal(t, "60", sessions[1][6])
}

func TestWriteFileEmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteFile(path, Data{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(SheetHistory)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
