// Package export writes progress to an XLSX workbook.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/model"
)

// Sheet names.
const (
	SheetSummary  = "Summary"
	SheetHistory  = "History"
	SheetWeakKeys = "Weak Keys"
	SheetSessions = "Sessions"
)

// Data is everything written to the workbook.
type Data struct {
	State        model.ProgressState
	Level        catalog.Level
	History      []model.HistoryEntry
	WeakKeys     []model.WeakKey
	Sessions     []model.SessionRecord
	Achievements []string
	ExportedAt   time.Time
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data Data) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export dir: %w", err)
		}
	}
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	w := &writer{f: f, header: header}

	// The default sheet becomes the summary.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	w.summary(data)
	w.history(data.History)
	w.weakKeys(data.WeakKeys)
	w.sessions(data.Sessions)
	if w.err != nil {
		return w.err
	}
	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

type writer struct {
	f      *excelize.File
	header int
	err    error
}

func (w *writer) sheet(name string) {
	if w.err != nil || name == SheetSummary {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
}

func (w *writer) row(sheet string, n int, values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("failed to write %s row %d: %w", sheet, n, err)
	}
}

func (w *writer) headerRow(sheet string, titles ...interface{}) {
	w.row(sheet, 1, titles...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		w.err = fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
}

func (w *writer) summary(d Data) {
	s := d.State
	w.sheet(SheetSummary)
	w.headerRow(SheetSummary, "Metric", "Value")
	rows := [][]interface{}{
		{"Level", fmt.Sprintf("%d %s", d.Level.Number, d.Level.Name)},
		{"XP", s.XP},
		{"Best WPM", s.BestWordsPerMinute},
		{"Average accuracy %", s.RunningAverageAccuracy},
		{"Tests taken", s.SessionsCompleted},
		{"Practice time (s)", s.TotalPracticeSeconds},
		{"Streak days", s.StreakDays},
		{"Last practice", s.LastPracticeDate},
		{"Lessons completed", len(s.CompletedLessonIDs)},
		{"Achievements", strings.Join(d.Achievements, ", ")},
	}
	if !d.ExportedAt.IsZero() {
		rows = append(rows, []interface{}{"Exported at", d.ExportedAt.Format(time.RFC3339)})
	}
	for i, r := range rows {
		w.row(SheetSummary, i+2, r...)
	}
	if w.err == nil {
		if err := w.f.SetColWidth(SheetSummary, "A", "B", 22); err != nil {
			w.err = fmt.Errorf("failed to size summary: %w", err)
		}
	}
}

func (w *writer) history(history []model.HistoryEntry) {
	w.sheet(SheetHistory)
	w.headerRow(SheetHistory, "Date", "WPM")
	for i, h := range history {
		w.row(SheetHistory, i+2, h.Date, h.WPM)
	}
}

func (w *writer) weakKeys(keys []model.WeakKey) {
	w.sheet(SheetWeakKeys)
	w.headerRow(SheetWeakKeys, "Key", "Errors", "Presses", "Error rate %")
	for i, k := range keys {
		w.row(SheetWeakKeys, i+2, k.Char, k.ErrorCount, k.PressCount, roundTenth(k.ErrorRate*100))
	}
}

func (w *writer) sessions(sessions []model.SessionRecord) {
	w.sheet(SheetSessions)
	w.headerRow(SheetSessions, "Started", "Mode", "WPM", "Accuracy %", "Correct", "Incorrect", "Duration (s)")
	for i, s := range sessions {
		w.row(SheetSessions, i+2,
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.Mode, s.WPM, s.Accuracy, s.Correct, s.Incorrect, s.DurationSeconds)
	}
	if w.err == nil {
		if err := w.f.SetColWidth(SheetSessions, "A", "A", 20); err != nil {
			w.err = fmt.Errorf("failed to size sessions: %w", err)
		}
	}
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
