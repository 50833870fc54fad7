// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typeflow/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// HistoryValues extracts the last n WPM values from history.
func HistoryValues(history []model.HistoryEntry, n int) []float64 {
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]float64, len(history))
	for i, h := range history {
		out[i] = float64(h.WPM)
	}
	return out
}

// Summary aggregates a run of logged sessions.
type Summary struct {
	Sessions    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	Seconds     int
}

// Summarize aggregates logged sessions.
func Summarize(sessions []model.SessionRecord) Summary {
	s := Summary{Sessions: len(sessions)}
	if len(sessions) == 0 {
		return s
	}
	var wpm, acc float64
	for _, rec := range sessions {
		wpm += float64(rec.WPM)
		acc += float64(rec.Accuracy)
		s.Seconds += rec.DurationSeconds
		if rec.WPM > s.BestWPM {
			s.BestWPM = rec.WPM
		}
	}
	s.AvgWPM = wpm / float64(len(sessions))
	s.AvgAccuracy = acc / float64(len(sessions))
	return s
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionRecord) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Practice time: %s", FormatSeconds(s.Seconds)),
		"",
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// FormatSeconds renders a duration as "1h 2m", "3m 4s" or "5s".
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	h, m, s := total/3600, (total%3600)/60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// RenderCurves prints smoothed WPM and accuracy curves.
func RenderCurves(w io.Writer, sessions []model.SessionRecord, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		wpms[i] = float64(s.WPM)
		accs[i] = float64(s.Accuracy)
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Learning Curves", []Series{
		{Name: "WPM", Values: MovingAverage(wpms, window)},
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
	}, width, height, useColor)
}

// RenderMistakeTable prints mistakes per expected character with error rates when presses are known.
func RenderMistakeTable(w io.Writer, title string, aggs []model.CharMistakes, presses map[string]int) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No mistakes recorded.")
		return err
	}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rate := "-"
		if n := presses[agg.Char]; n > 0 {
			rate = fmt.Sprintf("%.1f%%", float64(agg.Mistakes)/float64(n)*100)
		}
		rows = append(rows, []string{
			CharLabel(agg.Char),
			fmt.Sprintf("%d", agg.Mistakes),
			fmt.Sprintf("%d", agg.Sessions),
			rate,
		})
	}
	return writeTable(w, title, []column{
		{title: "Char"}, {title: "Mistakes", right: true}, {title: "Sessions", right: true}, {title: "Error rate", right: true},
	}, rows)
}

// RenderWeakKeys prints the weak-key ranking.
func RenderWeakKeys(w io.Writer, keys []model.WeakKey) error {
	if len(keys) == 0 {
		_, err := fmt.Fprintln(w, "No weak keys yet. Keep typing!")
		return err
	}
	rows := make([][]string, 0, len(keys))
	for i, k := range keys {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			CharLabel(k.Char),
			fmt.Sprintf("%.1f%%", k.ErrorRate*100),
			fmt.Sprintf("%d", k.ErrorCount),
			fmt.Sprintf("%d", k.PressCount),
		})
	}
	return writeTable(w, "Weak Keys", []column{
		{title: "#", right: true}, {title: "Char"}, {title: "Error rate", right: true},
		{title: "Errors", right: true}, {title: "Presses", right: true},
	}, rows)
}

// RenderCharCurves prints per-character mistake curves across sessions.
func RenderCharCurves(w io.Writer, sessions []model.SessionRecord, perSession map[int64]map[string]int, chars []string, window, totalWidth, height int, useColor bool) error {
	if len(chars) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Character Mistakes"); err != nil {
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	for _, ch := range chars {
		values := make([]float64, len(sessions))
		for i, s := range sessions {
			values[i] = float64(perSession[s.ID][ch])
		}
		if err := PlotSeries(w, "Char "+CharLabel(ch), []Series{
			{Name: "Mistakes", Values: MovingAverage(values, window)},
		}, width, height, useColor); err != nil {
			return err
		}
	}
	return nil
}

// CharLabel makes whitespace characters visible.
func CharLabel(ch string) string {
	switch ch {
	case " ":
		return "<space>"
	case "\n":
		return "<enter>"
	case "\t":
		return "<tab>"
	default:
		return ch
	}
}

// column is a table header and its alignment.
type column struct {
	title string
	right bool
}

// writeTable prints rows under title, padding every cell to its column's display width.
func writeTable(w io.Writer, title string, cols []column, rows [][]string) error {
	widths := make([]int, len(cols))
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range rows {
		for i := 0; i < len(cols) && i < len(row); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for _, row := range append([][]string{header}, rows...) {
		cells := make([]string, len(cols))
		for i, c := range cols {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if c.right {
				cells[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				cells[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		b.WriteString(strings.Join(cells, " ") + "\n")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
