package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/typeflow/internal/model"
)

// TopMistakeChars returns the n visible characters with the most mistakes.
func TopMistakeChars(aggs []model.CharMistakes, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.CharMistakes, 0, len(aggs))
	for _, agg := range aggs {
		if strings.TrimSpace(agg.Char) == "" {
			continue
		}
		items = append(items, agg)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Mistakes == items[j].Mistakes {
			return items[i].Char < items[j].Char
		}
		return items[i].Mistakes > items[j].Mistakes
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for _, item := range items[:n] {
		out = append(out, item.Char)
	}
	return out
}
