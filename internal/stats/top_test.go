package stats

import (
	"testing"

	"github.com/verte-zerg/typeflow/internal/model"
)

func TestTopMistakeChars(t *testing.T) {
	aggs := []model.CharMistakes{
		{Char: "b", Mistakes: 3},
		{Char: " ", Mistakes: 9},
		{Char: "a", Mistakes: 3},
		{Char: "c", Mistakes: 1},
	}
	top := TopMistakeChars(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 chars, got %d", len(top))
	}
	if top[0] != "a" || top[1] != "b" {
		t.Fatalf("unexpected order: %v", top)
	}
}
