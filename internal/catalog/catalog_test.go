package catalog

import "testing"

func TestLevelForThresholds(t *testing.T) {
	levels := []Level{
		{Number: 1, MinXP: 0},
		{Number: 2, MinXP: 500},
		{Number: 3, MinXP: 1200},
	}
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{499, 1},
		{500, 2},
		{1199, 2},
		{1200, 3},
		{99999, 3},
	}
	for _, tt := range tests {
		if got := LevelFor(levels, tt.xp).Number; got != tt.want {
			t.Errorf("LevelFor(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestNextLevel(t *testing.T) {
	levels := Levels()
	next, ok := NextLevel(levels, levels[0])
	if !ok || next.Number != 2 {
		t.Fatalf("expected level 2 after level 1, got %+v (ok=%v)", next, ok)
	}
	if _, ok := NextLevel(levels, levels[len(levels)-1]); ok {
		t.Fatalf("expected no level after the last one")
	}
}

func TestLessonsAreOrderedAndUnique(t *testing.T) {
	seen := map[int]bool{}
	for i, l := range Lessons() {
		if l.ID != i+1 {
			t.Fatalf("lesson at index %d has id %d", i, l.ID)
		}
		if seen[l.ID] {
			t.Fatalf("duplicate lesson id %d", l.ID)
		}
		seen[l.ID] = true
		if len(WordsForBank(l.Bank, nil)) == 0 {
			t.Fatalf("lesson %d has an empty word bank", l.ID)
		}
	}
}

func TestAchievementCriteria(t *testing.T) {
	c := Default()
	perfect, ok := c.AchievementByID("100accuracy")
	if !ok {
		t.Fatalf("missing 100accuracy achievement")
	}
	if perfect.Earned(Facts{Accuracy: 100}) {
		t.Fatalf("accuracy criterion must require a session result")
	}
	if !perfect.Earned(Facts{HasResult: true, Accuracy: 100}) {
		t.Fatalf("expected perfect accuracy to earn the achievement")
	}
	all, _ := c.AchievementByID("all-lessons")
	if all.Earned(Facts{LessonsCompleted: 5, LessonsTotal: 6}) {
		t.Fatalf("all-lessons must wait for every lesson")
	}
	if !all.Earned(Facts{LessonsCompleted: 6, LessonsTotal: 6}) {
		t.Fatalf("expected all-lessons to be earned")
	}
}
