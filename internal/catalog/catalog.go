// Package catalog holds the static lesson, level and achievement tables.
package catalog

// Bank selects the word bank a lesson draws from.
type Bank int

// Word banks.
const (
	BankHomeRow Bank = iota
	BankTopRow
	BankBottomRow
	BankAlphabet
	BankNumbers
	BankSymbols
)

// Lesson describes one guided lesson.
type Lesson struct {
	ID          int
	Title       string
	Description string
	FocusKeys   string
	Bank        Bank
	Words       int
	MinAccuracy int
	MinWPM      int
	XPReward    int
}

// Level is one row of the XP tier table.
type Level struct {
	Number int
	Name   string
	MinXP  int
}

// Facts is the state an achievement criterion is evaluated against.
type Facts struct {
	SessionsCompleted int
	StreakDays        int
	LessonsCompleted  int
	LessonsTotal      int
	HasResult         bool
	WPM               int
	Accuracy          int
}

// Achievement is a one-way latch unlocked when Earned first returns true.
type Achievement struct {
	ID          string
	Name        string
	Icon        string
	Description string
	Earned      func(Facts) bool
}

// Catalog bundles the static tables.
type Catalog struct {
	Lessons      []Lesson
	Levels       []Level
	Achievements []Achievement
}

// Default returns the built-in tables.
func Default() Catalog {
	return Catalog{
		Lessons:      Lessons(),
		Levels:       Levels(),
		Achievements: Achievements(),
	}
}

// Lessons returns the lesson table ordered by id.
func Lessons() []Lesson {
	return []Lesson{
		{ID: 1, Title: "Home Row", Description: "Rest your fingers on the home row keys.", FocusKeys: "a s d f j k l ;", Bank: BankHomeRow, Words: 30, MinAccuracy: 90, MinWPM: 10, XPReward: 100},
		{ID: 2, Title: "Top Row", Description: "Reach up to the top row without looking.", FocusKeys: "q w e r t y u i o p", Bank: BankTopRow, Words: 30, MinAccuracy: 90, MinWPM: 15, XPReward: 150},
		{ID: 3, Title: "Bottom Row", Description: "Curl down to the bottom row keys.", FocusKeys: "z x c v b n m", Bank: BankBottomRow, Words: 30, MinAccuracy: 90, MinWPM: 15, XPReward: 150},
		{ID: 4, Title: "Full Alphabet", Description: "Put every letter together in common words.", FocusKeys: "a-z", Bank: BankAlphabet, Words: 40, MinAccuracy: 92, MinWPM: 20, XPReward: 200},
		{ID: 5, Title: "Numbers", Description: "Mix digits from the number row into words.", FocusKeys: "0-9", Bank: BankNumbers, Words: 25, MinAccuracy: 90, MinWPM: 18, XPReward: 250},
		{ID: 6, Title: "Symbols", Description: "Add punctuation and symbols to your flow.", FocusKeys: "! @ # $ % & * ?", Bank: BankSymbols, Words: 25, MinAccuracy: 88, MinWPM: 18, XPReward: 300},
	}
}

// Levels returns the ascending XP tier table. The last level has no upper bound.
func Levels() []Level {
	return []Level{
		{Number: 1, Name: "Beginner", MinXP: 0},
		{Number: 2, Name: "Novice", MinXP: 500},
		{Number: 3, Name: "Apprentice", MinXP: 1200},
		{Number: 4, Name: "Intermediate", MinXP: 2500},
		{Number: 5, Name: "Advanced", MinXP: 5000},
		{Number: 6, Name: "Expert", MinXP: 8000},
		{Number: 7, Name: "Master", MinXP: 12000},
	}
}

// Achievements returns the achievement catalog.
func Achievements() []Achievement {
	return []Achievement{
		{
			ID: "first-test", Name: "First Steps", Icon: "*", Description: "Complete your first typing test",
			Earned: func(f Facts) bool { return f.SessionsCompleted >= 1 },
		},
		{
			ID: "50wpm", Name: "Speed Demon", Icon: ">", Description: "Reach 50 WPM in a test",
			Earned: func(f Facts) bool { return f.HasResult && f.WPM >= 50 },
		},
		{
			ID: "100accuracy", Name: "Perfectionist", Icon: "+", Description: "Finish a test with 100% accuracy",
			Earned: func(f Facts) bool { return f.HasResult && f.Accuracy == 100 },
		},
		{
			ID: "10tests", Name: "Dedicated", Icon: "#", Description: "Complete 10 typing tests",
			Earned: func(f Facts) bool { return f.SessionsCompleted >= 10 },
		},
		{
			ID: "7day-streak", Name: "On Fire", Icon: "~", Description: "Practice 7 days in a row",
			Earned: func(f Facts) bool { return f.StreakDays >= 7 },
		},
		{
			ID: "all-lessons", Name: "Graduate", Icon: "^", Description: "Complete every lesson",
			Earned: func(f Facts) bool { return f.LessonsTotal > 0 && f.LessonsCompleted >= f.LessonsTotal },
		},
	}
}

// LessonByID finds a lesson.
func (c Catalog) LessonByID(id int) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

// AchievementByID finds an achievement.
func (c Catalog) AchievementByID(id string) (Achievement, bool) {
	for _, a := range c.Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// LevelFor returns the highest level whose MinXP is <= xp, scanning from the top.
func LevelFor(levels []Level, xp int) Level {
	for i := len(levels) - 1; i >= 0; i-- {
		if levels[i].MinXP <= xp {
			return levels[i]
		}
	}
	if len(levels) > 0 {
		return levels[0]
	}
	return Level{Number: 1}
}

// NextLevel returns the level after current, if any.
func NextLevel(levels []Level, current Level) (Level, bool) {
	for _, l := range levels {
		if l.MinXP > current.MinXP {
			return l, true
		}
	}
	return Level{}, false
}
