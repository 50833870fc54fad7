// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// Mode selects how a session completes and where its text comes from.
type Mode int

// Session modes.
const (
	ModeTimed Mode = iota
	ModeWordCount
	ModeQuote
	ModeCode
	ModeLesson
	ModeWeakKeyDrill
)

var modeNames = map[Mode]string{
	ModeTimed:        "timed",
	ModeWordCount:    "words",
	ModeQuote:        "quote",
	ModeCode:         "code",
	ModeLesson:       "lesson",
	ModeWeakKeyDrill: "drill",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode maps a mode name back to a Mode.
func ParseMode(name string) (Mode, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for mode, n := range modeNames {
		if n == name {
			return mode, true
		}
	}
	return ModeTimed, false
}

// FreeTyping reports whether results of the mode feed the durable test statistics.
func (m Mode) FreeTyping() bool {
	switch m {
	case ModeTimed, ModeWordCount, ModeQuote, ModeCode:
		return true
	default:
		return false
	}
}

// Glyph is one character of generated text.
type Glyph struct {
	Char        rune
	Highlighted bool
}

// Text is generated practice text.
type Text []Glyph

// PlainText builds an unhighlighted Text from s.
func PlainText(s string) Text {
	runes := []rune(s)
	out := make(Text, len(runes))
	for i, r := range runes {
		out[i] = Glyph{Char: r}
	}
	return out
}

// Runes returns the characters of the text.
func (t Text) Runes() []rune {
	out := make([]rune, len(t))
	for i, g := range t {
		out[i] = g.Char
	}
	return out
}

func (t Text) String() string {
	return string(t.Runes())
}

// Config defines practice settings.
type Config struct {
	Mode         Mode
	TimeLimit    int
	WordTarget   int
	Caps         bool
	Numbers      bool
	Symbols      bool
	CapsPct      float64
	NumbersPct   float64
	SymbolsPct   float64
	WeakTop      int
	RestartDelay time.Duration
	DailyGoal    int
	WordListPath string
	FeedbackURL  string
	LessonID     int
}

// StatsConfig defines filters for session log reports.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionResult is produced exactly once when a session ends cleanly.
type SessionResult struct {
	Mode                   Mode
	StartedAt              time.Time
	EndedAt                time.Time
	WordsPerMinute         int
	AccuracyPercent        int
	CorrectCount           int
	IncorrectCount         int
	DurationSeconds        int
	MistakesByExpectedChar map[string]int
}

// ProgressState is the durable cross-session record.
type ProgressState struct {
	BestWordsPerMinute     int            `json:"bestWPM"`
	RunningAverageAccuracy int            `json:"averageAccuracy"`
	TotalPracticeSeconds   int            `json:"totalPracticeTime"`
	SessionsCompleted      int            `json:"testsTaken"`
	XP                     int            `json:"xp"`
	Level                  int            `json:"level"`
	StreakDays             int            `json:"streakDays"`
	LastPracticeDate       string         `json:"lastPracticeDate,omitempty"`
	WeakKeyErrorCounts     map[string]int `json:"weakKeys"`
	CompletedLessonIDs     []int          `json:"completedLessons"`
	UnlockedAchievementIDs []string       `json:"achievements"`
	GoalDate               string         `json:"goalDate,omitempty"`
	GoalCount              int            `json:"goalCount"`
}

// HistoryEntry is one point of the WPM history.
type HistoryEntry struct {
	Date string `json:"date"`
	WPM  int    `json:"wpm"`
}

// WeakKey is one row of the weak-key ranking.
type WeakKey struct {
	Char       string
	ErrorRate  float64
	ErrorCount int
	PressCount int
}

// SessionRecord is one completed free-typing session in the session log.
type SessionRecord struct {
	ID              int64     `db:"id"`
	StartedAt       time.Time `db:"-"`
	EndedAt         time.Time `db:"-"`
	Mode            string    `db:"mode"`
	WPM             int       `db:"wpm"`
	Accuracy        int       `db:"accuracy"`
	Correct         int       `db:"correct"`
	Incorrect       int       `db:"incorrect"`
	DurationSeconds int       `db:"duration_s"`
}

// CharMistakes aggregates mistakes for one expected character across sessions.
type CharMistakes struct {
	Char     string `db:"char"`
	Mistakes int    `db:"mistakes"`
	Sessions int    `db:"sessions"`
}

// FeedbackEntry is one feedback submission.
type FeedbackEntry struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"timestamp" db:"-"`
	Liked     string    `json:"liked" db:"liked"`
	Improve   string    `json:"improve" db:"improve"`
	Bugs      string    `json:"bugs" db:"bugs"`
	Email     string    `json:"email,omitempty" db:"email"`
	UserAgent string    `json:"userAgent" db:"user_agent"`
	Sent      bool      `json:"-" db:"sent"`
}
