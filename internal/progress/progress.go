// Package progress aggregates finished sessions into durable progress.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/model"
)

// Record names used with a Repository.
const (
	RecordProgress   = "progress"
	RecordHistory    = "history"
	RecordKeyPresses = "key_presses"
)

const (
	historyCap       = 30
	defaultDailyGoal = 3
)

var (
	// ErrUnknownLesson is returned for lesson ids missing from the catalog.
	ErrUnknownLesson = errors.New("unknown lesson")
	// ErrLessonLocked is returned when a lesson has not been unlocked yet.
	ErrLessonLocked = errors.New("lesson is locked")
)

// Repository stores named opaque records. A missing record loads as nil.
type Repository interface {
	LoadRecord(ctx context.Context, name string) ([]byte, error)
	SaveRecord(ctx context.Context, name string, body []byte) error
	DeleteRecords(ctx context.Context) error
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithClock replaces time.Now for calendar dates.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithDailyGoal sets the number of tests per day that completes the goal.
func WithDailyGoal(goal int) Option {
	return func(a *Aggregator) {
		if goal > 0 {
			a.dailyGoal = goal
		}
	}
}

// Aggregator owns the durable progress state. It is not safe for concurrent use.
type Aggregator struct {
	repo      Repository
	cat       catalog.Catalog
	now       func() time.Time
	dailyGoal int

	state   model.ProgressState
	history []model.HistoryEntry
	presses map[string]int
}

// New returns an Aggregator holding default state. Call Load to read stored state.
func New(repo Repository, cat catalog.Catalog, opts ...Option) *Aggregator {
	a := &Aggregator{
		repo:      repo,
		cat:       cat,
		now:       time.Now,
		dailyGoal: defaultDailyGoal,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setDefaults()
	return a
}

// Outcome describes a finished free typing test after it has been recorded.
type Outcome struct {
	Result       model.SessionResult
	NewBest      bool
	XPGained     int
	Rating       string
	LevelUp      bool
	Level        catalog.Level
	Achievements []catalog.Achievement
	GoalCount    int
	GoalTarget   int
	GoalReached  bool
}

// LessonOutcome describes a finished lesson attempt.
type LessonOutcome struct {
	Lesson       catalog.Lesson
	Result       model.SessionResult
	Passed       bool
	XPGained     int
	LevelUp      bool
	Level        catalog.Level
	Unlocked     *catalog.Lesson
	Achievements []catalog.Achievement
}

// LessonStatus is a lesson with its unlock state.
type LessonStatus struct {
	catalog.Lesson
	Unlocked  bool
	Completed bool
}

// AchievementStatus is an achievement with its unlock state.
type AchievementStatus struct {
	catalog.Achievement
	Unlocked bool
}

func defaultState() model.ProgressState {
	return model.ProgressState{
		Level:                  1,
		WeakKeyErrorCounts:     map[string]int{},
		CompletedLessonIDs:     []int{},
		UnlockedAchievementIDs: []string{},
	}
}

func (a *Aggregator) setDefaults() {
	a.state = defaultState()
	a.state.Level = catalog.LevelFor(a.cat.Levels, 0).Number
	a.history = []model.HistoryEntry{}
	a.presses = map[string]int{}
}

// Load reads the three records. Missing or malformed records fall back to defaults.
func (a *Aggregator) Load(ctx context.Context) error {
	a.setDefaults()

	body, err := a.repo.LoadRecord(ctx, RecordProgress)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	var state model.ProgressState
	if decode(body, &state) {
		a.state = a.normalize(state)
	}

	body, err = a.repo.LoadRecord(ctx, RecordHistory)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	var history []model.HistoryEntry
	if decode(body, &history) && history != nil {
		a.history = trimHistory(history)
	}

	body, err = a.repo.LoadRecord(ctx, RecordKeyPresses)
	if err != nil {
		return fmt.Errorf("failed to load key presses: %w", err)
	}
	var presses map[string]int
	if decode(body, &presses) && presses != nil {
		a.presses = presses
	}
	return nil
}

func decode(body []byte, v any) bool {
	if len(body) == 0 {
		return false
	}
	return json.Unmarshal(body, v) == nil
}

func (a *Aggregator) normalize(s model.ProgressState) model.ProgressState {
	if s.WeakKeyErrorCounts == nil {
		s.WeakKeyErrorCounts = map[string]int{}
	}
	if s.CompletedLessonIDs == nil {
		s.CompletedLessonIDs = []int{}
	}
	if s.UnlockedAchievementIDs == nil {
		s.UnlockedAchievementIDs = []string{}
	}
	if s.RunningAverageAccuracy < 0 {
		s.RunningAverageAccuracy = 0
	}
	if s.RunningAverageAccuracy > 100 {
		s.RunningAverageAccuracy = 100
	}
	if s.XP < 0 {
		s.XP = 0
	}
	s.Level = catalog.LevelFor(a.cat.Levels, s.XP).Number
	return s
}

func (a *Aggregator) save(ctx context.Context) error {
	records := []struct {
		name string
		v    any
	}{
		{RecordProgress, a.state},
		{RecordHistory, a.history},
		{RecordKeyPresses, a.presses},
	}
	for _, r := range records {
		body, err := json.Marshal(r.v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", r.name, err)
		}
		if err := a.repo.SaveRecord(ctx, r.name, body); err != nil {
			return fmt.Errorf("failed to save %s: %w", r.name, err)
		}
	}
	return nil
}

// State returns a copy of the durable state.
func (a *Aggregator) State() model.ProgressState {
	s := a.state
	s.WeakKeyErrorCounts = make(map[string]int, len(a.state.WeakKeyErrorCounts))
	for k, v := range a.state.WeakKeyErrorCounts {
		s.WeakKeyErrorCounts[k] = v
	}
	s.CompletedLessonIDs = append([]int{}, a.state.CompletedLessonIDs...)
	s.UnlockedAchievementIDs = append([]string{}, a.state.UnlockedAchievementIDs...)
	return s
}

// History returns the recent WPM history, oldest first.
func (a *Aggregator) History() []model.HistoryEntry {
	return append([]model.HistoryEntry{}, a.history...)
}

// KeyPresses returns a copy of the key press frequency map.
func (a *Aggregator) KeyPresses() map[string]int {
	out := make(map[string]int, len(a.presses))
	for k, v := range a.presses {
		out[k] = v
	}
	return out
}

// RecordKeyPress counts one press of char. It is persisted with the next session.
func (a *Aggregator) RecordKeyPress(char string) {
	if char == "" {
		return
	}
	a.presses[char]++
}

// RecordSession folds result into the durable statistics and persists them.
func (a *Aggregator) RecordSession(ctx context.Context, result model.SessionResult) error {
	a.recordSession(result)
	return a.save(ctx)
}

func (a *Aggregator) recordSession(result model.SessionResult) {
	if result.WordsPerMinute > a.state.BestWordsPerMinute {
		a.state.BestWordsPerMinute = result.WordsPerMinute
	}
	a.state.RunningAverageAccuracy = RunningAverage(a.state.RunningAverageAccuracy, a.state.SessionsCompleted, result.AccuracyPercent)
	a.state.SessionsCompleted++
	if result.DurationSeconds > 0 {
		a.state.TotalPracticeSeconds += result.DurationSeconds
	}
	for ch, n := range result.MistakesByExpectedChar {
		if n > 0 {
			a.state.WeakKeyErrorCounts[ch] += n
		}
	}
	a.updateStreak()
}

func (a *Aggregator) updateStreak() {
	today := a.now()
	a.state.StreakDays = NextStreak(a.state.StreakDays, a.state.LastPracticeDate, today)
	a.state.LastPracticeDate = today.Format(dateLayout)
}

// AddXP adds amount and persists. It reports whether the level went up.
func (a *Aggregator) AddXP(ctx context.Context, amount int) (bool, error) {
	up := a.addXP(amount)
	return up, a.save(ctx)
}

func (a *Aggregator) addXP(amount int) bool {
	if amount <= 0 {
		return false
	}
	before := a.state.Level
	a.state.XP += amount
	a.state.Level = catalog.LevelFor(a.cat.Levels, a.state.XP).Number
	return a.state.Level > before
}

// CompleteTest records a free typing test, awards XP, appends history,
// advances the daily goal and evaluates achievements, then persists once.
func (a *Aggregator) CompleteTest(ctx context.Context, result model.SessionResult) (Outcome, error) {
	out := Outcome{
		Result:  result,
		NewBest: result.WordsPerMinute > a.state.BestWordsPerMinute,
		Rating:  Rate(result.WordsPerMinute, result.AccuracyPercent),
	}
	a.recordSession(result)

	out.XPGained = TestXP(result.WordsPerMinute, result.AccuracyPercent)
	out.LevelUp = a.addXP(out.XPGained)
	out.Level = a.Level()

	a.history = trimHistory(append(a.history, model.HistoryEntry{
		Date: a.now().Format(dateLayout),
		WPM:  result.WordsPerMinute,
	}))

	before := a.state.GoalCount
	a.advanceGoal()
	out.GoalCount = a.state.GoalCount
	out.GoalTarget = a.dailyGoal
	out.GoalReached = before < a.dailyGoal && a.state.GoalCount >= a.dailyGoal

	out.Achievements = a.evaluate(&result)
	if err := a.save(ctx); err != nil {
		return out, err
	}
	return out, nil
}

// CompleteLesson applies the lesson gate. A failed attempt leaves state untouched.
func (a *Aggregator) CompleteLesson(ctx context.Context, lessonID int, result model.SessionResult) (LessonOutcome, error) {
	lesson, ok := a.cat.LessonByID(lessonID)
	if !ok {
		return LessonOutcome{}, fmt.Errorf("%w: %d", ErrUnknownLesson, lessonID)
	}
	if !a.lessonUnlocked(lesson.ID) {
		return LessonOutcome{}, fmt.Errorf("%w: %d", ErrLessonLocked, lessonID)
	}
	out := LessonOutcome{Lesson: lesson, Result: result, Level: a.Level()}
	if result.AccuracyPercent < lesson.MinAccuracy || result.WordsPerMinute < lesson.MinWPM {
		return out, nil
	}
	out.Passed = true

	lockedBefore := map[int]bool{}
	for _, l := range a.cat.Lessons {
		lockedBefore[l.ID] = !a.lessonUnlocked(l.ID)
	}
	if !a.lessonCompleted(lesson.ID) {
		a.state.CompletedLessonIDs = append(a.state.CompletedLessonIDs, lesson.ID)
		sort.Ints(a.state.CompletedLessonIDs)
	}
	for _, l := range a.cat.Lessons {
		if lockedBefore[l.ID] && a.lessonUnlocked(l.ID) {
			next := l
			out.Unlocked = &next
			break
		}
	}

	out.XPGained = lesson.XPReward
	out.LevelUp = a.addXP(lesson.XPReward)
	out.Level = a.Level()
	out.Achievements = a.evaluate(nil)
	if err := a.save(ctx); err != nil {
		return out, err
	}
	return out, nil
}

// LessonFailureMessage is the retry notice for a lesson below its gates.
func LessonFailureMessage(l catalog.Lesson) string {
	return fmt.Sprintf("Need %d%% accuracy & %d WPM. Keep going!", l.MinAccuracy, l.MinWPM)
}

func (a *Aggregator) advanceGoal() {
	today := a.now().Format(dateLayout)
	if a.state.GoalDate != today {
		a.state.GoalDate = today
		a.state.GoalCount = 0
	}
	a.state.GoalCount++
}

// DailyGoal returns today's completed test count and the goal.
func (a *Aggregator) DailyGoal() (int, int) {
	if a.state.GoalDate != a.now().Format(dateLayout) {
		return 0, a.dailyGoal
	}
	return a.state.GoalCount, a.dailyGoal
}

// evaluate unlocks newly earned achievements. result is nil when no test was just finished.
func (a *Aggregator) evaluate(result *model.SessionResult) []catalog.Achievement {
	facts := catalog.Facts{
		SessionsCompleted: a.state.SessionsCompleted,
		StreakDays:        a.state.StreakDays,
		LessonsCompleted:  len(a.state.CompletedLessonIDs),
		LessonsTotal:      len(a.cat.Lessons),
	}
	if result != nil {
		facts.HasResult = true
		facts.WPM = result.WordsPerMinute
		facts.Accuracy = result.AccuracyPercent
	}
	var unlocked []catalog.Achievement
	for _, ach := range a.cat.Achievements {
		if a.hasAchievement(ach.ID) || ach.Earned == nil || !ach.Earned(facts) {
			continue
		}
		a.state.UnlockedAchievementIDs = append(a.state.UnlockedAchievementIDs, ach.ID)
		unlocked = append(unlocked, ach)
	}
	return unlocked
}

func (a *Aggregator) hasAchievement(id string) bool {
	for _, have := range a.state.UnlockedAchievementIDs {
		if have == id {
			return true
		}
	}
	return false
}

func (a *Aggregator) lessonCompleted(id int) bool {
	for _, done := range a.state.CompletedLessonIDs {
		if done == id {
			return true
		}
	}
	return false
}

// lessonUnlocked: the first lesson is always open, later ones open once the previous one is passed.
func (a *Aggregator) lessonUnlocked(id int) bool {
	for i, l := range a.cat.Lessons {
		if l.ID != id {
			continue
		}
		if i == 0 || a.lessonCompleted(id) {
			return true
		}
		return a.lessonCompleted(a.cat.Lessons[i-1].ID)
	}
	return false
}

// Lessons returns the lesson catalog with unlock and completion state.
func (a *Aggregator) Lessons() []LessonStatus {
	out := make([]LessonStatus, 0, len(a.cat.Lessons))
	for _, l := range a.cat.Lessons {
		out = append(out, LessonStatus{
			Lesson:    l,
			Unlocked:  a.lessonUnlocked(l.ID),
			Completed: a.lessonCompleted(l.ID),
		})
	}
	return out
}

// Achievements returns the achievement catalog with unlock state.
func (a *Aggregator) Achievements() []AchievementStatus {
	out := make([]AchievementStatus, 0, len(a.cat.Achievements))
	for _, ach := range a.cat.Achievements {
		out = append(out, AchievementStatus{Achievement: ach, Unlocked: a.hasAchievement(ach.ID)})
	}
	return out
}

// Level returns the current level.
func (a *Aggregator) Level() catalog.Level {
	return catalog.LevelFor(a.cat.Levels, a.state.XP)
}

// LevelProgress returns the fraction of the way to the next level, 1 at the top level.
func (a *Aggregator) LevelProgress() float64 {
	current := a.Level()
	next, ok := catalog.NextLevel(a.cat.Levels, current)
	if !ok || next.MinXP <= current.MinXP {
		return 1
	}
	return float64(a.state.XP-current.MinXP) / float64(next.MinXP-current.MinXP)
}

// TopWeakKeys ranks pressed characters by error rate, then by error count.
// Whitespace and characters never pressed are excluded.
func (a *Aggregator) TopWeakKeys(n int) []model.WeakKey {
	return RankWeakKeys(a.state.WeakKeyErrorCounts, a.presses, n)
}

// RankWeakKeys ranks characters with at least one press and one error.
func RankWeakKeys(errs, presses map[string]int, n int) []model.WeakKey {
	if n <= 0 {
		return nil
	}
	var keys []model.WeakKey
	for ch, count := range errs {
		if count <= 0 || strings.TrimSpace(ch) == "" {
			continue
		}
		pressed := presses[ch]
		if pressed <= 0 {
			continue
		}
		keys = append(keys, model.WeakKey{
			Char:       ch,
			ErrorRate:  float64(count) / float64(pressed),
			ErrorCount: count,
			PressCount: pressed,
		})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ErrorRate != keys[j].ErrorRate {
			return keys[i].ErrorRate > keys[j].ErrorRate
		}
		if keys[i].ErrorCount != keys[j].ErrorCount {
			return keys[i].ErrorCount > keys[j].ErrorCount
		}
		return keys[i].Char < keys[j].Char
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Reset clears every record back to defaults.
func (a *Aggregator) Reset(ctx context.Context) error {
	a.setDefaults()
	if err := a.repo.DeleteRecords(ctx); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}

func trimHistory(h []model.HistoryEntry) []model.HistoryEntry {
	if len(h) > historyCap {
		h = h[len(h)-historyCap:]
	}
	return append([]model.HistoryEntry{}, h...)
}
