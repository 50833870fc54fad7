package session

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/model"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type countingRecorder struct {
	presses map[string]int
}

func (r *countingRecorder) RecordKeyPress(char string) {
	if r.presses == nil {
		r.presses = map[string]int{}
	}
	r.presses[char]++
}

func newSession(t *testing.T, settings Settings, text string, opts ...Option) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(settings, model.PlainText(text), "", opts...), clock
}

func countEvents[T Event](events []Event) int {
	n := 0
	for _, e := range events {
		if _, ok := e.(T); ok {
			n++
		}
	}
	return n
}

func endedResult(t *testing.T, events []Event) model.SessionResult {
	t.Helper()
	for _, e := range events {
		if ended, ok := e.(Ended); ok {
			return ended.Result
		}
	}
	t.Fatalf("no Ended event in %v", events)
	return model.SessionResult{}
}

func TestEndToEndCatDog(t *testing.T) {
	s, clock := newSession(t, Settings{Mode: model.ModeQuote}, "cat dog")
	require.Equal(t, StatusPending, s.Status())

	var events []Event
	for i, r := range "cat dog" {
		if i == len("cat dog")-1 {
			clock.Advance(6 * time.Second)
		}
		events = append(events, s.Type(r)...)
	}

	assert.Equal(t, 1, countEvents[Started](events))
	assert.Equal(t, 1, countEvents[Ended](events))
	assert.Equal(t, StatusEnded, s.Status())

	result := endedResult(t, events)
	assert.Equal(t, 14, result.WordsPerMinute)
	assert.Equal(t, 100, result.AccuracyPercent)
	assert.Equal(t, 7, result.CorrectCount)
	assert.Equal(t, 0, result.IncorrectCount)
	assert.Equal(t, 6, result.DurationSeconds)
	assert.Empty(t, result.MistakesByExpectedChar)

	// Input after the end is ignored.
	assert.Empty(t, s.Type('x'))
}

func TestMetricsBeforeStart(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, "hello")
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.WPM)
	assert.Equal(t, 100, snap.Accuracy)
	assert.Equal(t, 0, snap.Cursor)
	assert.Equal(t, 0, snap.LockIndex)
}

func TestEmptyInputDoesNotStart(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, "hello")
	events := s.Apply(TypeInput{Value: ""})
	assert.Empty(t, events)
	assert.Equal(t, StatusPending, s.Status())
}

func TestWordsPerMinuteFloorsElapsed(t *testing.T) {
	assert.Equal(t, 60, WordsPerMinute(5, 0))
	assert.Equal(t, 60, WordsPerMinute(5, 500*time.Millisecond))
	assert.Equal(t, 12, WordsPerMinute(60, time.Minute))
	assert.Equal(t, 100, AccuracyPercent(0, 0))
	assert.Equal(t, 67, AccuracyPercent(2, 1))
}

func TestBackspaceCannotCrossLock(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, "cat dog bird")
	s.Type([]rune("cat ")...)
	require.Equal(t, 4, s.LockIndex())

	events := s.Backspace()
	assert.Equal(t, 1, countEvents[Blocked](events))
	assert.Equal(t, "cat ", string(s.Snapshot().Typed))

	events = s.Apply(KeyDown{Key: KeyLeft})
	assert.Equal(t, 1, countEvents[Blocked](events))

	// A shorter value is restored to the lock boundary.
	s.Apply(TypeInput{Value: "ca"})
	assert.Equal(t, "cat ", string(s.Snapshot().Typed))

	// Rewriting the committed prefix is rejected.
	events = s.Apply(TypeInput{Value: "cot d"})
	assert.Equal(t, 1, countEvents[Blocked](events))
	assert.Equal(t, "cat ", string(s.Snapshot().Typed))

	// The current word stays editable.
	s.Type('x')
	s.Backspace()
	s.Type('d')
	assert.Equal(t, "cat d", string(s.Snapshot().Typed))
	assert.Equal(t, 0, s.Snapshot().Incorrect)
}

func TestLockPrefixNeverChanges(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	target := strings.Repeat("abc ", 300)
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, target)
	alphabet := []rune("abc x")

	var committed []rune
	for step := 0; step < 2000; step++ {
		typed := s.Snapshot().Typed
		switch rnd.Intn(5) {
		case 0, 1:
			s.Type(alphabet[rnd.Intn(len(alphabet))])
		case 2:
			s.Backspace()
		case 3:
			cut := 0
			if len(typed) > 0 {
				cut = rnd.Intn(len(typed) + 1)
			}
			s.Apply(TypeInput{Value: string(typed[:cut])})
		case 4:
			if len(typed) > 0 {
				edited := append([]rune(nil), typed...)
				edited[rnd.Intn(len(edited))] = alphabet[rnd.Intn(len(alphabet))]
				s.Apply(TypeInput{Value: string(edited)})
			}
		}

		snap := s.Snapshot()
		require.Equal(t, len(snap.Typed), snap.Correct+snap.Incorrect, "step %d", step)
		require.Equal(t, len(snap.Typed), snap.Cursor)
		require.GreaterOrEqual(t, snap.Cursor, snap.LockIndex)
		require.GreaterOrEqual(t, len(snap.Typed), len(committed), "step %d", step)
		require.Equal(t, string(committed), string(snap.Typed[:len(committed)]), "step %d", step)
		if snap.LockIndex > len(committed) {
			committed = append([]rune(nil), snap.Typed[:snap.LockIndex]...)
		}
		if snap.Status == StatusEnded {
			break
		}
	}
	require.NotEmpty(t, committed)
}

func TestMistakesCountedOncePerPosition(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, "abcd")
	s.Type('x')
	s.Type('b')
	s.Type('c')
	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Correct)
	assert.Equal(t, 1, snap.Incorrect)

	s.Backspace()
	s.Backspace()
	s.Backspace()
	s.Type('y')
	s.Type('b')
	s.Type('c')
	events := s.Type('d')
	result := endedResult(t, events)
	assert.Equal(t, map[string]int{"a": 2}, result.MistakesByExpectedChar)
	assert.Equal(t, 3, result.CorrectCount)
	assert.Equal(t, 1, result.IncorrectCount)
	assert.Equal(t, 75, result.AccuracyPercent)
}

func TestFixedMistakeStaysCounted(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, "ab")
	s.Type('x')
	s.Backspace()
	events := s.Type('a', 'b')
	result := endedResult(t, events)
	assert.Equal(t, 100, result.AccuracyPercent)
	assert.Equal(t, map[string]int{"a": 1}, result.MistakesByExpectedChar)
}

func TestOverlongInputIsTruncated(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, "hi")
	events := s.Apply(TypeInput{Value: "hi there"})
	assert.Equal(t, 1, countEvents[Ended](events))
	assert.Equal(t, "hi", string(s.Snapshot().Typed))
}

func TestTimedSessionEndsOnTicks(t *testing.T) {
	s, clock := newSession(t, Settings{Mode: model.ModeTimed, TimeLimit: 3}, strings.Repeat("word ", 50))
	events := s.Type('w')
	require.Equal(t, 1, countEvents[Started](events))
	started := events[0].(Started)
	assert.Equal(t, s.ID(), started.SessionID)

	assert.Empty(t, s.Apply(Tick{Epoch: started.Epoch - 1}))
	assert.Equal(t, 3, s.Snapshot().Remaining)

	clock.Advance(time.Second)
	events = s.Apply(Tick{Epoch: started.Epoch})
	assert.Equal(t, []Event{Ticked{Remaining: 2}}, events)
	clock.Advance(time.Second)
	s.Apply(Tick{Epoch: started.Epoch})
	clock.Advance(time.Second)
	events = s.Apply(Tick{Epoch: started.Epoch})

	result := endedResult(t, events)
	assert.Equal(t, 3, result.DurationSeconds)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, StatusEnded, s.Status())

	// A second timer left over from the ended attempt cannot end it again.
	assert.Empty(t, s.Apply(Tick{Epoch: started.Epoch}))
}

func TestPendingSessionIgnoresTicks(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeTimed, TimeLimit: 2}, "abc")
	assert.Empty(t, s.Apply(Tick{Epoch: s.Epoch()}, Tick{Epoch: s.Epoch()}, Tick{Epoch: s.Epoch()}))
	assert.Equal(t, StatusPending, s.Status())
}

func TestWordCountCompletion(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeWordCount, WordTarget: 2}, "one two three four")
	events := s.Type([]rune("one two")...)
	assert.Zero(t, countEvents[Ended](events))
	assert.Equal(t, 1, s.CommittedWords())

	events = s.Type(' ')
	result := endedResult(t, events)
	assert.Equal(t, 8, result.CorrectCount)
}

func TestResetDiscardsResult(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeTimed, TimeLimit: 1}, "abc def")
	events := s.Type('a', 'b')
	started := events[0].(Started)
	oldID := s.ID()

	events = s.Apply(Reset{})
	assert.Equal(t, []Event{Restarted{}}, events)
	assert.Equal(t, StatusPending, s.Status())
	assert.NotEqual(t, oldID, s.ID())
	assert.Empty(t, s.Snapshot().Typed)
	assert.Equal(t, "abc def", s.Snapshot().Target.String())

	// The old timer cannot end the new attempt.
	assert.Empty(t, s.Apply(Tick{Epoch: started.Epoch}))
	assert.Equal(t, StatusPending, s.Status())
}

func TestStartLoadsNewText(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, "abc")
	s.Type('a')
	events := s.Apply(Start{Text: model.PlainText("xyz"), Author: "Someone"})
	assert.Equal(t, []Event{Restarted{NewText: true}}, events)
	snap := s.Snapshot()
	assert.Equal(t, "xyz", snap.Target.String())
	assert.Equal(t, "Someone", snap.Author)
	assert.Equal(t, StatusPending, snap.Status)
}

func TestEmptyTextFallsBack(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeWeakKeyDrill}, "   ")
	assert.Equal(t, catalog.FallbackSentence, s.Snapshot().Target.String())
}

func TestTabRestartsSameText(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, "abc")
	s.Type('a', 'b')
	events := s.Apply(KeyDown{Key: KeyTab})
	assert.Equal(t, 1, countEvents[Restarted](events))
	assert.Empty(t, s.Snapshot().Typed)
	assert.Equal(t, "abc", s.Snapshot().Target.String())
}

func TestKeyPressesRecordedOncePerNewCharacter(t *testing.T) {
	rec := &countingRecorder{}
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, "abcdef", WithRecorder(rec))
	s.Type('a', 'x')
	s.Backspace()
	s.Type('b')
	s.Apply(TypeInput{Value: "ab"})
	assert.Equal(t, map[string]int{"a": 1, "x": 1, "b": 1}, rec.presses)
}

func TestLessonDoesNotRecordKeyPresses(t *testing.T) {
	rec := &countingRecorder{}
	s, _ := newSession(t, Settings{Mode: model.ModeLesson}, "asdf", WithRecorder(rec))
	s.Type('a', 's')
	assert.Empty(t, rec.presses)
}

func TestCapsLockIndicator(t *testing.T) {
	s, _ := newSession(t, Settings{Mode: model.ModeQuote}, "abc")
	assert.Equal(t, []Event{CapsLock{On: true}}, s.Apply(Focus{CapsLock: true}))
	assert.True(t, s.Snapshot().CapsLock)
	assert.Equal(t, []Event{CapsLock{On: false}}, s.Apply(KeyDown{Key: "a", CapsLock: false}))
	s.Apply(Blur{})
	assert.False(t, s.Snapshot().CapsLock)
}
