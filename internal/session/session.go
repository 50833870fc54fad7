// Package session implements the typing session state machine.
package session

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/model"
)

// Status is the session lifecycle state.
type Status int

// Session states.
const (
	StatusPending Status = iota
	StatusActive
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// KeyRecorder receives every newly typed character.
type KeyRecorder interface {
	RecordKeyPress(char string)
}

// Clock returns the current time.
type Clock func() time.Time

// Settings configures completion for a session.
type Settings struct {
	Mode       model.Mode
	TimeLimit  int
	WordTarget int
}

// Option customises a Session.
type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRecorder sets the key press recorder. Only free typing modes record presses.
func WithRecorder(r KeyRecorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// Session is one typing attempt. It is not safe for concurrent use.
type Session struct {
	settings Settings
	clock    Clock
	recorder KeyRecorder

	id     string
	epoch  int
	text   model.Text
	author string
	target []rune
	typed  []rune

	status    Status
	startedAt time.Time
	endedAt   time.Time
	remaining int

	correct   int
	incorrect int
	mistakes  map[string]int
	// counted maps a mismatched position to the typed rune already charged to it.
	counted map[int]rune

	focused  bool
	capsLock bool
}

// New creates a pending session over text.
func New(settings Settings, text model.Text, author string, opts ...Option) *Session {
	s := &Session{settings: settings, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.load(text, author)
	return s
}

// Snapshot is a read-only view for rendering.
type Snapshot struct {
	ID        string
	Epoch     int
	Mode      model.Mode
	Status    Status
	Target    model.Text
	Author    string
	Typed     []rune
	Cursor    int
	LockIndex int
	Remaining int
	Correct   int
	Incorrect int
	WPM       int
	Accuracy  int
	Elapsed   time.Duration
	CapsLock  bool
}

// Snapshot returns the current render state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:        s.id,
		Epoch:     s.epoch,
		Mode:      s.settings.Mode,
		Status:    s.status,
		Target:    s.text,
		Author:    s.author,
		Typed:     append([]rune(nil), s.typed...),
		Cursor:    len(s.typed),
		LockIndex: s.LockIndex(),
		Remaining: s.remaining,
		Correct:   s.correct,
		Incorrect: s.incorrect,
		WPM:       s.WPM(),
		Accuracy:  s.Accuracy(),
		Elapsed:   s.elapsed(),
		CapsLock:  s.focused && s.capsLock,
	}
}

// ID returns the identifier of the current attempt. It changes on every reset.
func (s *Session) ID() string { return s.id }

// Epoch returns the tick epoch of the current attempt.
func (s *Session) Epoch() int { return s.epoch }

// Status returns the lifecycle state.
func (s *Session) Status() Status { return s.status }

// Settings returns the completion settings.
func (s *Session) Settings() Settings { return s.settings }

// LockIndex is the index of the first character of the word being typed.
func (s *Session) LockIndex() int {
	for i := len(s.typed) - 1; i >= 0; i-- {
		if s.typed[i] == ' ' {
			return i + 1
		}
	}
	return 0
}

// Apply processes commands in order and returns the resulting events.
func (s *Session) Apply(cmds ...Command) []Event {
	var events []Event
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case TypeInput:
			events = s.typeInput([]rune(c.Value), events)
		case KeyDown:
			events = s.keyDown(c, events)
		case Focus:
			s.focused = true
			s.capsLock = c.CapsLock
			events = append(events, CapsLock{On: c.CapsLock})
		case Blur:
			s.focused = false
			events = append(events, CapsLock{On: false})
		case Tick:
			events = s.tick(c, events)
		case Reset:
			s.load(s.text, s.author)
			events = append(events, Restarted{})
		case Start:
			s.load(c.Text, c.Author)
			events = append(events, Restarted{NewText: true})
		}
	}
	return events
}

// Type appends runes to the current input.
func (s *Session) Type(runes ...rune) []Event {
	value := append(append([]rune(nil), s.typed...), runes...)
	return s.Apply(TypeInput{Value: string(value)})
}

// Backspace removes the last rune if it is not locked.
func (s *Session) Backspace() []Event {
	events := s.Apply(KeyDown{Key: KeyBackspace, CapsLock: s.capsLock})
	if hasBlocked(events) || len(s.typed) == 0 {
		return events
	}
	return append(events, s.Apply(TypeInput{Value: string(s.typed[:len(s.typed)-1])})...)
}

func hasBlocked(events []Event) bool {
	for _, e := range events {
		if _, ok := e.(Blocked); ok {
			return true
		}
	}
	return false
}

func (s *Session) load(text model.Text, author string) {
	if strings.TrimSpace(text.String()) == "" {
		text = model.PlainText(catalog.FallbackSentence)
		author = ""
	}
	s.id = uuid.NewString()
	s.epoch++
	s.text = text
	s.author = author
	s.target = text.Runes()
	s.typed = nil
	s.status = StatusPending
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.remaining = s.settings.TimeLimit
	s.correct = 0
	s.incorrect = 0
	s.mistakes = map[string]int{}
	s.counted = map[int]rune{}
}

func (s *Session) keyDown(c KeyDown, events []Event) []Event {
	if c.CapsLock != s.capsLock {
		s.capsLock = c.CapsLock
		events = append(events, CapsLock{On: s.focused && c.CapsLock})
	}
	switch c.Key {
	case KeyTab:
		s.load(s.text, s.author)
		return append(events, Restarted{})
	case KeyBackspace, KeyLeft:
		if s.status == StatusEnded || len(s.typed) <= s.LockIndex() {
			return append(events, Blocked{})
		}
	}
	return events
}

func (s *Session) typeInput(proposed []rune, events []Event) []Event {
	if s.status == StatusEnded {
		return events
	}
	lock := s.LockIndex()
	if len(proposed) < lock {
		proposed = append([]rune(nil), s.typed[:lock]...)
	}
	if !equalRunes(proposed[:lock], s.typed[:lock]) {
		return append(events, Blocked{})
	}
	if len(proposed) > len(s.target) {
		proposed = proposed[:len(s.target)]
	}
	if equalRunes(proposed, s.typed) {
		return events
	}

	if s.status == StatusPending {
		if len(proposed) == 0 {
			return events
		}
		s.status = StatusActive
		s.startedAt = s.clock()
		s.remaining = s.settings.TimeLimit
		events = append(events, Started{SessionID: s.id, Epoch: s.epoch})
	}

	if s.recorder != nil && s.settings.Mode.FreeTyping() {
		for i := len(s.typed); i < len(proposed); i++ {
			s.recorder.RecordKeyPress(string(proposed[i]))
		}
	}

	s.typed = proposed
	s.rescan()

	if s.complete() {
		events = s.end(events)
	}
	return events
}

// rescan recomputes the counts from the full input. A mismatch is charged to
// mistakes once until the position is fixed, truncated or retyped differently.
func (s *Session) rescan() {
	s.correct = 0
	s.incorrect = 0
	for i, r := range s.typed {
		if r == s.target[i] {
			s.correct++
			delete(s.counted, i)
			continue
		}
		s.incorrect++
		if prev, ok := s.counted[i]; ok && prev == r {
			continue
		}
		s.counted[i] = r
		s.mistakes[string(s.target[i])]++
	}
	for i := range s.counted {
		if i >= len(s.typed) {
			delete(s.counted, i)
		}
	}
}

func (s *Session) complete() bool {
	if s.status != StatusActive {
		return false
	}
	if len(s.typed) >= len(s.target) {
		return true
	}
	if s.settings.Mode == model.ModeTimed && s.settings.TimeLimit > 0 && s.remaining <= 0 {
		return true
	}
	if s.settings.Mode == model.ModeWordCount && s.settings.WordTarget > 0 {
		return s.CommittedWords() >= s.settings.WordTarget
	}
	return false
}

// CommittedWords counts words followed by a space.
func (s *Session) CommittedWords() int {
	return len(strings.Fields(string(s.typed[:s.LockIndex()])))
}

func (s *Session) tick(c Tick, events []Event) []Event {
	if c.Epoch != s.epoch || s.status != StatusActive {
		return events
	}
	if s.settings.Mode == model.ModeTimed {
		s.remaining--
		if s.remaining < 0 {
			s.remaining = 0
		}
	}
	events = append(events, Ticked{Remaining: s.remaining})
	if s.complete() {
		events = s.end(events)
	}
	return events
}

func (s *Session) end(events []Event) []Event {
	s.endedAt = s.clock()
	s.status = StatusEnded
	// Outstanding ticks belong to the finished attempt.
	s.epoch++
	return append(events, Ended{Result: s.result()})
}

func (s *Session) result() model.SessionResult {
	duration := int(math.Floor(s.elapsed().Seconds()))
	if s.settings.Mode == model.ModeTimed && s.settings.TimeLimit > 0 {
		duration = s.settings.TimeLimit - s.remaining
	}
	mistakes := make(map[string]int, len(s.mistakes))
	for ch, n := range s.mistakes {
		mistakes[ch] = n
	}
	return model.SessionResult{
		Mode:                   s.settings.Mode,
		StartedAt:              s.startedAt,
		EndedAt:                s.endedAt,
		WordsPerMinute:         s.WPM(),
		AccuracyPercent:        s.Accuracy(),
		CorrectCount:           s.correct,
		IncorrectCount:         s.incorrect,
		DurationSeconds:        duration,
		MistakesByExpectedChar: mistakes,
	}
}

func (s *Session) elapsed() time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	end := s.endedAt
	if end.IsZero() {
		end = s.clock()
	}
	return end.Sub(s.startedAt)
}

// WPM returns words per minute using five characters per word.
func (s *Session) WPM() int {
	if s.startedAt.IsZero() {
		return 0
	}
	return WordsPerMinute(s.correct, s.elapsed())
}

// Accuracy returns the accuracy percentage.
func (s *Session) Accuracy() int {
	return AccuracyPercent(s.correct, s.incorrect)
}

// WordsPerMinute converts correct characters over elapsed time. Elapsed time is
// floored at one second.
func WordsPerMinute(correct int, elapsed time.Duration) int {
	minutes := math.Max(elapsed.Minutes(), 1.0/60)
	return int(math.Round(float64(correct) / 5 / minutes))
}

// AccuracyPercent is 100 when nothing has been typed.
func AccuracyPercent(correct, incorrect int) int {
	total := correct + incorrect
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
