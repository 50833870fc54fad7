// Package app wires the session model to progress, text generation and the session log.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/generator"
	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/progress"
	"github.com/verte-zerg/typeflow/internal/session"
)

// Defaults applied when a Config leaves a field unset.
const (
	DefaultTimeLimit    = 60
	DefaultWordTarget   = 25
	DefaultWeakTop      = 5
	DefaultRestartDelay = 2600 * time.Millisecond
	drillPraiseAccuracy = 90
)

// SessionLog appends finished free typing sessions.
type SessionLog interface {
	InsertSession(ctx context.Context, result model.SessionResult) (int64, error)
}

// Option customises an App.
type Option func(*App)

// WithClock sets the clock handed to every session.
func WithClock(c session.Clock) Option {
	return func(a *App) { a.clock = c }
}

// App owns the aggregator and the single active session.
type App struct {
	cfg      model.Config
	cat      catalog.Catalog
	progress *progress.Aggregator
	gen      *generator.Generator
	sessions SessionLog
	clock    session.Clock

	current  *session.Session
	lessonID int
}

// New returns an App. sessions may be nil, in which case finished tests are not logged.
func New(cfg model.Config, cat catalog.Catalog, agg *progress.Aggregator, gen *generator.Generator, sessions SessionLog, opts ...Option) *App {
	a := &App{
		cfg:      WithDefaults(cfg),
		cat:      cat,
		progress: agg,
		gen:      gen,
		sessions: sessions,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithDefaults fills zero values of cfg.
func WithDefaults(cfg model.Config) model.Config {
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = DefaultTimeLimit
	}
	if cfg.WordTarget <= 0 {
		cfg.WordTarget = DefaultWordTarget
	}
	if cfg.WeakTop <= 0 {
		cfg.WeakTop = DefaultWeakTop
	}
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = DefaultRestartDelay
	}
	return cfg
}

// Config returns the effective configuration.
func (a *App) Config() model.Config { return a.cfg }

// Progress returns the aggregator.
func (a *App) Progress() *progress.Aggregator { return a.progress }

// Session returns the active session, nil before Begin.
func (a *App) Session() *session.Session { return a.current }

// LessonID returns the lesson of the active session, zero outside lessons.
func (a *App) LessonID() int { return a.lessonID }

// Begin replaces the active session with a fresh one in mode.
func (a *App) Begin(mode model.Mode, lessonID int) (*session.Session, error) {
	var lesson catalog.Lesson
	if mode == model.ModeLesson {
		st, err := a.lessonStatus(lessonID)
		if err != nil {
			return nil, err
		}
		if !st.Unlocked {
			return nil, fmt.Errorf("%w: %d", progress.ErrLessonLocked, lessonID)
		}
		lesson = st.Lesson
	} else {
		lessonID = 0
	}

	settings := session.Settings{Mode: mode}
	switch mode {
	case model.ModeTimed:
		settings.TimeLimit = a.cfg.TimeLimit
	case model.ModeWordCount:
		settings.WordTarget = a.cfg.WordTarget
	}

	p := a.gen.Passage(a.request(mode, lesson))
	opts := []session.Option{session.WithRecorder(a.progress)}
	if a.clock != nil {
		opts = append(opts, session.WithClock(a.clock))
	}
	a.current = session.New(settings, p.Text, p.Author, opts...)
	a.lessonID = lessonID
	return a.current, nil
}

func (a *App) lessonStatus(id int) (progress.LessonStatus, error) {
	for _, st := range a.progress.Lessons() {
		if st.ID == id {
			return st, nil
		}
	}
	return progress.LessonStatus{}, fmt.Errorf("%w: %d", progress.ErrUnknownLesson, id)
}

func (a *App) request(mode model.Mode, lesson catalog.Lesson) generator.Request {
	req := generator.Request{
		Mode:       mode,
		TimeLimit:  a.cfg.TimeLimit,
		WordTarget: a.cfg.WordTarget,
		Options: generator.Options{
			Caps:       a.cfg.Caps,
			Numbers:    a.cfg.Numbers,
			Symbols:    a.cfg.Symbols,
			CapsPct:    a.cfg.CapsPct,
			NumbersPct: a.cfg.NumbersPct,
			SymbolsPct: a.cfg.SymbolsPct,
		},
		Lesson: lesson,
	}
	if mode == model.ModeWeakKeyDrill {
		req.WeakKeys = a.progress.TopWeakKeys(a.cfg.WeakTop)
	}
	return req
}

// NewText loads freshly generated text into the active session.
func (a *App) NewText() []session.Event {
	if a.current == nil {
		return nil
	}
	var lesson catalog.Lesson
	if a.lessonID != 0 {
		lesson, _ = a.cat.LessonByID(a.lessonID)
	}
	p := a.gen.Passage(a.request(a.current.Settings().Mode, lesson))
	return a.current.Apply(session.Start{Text: p.Text, Author: p.Author})
}

// RestartDrill starts the next drill round if the session that finished is
// still the active attempt. It returns false when the user already moved on.
func (a *App) RestartDrill(finishedID string) ([]session.Event, bool) {
	s := a.current
	if s == nil || s.Settings().Mode != model.ModeWeakKeyDrill {
		return nil, false
	}
	if s.ID() != finishedID || s.Status() != session.StatusEnded {
		return nil, false
	}
	return a.NewText(), true
}

// DrillOutcome is the notice shown after a weak-key drill round.
type DrillOutcome struct {
	Result       model.SessionResult
	Message      string
	RestartAfter time.Duration
}

// Finished is the routed outcome of one session. Exactly one of Test, Lesson
// and Drill is set.
type Finished struct {
	SessionID string
	Test      *progress.Outcome
	Lesson    *progress.LessonOutcome
	Drill     *DrillOutcome
	LogID     int64
}

// Finish records result according to the mode of the active session.
func (a *App) Finish(ctx context.Context, result model.SessionResult) (Finished, error) {
	var out Finished
	if a.current != nil {
		out.SessionID = a.current.ID()
	}
	switch {
	case result.Mode.FreeTyping():
		oc, err := a.progress.CompleteTest(ctx, result)
		out.Test = &oc
		if err != nil {
			return out, fmt.Errorf("failed to save progress: %w", err)
		}
		if a.sessions != nil {
			id, err := a.sessions.InsertSession(ctx, result)
			if err != nil {
				return out, fmt.Errorf("failed to log session: %w", err)
			}
			out.LogID = id
		}
	case result.Mode == model.ModeLesson:
		oc, err := a.progress.CompleteLesson(ctx, a.lessonID, result)
		if err != nil {
			if oc.Lesson.ID == 0 {
				return out, err
			}
			out.Lesson = &oc
			return out, fmt.Errorf("failed to save lesson progress: %w", err)
		}
		out.Lesson = &oc
	case result.Mode == model.ModeWeakKeyDrill:
		out.Drill = &DrillOutcome{
			Result:       result,
			Message:      DrillMessage(result.AccuracyPercent),
			RestartAfter: a.cfg.RestartDelay,
		}
	default:
		log.Printf("finished session with unknown mode %v", result.Mode)
	}
	return out, nil
}

// DrillMessage is the notice after a drill round.
func DrillMessage(accuracy int) string {
	if accuracy >= drillPraiseAccuracy {
		return "Great job! Starting next round..."
	}
	return "Practice complete! Focus on accuracy. Starting again..."
}
