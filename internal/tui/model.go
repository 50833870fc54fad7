// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typeflow/internal/app"
	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/progress"
	"github.com/verte-zerg/typeflow/internal/session"
)

const (
	tickInterval = time.Second
	// capsRun is how many unexpected uppercase letters in a row are read as caps lock.
	capsRun = 3
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	highlightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4DA3FF")).Bold(true)
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	warnStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	goodStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	panelStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E")).Padding(0, 2)
)

// tickMsg is a one second timer pulse for a specific attempt.
type tickMsg struct {
	sessionID string
	epoch     int
}

// restartMsg starts the next weak-key drill round.
type restartMsg struct {
	sessionID string
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	app *app.App
	ctx context.Context

	width  int
	height int

	finished *app.Finished
	notice   string
	capsOn   bool
	upperRun int
}

// NewModel begins a session in mode and wraps it in a typing UI.
func NewModel(ctx context.Context, a *app.App, mode model.Mode, lessonID int) (*Model, error) {
	s, err := a.Begin(mode, lessonID)
	if err != nil {
		return nil, err
	}
	// The terminal has focus when the program starts.
	s.Apply(session.Focus{})
	return &Model{app: a, ctx: ctx}, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) session() *session.Session { return m.app.Session() }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.FocusMsg:
		return m, m.handle(m.session().Apply(session.Focus{CapsLock: m.capsOn}))
	case tea.BlurMsg:
		return m, m.handle(m.session().Apply(session.Blur{}))
	case tickMsg:
		s := m.session()
		if msg.sessionID != s.ID() {
			return m, nil
		}
		return m, m.handle(s.Apply(session.Tick{Epoch: msg.epoch}))
	case restartMsg:
		events, ok := m.app.RestartDrill(msg.sessionID)
		if !ok {
			return m, nil
		}
		return m, m.handle(events)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session()
	// Pasted text never reaches the session.
	if msg.Paste {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		return m, m.handle(s.Apply(session.Reset{}))
	case tea.KeyCtrlN:
		return m, m.handle(m.app.NewText())
	case tea.KeyTab:
		return m, m.handle(s.Apply(session.KeyDown{Key: session.KeyTab, CapsLock: m.capsOn}))
	case tea.KeyLeft:
		return m, m.handle(s.Apply(session.KeyDown{Key: session.KeyLeft, CapsLock: m.capsOn}))
	case tea.KeyBackspace, tea.KeyDelete:
		return m, m.handle(s.Backspace())
	case tea.KeyCtrlW:
		snap := s.Snapshot()
		return m, m.handle(s.Apply(session.TypeInput{Value: string(snap.Typed[:snap.LockIndex])}))
	case tea.KeyEnter:
		if s.Status() == session.StatusEnded {
			return m, m.handle(m.app.NewText())
		}
		if s.Settings().Mode != model.ModeCode {
			return m, nil
		}
		return m, m.typeRunes([]rune{'\n'})
	case tea.KeySpace:
		return m, m.typeRunes([]rune{' '})
	case tea.KeyRunes:
		return m, m.typeRunes(msg.Runes)
	default:
		return m, nil
	}
}

func (m *Model) typeRunes(runes []rune) tea.Cmd {
	s := m.session()
	if s.Status() == session.StatusEnded {
		return nil
	}
	caps := m.guessCapsLock(runes, s.Snapshot())
	var cmds []tea.Cmd
	for _, r := range runes {
		cmds = append(cmds, m.handle(s.Apply(session.KeyDown{Key: string(r), CapsLock: caps})))
	}
	cmds = append(cmds, m.handle(s.Type(runes...)))
	return tea.Batch(cmds...)
}

// guessCapsLock infers caps lock from uppercase letters typed where lowercase was expected.
func (m *Model) guessCapsLock(runes []rune, snap session.Snapshot) bool {
	target := snap.Target.Runes()
	for i, r := range runes {
		pos := snap.Cursor + i
		if !unicode.IsLetter(r) || pos >= len(target) {
			continue
		}
		expected := target[pos]
		switch {
		case unicode.IsUpper(r) && unicode.IsLower(expected):
			m.upperRun++
		case unicode.IsLower(r):
			m.upperRun = 0
		}
	}
	return m.upperRun >= capsRun
}

// handle reacts to session events and returns follow-up commands.
func (m *Model) handle(events []session.Event) tea.Cmd {
	var cmds []tea.Cmd
	for _, ev := range events {
		switch e := ev.(type) {
		case session.Started:
			m.finished = nil
			cmds = append(cmds, tickCmd(e.SessionID, e.Epoch))
		case session.Ticked:
			s := m.session()
			if s.Status() == session.StatusActive {
				cmds = append(cmds, tickCmd(s.ID(), s.Epoch()))
			}
		case session.Ended:
			cmds = append(cmds, m.finish(e.Result))
		case session.Restarted:
			m.finished = nil
			m.notice = ""
			m.upperRun = 0
		case session.CapsLock:
			m.capsOn = e.On
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) finish(result model.SessionResult) tea.Cmd {
	fin, err := m.app.Finish(m.ctx, result)
	m.finished = &fin
	m.notice = ""
	if err != nil {
		log.Printf("failed to record session: %v", err)
		m.notice = "Progress could not be saved."
	}
	if fin.Lesson != nil && !fin.Lesson.Passed && err == nil {
		// A failed attempt is retried on fresh text; the notice stays until typing starts.
		cmd := m.handle(m.app.NewText())
		m.finished = &fin
		return cmd
	}
	if fin.Drill != nil {
		id := fin.SessionID
		return tea.Tick(fin.Drill.RestartAfter, func(time.Time) tea.Msg {
			return restartMsg{sessionID: id}
		})
	}
	return nil
}

func tickCmd(sessionID string, epoch int) tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{sessionID: sessionID, epoch: epoch}
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.session().Snapshot()
	if len(snap.Target) == 0 {
		return ""
	}
	cursorIndex := -1
	if snap.Status != session.StatusEnded && snap.Cursor < len(snap.Target) {
		cursorIndex = snap.Cursor
	}
	styled := buildStyledRunes(snap.Target, snap.Typed, cursorIndex)

	contentWidth := 0
	if m.width > 0 {
		contentWidth = max(int(float64(m.width)*0.70), 1)
	}
	parts := []string{headerStyle.Render(m.renderHeader(snap))}
	wrapped := wrapStyledRunes(styled, contentWidth)
	if contentWidth > 0 {
		wrapped = lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	}
	parts = append(parts, "", wrapped)
	if snap.Author != "" {
		parts = append(parts, "", footerStyle.Render("- "+snap.Author))
	}
	if outcome := m.renderOutcome(); outcome != "" {
		parts = append(parts, "", outcome)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	footer := m.renderFooter(snap)
	if m.width == 0 || m.height < 3 {
		return content + "\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader(snap session.Snapshot) string {
	switch snap.Mode {
	case model.ModeTimed:
		return fmt.Sprintf("Timed test · %ds", m.app.Config().TimeLimit)
	case model.ModeWordCount:
		return fmt.Sprintf("Word test · %d words", m.app.Config().WordTarget)
	case model.ModeQuote:
		return "Quote"
	case model.ModeCode:
		return "Code"
	case model.ModeLesson:
		for _, l := range m.app.Progress().Lessons() {
			if l.ID == m.app.LessonID() {
				return fmt.Sprintf("Lesson %d · %s · keys %s", l.ID, l.Title, l.FocusKeys)
			}
		}
		return "Lesson"
	case model.ModeWeakKeyDrill:
		return "Weak key drill"
	default:
		return snap.Mode.String()
	}
}

func (m *Model) renderFooter(snap session.Snapshot) string {
	segments := []string{
		fmt.Sprintf("WPM %d", snap.WPM),
		fmt.Sprintf("Acc %d%%", snap.Accuracy),
		fmt.Sprintf("Errors %d", snap.Incorrect),
	}
	if snap.Mode == model.ModeTimed {
		segments = append(segments, fmt.Sprintf("%s left", formatClock(snap.Remaining)))
	} else {
		segments = append(segments, formatClock(int(snap.Elapsed.Seconds())))
	}
	if snap.Mode == model.ModeWordCount {
		segments = append(segments, fmt.Sprintf("%d/%d words", m.session().CommittedWords(), m.app.Config().WordTarget))
	}
	if goal, target := m.app.Progress().DailyGoal(); target > 0 {
		segments = append(segments, fmt.Sprintf("Goal %d/%d", min(goal, target), target))
	}
	out := footerStyle.Render(strings.Join(segments, "  "))
	if snap.CapsLock {
		out += "  " + warnStyle.Render("CAPS LOCK")
	}
	return out
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func (m *Model) renderOutcome() string {
	if m.finished == nil {
		return ""
	}
	var lines []string
	switch {
	case m.finished.Test != nil:
		lines = testOutcomeLines(*m.finished.Test)
	case m.finished.Lesson != nil:
		lines = lessonOutcomeLines(*m.finished.Lesson)
	case m.finished.Drill != nil:
		d := m.finished.Drill
		lines = []string{
			fmt.Sprintf("%d WPM · %d%% accuracy", d.Result.WordsPerMinute, d.Result.AccuracyPercent),
			d.Message,
		}
	}
	if m.notice != "" {
		lines = append(lines, warnStyle.Render(m.notice))
	}
	if m.finished.Drill == nil {
		lines = append(lines, footerStyle.Render("enter: new text · tab: retry · ctrl+c: quit"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func testOutcomeLines(o progress.Outcome) []string {
	r := o.Result
	lines := []string{
		fmt.Sprintf("%d WPM · %d%% accuracy · %ds", r.WordsPerMinute, r.AccuracyPercent, r.DurationSeconds),
		fmt.Sprintf("%s · +%d XP", o.Rating, o.XPGained),
	}
	if o.NewBest {
		lines = append(lines, goodStyle.Render("New personal best!"))
	}
	if o.LevelUp {
		lines = append(lines, goodStyle.Render(fmt.Sprintf("Level up! You are now %s (level %d)", o.Level.Name, o.Level.Number)))
	}
	lines = append(lines, achievementLines(o.Achievements)...)
	if o.GoalReached {
		lines = append(lines, goodStyle.Render(fmt.Sprintf("Daily goal reached: %d/%d", o.GoalCount, o.GoalTarget)))
	}
	return lines
}

func lessonOutcomeLines(o progress.LessonOutcome) []string {
	r := o.Result
	lines := []string{fmt.Sprintf("%d WPM · %d%% accuracy", r.WordsPerMinute, r.AccuracyPercent)}
	if !o.Passed {
		return append(lines, warnStyle.Render(progress.LessonFailureMessage(o.Lesson)))
	}
	lines = append(lines, goodStyle.Render(fmt.Sprintf("Lesson complete! +%d XP", o.XPGained)))
	if o.Unlocked != nil {
		lines = append(lines, fmt.Sprintf("Unlocked lesson %d: %s", o.Unlocked.ID, o.Unlocked.Title))
	}
	if o.LevelUp {
		lines = append(lines, goodStyle.Render(fmt.Sprintf("Level up! You are now %s (level %d)", o.Level.Name, o.Level.Number)))
	}
	return append(lines, achievementLines(o.Achievements)...)
}

func achievementLines(achs []catalog.Achievement) []string {
	out := make([]string, 0, len(achs))
	for _, a := range achs {
		out = append(out, goodStyle.Render(fmt.Sprintf("Achievement unlocked: %s %s", a.Icon, a.Name)))
	}
	return out
}
