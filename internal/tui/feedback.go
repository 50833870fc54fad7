package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typeflow/internal/feedback"
)

const thanksDelay = 2 * time.Second

type closeMsg struct{}

// SubmitFunc stores a submitted form.
type SubmitFunc func(feedback.Form) error

// FeedbackModel is a small form collecting feedback.
type FeedbackModel struct {
	inputs  []textinput.Model
	labels  []string
	focus   int
	submit  SubmitFunc
	done    bool
	errText string
}

// NewFeedbackModel builds the feedback form.
func NewFeedbackModel(submit SubmitFunc) *FeedbackModel {
	labels := []string{"What do you like?", "What could be better?", "Found a bug?", "Email (optional)"}
	inputs := make([]textinput.Model, len(labels))
	for i := range inputs {
		in := textinput.New()
		in.Prompt = "> "
		in.CharLimit = 500
		in.Width = 60
		inputs[i] = in
	}
	inputs[len(inputs)-1].CharLimit = 120
	inputs[0].Focus()
	return &FeedbackModel{inputs: inputs, labels: labels, submit: submit}
}

// Init implements tea.Model.
func (m *FeedbackModel) Init() tea.Cmd { return textinput.Blink }

// Form returns the current field values.
func (m *FeedbackModel) Form() feedback.Form {
	return feedback.Form{
		Liked:   m.inputs[0].Value(),
		Improve: m.inputs[1].Value(),
		Bugs:    m.inputs[2].Value(),
		Email:   m.inputs[3].Value(),
	}
}

// Update implements tea.Model.
func (m *FeedbackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case closeMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if m.done {
			return m, tea.Quit
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			return m, m.move(1)
		case tea.KeyShiftTab, tea.KeyUp:
			return m, m.move(-1)
		case tea.KeyEnter:
			if m.focus < len(m.inputs)-1 {
				return m, m.move(1)
			}
			if err := m.submit(m.Form()); err != nil {
				m.errText = err.Error()
				return m, nil
			}
			m.done = true
			return m, tea.Tick(thanksDelay, func(time.Time) tea.Msg { return closeMsg{} })
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *FeedbackModel) move(delta int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

// View implements tea.Model.
func (m *FeedbackModel) View() string {
	if m.done {
		return goodStyle.Render("Thank you for your feedback!") + "\n"
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Send feedback"))
	b.WriteString("\n\n")
	for i, in := range m.inputs {
		b.WriteString(m.labels[i])
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	if m.errText != "" {
		b.WriteString(warnStyle.Render(m.errText))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("tab: next field · enter on last field: send · esc: cancel"))
	return b.String()
}
