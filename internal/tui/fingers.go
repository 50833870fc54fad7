package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/finger"
)

var (
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Padding(0, 1)
	targetKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#141414")).Background(lipgloss.Color("#C89A3A")).Bold(true).Padding(0, 1)
)

// FingerModel is the finger placement trainer.
type FingerModel struct {
	engine *finger.Engine
	width  int
	height int
	last   finger.Result
}

// NewFingerModel wraps an engine in a Bubble Tea model.
func NewFingerModel(engine *finger.Engine) *FingerModel {
	return &FingerModel{engine: engine}
}

// Init implements tea.Model.
func (m *FingerModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *FingerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			m.engine.Start()
			m.last = finger.Ignored
		case tea.KeyEsc:
			if !m.engine.Active() {
				return m, tea.Quit
			}
			m.engine.Stop()
			m.last = finger.Ignored
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.last = m.engine.Press(string(r))
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *FingerModel) View() string {
	key, f, ok := m.engine.Target()
	var b strings.Builder
	if m.engine.Active() {
		b.WriteString(headerStyle.Render("Finger drill"))
	} else {
		b.WriteString(headerStyle.Render("Finger placement"))
	}
	b.WriteString("\n\n")
	b.WriteString(renderKeyboard(key))
	b.WriteString("\n\n")
	switch {
	case ok:
		fmt.Fprintf(&b, "Press %s with your %s finger", strings.ToUpper(key), strings.ToLower(f.String()))
	default:
		b.WriteString("Press any key to see which finger types it")
	}
	b.WriteString("\n")
	switch m.last {
	case finger.Correct:
		b.WriteString(goodStyle.Render("Correct!"))
	case finger.Wrong:
		b.WriteString(warnStyle.Render("Try again"))
	}
	b.WriteString("\n\n")
	if m.engine.Active() {
		correct, wrong := m.engine.Counts()
		b.WriteString(footerStyle.Render(fmt.Sprintf("Correct %d  Wrong %d  Accuracy %d%%  ·  esc: stop", correct, wrong, m.engine.Accuracy())))
	} else {
		b.WriteString(footerStyle.Render("enter: start drill · esc: quit"))
	}
	content := b.String()
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func renderKeyboard(target string) string {
	rows := make([]string, 0, len(catalog.KeyboardRows))
	for i, row := range catalog.KeyboardRows {
		cells := make([]string, 0, len(row))
		for _, k := range row {
			if k == target {
				cells = append(cells, targetKeyStyle.Render(k))
				continue
			}
			cells = append(cells, keyStyle.Render(k))
		}
		rows = append(rows, strings.Repeat(" ", i*2)+strings.Join(cells, ""))
	}
	return strings.Join(rows, "\n")
}
