// Package dashboard provides the Bubble Tea progress dashboard.
package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/model"
	agg "github.com/verte-zerg/typeflow/internal/progress"
	"github.com/verte-zerg/typeflow/internal/stats"
	"github.com/verte-zerg/typeflow/internal/store"
)

const (
	tabOverview = iota
	tabWeakKeys
	tabHistory
	tabLessons
	tabAchievements
)

const (
	plotHeight   = 10
	historyLimit = 20
	weakKeyLimit = 10
	curveChars   = 3
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	doneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	lockedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#595959"))
)

// Model implements the dashboard UI. The session log is optional; without it
// the history tab shows only the stored WPM history.
type Model struct {
	progress *agg.Aggregator
	store    *store.Store
	cfg      model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	weakTable table.Model
	xpBar     progress.Model

	width  int
	height int
}

// NewModel constructs a dashboard over the loaded aggregator.
func NewModel(p *agg.Aggregator, st *store.Store, cfg model.StatsConfig) *Model {
	if cfg.CurveWindow <= 0 {
		cfg.CurveWindow = 5
	}
	m := &Model{
		progress: p,
		store:    st,
		cfg:      cfg,
		tabs:     []string{"Overview", "Weak Keys", "History", "Lessons", "Achievements"},
		xpBar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.weakTable = buildWeakTable(p.TopWeakKeys(weakKeyLimit), 1)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refresh()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refresh()
			return m, nil
		case "g", "home":
			if m.activeTab == tabWeakKeys {
				m.weakTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabWeakKeys {
				m.weakTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		}
		if m.activeTab == tabWeakKeys {
			var cmd tea.Cmd
			m.weakTable, cmd = m.weakTable.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(1, lipgloss.Height(activeNavStyle.Render("X"))) + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.weakTable.SetWidth(m.width)
	m.weakTable.SetHeight(bodyHeight)
	m.xpBar.Width = max(10, min(m.width-4, 60))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabWeakKeys {
		m.weakTable.Focus()
	} else {
		m.weakTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	lvl := m.progress.Level()
	count, target := m.progress.DailyGoal()
	summary := fmt.Sprintf("Level %d %s  XP %d  Goal %d/%d  window=%d",
		lvl.Number, lvl.Name, m.progress.State().XP, count, target, m.cfg.CurveWindow)
	return m.renderTabs() + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.activeTab == tabWeakKeys {
		if len(m.weakTable.Rows()) == 0 {
			return "No weak keys yet. Keep typing!"
		}
		return tableMutedStyle.Render(m.weakTable.View())
	}
	return m.viewports[m.activeTab].View()
}

// refresh reloads the session log report and re-renders every tab.
func (m *Model) refresh() {
	m.errMsg = ""
	m.report = stats.Report{}
	if m.store != nil {
		report, err := stats.BuildReport(context.Background(), m.store, m.cfg, curveChars)
		if err != nil {
			m.errMsg = err.Error()
		} else {
			m.report = report
		}
	}
	m.weakTable.SetRows(weakRows(m.progress.TopWeakKeys(weakKeyLimit)))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabHistory].SetContent(m.renderHistory(width))
	m.viewports[tabLessons].SetContent(renderLessons(m.progress.Lessons()))
	m.viewports[tabAchievements].SetContent(renderAchievements(m.progress.Achievements()))
}

func (m *Model) renderOverview(width int) string {
	state := m.progress.State()
	cards := []string{
		metricCard("Best WPM", fmt.Sprintf("%d", state.BestWordsPerMinute)),
		metricCard("Avg Acc", fmt.Sprintf("%d%%", state.RunningAverageAccuracy)),
		metricCard("Tests", fmt.Sprintf("%d", state.SessionsCompleted)),
		metricCard("Practice", stats.FormatSeconds(state.TotalPracticeSeconds)),
		metricCard("Streak", fmt.Sprintf("%dd", state.StreakDays)),
	}
	var grid string
	if width < 80 {
		grid = strings.Join(cards, "\n")
	} else {
		grid = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	lvl := m.progress.Level()
	xpLine := fmt.Sprintf("Level %d %s", lvl.Number, lvl.Name)
	if next, ok := catalog.NextLevel(catalog.Levels(), lvl); ok {
		xpLine += fmt.Sprintf("  (%d/%d XP to %s)", state.XP-lvl.MinXP, next.MinXP-lvl.MinXP, next.Name)
	} else {
		xpLine += "  (max level)"
	}
	count, target := m.progress.DailyGoal()
	goal := fmt.Sprintf("Daily goal: %d/%d tests", count, target)
	if count >= target {
		goal = doneStyle.Render(goal + " done")
	}

	var heat bytes.Buffer
	rows := stats.Heatmap(m.progress.KeyPresses(), m.progress.TopWeakKeys(5))
	if err := stats.RenderHeatmap(&heat, rows, true); err != nil {
		heat.Reset()
		fmt.Fprintf(&heat, "Failed to render heatmap: %v", err)
	}

	parts := []string{grid, "", xpLine, m.xpBar.ViewAs(m.progress.LevelProgress()), goal, "", strings.TrimRight(heat.String(), "\n")}
	return strings.Join(parts, "\n")
}

func (m *Model) renderHistory(width int) string {
	var b strings.Builder
	values := stats.HistoryValues(m.progress.History(), historyLimit)
	if len(values) == 0 {
		b.WriteString("No tests recorded yet.")
	} else {
		fmt.Fprintf(&b, "Recent WPM  %s\n", stats.Sparkline(values))
	}
	if len(m.report.Sessions) == 0 {
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString("\n")
	if err := stats.RenderCurves(&b, m.report.Sessions, m.cfg.CurveWindow, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	if err := stats.RenderCharCurves(&b, m.report.Sessions, m.report.PerSession, m.report.CurveChars, m.cfg.CurveWindow, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLessons(lessons []agg.LessonStatus) string {
	lines := make([]string, 0, len(lessons))
	for _, l := range lessons {
		line := fmt.Sprintf("%d. %-14s %s  (%d%% acc, %d wpm, +%d XP)", l.ID, l.Title, l.FocusKeys, l.MinAccuracy, l.MinWPM, l.XPReward)
		switch {
		case l.Completed:
			line = doneStyle.Render("[x] " + line)
		case l.Unlocked:
			line = "[ ] " + line
		default:
			line = lockedStyle.Render("[-] " + line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderAchievements(list []agg.AchievementStatus) string {
	lines := make([]string, 0, len(list))
	for _, a := range list {
		if a.Unlocked {
			lines = append(lines, doneStyle.Render(fmt.Sprintf("%s %s", a.Icon, a.Name))+"  "+a.Description)
		} else {
			lines = append(lines, lockedStyle.Render(fmt.Sprintf("?  %s  %s", a.Name, a.Description)))
		}
	}
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildWeakTable(keys []model.WeakKey, height int) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Char", Width: 8},
		{Title: "Error rate", Width: 10},
		{Title: "Errors", Width: 7},
		{Title: "Presses", Width: 8},
	}
	return table.New(
		table.WithColumns(columns),
		table.WithRows(weakRows(keys)),
		table.WithHeight(max(1, height)),
		table.WithStyles(weakTableStyles()),
	)
}

func weakRows(keys []model.WeakKey) []table.Row {
	rows := make([]table.Row, 0, len(keys))
	for i, k := range keys {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			stats.CharLabel(k.Char),
			fmt.Sprintf("%.1f%%", k.ErrorRate*100),
			fmt.Sprintf("%d", k.ErrorCount),
			fmt.Sprintf("%d", k.PressCount),
		})
	}
	return rows
}

func weakTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.Padding(0, 1).PaddingLeft(0)
	styles.Selected = styles.Cell.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	return styles
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLine(line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
