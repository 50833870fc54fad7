package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeflow/internal/app"
	"github.com/verte-zerg/typeflow/internal/config"
	"github.com/verte-zerg/typeflow/internal/dashboard"
	"github.com/verte-zerg/typeflow/internal/export"
	"github.com/verte-zerg/typeflow/internal/feedback"
	"github.com/verte-zerg/typeflow/internal/finger"
	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/progress"
	"github.com/verte-zerg/typeflow/internal/stats"
	"github.com/verte-zerg/typeflow/internal/tui"
)

const (
	defaultCurveWindow = 5
	defaultCurveChars  = 3
	feedbackWait       = 20 * time.Second
)

var (
	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsCurveChars  int

	weakTop      int
	heatmapColor bool
	exportOut    string
	resetYes     bool

	feedbackLiked   string
	feedbackImprove string
	feedbackBugs    string
	feedbackEmail   string
)

// loadFileConfig reads the config file and applies the shared goal setting.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fileCfg, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "goal", &dailyGoal, fileCfg.Goal.Daily)
	if dailyGoal <= 0 {
		return fileCfg, fmt.Errorf("--goal must be > 0")
	}
	return fileCfg, nil
}

func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	file, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, file, dailyGoal)
	if err != nil {
		return err
	}
	defer rt.close()
	return fn(ctx, rt)
}

func newLessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List lessons and their unlock state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *runtime) error {
				return writeLessons(cmd.OutOrStdout(), rt.progress.Lessons())
			})
		},
	}
}

func writeLessons(w io.Writer, lessons []progress.LessonStatus) error {
	for _, l := range lessons {
		state := "locked"
		switch {
		case l.Completed:
			state = "completed"
		case l.Unlocked:
			state = "open"
		}
		if _, err := fmt.Fprintf(w, "%d. %-14s %-10s keys: %s  pass: %d%% acc, %d wpm  +%d XP\n",
			l.ID, l.Title, state, l.FocusKeys, l.MinAccuracy, l.MinWPM, l.XPReward); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newLessonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lesson <id>",
		Short: "Start a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid lesson id %q", args[0])
			}
			cfg, file, err := loadPracticeConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Mode = model.ModeLesson
			cfg.LessonID = id
			err = runTyping(cmd.Context(), file, cfg, model.ModeLesson, id)
			if errors.Is(err, progress.ErrLessonLocked) {
				logErrf("Lesson %d is locked. Pass lesson %d first (see: typeflow lessons)\n", id, id-1)
			}
			return err
		},
	}
}

func newDrillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Practice your weakest keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, file, err := loadPracticeConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Mode = model.ModeWeakKeyDrill
			return runTyping(cmd.Context(), file, cfg, model.ModeWeakKeyDrill, 0)
		},
	}
	cmd.Flags().IntVar(&drillWeakTop, "weak-top", app.DefaultWeakTop, "number of weak keys to focus on")
	cmd.Flags().IntVar(&drillRestartDelay, "restart-delay", int(app.DefaultRestartDelay.Milliseconds()), "pause in ms before the next round")
	return cmd
}

func newFingersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingers",
		Short: "Learn which finger presses each key",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			engine := finger.New(rand.NewSource(time.Now().UnixNano()))
			program := tea.NewProgram(tui.NewFingerModel(engine), tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("failed to run finger drill: %w", err)
			}
			return nil
		},
	}
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show progress dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *runtime) error {
				m := dashboard.NewModel(rt.progress, rt.store, model.StatsConfig{CurveWindow: defaultCurveWindow})
				program := tea.NewProgram(m, tea.WithAltScreen())
				if _, err := program.Run(); err != nil {
					return fmt.Errorf("failed to run dashboard: %w", err)
				}
				return nil
			})
		},
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print session log stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter (timed, words, quote, code)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsCurveChars, "curve-chars", defaultCurveChars, "most missed characters to plot")
	return cmd
}

func statsConfig() (model.StatsConfig, error) {
	cfg := model.StatsConfig{Last: statsLast, CurveWindow: statsCurveWindow}
	if statsMode != "" {
		mode, err := parsePracticeMode(statsMode)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = mode.String()
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if cfg.Last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	if cfg.CurveWindow <= 0 {
		return cfg, fmt.Errorf("--curve-window must be > 0")
	}
	return cfg, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig()
	if err != nil {
		return err
	}
	return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
		report, err := stats.BuildReport(ctx, rt.store, cfg, statsCurveChars)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		out := cmd.OutOrStdout()
		if err := stats.RenderSummary(out, report.Sessions); err != nil {
			return err
		}
		if len(report.Sessions) == 0 {
			return nil
		}
		presses := rt.progress.KeyPresses()
		if err := stats.RenderCurves(out, report.Sessions, cfg.CurveWindow, 0, 0, false); err != nil {
			return err
		}
		if err := stats.RenderMistakeTable(out, "Mistakes (all sessions)", report.MistakesAll, presses); err != nil {
			return err
		}
		if len(report.WindowSessionIDs) < len(report.Sessions) {
			title := fmt.Sprintf("Mistakes (last %d sessions)", len(report.WindowSessionIDs))
			if err := stats.RenderMistakeTable(out, title, report.MistakesWindow, nil); err != nil {
				return err
			}
		}
		return stats.RenderCharCurves(out, report.Sessions, report.PerSession, report.CurveChars, cfg.CurveWindow, 0, 0, false)
	})
}

func newWeakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weak",
		Short: "List weak keys by error rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if weakTop <= 0 {
				return fmt.Errorf("--top must be > 0")
			}
			return withRuntime(cmd, func(_ context.Context, rt *runtime) error {
				return stats.RenderWeakKeys(cmd.OutOrStdout(), rt.progress.TopWeakKeys(weakTop))
			})
		},
	}
	cmd.Flags().IntVar(&weakTop, "top", 10, "number of keys to show")
	return cmd
}

func newHeatmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Print the key press heatmap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *runtime) error {
				rows := stats.Heatmap(rt.progress.KeyPresses(), rt.progress.TopWeakKeys(app.DefaultWeakTop))
				return stats.RenderHeatmap(cmd.OutOrStdout(), rows, heatmapColor)
			})
		},
	}
	cmd.Flags().BoolVar(&heatmapColor, "color", false, "force colored output")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export progress to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := exportOut
			if out == "" {
				out = config.DefaultExportPath()
			}
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				data, err := exportData(ctx, rt)
				if err != nil {
					return err
				}
				if err := export.WriteFile(out, data); err != nil {
					return err
				}
				logErrf("Wrote %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "output path (default: $XDG_DATA_HOME/typeflow/progress.xlsx)")
	return cmd
}

func exportData(ctx context.Context, rt *runtime) (export.Data, error) {
	sessions, err := rt.store.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		return export.Data{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	var unlocked []string
	for _, a := range rt.progress.Achievements() {
		if a.Unlocked {
			unlocked = append(unlocked, a.Name)
		}
	}
	return export.Data{
		State:        rt.progress.State(),
		Level:        rt.progress.Level(),
		History:      rt.progress.History(),
		WeakKeys:     rt.progress.TopWeakKeys(len(rt.progress.State().WeakKeyErrorCounts)),
		Sessions:     sessions,
		Achievements: unlocked,
		ExportedAt:   time.Now(),
	}, nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress and the session log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !resetYes {
				ok, err := confirm(cmd.InOrStdin(), "Reset all progress? This cannot be undone. [y/N] ")
				if err != nil {
					return err
				}
				if !ok {
					logErrln("Reset cancelled.")
					return nil
				}
			}
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.progress.Reset(ctx); err != nil {
					return err
				}
				logErrln("Progress reset.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip confirmation")
	return cmd
}

func confirm(r io.Reader, prompt string) (bool, error) {
	logErrf("%s", prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Send feedback",
		Args:  cobra.NoArgs,
		RunE:  runFeedbackCmd,
	}
	cmd.Flags().StringVar(&feedbackLiked, "liked", "", "what you like")
	cmd.Flags().StringVar(&feedbackImprove, "improve", "", "what could be better")
	cmd.Flags().StringVar(&feedbackBugs, "bugs", "", "bugs you found")
	cmd.Flags().StringVar(&feedbackEmail, "email", "", "contact email (optional)")
	return cmd
}

func runFeedbackCmd(cmd *cobra.Command, _ []string) error {
	file, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, file, dailyGoal)
	if err != nil {
		return err
	}
	defer rt.close()

	sender := feedback.New(rt.store, config.ResolveFeedbackURL(file), version)
	var done <-chan struct{}
	submit := func(form feedback.Form) error {
		_, ch, err := sender.Submit(ctx, form)
		if err != nil {
			return err
		}
		done = ch
		return nil
	}

	form := feedback.Form{Liked: feedbackLiked, Improve: feedbackImprove, Bugs: feedbackBugs, Email: feedbackEmail}
	if form.Liked != "" || form.Improve != "" || form.Bugs != "" {
		if err := submit(form); err != nil {
			return err
		}
		logErrln("Thank you for your feedback!")
	} else {
		program := tea.NewProgram(tui.NewFeedbackModel(submit))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run feedback form: %w", err)
		}
	}
	waitDelivery(done)
	return nil
}

// waitDelivery gives the background POST a chance to finish before the process exits.
func waitDelivery(done <-chan struct{}) {
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(feedbackWait):
		logErrln("Feedback saved locally; delivery is still pending.")
	}
}
