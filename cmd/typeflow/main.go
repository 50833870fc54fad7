// Package main provides the CLI entrypoint for typeflow.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeflow/internal/app"
	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/config"
	"github.com/verte-zerg/typeflow/internal/generator"
	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/progress"
	"github.com/verte-zerg/typeflow/internal/store"
	"github.com/verte-zerg/typeflow/internal/tui"
	"github.com/verte-zerg/typeflow/internal/wordlist"
)

const (
	defaultMode       = "timed"
	defaultCapsPct    = 0.18
	defaultNumbersPct = 0.14
	defaultSymbolsPct = 0.10
	defaultDailyGoal  = 3
	maxWordLen        = 12
)

var version = "dev"

var (
	dbPath    string
	dailyGoal int

	practiceMode       string
	practiceTime       int
	practiceWords      int
	practiceCaps       bool
	practiceNumbers    bool
	practiceSymbols    bool
	practiceCapsPct    float64
	practiceNumbersPct float64
	practiceSymbolsPct float64
	practiceWordList   string

	drillWeakTop      int
	drillRestartDelay int

	logFile *os.File
)

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	if logFile != nil {
		if cerr := logFile.Close(); cerr != nil {
			// Best-effort close of the debug log.
			_ = cerr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "typeflow",
		Short:             "Terminal typing trainer",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setupEnvironment,
		RunE:              runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: $XDG_DATA_HOME/typeflow/typeflow.db)")
	rootCmd.PersistentFlags().IntVar(&dailyGoal, "goal", defaultDailyGoal, "tests per day that complete the daily goal")

	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "test mode: timed, words, quote or code")
	rootCmd.Flags().IntVar(&practiceTime, "time", app.DefaultTimeLimit, "time limit in seconds for timed tests")
	rootCmd.Flags().IntVar(&practiceWords, "words", app.DefaultWordTarget, "word target for word-count tests")
	rootCmd.Flags().BoolVar(&practiceCaps, "caps", false, "capitalize some words")
	rootCmd.Flags().BoolVar(&practiceNumbers, "numbers", false, "mix numbers into the text")
	rootCmd.Flags().BoolVar(&practiceSymbols, "symbols", false, "mix punctuation into the text")
	rootCmd.Flags().Float64Var(&practiceCapsPct, "caps-pct", defaultCapsPct, "probability of a capitalized word (0-1)")
	rootCmd.Flags().Float64Var(&practiceNumbersPct, "numbers-pct", defaultNumbersPct, "probability of a number after a word (0-1)")
	rootCmd.Flags().Float64Var(&practiceSymbolsPct, "symbols-pct", defaultSymbolsPct, "probability of punctuation after a word (0-1)")
	rootCmd.Flags().StringVar(&practiceWordList, "wordlist", "", "custom word list replacing the built-in words")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLessonsCmd())
	rootCmd.AddCommand(newLessonCmd())
	rootCmd.AddCommand(newDrillCmd())
	rootCmd.AddCommand(newFingersCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWeakCmd())
	rootCmd.AddCommand(newHeatmapCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newFeedbackCmd())

	return rootCmd
}

// setupEnvironment loads .env overrides and routes the log package before any command runs.
func setupEnvironment(_ *cobra.Command, _ []string) error {
	if err := config.LoadEnv(config.DefaultEnvPath()); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	if !config.DebugEnabled() {
		log.SetOutput(io.Discard)
		return nil
	}
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "typeflow")
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}
	logFile = f
	return nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, file, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := parsePracticeMode(practiceMode)
	if err != nil {
		return err
	}
	cfg.Mode = mode
	return runTyping(cmd.Context(), file, cfg, mode, 0)
}

// loadPracticeConfig merges the config file into flags that were not set explicitly.
func loadPracticeConfig(cmd *cobra.Command) (model.Config, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fileCfg, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyIntConfig(cmd, "time", &practiceTime, fileCfg.Practice.Time)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyBoolConfig(cmd, "caps", &practiceCaps, fileCfg.Practice.Caps)
	applyBoolConfig(cmd, "numbers", &practiceNumbers, fileCfg.Practice.Numbers)
	applyBoolConfig(cmd, "symbols", &practiceSymbols, fileCfg.Practice.Symbols)
	applyFloatConfig(cmd, "caps-pct", &practiceCapsPct, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "numbers-pct", &practiceNumbersPct, fileCfg.Practice.NumbersPct)
	applyFloatConfig(cmd, "symbols-pct", &practiceSymbolsPct, fileCfg.Practice.SymbolsPct)
	applyStringConfig(cmd, "wordlist", &practiceWordList, fileCfg.Practice.WordList)
	applyIntConfig(cmd, "weak-top", &drillWeakTop, fileCfg.Drill.WeakTop)
	applyIntConfig(cmd, "restart-delay", &drillRestartDelay, fileCfg.Drill.RestartDelayMS)
	applyIntConfig(cmd, "goal", &dailyGoal, fileCfg.Goal.Daily)

	cfg := model.Config{
		TimeLimit:    practiceTime,
		WordTarget:   practiceWords,
		Caps:         practiceCaps,
		Numbers:      practiceNumbers,
		Symbols:      practiceSymbols,
		CapsPct:      practiceCapsPct,
		NumbersPct:   practiceNumbersPct,
		SymbolsPct:   practiceSymbolsPct,
		WeakTop:      drillWeakTop,
		RestartDelay: time.Duration(drillRestartDelay) * time.Millisecond,
		DailyGoal:    dailyGoal,
		WordListPath: practiceWordList,
		FeedbackURL:  config.ResolveFeedbackURL(fileCfg),
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, fileCfg, err
	}
	return app.WithDefaults(cfg), fileCfg, nil
}

func parsePracticeMode(name string) (model.Mode, error) {
	mode, ok := model.ParseMode(name)
	if !ok || !mode.FreeTyping() {
		return model.ModeTimed, fmt.Errorf("--mode must be one of timed, words, quote, code (got %q)", name)
	}
	return mode, nil
}

// runtime is the opened persistence shared by commands.
type runtime struct {
	store    *store.Store
	progress *progress.Aggregator
}

func openRuntime(ctx context.Context, file config.FileConfig, goal int) (*runtime, error) {
	path := config.ResolveDBPath(dbPath, file)
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	agg := progress.New(st, catalog.Default(), progress.WithDailyGoal(goal))
	if err := agg.Load(ctx); err != nil {
		if cerr := st.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return &runtime{store: st, progress: agg}, nil
}

func (r *runtime) close() {
	if cerr := r.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func newGenerator(cfg model.Config) (*generator.Generator, error) {
	gen := generator.New()
	if cfg.WordListPath == "" {
		return gen, nil
	}
	words, err := wordlist.Load(cfg.WordListPath, wordlist.PracticeFilter(maxWordLen))
	if err != nil {
		return nil, fmt.Errorf("failed to load word list %s: %w", cfg.WordListPath, err)
	}
	gen.SetBaseWords(words)
	return gen, nil
}

func runTyping(ctx context.Context, file config.FileConfig, cfg model.Config, mode model.Mode, lessonID int) error {
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	rt, err := openRuntime(ctx, file, cfg.DailyGoal)
	if err != nil {
		return err
	}
	defer rt.close()

	a := app.New(cfg, catalog.Default(), rt.progress, gen, rt.store)
	m, err := tui.NewModel(ctx, a, mode, lessonID)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typeflow configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q            # timed, words, quote or code
# time = %d                 # Seconds per timed test
# words = %d                # Words per word-count test
# caps = false              # Capitalize some words
# numbers = false           # Mix numbers into the text
# symbols = false           # Mix punctuation into the text
# caps-pct = %.2f           # Probability of a capitalized word (0-1)
# numbers-pct = %.2f        # Probability of a number after a word (0-1)
# symbols-pct = %.2f        # Probability of punctuation after a word (0-1)
# wordlist = ""             # Path to a custom word list

[drill]
# weak-top = %d              # Weak keys a drill focuses on
# restart-delay-ms = %d   # Pause before the next drill round

[goal]
# daily = %d                 # Tests per day that complete the daily goal

[feedback]
# url = ""                  # Endpoint receiving feedback as JSON

[storage]
# db = ""                   # Database path
`,
		defaultMode,
		app.DefaultTimeLimit,
		app.DefaultWordTarget,
		defaultCapsPct,
		defaultNumbersPct,
		defaultSymbolsPct,
		app.DefaultWeakTop,
		app.DefaultRestartDelay.Milliseconds(),
		defaultDailyGoal,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.TimeLimit <= 0 {
		return fmt.Errorf("--time must be > 0")
	}
	if cfg.WordTarget <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"caps-pct", cfg.CapsPct},
		{"numbers-pct", cfg.NumbersPct},
		{"symbols-pct", cfg.SymbolsPct},
	} {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("--%s must be between 0 and 1", p.name)
		}
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.RestartDelay < 0 {
		return fmt.Errorf("--restart-delay must be >= 0")
	}
	if cfg.DailyGoal <= 0 {
		return fmt.Errorf("--goal must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
