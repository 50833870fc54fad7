package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/config"
	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/progress"
)

func validConfig() model.Config {
	return model.Config{TimeLimit: 60, WordTarget: 25, CapsPct: 0.18, DailyGoal: 3}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := map[string]func(*model.Config){
		"--time must be > 0":                    func(c *model.Config) { c.TimeLimit = 0 },
		"--words must be > 0":                   func(c *model.Config) { c.WordTarget = -1 },
		"--symbols-pct must be between 0 and 1": func(c *model.Config) { c.SymbolsPct = 1.5 },
		"--goal must be > 0":                    func(c *model.Config) { c.DailyGoal = 0 },
	}
	for want, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		err := validateConfig(cfg)
		if err == nil || err.Error() != want {
			t.Fatalf("expected %q, got %v", want, err)
		}
	}
}

func TestDecorationFlagDefaults(t *testing.T) {
	flags := newRootCmd().Flags()
	for name, want := range map[string]string{"caps-pct": "0.18", "numbers-pct": "0.14", "symbols-pct": "0.1"} {
		f := flags.Lookup(name)
		if f == nil {
			t.Fatalf("missing flag %q", name)
		}
		if f.DefValue != want {
			t.Fatalf("--%s default = %s, want %s", name, f.DefValue, want)
		}
	}
}

func TestParsePracticeMode(t *testing.T) {
	mode, err := parsePracticeMode("Words")
	if err != nil || mode != model.ModeWordCount {
		t.Fatalf("expected words mode, got %v %v", mode, err)
	}
	for _, name := range []string{"lesson", "drill", "nope"} {
		if _, err := parsePracticeMode(name); err == nil {
			t.Fatalf("expected error for %q", name)
		}
	}
}

func TestConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typeflow", "config.toml")
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("template should decode: %v", err)
	}
	// An existing file is left alone.
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("second write: %v", err)
	}
}

func TestWriteLessons(t *testing.T) {
	lessons := catalog.Lessons()
	statuses := []progress.LessonStatus{
		{Lesson: lessons[0], Unlocked: true, Completed: true},
		{Lesson: lessons[1], Unlocked: true},
		{Lesson: lessons[2]},
	}
	var buf bytes.Buffer
	if err := writeLessons(&buf, statuses); err != nil {
		t.Fatalf("write lessons: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, want := range []string{"completed", "open", "locked"} {
		if !strings.Contains(lines[i], want) {
			t.Fatalf("line %d %q missing %q", i, lines[i], want)
		}
	}
}

func TestConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "": false} {
		got, err := confirm(strings.NewReader(input), "")
		if err != nil {
			t.Fatalf("confirm(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("confirm(%q) = %v, want %v", input, got, want)
		}
	}
}
