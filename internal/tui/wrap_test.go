package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/typeflow/internal/model"
)

func TestBuildStyledRunesCursor(t *testing.T) {
	target := model.PlainText("ab")
	input := []rune("a")

	runes := buildStyledRunes(target, input, len(input))
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != currentWordStyle.Underline(true).Render("b") {
		t.Fatalf("expected underlined current word style for cursor rune")
	}
}

func TestBuildStyledRunesNoCursorWhenComplete(t *testing.T) {
	runes := buildStyledRunes(model.PlainText("a"), []rune("a"), -1)
	if len(runes) != 1 {
		t.Fatalf("expected 1 rune, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for completed rune")
	}
}

func TestBuildStyledRunesKeepsTargetOnMistype(t *testing.T) {
	runes := buildStyledRunes(model.PlainText("ab"), []rune("ax"), 2)
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style for second rune")
	}
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	runes := buildStyledRunes(model.PlainText("one two"), []rune("o"), 1)
	if runes[0].s != correctStyle.Render("o") {
		t.Fatalf("expected correct style for typed rune")
	}
	if runes[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesWrongSpaceDot(t *testing.T) {
	runes := buildStyledRunes(model.PlainText("a b"), []rune("ax"), 2)
	if runes[1].s != incorrectStyle.Render(string(wrongSpaceGlyph)) {
		t.Fatalf("expected red dot for wrong space")
	}
}

func TestBuildStyledRunesHighlightedGlyphs(t *testing.T) {
	target := model.Text{{Char: 'q', Highlighted: true}, {Char: ' '}, {Char: 'q', Highlighted: true}}
	runes := buildStyledRunes(target, []rune("q"), 1)
	if runes[0].s != correctStyle.Render("q") {
		t.Fatalf("typed highlighted glyph should use the typed style")
	}
	if runes[2].s != highlightStyle.Render("q") {
		t.Fatalf("expected highlight style for pending weak glyph")
	}
}

func TestWrapStyledRunesBreaksAtSpaces(t *testing.T) {
	runes := buildStyledRunes(model.PlainText("aaa bbb ccc"), nil, -1)
	out := stripANSI(wrapStyledRunes(runes, 8))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || lines[0] != "aaa bbb " || lines[1] != "ccc" {
		t.Fatalf("unexpected wrap: %q", lines)
	}
}

func TestWrapStyledRunesNewlines(t *testing.T) {
	runes := buildStyledRunes(model.PlainText("if x {\n  y\n}"), nil, -1)
	out := stripANSI(wrapStyledRunes(runes, 80))
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}
	if !strings.HasSuffix(lines[0], string(newlineGlyph)) {
		t.Fatalf("expected newline glyph at end of first line: %q", lines[0])
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && ((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')):
			inEscape = false
		case !inEscape:
			b.WriteRune(r)
		}
	}
	return b.String()
}
