package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPracticeFilter(t *testing.T) {
	filter := PracticeFilter(6)
	if !filter("hello") {
		t.Fatalf("expected hello to pass practice filter")
	}
	for _, word := range []string{"résumé", "naïve", "don’t", "co-op", "Hello", "keyboard", ""} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
	if !PracticeFilter(0)("keyboard") {
		t.Fatalf("expected unlimited filter to keep long words")
	}
}

func TestReadDedupesAndSkipsComments(t *testing.T) {
	input := "# my list\nthe 100\n\nquick\nthe\nCAPS\nfox 12 extra\n"
	words, err := Read(strings.NewReader(input), PracticeFilter(0))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	expected := []string{"the", "quick", "fox"}
	if len(words) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, words)
	}
	for i, word := range expected {
		if words[i] != word {
			t.Fatalf("expected %q at index %d, got %q", word, i, words[i])
		}
	}
}

func TestLoadRejectsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("Ünïcode\n123\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path, PracticeFilter(0)); err == nil {
		t.Fatalf("expected empty list error")
	}
	if words, err := Load(path, Any); err != nil || len(words) != 2 {
		t.Fatalf("expected 2 words without filter, got %v (%v)", words, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
