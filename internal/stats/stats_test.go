package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/typeflow/internal/model"
)

func TestWriteTableAlignsColumns(t *testing.T) {
	cols := []column{{title: "Char"}, {title: "Accuracy", right: true}, {title: "Correct", right: true}}
	rows := [][]string{
		{"a", "97.50%", "12"},
		{"<space>", "8.00%", "3"},
	}
	var buf bytes.Buffer
	if err := writeTable(&buf, "Keys", cols, rows); err != nil {
		t.Fatalf("write table: %v", err)
	}
	want := "Keys\n" +
		"Char    Accuracy Correct\n" +
		"a         97.50%      12\n" +
		"<space>    8.00%       3\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected table:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteTableWideRunes(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, "", []column{{title: "Key"}, {title: "N", right: true}}, [][]string{{"日", "1"}, {"ab", "22"}}); err != nil {
		t.Fatalf("write table: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[1] != "日   1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "ab  22" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}

func TestRenderWeakKeys(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderWeakKeys(&buf, nil); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(buf.String(), "No weak keys yet") {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}

	buf.Reset()
	keys := []model.WeakKey{{Char: " ", ErrorRate: 0.25, ErrorCount: 2, PressCount: 8}}
	if err := RenderWeakKeys(&buf, keys); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Weak Keys", "<space>", "25.0%"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, buf.String())
		}
	}
}
