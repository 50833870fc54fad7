package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/typeflow/internal/model"
)

func TestHeatmapLevels(t *testing.T) {
	rows := Heatmap(map[string]int{"e": 100, "t": 50, "z": 10}, []model.WeakKey{{Char: "z"}})
	cells := map[string]KeyHeat{}
	for _, row := range rows {
		for _, cell := range row {
			cells[cell.Key] = cell
		}
	}
	if cells["e"].Level != HeatHigh {
		t.Fatalf("expected e to be high, got %d", cells["e"].Level)
	}
	if cells["t"].Level != HeatMid {
		t.Fatalf("expected t to be mid, got %d", cells["t"].Level)
	}
	if cells["z"].Level != HeatLow || !cells["z"].Weak {
		t.Fatalf("expected z to be low and weak, got %+v", cells["z"])
	}
	if cells["q"].Level != HeatNone {
		t.Fatalf("expected q to be cold, got %d", cells["q"].Level)
	}
}

func TestRenderHeatmapPlain(t *testing.T) {
	var buf bytes.Buffer
	rows := Heatmap(map[string]int{"a": 4}, []model.WeakKey{{Char: "s"}})
	if err := RenderHeatmap(&buf, rows, false); err != nil {
		t.Fatalf("RenderHeatmap failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, " a3") {
		t.Fatalf("expected hot a in %q", out)
	}
	if !strings.Contains(out, "[s]") {
		t.Fatalf("expected weak s in %q", out)
	}
}
