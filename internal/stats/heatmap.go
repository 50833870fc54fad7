package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/typeflow/internal/catalog"
	"github.com/verte-zerg/typeflow/internal/model"
)

// Heat levels for one key.
const (
	HeatNone = iota
	HeatLow
	HeatMid
	HeatHigh
)

// KeyHeat is one heatmap cell.
type KeyHeat struct {
	Key     string
	Presses int
	Level   int
	Weak    bool
}

// Heatmap buckets press counts over the keyboard rows relative to the most pressed key.
func Heatmap(presses map[string]int, weak []model.WeakKey) [][]KeyHeat {
	top := 1
	for _, n := range presses {
		top = max(top, n)
	}
	weakSet := make(map[string]struct{}, len(weak))
	for _, k := range weak {
		weakSet[k.Char] = struct{}{}
	}
	rows := make([][]KeyHeat, 0, len(catalog.KeyboardRows))
	for _, keys := range catalog.KeyboardRows {
		row := make([]KeyHeat, 0, len(keys))
		for _, k := range keys {
			n := presses[k]
			_, isWeak := weakSet[k]
			row = append(row, KeyHeat{Key: k, Presses: n, Level: heatLevel(n, top), Weak: isWeak})
		}
		rows = append(rows, row)
	}
	return rows
}

func heatLevel(n, top int) int {
	if n <= 0 {
		return HeatNone
	}
	ratio := float64(n) / float64(top)
	switch {
	case ratio < 0.33:
		return HeatLow
	case ratio < 0.66:
		return HeatMid
	default:
		return HeatHigh
	}
}

var heatANSI = map[int]string{
	HeatNone: "\x1b[90m",
	HeatLow:  "\x1b[33m",
	HeatMid:  "\x1b[93m",
	HeatHigh: "\x1b[97;43m",
}

const weakANSI = "\x1b[97;41m"

// RenderHeatmap prints the keyboard heatmap. Without color, weak keys are bracketed
// and the level is shown as a digit.
func RenderHeatmap(w io.Writer, rows [][]KeyHeat, forceColor bool) error {
	useColor := shouldUseColor(w, forceColor)
	var b strings.Builder
	b.WriteString("Key Heatmap\n")
	for i, row := range rows {
		b.WriteString(strings.Repeat(" ", i))
		for _, cell := range row {
			switch {
			case useColor && cell.Weak:
				b.WriteString(weakANSI + " " + cell.Key + " " + colorReset)
			case useColor:
				b.WriteString(heatANSI[cell.Level] + " " + cell.Key + " " + colorReset)
			case cell.Weak:
				b.WriteString("[" + cell.Key + "]")
			default:
				fmt.Fprintf(&b, " %s%d", cell.Key, cell.Level)
			}
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
