package report

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// textTable renders rows as a pipe table. The first column is left aligned,
// the rest right aligned.
type textTable struct {
	headers []string
	rows    [][]string
}

func (t textTable) String() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	var b strings.Builder
	writeRow(&b, t.headers, widths)
	b.WriteString("|")
	for i, w := range widths {
		if i == 0 {
			b.WriteString(":" + strings.Repeat("-", w+1))
		} else {
			b.WriteString(strings.Repeat("-", w+1) + ":")
		}
		b.WriteString("|")
	}
	b.WriteString("\n")
	for _, row := range t.rows {
		writeRow(&b, row, widths)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteString("|")
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", w-utf8.RuneCountInString(cell))
		if i == 0 {
			b.WriteString(" " + cell + pad + " |")
		} else {
			b.WriteString(" " + pad + cell + " |")
		}
	}
	b.WriteString("\n")
}

// formatG renders v with six significant digits.
func formatG(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// format2 renders v with two decimals.
func format2(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatValue renders a measured value in its shortest exact form, keeping a
// decimal point on whole numbers (35 -> "35.0").
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") && !math.IsInf(v, 0) {
		s += ".0"
	}
	return s
}
