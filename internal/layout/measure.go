package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// Metrics shared with the raster renderer. Every glyph advances by
// size*CharWidthFactor so measured widths match drawn widths exactly.
const (
	CharWidthFactor  = 0.6
	LineHeightFactor = 1.3
	CellPadding      = 3.0
	DefaultRule      = 0.5

	ReportCompanySize  = 14.0
	ReportTitleSize    = 12.0
	ReportSubtitleSize = 10.0
	SignatureGap       = 40.0
)

// TextWidth returns the advance of s at the given font size.
func TextWidth(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size * CharWidthFactor
}

// LineHeight returns the vertical advance of one line.
func LineHeight(size float64) float64 {
	return size * LineHeightFactor
}

// Wrap breaks s into lines no wider than width. Newlines are honoured, words
// longer than a line are split, and empty input yields one empty line.
func Wrap(s string, size, width float64) []string {
	perLine := int(width / (size * CharWidthFactor))
	if perLine < 1 {
		perLine = 1
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		out = append(out, wrapParagraph(para, perLine)...)
	}
	return out
}

func wrapParagraph(para string, perLine int) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	var (
		lines []string
		cur   []rune
	)
	flush := func() {
		lines = append(lines, string(cur))
		cur = cur[:0]
	}
	for _, w := range words {
		rw := []rune(w)
		for len(rw) > perLine {
			if len(cur) > 0 {
				flush()
			}
			lines = append(lines, string(rw[:perLine]))
			rw = rw[perLine:]
		}
		need := len(rw)
		if len(cur) > 0 {
			need++
		}
		if len(cur)+need > perLine {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, rw...)
	}
	if len(cur) > 0 {
		flush()
	}
	return lines
}

// Truncate shortens s to fit width, ending with "..." when cut.
func Truncate(s string, size, width float64) string {
	limit := int(width / (size * CharWidthFactor))
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 3 {
		if limit <= 0 {
			return ""
		}
		return string([]rune(s)[:limit])
	}
	return string([]rune(s)[:limit-3]) + "..."
}

// CellLines wraps every cell of a row to its column width.
func CellLines(cells []string, widths []float64, size float64) [][]string {
	out := make([][]string, len(cells))
	for i, cell := range cells {
		w := 0.0
		if i < len(widths) {
			w = widths[i] - 2*CellPadding
		}
		out[i] = Wrap(cell, size, w)
	}
	return out
}

// RowHeight is the height of a table row whose cells wrap inside their columns.
func RowHeight(cells []string, widths []float64, size float64) float64 {
	lines := 1
	for _, cl := range CellLines(cells, widths, size) {
		if len(cl) > lines {
			lines = len(cl)
		}
	}
	return float64(lines)*LineHeight(size) + 2*CellPadding
}

// TableHeights returns the header height and each data row height.
func TableHeights(t document.Table, width float64) (header float64, rows []float64) {
	widths := t.ColumnWidths(width)
	size := t.EffectiveFontSize()
	header = RowHeight(t.HeaderTexts(), widths, size)
	rows = make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = RowHeight(r, widths, size)
	}
	return header, rows
}

// RuleThickness returns the drawn thickness of a line element.
func RuleThickness(l document.Line) float64 {
	if l.Thickness <= 0 {
		return DefaultRule
	}
	return l.Thickness
}

// ImageSize scales an image down to width while keeping its aspect ratio.
func ImageSize(img document.Image, width float64) (w, h float64) {
	w, h = img.Width, img.Height
	if w > width && w > 0 {
		h = h * width / w
		w = width
	}
	return w, h
}

func sizeOr(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

// KeyValueSize returns the font size of key-value style elements.
func KeyValueSize(v float64) float64 { return sizeOr(v, document.DefaultFontSize) }

// Measure returns the height an element needs at the given content width.
func Measure(el document.Element, width float64) float64 {
	switch e := el.(type) {
	case document.Text:
		size := e.Style.FontSize()
		return float64(len(Wrap(e.Content, size, width))) * LineHeight(size)
	case document.Table:
		header, rows := TableHeights(e, width)
		total := header
		for _, h := range rows {
			total += h
		}
		return total
	case document.KeyValueRow:
		return LineHeight(KeyValueSize(e.FontSize)) + 4
	case document.Line:
		return RuleThickness(e) + 4
	case document.Spacing:
		return e.Height
	case document.ReportHeaderBlock:
		h := LineHeight(ReportCompanySize) + LineHeight(ReportTitleSize) + 6
		if e.Subtitle != "" {
			h += LineHeight(ReportSubtitleSize)
		}
		return h
	case document.ThreeColumnHeader:
		return LineHeight(KeyValueSize(e.FontSize)) + 2
	case document.TwoColumnSection:
		n := max(len(e.Left), len(e.Right))
		return float64(n)*LineHeight(KeyValueSize(e.FontSize)) + 4
	case document.SignatureSection:
		return SignatureGap + 2*LineHeight(document.DefaultFontSize)
	case document.PageBreak:
		return 0
	case document.Image:
		_, h := ImageSize(e, width)
		return h
	default:
		return 0
	}
}
