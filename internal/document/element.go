package document

import (
	"errors"
	"fmt"
)

// ElementKind discriminates the closed set of page element variants.
type ElementKind int

const (
	KindText ElementKind = iota + 1
	KindTable
	KindKeyValueRow
	KindLine
	KindSpacing
	KindReportHeader
	KindThreeColumnHeader
	KindTwoColumnSection
	KindSignatureSection
	KindPageBreak
	KindImage
)

func (k ElementKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindTable:
		return "Table"
	case KindKeyValueRow:
		return "KeyValueRow"
	case KindLine:
		return "Line"
	case KindSpacing:
		return "Spacing"
	case KindReportHeader:
		return "ReportHeaderBlock"
	case KindThreeColumnHeader:
		return "ThreeColumnHeader"
	case KindTwoColumnSection:
		return "TwoColumnSection"
	case KindSignatureSection:
		return "SignatureSection"
	case KindPageBreak:
		return "PageBreak"
	case KindImage:
		return "Image"
	default:
		return "Unknown"
	}
}

// Element is a display-only building block of a document. The set of
// implementations is closed to this package.
type Element interface {
	Kind() ElementKind
	element()
}

// Alignment controls horizontal placement of text inside its box.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// TextStyle carries font hints. A zero Size means DefaultFontSize.
type TextStyle struct {
	Size   float64
	Bold   bool
	Italic bool
}

// FontSize returns the effective font size in points.
func (s TextStyle) FontSize() float64 {
	if s.Size <= 0 {
		return DefaultFontSize
	}
	return s.Size
}

// KeyValue is a labelled value rendered as "Key: Value".
type KeyValue struct {
	Key   string
	Value string
}

// Text is a paragraph. Embedded newlines start new lines.
type Text struct {
	Content string
	Style   TextStyle
	Align   Alignment
}

// Column describes a table column. Weight only proportions the available width.
type Column struct {
	Header string
	Weight float64
	Align  Alignment
}

// Table is a grid of pre-formatted cells. Continued marks a fragment produced by
// pagination that starts after a page boundary.
type Table struct {
	Columns   []Column
	Rows      [][]string
	FontSize  float64
	Continued bool
}

// KeyValueRow lays out its pairs across the full width in equal slots.
type KeyValueRow struct {
	Pairs    []KeyValue
	FontSize float64
	Bold     bool
}

// Line is a horizontal rule.
type Line struct {
	Thickness float64
}

// Spacing is vertical whitespace in points.
type Spacing struct {
	Height float64
}

// ReportHeaderBlock is the standard company + title banner.
type ReportHeaderBlock struct {
	CompanyName string
	Title       string
	Subtitle    string
}

// ThreeColumnHeader is a single line split into left, centre and right parts.
type ThreeColumnHeader struct {
	Left     string
	Center   string
	Right    string
	FontSize float64
}

// TwoColumnSection shows two independent key-value lists side by side.
type TwoColumnSection struct {
	Left     []KeyValue
	Right    []KeyValue
	FontSize float64
}

// SignatureSection renders one signature slot per label.
type SignatureSection struct {
	Labels []string
	Names  []string
}

// PageBreak forces the following body element onto a new page. A plain break
// on a page that holds nothing yet is a no-op; Force always ejects the page, so
// consecutive forced breaks leave blank pages.
type PageBreak struct {
	Force bool
}

// Image embeds encoded image bytes (PNG, JPEG or GIF) at the given size in points.
type Image struct {
	Data    []byte
	Width   float64
	Height  float64
	Align   Alignment
	AltText string
}

func (Text) Kind() ElementKind              { return KindText }
func (Table) Kind() ElementKind             { return KindTable }
func (KeyValueRow) Kind() ElementKind       { return KindKeyValueRow }
func (Line) Kind() ElementKind              { return KindLine }
func (Spacing) Kind() ElementKind           { return KindSpacing }
func (ReportHeaderBlock) Kind() ElementKind { return KindReportHeader }
func (ThreeColumnHeader) Kind() ElementKind { return KindThreeColumnHeader }
func (TwoColumnSection) Kind() ElementKind  { return KindTwoColumnSection }
func (SignatureSection) Kind() ElementKind  { return KindSignatureSection }
func (PageBreak) Kind() ElementKind         { return KindPageBreak }
func (Image) Kind() ElementKind             { return KindImage }

func (Text) element()              {}
func (Table) element()             {}
func (KeyValueRow) element()       {}
func (Line) element()              {}
func (Spacing) element()           {}
func (ReportHeaderBlock) element() {}
func (ThreeColumnHeader) element() {}
func (TwoColumnSection) element()  {}
func (SignatureSection) element()  {}
func (PageBreak) element()         {}
func (Image) element()             {}

var (
	// ErrRowWidth indicates a table row whose cell count differs from the column count.
	ErrRowWidth = errors.New("document: row cell count does not match columns")
	// ErrColumnWeight indicates a non-positive column weight.
	ErrColumnWeight = errors.New("document: column weight must be positive")
	// ErrNoColumns indicates a table without columns.
	ErrNoColumns = errors.New("document: table requires at least one column")
)

// Validate checks the table invariants.
func (t Table) Validate() error {
	if len(t.Columns) == 0 {
		return ErrNoColumns
	}
	for i, col := range t.Columns {
		if col.Weight <= 0 {
			return fmt.Errorf("column %d (%q): %w", i, col.Header, ErrColumnWeight)
		}
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), len(t.Columns), ErrRowWidth)
		}
	}
	return nil
}

// EffectiveFontSize returns the table font size or the default.
func (t Table) EffectiveFontSize() float64 {
	if t.FontSize <= 0 {
		return TableFontSize
	}
	return t.FontSize
}

// ColumnWidths distributes total across the columns proportionally to their weights.
func (t Table) ColumnWidths(total float64) []float64 {
	widths := make([]float64, len(t.Columns))
	var sum float64
	for _, col := range t.Columns {
		sum += col.Weight
	}
	if sum <= 0 {
		return widths
	}
	for i, col := range t.Columns {
		widths[i] = total * col.Weight / sum
	}
	return widths
}

// Slice returns a fragment holding rows [from, to).
func (t Table) Slice(from, to int, continued bool) Table {
	rows := make([][]string, to-from)
	copy(rows, t.Rows[from:to])
	return Table{Columns: t.Columns, Rows: rows, FontSize: t.FontSize, Continued: continued}
}

// HeaderTexts returns the column header captions in order.
func (t Table) HeaderTexts() []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = col.Header
	}
	return out
}
