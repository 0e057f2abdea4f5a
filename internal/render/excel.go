package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
)

// printFooter numbers pages natively in the workbook's print footer.
const printFooter = "&CPage &P of &N"

// Excel paper size codes.
var paperCodes = map[string]int{"Letter": 1, "Legal": 5, "A4": 9, "A5": 11}

// ExcelRenderer maps elements onto a single worksheet grid.
type ExcelRenderer struct{}

// NewExcelRenderer returns the spreadsheet renderer.
func NewExcelRenderer() ExcelRenderer { return ExcelRenderer{} }

// Format implements Renderer.
func (ExcelRenderer) Format() Format { return FormatXLSX }

// Render implements Renderer. Header elements are written once at the top and
// footer elements once at the end; page tokens move to the print footer.
func (r ExcelRenderer) Render(doc *document.Document, size layout.PageSize) Result {
	return guard(FormatXLSX, func() Result {
		lay, failed := paginate(FormatXLSX, doc, size)
		if failed != nil {
			return *failed
		}
		data, err := r.write(doc, lay)
		if err != nil {
			return Failed(FormatXLSX, fmt.Errorf("render xlsx: %w", err))
		}
		return Result{Format: FormatXLSX, Workbook: data, PageCount: lay.PageCount()}
	})
}

func (r ExcelRenderer) write(doc *document.Document, lay layout.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := SheetName(doc.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	body := make([]document.Element, 0, len(doc.Body))
	for _, b := range lay.BodyBoxes() {
		body = append(body, b.Element)
	}
	w := &sheetWriter{f: f, sheet: sheet, row: 1, styles: map[cellStyle]int{}}
	w.cols = gridColumns(doc.Header, body, doc.Footer)

	numbered := false
	for _, el := range doc.Header {
		numbered = numbered || layout.HasTokens(el)
		if err := w.element(layout.StripTokens(el)); err != nil {
			return nil, err
		}
	}
	for _, el := range body {
		if err := w.element(el); err != nil {
			return nil, err
		}
	}
	for _, el := range doc.Footer {
		numbered = numbered || layout.HasTokens(el)
		if err := w.element(layout.StripTokens(el)); err != nil {
			return nil, err
		}
	}
	if err := w.pageSetup(lay, numbered); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return canonicalZip(buf.Bytes())
}

// gridColumns is the widest column need over all elements, at least one.
func gridColumns(groups ...[]document.Element) int {
	n := 1
	for _, elems := range groups {
		for _, el := range elems {
			switch e := el.(type) {
			case document.Table:
				n = max(n, len(e.Columns))
			case document.KeyValueRow:
				n = max(n, 2*len(e.Pairs))
			case document.ThreeColumnHeader:
				n = max(n, 3)
			case document.TwoColumnSection:
				n = max(n, 4)
			case document.SignatureSection:
				n = max(n, len(e.Labels))
			}
		}
	}
	return n
}

type cellStyle struct {
	bold   bool
	size   float64
	align  document.Alignment
	header bool
	rule   bool
}

type sheetWriter struct {
	f      *excelize.File
	sheet  string
	row    int
	cols   int
	styles map[cellStyle]int
}

func (w *sheetWriter) cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func (w *sheetWriter) style(cs cellStyle) (int, error) {
	if id, ok := w.styles[cs]; ok {
		return id, nil
	}
	st := &excelize.Style{
		Font:      &excelize.Font{Bold: cs.bold, Size: cs.size},
		Alignment: &excelize.Alignment{Horizontal: cs.align.String(), Vertical: "top", WrapText: true},
	}
	if cs.header {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}}
		st.Border = []excelize.Border{
			{Type: "top", Color: "999999", Style: 1},
			{Type: "bottom", Color: "999999", Style: 1},
		}
	}
	if cs.rule {
		st.Border = []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}}
	}
	id, err := w.f.NewStyle(st)
	if err != nil {
		return 0, err
	}
	w.styles[cs] = id
	return id, nil
}

func (w *sheetWriter) put(col int, value string, cs cellStyle) error {
	if col > w.cols {
		return nil
	}
	ref := w.cell(col, w.row)
	if err := w.f.SetCellStr(w.sheet, ref, value); err != nil {
		return err
	}
	id, err := w.style(cs)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, ref, ref, id)
}

// wide writes a value merged across the full grid width.
func (w *sheetWriter) wide(value string, cs cellStyle) error {
	if err := w.put(1, value, cs); err != nil {
		return err
	}
	if w.cols > 1 {
		if err := w.f.MergeCell(w.sheet, w.cell(1, w.row), w.cell(w.cols, w.row)); err != nil {
			return err
		}
	}
	w.row++
	return nil
}

func (w *sheetWriter) element(el document.Element) error {
	switch e := el.(type) {
	case document.Text:
		if e.Content == "" {
			return nil
		}
		return w.wide(e.Content, cellStyle{bold: e.Style.Bold, size: e.Style.FontSize(), align: e.Align})
	case document.Table:
		return w.table(e)
	case document.KeyValueRow:
		size := layout.KeyValueSize(e.FontSize)
		for i, kv := range e.Pairs {
			if err := w.put(2*i+1, kv.Key, cellStyle{bold: true, size: size}); err != nil {
				return err
			}
			if err := w.put(2*i+2, kv.Value, cellStyle{bold: e.Bold, size: size}); err != nil {
				return err
			}
		}
		w.row++
	case document.Line:
		for col := 1; col <= w.cols; col++ {
			if err := w.put(col, "", cellStyle{rule: true}); err != nil {
				return err
			}
		}
		w.row++
	case document.Spacing:
		if e.Height > 0 {
			w.row++
		}
	case document.ReportHeaderBlock:
		if err := w.wide(e.CompanyName, cellStyle{bold: true, size: layout.ReportCompanySize, align: document.AlignCenter}); err != nil {
			return err
		}
		if err := w.wide(e.Title, cellStyle{bold: true, size: layout.ReportTitleSize, align: document.AlignCenter}); err != nil {
			return err
		}
		if e.Subtitle != "" {
			return w.wide(e.Subtitle, cellStyle{size: layout.ReportSubtitleSize, align: document.AlignCenter})
		}
	case document.ThreeColumnHeader:
		size := layout.KeyValueSize(e.FontSize)
		mid := (w.cols + 1) / 2
		if err := w.put(1, e.Left, cellStyle{size: size}); err != nil {
			return err
		}
		if err := w.put(mid, e.Center, cellStyle{size: size, align: document.AlignCenter}); err != nil {
			return err
		}
		if err := w.put(w.cols, e.Right, cellStyle{size: size, align: document.AlignRight}); err != nil {
			return err
		}
		w.row++
	case document.TwoColumnSection:
		size := layout.KeyValueSize(e.FontSize)
		n := max(len(e.Left), len(e.Right))
		for i := 0; i < n; i++ {
			if i < len(e.Left) {
				if err := w.pair(1, e.Left[i], size); err != nil {
					return err
				}
			}
			if i < len(e.Right) {
				if err := w.pair(3, e.Right[i], size); err != nil {
					return err
				}
			}
			w.row++
		}
	case document.SignatureSection:
		for i, label := range e.Labels {
			if err := w.put(i+1, label, cellStyle{align: document.AlignCenter}); err != nil {
				return err
			}
		}
		w.row += 3
		for i, name := range e.Names {
			if err := w.put(i+1, name, cellStyle{align: document.AlignCenter, rule: true}); err != nil {
				return err
			}
		}
		w.row++
	case document.PageBreak:
		return w.f.InsertPageBreak(w.sheet, w.cell(1, w.row))
	case document.Image:
		// images are not carried into workbooks
	default:
	}
	return nil
}

func (w *sheetWriter) pair(col int, kv document.KeyValue, size float64) error {
	if err := w.put(col, kv.Key, cellStyle{bold: true, size: size}); err != nil {
		return err
	}
	return w.put(col+1, kv.Value, cellStyle{size: size})
}

// table writes a fragment. Continued fragments omit the header row so the
// sheet reads as one uninterrupted table.
func (w *sheetWriter) table(t document.Table) error {
	size := t.EffectiveFontSize()
	if !t.Continued {
		for i, col := range t.Columns {
			if err := w.put(i+1, col.Header, cellStyle{bold: true, size: size, align: col.Align, header: true}); err != nil {
				return err
			}
		}
		w.row++
	}
	for _, row := range t.Rows {
		for i, v := range row {
			if err := w.put(i+1, v, cellStyle{size: size, align: t.Columns[i].Align}); err != nil {
				return err
			}
		}
		w.row++
	}
	return nil
}

func (w *sheetWriter) pageSetup(lay layout.Result, numbered bool) error {
	last, err := excelize.ColumnNumberToName(w.cols)
	if err != nil {
		return err
	}
	colWidth := lay.ContentWidth / float64(w.cols) / 5.5
	if err := w.f.SetColWidth(w.sheet, "A", last, max(colWidth, 10)); err != nil {
		return err
	}
	orientation := "portrait"
	if lay.Size.IsLandscape() {
		orientation = "landscape"
	}
	opts := &excelize.PageLayoutOptions{Orientation: &orientation}
	if code, ok := paperCodes[basePaperName(lay.Size.Name)]; ok {
		opts.Size = &code
	}
	if err := w.f.SetPageLayout(w.sheet, opts); err != nil {
		return err
	}
	top, bottom := lay.Margins.Top/72, lay.Margins.Bottom/72
	left, right := lay.Margins.Left/72, lay.Margins.Right/72
	if err := w.f.SetPageMargins(w.sheet, &excelize.PageLayoutMarginsOptions{
		Top: &top, Bottom: &bottom, Left: &left, Right: &right,
	}); err != nil {
		return err
	}
	if numbered {
		return w.f.SetHeaderFooter(w.sheet, &excelize.HeaderFooterOptions{OddFooter: printFooter})
	}
	return nil
}

func basePaperName(name string) string {
	for base := range paperCodes {
		if len(name) >= len(base) && name[:len(base)] == base {
			return base
		}
	}
	return name
}

// canonicalZip rewrites an archive with sorted entries and zero timestamps so
// identical workbooks serialize to identical bytes.
func canonicalZip(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	files := append([]*zip.File(nil), zr.File...)
	sort.SliceStable(files, func(i, j int) bool {
		if (files[i].Name == "[Content_Types].xml") != (files[j].Name == "[Content_Types].xml") {
			return files[i].Name == "[Content_Types].xml"
		}
		return files[i].Name < files[j].Name
	})
	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, zf := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: zf.Name, Method: zip.Deflate})
		if err != nil {
			return nil, err
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, err
		}
		_, err = io.Copy(w, rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
