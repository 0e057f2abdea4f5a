package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
	"github.com/odyssey-erp/odyssey-reports/report"
)

func sampleTable(rows int) document.Table {
	t := document.Table{Columns: []document.Column{
		{Header: "Code", Weight: 1},
		{Header: "Name", Weight: 3},
		{Header: "Balance", Weight: 2, Align: document.AlignRight},
	}}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, []string{fmt.Sprintf("C%03d", i), "Customer <" + fmt.Sprint(i) + ">", "1,234.50"})
	}
	return t
}

func sampleDoc(name string, rows int) *document.Document {
	logo := &bytes.Buffer{}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	_ = png.Encode(logo, img)
	return document.NewBuilder(name).
		Header(
			document.ReportHeaderBlock{CompanyName: "Acme & Co", Title: "Customer List", Subtitle: "All customers"},
			document.ThreeColumnHeader{Left: "Printed 2024-01-01", Right: document.PageNumberText},
		).
		Body(
			document.Image{Data: logo.Bytes(), Width: 40, Height: 40, Align: document.AlignCenter},
			document.TwoColumnSection{
				Left:  []document.KeyValue{{Key: "Region", Value: "North"}},
				Right: []document.KeyValue{{Key: "Status", Value: "Active"}},
			},
			sampleTable(rows),
			document.Line{},
			document.KeyValueRow{Pairs: []document.KeyValue{{Key: "Total", Value: "99,999.00"}}, Bold: true},
			document.PageBreak{},
			document.SignatureSection{Labels: []string{"Prepared by", "Approved by"}, Names: []string{"Ann", "Bob"}},
		).
		Footer(document.Text{Content: document.PageNumberText, Align: document.AlignCenter}).
		MustBuild()
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Report_ A_B", SheetName("Report: A/B"))
	assert.Equal(t, "Sheet1", SheetName("  "))
	long := SheetName("Trial Balance [2024] *final* for every branch and division")
	assert.LessOrEqual(t, len([]rune(long)), MaxSheetName)
	assert.NotContains(t, long, "[")
	assert.NotContains(t, long, "*")

	assert.Equal(t, "Quarterly", SheetName("'Quarterly'"))
	assert.Equal(t, "Bob's Ledger", SheetName(" 'Bob's Ledger' "))
	assert.Equal(t, "Sheet1", SheetName("'''"))
	cut := SheetName(strings.Repeat("a", MaxSheetName-1) + "'b")
	assert.Equal(t, strings.Repeat("a", MaxSheetName-1), cut)
}

func TestImageRendererPagesAndDeterminism(t *testing.T) {
	doc := sampleDoc("Customers", 120)
	r := NewImageRenderer(72)
	first := r.Render(doc, layout.A4)
	require.True(t, first.OK(), first.Failure)
	require.Greater(t, first.PageCount, 1)
	assert.Len(t, first.Pages, first.PageCount)

	cfg, err := png.DecodeConfig(bytes.NewReader(first.Pages[0]))
	require.NoError(t, err)
	assert.Equal(t, 596, cfg.Width)
	assert.Equal(t, 842, cfg.Height)

	second := r.Render(doc, layout.A4)
	require.Equal(t, len(first.Pages), len(second.Pages))
	for i := range first.Pages {
		assert.True(t, bytes.Equal(first.Pages[i], second.Pages[i]), "page %d differs", i)
	}
}

func TestDrawableCoversExtendedScripts(t *testing.T) {
	fonts, err := monoFonts()
	require.NoError(t, err)
	c := newCanvas(layout.A4, 1, fonts)
	for _, v := range []variant{regular, bold, italic, boldItalic} {
		face := c.face(v, 10)
		require.NotNil(t, face)
		assert.Equal(t, "Müller Straße Ωμέγα Привет", string(drawable(face, "Müller Straße Ωμέγα Привет")))
		assert.Equal(t, "a b?", string(drawable(face, "a\tb\x01中")))
	}
	require.NoError(t, c.err)
}

func TestImageRendererDrawsNonASCIIText(t *testing.T) {
	render := func(content string) []byte {
		doc := document.NewBuilder("Names").Body(document.Text{Content: content}).MustBuild()
		res := NewImageRenderer(96).Render(doc, layout.A4)
		require.True(t, res.OK(), res.Failure)
		return res.Pages[0]
	}
	assert.False(t, bytes.Equal(render("M?ller"), render("Müller")), "umlaut drawn as its own glyph")
}

func TestImageRendererDrawsInk(t *testing.T) {
	res := RenderDefault(NewImageRenderer(96), sampleDoc("Ink", 3))
	require.True(t, res.OK())
	img, err := png.Decode(bytes.NewReader(res.Pages[0]))
	require.NoError(t, err)
	dark := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x += 2 {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 100)
}

func TestRenderFailureIsAResult(t *testing.T) {
	tiny := layout.PageSize{Name: "tiny", Width: 100, Height: 90}
	for _, r := range []Renderer{NewImageRenderer(0), NewExcelRenderer(), NewHTMLRenderer()} {
		res := r.Render(sampleDoc("x", 1), tiny)
		assert.False(t, res.OK(), r.Format())
		assert.ErrorIs(t, res.Err, layout.ErrPageTooSmall)
		assert.Contains(t, res.Failure, "page too small")
	}
}

func TestGuardRecoversPanics(t *testing.T) {
	res := guard(FormatPNG, func() Result { panic("boom") })
	assert.False(t, res.OK())
	assert.Contains(t, res.Failure, "boom")
}

func TestExcelRendererMapsGrid(t *testing.T) {
	doc := sampleDoc("Report: A/B", 150)
	res := NewExcelRenderer().Render(doc, layout.A4)
	require.True(t, res.OK(), res.Failure)

	f, err := excelize.OpenReader(bytes.NewReader(res.Workbook))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.Equal(t, []string{"Report_ A_B"}, f.GetSheetList())
	rows, err := f.GetRows("Report_ A_B")
	require.NoError(t, err)
	assert.Equal(t, "Acme & Co", rows[0][0])
	assert.Equal(t, "Customer List", rows[1][0])

	headers, dataRows := 0, 0
	for _, row := range rows {
		if len(row) > 0 && row[0] == "Code" {
			headers++
		}
		if len(row) > 0 && row[0] != "Code" && strings.HasPrefix(row[0], "C") && len(row[0]) == 4 {
			dataRows++
		}
	}
	assert.Equal(t, 1, headers, "continued fragments do not repeat headers")
	assert.Equal(t, 150, dataRows)

	merged, err := f.GetMergeCells("Report_ A_B")
	require.NoError(t, err)
	assert.NotEmpty(t, merged)

	hf, err := f.GetHeaderFooter("Report_ A_B")
	require.NoError(t, err)
	assert.Equal(t, printFooter, hf.OddFooter)
	for _, row := range rows {
		for _, cell := range row {
			assert.False(t, document.HasPageTokens(cell), cell)
		}
	}
}

func TestExcelRendererIsByteStable(t *testing.T) {
	doc := sampleDoc("Stable", 40)
	a := NewExcelRenderer().Render(doc, layout.Letter)
	b := NewExcelRenderer().Render(doc, layout.Letter)
	require.True(t, a.OK())
	assert.Equal(t, a.Workbook, b.Workbook)
}

func TestHTMLRendererSectionsPerPage(t *testing.T) {
	doc := sampleDoc("Customers", 120)
	res := NewHTMLRenderer().Render(doc, layout.A4)
	require.True(t, res.OK(), res.Failure)
	assert.Contains(t, res.HTML, "@page { size: 595.28pt 841.89pt")
	assert.Contains(t, res.HTML, "Acme &amp; Co")
	assert.Contains(t, res.HTML, "Customer &lt;0&gt;")
	assert.Contains(t, res.HTML, "data:image/png;base64,")

	root, err := html.Parse(strings.NewReader(res.HTML))
	require.NoError(t, err)
	sections, theads := 0, 0
	var footers []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "section":
				sections++
			case "thead":
				theads++
			case "div":
				for _, a := range n.Attr {
					if a.Key == "class" && a.Val == "footer" {
						footers = append(footers, textOf(n))
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	assert.Equal(t, res.PageCount, sections)
	assert.GreaterOrEqual(t, theads, 2)
	require.Len(t, footers, res.PageCount)
	assert.Equal(t, fmt.Sprintf("Page 1 of %d", res.PageCount), strings.TrimSpace(footers[0]))

	again := NewHTMLRenderer().Render(doc, layout.A4)
	assert.Equal(t, res.HTML, again.HTML)
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

type fakeConverter struct {
	html string
	opts report.PaperOptions
	err  error
}

func (f *fakeConverter) RenderHTML(_ context.Context, html string, opts report.PaperOptions) ([]byte, error) {
	f.html, f.opts = html, opts
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7"), nil
}

func TestPDFRendererUsesConverter(t *testing.T) {
	conv := &fakeConverter{}
	res := NewPDFRenderer(conv, 0).Render(sampleDoc("Customers", 5), layout.Letter)
	require.True(t, res.OK(), res.Failure)
	assert.Equal(t, "%PDF-1.7", string(res.PDF))
	assert.InDelta(t, 8.5, conv.opts.Width, 0.001)
	assert.InDelta(t, 11, conv.opts.Height, 0.001)
	assert.Contains(t, conv.html, "<section class=\"page\"")

	conv.err = errors.New("gotenberg down")
	res = NewPDFRenderer(conv, 0).RenderContext(context.Background(), sampleDoc("Customers", 5), layout.Letter)
	assert.False(t, res.OK())
	assert.Contains(t, res.Failure, "gotenberg down")

	res = NewPDFRenderer(nil, 0).Render(sampleDoc("x", 1), layout.A4)
	assert.ErrorIs(t, res.Err, report.ErrNoEndpoint)
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("excel")
	assert.True(t, ok)
	assert.Equal(t, FormatXLSX, f)
	_, ok = ParseFormat("docx")
	assert.False(t, ok)
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}
