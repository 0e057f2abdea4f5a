package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
)

//go:embed templates/document.html
var templateFS embed.FS

var documentTemplate = template.Must(template.ParseFS(templateFS, "templates/document.html"))

// HTMLRenderer produces a self-contained HTML file with one section per page.
type HTMLRenderer struct{}

// NewHTMLRenderer returns the HTML renderer.
func NewHTMLRenderer() HTMLRenderer { return HTMLRenderer{} }

// Format implements Renderer.
func (HTMLRenderer) Format() Format { return FormatHTML }

// Render implements Renderer.
func (r HTMLRenderer) Render(doc *document.Document, size layout.PageSize) Result {
	return guard(FormatHTML, func() Result {
		lay, failed := paginate(FormatHTML, doc, size)
		if failed != nil {
			return *failed
		}
		html, err := r.RenderLayout(lay)
		if err != nil {
			return Failed(FormatHTML, fmt.Errorf("render html: %w", err))
		}
		return Result{Format: FormatHTML, HTML: html, PageCount: lay.PageCount()}
	})
}

// RenderLayout executes the page template over a paginated document.
func (HTMLRenderer) RenderLayout(lay layout.Result) (string, error) {
	view := htmlDocument{
		Title:        lay.Name,
		WidthPt:      pt(lay.Size.Width),
		HeightPt:     pt(lay.Size.Height),
		MarginTop:    pt(lay.Margins.Top),
		MarginRight:  pt(lay.Margins.Right),
		MarginBottom: pt(lay.Margins.Bottom),
		MarginLeft:   pt(lay.Margins.Left),
		SignatureGap: pt(layout.SignatureGap),
	}
	for _, page := range lay.Pages {
		view.Pages = append(view.Pages, htmlPage{
			Number: page.Number,
			Header: htmlElements(page.Header, lay.ContentWidth),
			Body:   htmlElements(page.Body, lay.ContentWidth),
			Footer: htmlElements(page.Footer, lay.ContentWidth),
		})
	}
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type htmlDocument struct {
	Title        string
	WidthPt      string
	HeightPt     string
	MarginTop    string
	MarginRight  string
	MarginBottom string
	MarginLeft   string
	SignatureGap string
	Pages        []htmlPage
}

type htmlPage struct {
	Number int
	Header []htmlElement
	Body   []htmlElement
	Footer []htmlElement
}

type htmlElement struct {
	Kind       string
	Text       *htmlText
	Table      *htmlTable
	Pairs      *htmlPairs
	Thickness  string
	Height     string
	Header     *document.ReportHeaderBlock
	Three      *htmlThree
	Two        *htmlTwo
	Signatures []htmlSignature
	Image      *htmlImage
}

type htmlText struct {
	Class   string
	Size    string
	Content string
}

type htmlColumn struct {
	Header  string
	Class   string
	Percent string
}

type htmlCell struct {
	Value string
	Class string
}

type htmlTable struct {
	Size      string
	Continued bool
	Columns   []htmlColumn
	Rows      [][]htmlCell
}

type htmlPairs struct {
	Size  string
	Bold  bool
	Items []document.KeyValue
}

type htmlThree struct {
	Size                string
	Left, Center, Right string
}

type htmlTwo struct {
	Size        string
	Left, Right []document.KeyValue
}

type htmlSignature struct {
	Label string
	Name  string
}

type htmlImage struct {
	Class  string
	Src    template.URL
	Alt    string
	Width  string
	Height string
}

func pt(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func textClass(align document.Alignment, bold, italic bool) string {
	c := align.String()
	if bold {
		c += " bold"
	}
	if italic {
		c += " italic"
	}
	return c
}

func htmlElements(boxes []layout.Box, width float64) []htmlElement {
	out := make([]htmlElement, 0, len(boxes))
	for _, b := range boxes {
		if el, ok := htmlElementFor(b.Element, width); ok {
			out = append(out, el)
		}
	}
	return out
}

func htmlElementFor(el document.Element, width float64) (htmlElement, bool) {
	switch e := el.(type) {
	case document.Text:
		return htmlElement{Kind: "text", Text: &htmlText{
			Class:   textClass(e.Align, e.Style.Bold, e.Style.Italic),
			Size:    pt(e.Style.FontSize()),
			Content: e.Content,
		}}, true
	case document.Table:
		return htmlElement{Kind: "table", Table: htmlTableFor(e)}, true
	case document.KeyValueRow:
		return htmlElement{Kind: "pairs", Pairs: &htmlPairs{Size: pt(layout.KeyValueSize(e.FontSize)), Bold: e.Bold, Items: e.Pairs}}, true
	case document.Line:
		return htmlElement{Kind: "line", Thickness: pt(layout.RuleThickness(e))}, true
	case document.Spacing:
		return htmlElement{Kind: "spacing", Height: pt(e.Height)}, true
	case document.ReportHeaderBlock:
		return htmlElement{Kind: "report-header", Header: &e}, true
	case document.ThreeColumnHeader:
		return htmlElement{Kind: "three-column", Three: &htmlThree{
			Size: pt(layout.KeyValueSize(e.FontSize)), Left: e.Left, Center: e.Center, Right: e.Right,
		}}, true
	case document.TwoColumnSection:
		return htmlElement{Kind: "two-column", Two: &htmlTwo{
			Size: pt(layout.KeyValueSize(e.FontSize)), Left: e.Left, Right: e.Right,
		}}, true
	case document.SignatureSection:
		sigs := make([]htmlSignature, len(e.Labels))
		for i, label := range e.Labels {
			sigs[i].Label = label
			if i < len(e.Names) {
				sigs[i].Name = e.Names[i]
			}
		}
		return htmlElement{Kind: "signatures", Signatures: sigs}, true
	case document.PageBreak:
		return htmlElement{}, false
	case document.Image:
		if len(e.Data) == 0 {
			return htmlElement{}, false
		}
		w, h := layout.ImageSize(e, width)
		src := "data:" + http.DetectContentType(e.Data) + ";base64," + base64.StdEncoding.EncodeToString(e.Data)
		return htmlElement{Kind: "image", Image: &htmlImage{
			Class: e.Align.String(), Src: template.URL(src), Alt: e.AltText, Width: pt(w), Height: pt(h),
		}}, true
	default:
		return htmlElement{}, false
	}
}

func htmlTableFor(t document.Table) *htmlTable {
	var total float64
	for _, c := range t.Columns {
		total += c.Weight
	}
	out := &htmlTable{Size: pt(t.EffectiveFontSize()), Continued: t.Continued}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, htmlColumn{
			Header:  c.Header,
			Class:   c.Align.String(),
			Percent: strconv.FormatFloat(100*c.Weight/total, 'f', 2, 64),
		})
	}
	for _, row := range t.Rows {
		cells := make([]htmlCell, len(row))
		for i, v := range row {
			cells[i] = htmlCell{Value: v, Class: t.Columns[i].Align.String()}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}
