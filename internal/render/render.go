// Package render turns documents into page images, workbooks, HTML and PDF.
package render

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
)

// Format identifies a render target.
type Format string

const (
	FormatPNG  Format = "png"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts the known format names.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatPNG, FormatXLSX, FormatHTML, FormatPDF:
		return Format(s), true
	case "image":
		return FormatPNG, true
	case "excel":
		return FormatXLSX, true
	}
	return "", false
}

// ContentType returns the MIME type of the primary artifact.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Result is the outcome of one render call. Exactly one artifact field is set
// on success; Failure is set otherwise.
type Result struct {
	Format    Format
	Pages     [][]byte
	Workbook  []byte
	HTML      string
	PDF       []byte
	PageCount int
	Failure   string
	Err       error
}

// OK reports whether the render succeeded.
func (r Result) OK() bool { return r.Failure == "" }

// Failed builds a failure result carrying the error message.
func Failed(format Format, err error) Result {
	return Result{Format: format, Failure: err.Error(), Err: err}
}

// Renderer converts a document at a page size into an artifact. Renderers
// never mutate the document and never panic across this boundary.
type Renderer interface {
	Format() Format
	Render(doc *document.Document, size layout.PageSize) Result
}

// RenderDefault renders with the default page size.
func RenderDefault(r Renderer, doc *document.Document) Result {
	return r.Render(doc, layout.DefaultPageSize)
}

// guard converts a panic inside fn into a failure result.
func guard(format Format, fn func() Result) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Failed(format, fmt.Errorf("render %s: panic: %v", format, rec))
		}
	}()
	return fn()
}

func paginate(format Format, doc *document.Document, size layout.PageSize) (layout.Result, *Result) {
	res, err := layout.Paginate(doc, size)
	if err != nil {
		failed := Failed(format, fmt.Errorf("render %s: %w", format, err))
		return layout.Result{}, &failed
	}
	return res, nil
}
