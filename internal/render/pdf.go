package render

import (
	"context"
	"fmt"
	"time"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
	"github.com/odyssey-erp/odyssey-reports/report"
)

// HTMLConverter turns HTML into PDF bytes.
type HTMLConverter interface {
	RenderHTML(ctx context.Context, html string, opts report.PaperOptions) ([]byte, error)
}

// PDFRenderer prints the HTML rendition through a headless browser service.
type PDFRenderer struct {
	converter HTMLConverter
	timeout   time.Duration
	html      HTMLRenderer
}

// NewPDFRenderer wires a converter. Render without a context uses timeout.
func NewPDFRenderer(converter HTMLConverter, timeout time.Duration) *PDFRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFRenderer{converter: converter, timeout: timeout}
}

// Format implements Renderer.
func (*PDFRenderer) Format() Format { return FormatPDF }

// Render implements Renderer.
func (r *PDFRenderer) Render(doc *document.Document, size layout.PageSize) Result {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.RenderContext(ctx, doc, size)
}

// RenderContext renders honouring ctx cancellation.
func (r *PDFRenderer) RenderContext(ctx context.Context, doc *document.Document, size layout.PageSize) Result {
	return guard(FormatPDF, func() Result {
		if r.converter == nil {
			return Failed(FormatPDF, report.ErrNoEndpoint)
		}
		lay, failed := paginate(FormatPDF, doc, size)
		if failed != nil {
			return *failed
		}
		html, err := r.html.RenderLayout(lay)
		if err != nil {
			return Failed(FormatPDF, fmt.Errorf("render pdf: %w", err))
		}
		w, h := size.Inches()
		pdf, err := r.converter.RenderHTML(ctx, html, report.PaperOptions{Width: w, Height: h})
		if err != nil {
			return Failed(FormatPDF, fmt.Errorf("render pdf: %w", err))
		}
		return Result{Format: FormatPDF, PDF: pdf, PageCount: lay.PageCount()}
	})
}
