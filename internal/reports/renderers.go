package reports

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/render"
	"github.com/odyssey-erp/odyssey-reports/report"
)

// Renderers is the set of back ends available to services. A nil PDF
// renderer disables PDF output.
type Renderers struct {
	Image render.ImageRenderer
	Excel render.ExcelRenderer
	HTML  render.HTMLRenderer
	PDF   *render.PDFRenderer
}

// NewRenderers wires every back end.
func NewRenderers(dpi int, pdf *render.PDFRenderer) Renderers {
	return Renderers{
		Image: render.NewImageRenderer(dpi),
		Excel: render.NewExcelRenderer(),
		HTML:  render.NewHTMLRenderer(),
		PDF:   pdf,
	}
}

// Render dispatches doc to the back end for format.
func (r Renderers) Render(ctx context.Context, doc *document.Document, format render.Format, setting PageSetting) render.Result {
	if doc != nil {
		doc = setting.apply(doc)
	}
	size := setting.size()
	switch format {
	case render.FormatPNG:
		img := r.Image
		if setting.DPI > 0 {
			img = render.NewImageRenderer(setting.DPI)
		}
		return img.Render(doc, size)
	case render.FormatXLSX:
		return r.Excel.Render(doc, size)
	case render.FormatHTML:
		return r.HTML.Render(doc, size)
	case render.FormatPDF:
		if r.PDF == nil {
			return render.Failed(render.FormatPDF, report.ErrNoEndpoint)
		}
		return r.PDF.RenderContext(ctx, doc, size)
	default:
		return render.Failed(format, fmt.Errorf("reports: unsupported format %q", format))
	}
}
