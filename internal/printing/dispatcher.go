package printing

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
	"github.com/odyssey-erp/odyssey-reports/internal/render"
)

// formFeed starts a new page in plain-text printing.
const formFeed = "\f"

// Outcome reports a single print submission. Failure is empty on success.
type Outcome struct {
	JobID     string `json:"job_id,omitempty"`
	Device    string `json:"device,omitempty"`
	Pages     int    `json:"pages"`
	Copies    int    `json:"copies"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Failure   string `json:"failure,omitempty"`
	Err       error  `json:"-"`
}

// OK reports whether the submission succeeded or was a suppressed duplicate.
func (o Outcome) OK() bool { return o.Failure == "" }

// Failed builds a failure outcome.
func Failed(err error) Outcome {
	return Outcome{Failure: err.Error(), Err: err}
}

// Config wires the dispatcher.
type Config struct {
	Profiles ProfileStore
	Printer  Printer
	Guard    *Guard
	Logger   *slog.Logger
	// TextPage and TextDPI apply to plain-text jobs, which carry no profile.
	TextPage layout.PageSize
	TextDPI  int
	// TextFontSize is used when a text job names no size.
	TextFontSize float64
}

// Dispatcher renders documents to page images and submits them.
type Dispatcher struct {
	profiles ProfileStore
	printer  Printer
	guard    *Guard
	logger   *slog.Logger
	textPage layout.PageSize
	textDPI  int
	textSize float64
	newID    func() string
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	page := cfg.TextPage
	if !page.Valid() {
		page = layout.DefaultPageSize
	}
	return &Dispatcher{
		profiles: cfg.Profiles,
		printer:  cfg.Printer,
		guard:    cfg.Guard,
		logger:   logger,
		textPage: page,
		textDPI:  cfg.TextDPI,
		textSize: cfg.TextFontSize,
		newID:    uuid.NewString,
	}
}

// Print resolves the profile, rasterizes doc with its page setup and submits
// copies of the pages to its device.
func (d *Dispatcher) Print(ctx context.Context, doc *document.Document, profileID int64, copies int) Outcome {
	if d == nil || d.profiles == nil || d.printer == nil {
		return Failed(errors.New("printing: dispatcher not configured"))
	}
	profile, err := d.profiles.Profile(ctx, profileID)
	if err != nil {
		d.logger.Error("print profile lookup failed", slog.Int64("profile_id", profileID), slog.Any("error", err))
		return Failed(err)
	}
	res := render.NewImageRenderer(profile.DPI).Render(doc, profile.PageSize)
	if !res.OK() {
		d.logger.Error("print render failed", slog.Int64("profile_id", profileID), slog.String("failure", res.Failure))
		return Failed(res.Err)
	}
	return d.Submit(ctx, profile.Device, copies, res.Pages)
}

// PrintText prints raw text on device. Form feeds start new pages and
// fontSize overrides the configured size when positive.
func (d *Dispatcher) PrintText(ctx context.Context, text, device string, fontSize float64) Outcome {
	if d == nil || d.printer == nil {
		return Failed(errors.New("printing: dispatcher not configured"))
	}
	if fontSize <= 0 {
		fontSize = d.textSize
	}
	res := render.NewImageRenderer(d.textDPI).Render(TextDocument(text, fontSize), d.textPage)
	if !res.OK() {
		d.logger.Error("text print render failed", slog.String("device", device), slog.String("failure", res.Failure))
		return Failed(res.Err)
	}
	return d.Submit(ctx, device, 1, res.Pages)
}

// Submit sends already rendered pages, deduplicating through the guard.
func (d *Dispatcher) Submit(ctx context.Context, device string, copies int, pages [][]byte) Outcome {
	if strings.TrimSpace(device) == "" {
		return Failed(ErrNoDevice)
	}
	copies = max(copies, 1)
	digest := Digest(device, copies, pages)
	fresh, err := d.guard.Acquire(ctx, digest)
	if err != nil {
		// fail open
		d.logger.Warn("print guard unavailable", slog.String("device", device), slog.Any("error", err))
		fresh = true
	}
	if !fresh {
		d.logger.Info("duplicate print suppressed", slog.String("device", device), slog.Int("pages", len(pages)))
		return Outcome{Device: device, Pages: len(pages), Copies: copies, Duplicate: true}
	}
	job := Job{ID: d.newID(), Device: device, Copies: copies, Pages: pages}
	if err := d.printer.Send(ctx, job); err != nil {
		if relErr := d.guard.Release(ctx, digest); relErr != nil {
			d.logger.Warn("print guard release failed", slog.Any("error", relErr))
		}
		d.logger.Error("print submit failed", slog.String("job_id", job.ID), slog.String("device", device), slog.Any("error", err))
		return Failed(err)
	}
	d.logger.Info("print job submitted", slog.String("job_id", job.ID), slog.String("device", device),
		slog.Int("pages", len(pages)), slog.Int("copies", copies))
	return Outcome{JobID: job.ID, Device: device, Pages: len(pages), Copies: copies}
}

// TextDocument lays out plain text one element per line so long listings
// paginate. Each form feed ejects a page, so consecutive form feeds leave
// blank pages.
func TextDocument(text string, fontSize float64) *document.Document {
	style := document.TextStyle{Size: fontSize}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	b := document.NewBuilder("Text")
	for i, chunk := range strings.Split(text, formFeed) {
		if i > 0 {
			b.Body(document.PageBreak{Force: true})
		}
		chunk = strings.TrimSuffix(chunk, "\n")
		if chunk == "" {
			continue
		}
		for _, line := range strings.Split(chunk, "\n") {
			if strings.TrimSpace(line) == "" {
				b.Body(document.Spacing{Height: layout.LineHeight(style.FontSize())})
				continue
			}
			b.Body(document.Text{Content: line, Style: style})
		}
	}
	return b.MustBuild()
}
