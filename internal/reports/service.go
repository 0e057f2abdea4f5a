package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/printing"
	"github.com/odyssey-erp/odyssey-reports/internal/render"
)

// Source loads entities. List may pre-filter on criteria; the service applies
// the definition's matching rules again so sources can stay coarse.
type Source[T any] interface {
	Get(ctx context.Context, id int64) (T, error)
	List(ctx context.Context, c Criteria) ([]T, error)
}

// Meta is the context handed to document builders.
type Meta struct {
	Header   Header
	Printed  time.Time
	Criteria Criteria
	Lookups  *Lookups
}

// Definition describes how one entity type becomes documents.
type Definition[T any] struct {
	Kind  string
	Title string
	ID    func(T) int64
	// Keywords lists the fields searched by Criteria.Keyword.
	Keywords func(T) []string
	// Match applies entity specific filters such as dates and flags.
	Match   func(T, Criteria) bool
	Less    func(a, b T) bool
	Detail  func(T, Meta) *document.Document
	Listing func([]T, Meta) *document.Document
}

func (d Definition[T]) matches(item T, c Criteria) bool {
	if !c.MatchesID(d.ID(item)) {
		return false
	}
	if d.Keywords != nil && !c.MatchesKeyword(d.Keywords(item)...) {
		return false
	}
	return d.Match == nil || d.Match(item, c)
}

// Deps are the collaborators shared by every report service.
type Deps struct {
	Company   CompanyProvider
	Lookups   *Lookups
	Renderers Renderers
	Printer   DocumentPrinter
	Observer  Observer
	Logger    *slog.Logger
	Page      PageSetting
}

// BatchResult is the outcome of rendering a criteria listing.
type BatchResult struct {
	Images      [][]byte
	Document    *document.Document
	RecordCount int
	Failure     string
	Err         error
}

// OK reports whether the batch rendered.
func (r BatchResult) OK() bool { return r.Failure == "" }

func batchFailed(err error) BatchResult {
	return BatchResult{Failure: err.Error(), Err: err}
}

// ItemOutcome is the print outcome of one entity in a batch.
type ItemOutcome struct {
	ID int64 `json:"id"`
	printing.Outcome
}

// BatchPrintResult collects per-item outcomes. Failure is set only when the
// batch could not run at all.
type BatchPrintResult struct {
	Items   []ItemOutcome `json:"items"`
	Printed int           `json:"printed"`
	Failed  int           `json:"failed"`
	Failure string        `json:"failure,omitempty"`
	Err     error         `json:"-"`
}

// OK reports whether the loop ran. Inspect Failed for per-item failures.
func (r BatchPrintResult) OK() bool { return r.Failure == "" }

// ExcelExport is delivered by ExportToExcelAsync.
type ExcelExport struct {
	Data []byte
	Err  error
}

type base struct {
	company   CompanyProvider
	lookups   *Lookups
	renderers Renderers
	printer   DocumentPrinter
	observer  Observer
	logger    *slog.Logger
	page      PageSetting
	now       func() time.Time
}

func newBase(deps Deps) base {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		company:   deps.Company,
		lookups:   deps.Lookups,
		renderers: deps.Renderers,
		printer:   deps.Printer,
		observer:  deps.Observer,
		logger:    logger,
		page:      deps.Page,
		now:       time.Now,
	}
}

func (b *base) meta(ctx context.Context, c Criteria) (Meta, error) {
	m := Meta{Printed: b.now(), Criteria: c, Lookups: b.lookups}
	if b.company == nil {
		return m, nil
	}
	h, err := b.company.Company(ctx)
	if err != nil {
		return Meta{}, fmt.Errorf("reports: company header: %w", err)
	}
	m.Header = h
	return m, nil
}

func (b *base) render(ctx context.Context, doc *document.Document, format render.Format, setting PageSetting, attrs ...any) render.Result {
	start := time.Now()
	res := b.renderers.Render(ctx, doc, format, setting)
	if b.observer != nil {
		b.observer.ObserveRender(string(format), res.OK(), time.Since(start))
	}
	if !res.OK() {
		b.logger.Error("report render failed", append(attrs, slog.String("format", string(format)), slog.String("failure", res.Failure))...)
	}
	return res
}

func (b *base) print(ctx context.Context, doc *document.Document, profileID int64, copies int) printing.Outcome {
	if b.printer == nil {
		return printing.Failed(errors.New("reports: printing not configured"))
	}
	return b.printer.Print(ctx, doc, profileID, copies)
}

func (b *base) exportExcel(doc *document.Document) ([]byte, error) {
	res := b.render(context.Background(), doc, render.FormatXLSX, b.page)
	if !res.OK() {
		return nil, res.Err
	}
	return res.Workbook, nil
}

func exportAsync(ctx context.Context, fn func() ([]byte, error)) <-chan ExcelExport {
	ch := make(chan ExcelExport, 1)
	go func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- ExcelExport{Err: err}
			return
		}
		data, err := fn()
		ch <- ExcelExport{Data: data, Err: err}
	}()
	return ch
}

// build runs a document builder, converting a panic into an error.
func build(kind string, fn func() *document.Document) (doc *document.Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("reports: build %s: %v", kind, rec)
		}
	}()
	return fn(), nil
}

// Service implements every report operation for one entity type.
type Service[T any] struct {
	base
	def    Definition[T]
	source Source[T]
}

// NewService constructs a Service.
func NewService[T any](def Definition[T], source Source[T], deps Deps) *Service[T] {
	return &Service[T]{base: newBase(deps), def: def, source: source}
}

// WithNow overrides the clock used for printed timestamps.
func (s *Service[T]) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Kind returns the registry name.
func (s *Service[T]) Kind() string { return s.def.Kind }

// GenerateReport builds the detail document for one entity.
func (s *Service[T]) GenerateReport(ctx context.Context, id int64) (*document.Document, error) {
	item, err := s.source.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%s %d: %w", s.def.Kind, id, ErrNotFound)
		}
		return nil, fmt.Errorf("reports: load %s %d: %w", s.def.Kind, id, err)
	}
	meta, err := s.meta(ctx, Criteria{})
	if err != nil {
		return nil, err
	}
	return build(s.def.Kind, func() *document.Document { return s.def.Detail(item, meta) })
}

// RenderToImages renders the detail document of id into page images.
func (s *Service[T]) RenderToImages(ctx context.Context, id int64, setting PageSetting) render.Result {
	doc, err := s.GenerateReport(ctx, id)
	if err != nil {
		s.logger.Error("report generate failed", slog.String("kind", s.def.Kind), slog.Int64("id", id), slog.Any("error", err))
		return render.Failed(render.FormatPNG, err)
	}
	return s.RenderDocument(doc, setting)
}

// RenderDocument renders an already built document into page images.
func (s *Service[T]) RenderDocument(doc *document.Document, setting PageSetting) render.Result {
	return s.render(context.Background(), doc, render.FormatPNG, setting, slog.String("kind", s.def.Kind))
}

// Render renders doc in any format.
func (s *Service[T]) Render(ctx context.Context, doc *document.Document, format render.Format, setting PageSetting) render.Result {
	return s.render(ctx, doc, format, setting, slog.String("kind", s.def.Kind))
}

// DirectPrint renders id with the profile's page setup and prints copies.
func (s *Service[T]) DirectPrint(ctx context.Context, id int64, profileID int64, copies int) printing.Outcome {
	doc, err := s.GenerateReport(ctx, id)
	if err != nil {
		s.logger.Error("direct print failed", slog.String("kind", s.def.Kind), slog.Int64("id", id), slog.Any("error", err))
		return printing.Failed(err)
	}
	return s.print(ctx, doc, profileID, copies)
}

// Select returns the matching entities in report order.
func (s *Service[T]) Select(ctx context.Context, c Criteria) ([]T, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	items, err := s.source.List(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("reports: list %s: %w", s.def.Kind, err)
	}
	matched := items[:0:0]
	for _, item := range items {
		if s.def.matches(item, c) {
			matched = append(matched, item)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingRecords, c.Summary())
	}
	if s.def.Less != nil {
		sort.SliceStable(matched, func(i, j int) bool { return s.def.Less(matched[i], matched[j]) })
	}
	return matched, nil
}

// BuildBatch builds the listing document for c.
func (s *Service[T]) BuildBatch(ctx context.Context, c Criteria) (*document.Document, int, error) {
	items, err := s.Select(ctx, c)
	if err != nil {
		return nil, 0, err
	}
	meta, err := s.meta(ctx, c)
	if err != nil {
		return nil, 0, err
	}
	doc, err := build(s.def.Kind, func() *document.Document { return s.def.Listing(items, meta) })
	return doc, len(items), err
}

// RenderBatchToImages renders the listing for c with the default page setup.
func (s *Service[T]) RenderBatchToImages(ctx context.Context, c Criteria) BatchResult {
	doc, n, err := s.BuildBatch(ctx, c)
	if err != nil {
		s.logger.Warn("batch report not built", slog.String("kind", s.def.Kind), slog.String("criteria", c.Summary()), slog.Any("error", err))
		return batchFailed(err)
	}
	res := s.render(ctx, doc, render.FormatPNG, s.page, slog.String("kind", s.def.Kind), slog.String("criteria", c.Summary()))
	if !res.OK() {
		return batchFailed(res.Err)
	}
	return BatchResult{Images: res.Pages, Document: doc, RecordCount: n}
}

// DirectPrintBatch prints the detail document of every matching entity in
// turn. A failed item is recorded and the loop moves on.
func (s *Service[T]) DirectPrintBatch(ctx context.Context, c Criteria, profileID int64, copies int) BatchPrintResult {
	items, err := s.Select(ctx, c)
	if err != nil {
		s.logger.Warn("batch print not started", slog.String("kind", s.def.Kind), slog.String("criteria", c.Summary()), slog.Any("error", err))
		return BatchPrintResult{Failure: err.Error(), Err: err}
	}
	meta, err := s.meta(ctx, Criteria{})
	if err != nil {
		return BatchPrintResult{Failure: err.Error(), Err: err}
	}
	out := BatchPrintResult{Items: make([]ItemOutcome, 0, len(items))}
	for _, item := range items {
		id := s.def.ID(item)
		var outcome printing.Outcome
		if err := ctx.Err(); err != nil {
			outcome = printing.Failed(err)
		} else if doc, err := build(s.def.Kind, func() *document.Document { return s.def.Detail(item, meta) }); err != nil {
			outcome = printing.Failed(err)
		} else {
			outcome = s.print(ctx, doc, profileID, copies)
		}
		if outcome.OK() {
			out.Printed++
		} else {
			out.Failed++
			s.logger.Error("batch print item failed", slog.String("kind", s.def.Kind), slog.Int64("id", id), slog.String("failure", outcome.Failure))
		}
		out.Items = append(out.Items, ItemOutcome{ID: id, Outcome: outcome})
	}
	s.logger.Info("batch print finished", slog.String("kind", s.def.Kind), slog.Int("printed", out.Printed), slog.Int("failed", out.Failed))
	return out
}

// ExportToExcel renders doc as a workbook.
func (s *Service[T]) ExportToExcel(doc *document.Document) ([]byte, error) {
	return s.exportExcel(doc)
}

// ExportToExcelAsync renders doc as a workbook on another goroutine. The
// channel receives exactly one value.
func (s *Service[T]) ExportToExcelAsync(ctx context.Context, doc *document.Document) <-chan ExcelExport {
	return exportAsync(ctx, func() ([]byte, error) { return s.exportExcel(doc) })
}
