package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/printing"
	"github.com/odyssey-erp/odyssey-reports/internal/render"
)

// Reporter is the type-erased view of a Service used by HTTP and jobs.
type Reporter interface {
	Kind() string
	GenerateReport(ctx context.Context, id int64) (*document.Document, error)
	RenderToImages(ctx context.Context, id int64, setting PageSetting) render.Result
	RenderDocument(doc *document.Document, setting PageSetting) render.Result
	Render(ctx context.Context, doc *document.Document, format render.Format, setting PageSetting) render.Result
	DirectPrint(ctx context.Context, id int64, profileID int64, copies int) printing.Outcome
	BuildBatch(ctx context.Context, c Criteria) (*document.Document, int, error)
	RenderBatchToImages(ctx context.Context, c Criteria) BatchResult
	DirectPrintBatch(ctx context.Context, c Criteria, profileID int64, copies int) BatchPrintResult
	ExportToExcel(doc *document.Document) ([]byte, error)
	ExportToExcelAsync(ctx context.Context, doc *document.Document) <-chan ExcelExport
}

// Registry exposes report services by kind.
type Registry struct {
	reporters map[string]Reporter
}

// NewRegistry indexes reporters by kind. Later duplicates win.
func NewRegistry(reporters ...Reporter) *Registry {
	r := &Registry{reporters: make(map[string]Reporter, len(reporters))}
	for _, rep := range reporters {
		r.reporters[rep.Kind()] = rep
	}
	return r
}

// Get returns the reporter for kind.
func (r *Registry) Get(kind string) (Reporter, error) {
	if r != nil {
		if rep, ok := r.reporters[kind]; ok {
			return rep, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Kinds lists registered kinds in order.
func (r *Registry) Kinds() []string {
	if r == nil {
		return nil
	}
	kinds := make([]string, 0, len(r.reporters))
	for k := range r.reporters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Sources groups the data access for every entity report.
type Sources struct {
	Customers Source[Customer]
	Suppliers Source[Supplier]
	Products  Source[Product]
	Employees Source[Employee]
	Vehicles  Source[Vehicle]
	Journals  Source[JournalEntry]
	Sales     Source[SalesDocument]
}

// NewStandardRegistry registers a service for every non-nil source.
func NewStandardRegistry(src Sources, deps Deps) *Registry {
	var reps []Reporter
	if src.Customers != nil {
		reps = append(reps, NewService(CustomerDefinition(), src.Customers, deps))
	}
	if src.Suppliers != nil {
		reps = append(reps, NewService(SupplierDefinition(), src.Suppliers, deps))
	}
	if src.Products != nil {
		reps = append(reps, NewService(ProductDefinition(), src.Products, deps))
	}
	if src.Employees != nil {
		reps = append(reps, NewService(EmployeeDefinition(), src.Employees, deps))
	}
	if src.Vehicles != nil {
		reps = append(reps, NewService(VehicleDefinition(), src.Vehicles, deps))
	}
	if src.Journals != nil {
		reps = append(reps, NewService(JournalEntryDefinition(), src.Journals, deps))
	}
	if src.Sales != nil {
		reps = append(reps, NewService(SalesDocumentDefinition(), src.Sales, deps))
	}
	return NewRegistry(reps...)
}
