// Package reports builds entity and financial report documents and routes
// them to renderers and printers.
package reports

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
	"github.com/odyssey-erp/odyssey-reports/internal/printing"
)

var (
	// ErrNotFound indicates the requested entity id does not resolve.
	ErrNotFound = errors.New("reports: not found")
	// ErrNoMatchingRecords indicates a criteria query yielded nothing.
	ErrNoMatchingRecords = errors.New("no matching records")
	// ErrInvalidCriteria indicates criteria failed validation.
	ErrInvalidCriteria = errors.New("reports: invalid criteria")
	// ErrUnknownKind indicates an unregistered report kind.
	ErrUnknownKind = errors.New("reports: unknown report kind")
)

// Header is the company context stamped on every report.
type Header struct {
	CompanyName string
	Address     string
	Phone       string
	TaxID       string
}

func (h Header) contact() string {
	var parts []string
	for _, p := range []string{h.Address, h.Phone} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " | ")
}

// CompanyProvider resolves the header context for the current company.
type CompanyProvider interface {
	Company(ctx context.Context) (Header, error)
}

// StaticCompany serves a fixed header.
type StaticCompany Header

// Company implements CompanyProvider.
func (s StaticCompany) Company(context.Context) (Header, error) { return Header(s), nil }

// PageSetting selects the page geometry for a render.
type PageSetting struct {
	Size    layout.PageSize
	DPI     int
	Margins *document.Margins
}

func (p PageSetting) size() layout.PageSize {
	if p.Size.Valid() {
		return p.Size
	}
	return layout.DefaultPageSize
}

func (p PageSetting) apply(doc *document.Document) *document.Document {
	if p.Margins == nil {
		return doc
	}
	return doc.WithMargins(*p.Margins)
}

// Lookups holds display names resolved once at startup.
type Lookups struct {
	categories   map[int64]string
	accountTypes accounting.Lookups
}

// NewLookups copies categories so later changes to the caller's map do not
// leak into reports.
func NewLookups(categories map[int64]string) *Lookups {
	return &Lookups{categories: maps.Clone(categories), accountTypes: accounting.NewLookups()}
}

// Category returns the category name or "-" when unknown.
func (l *Lookups) Category(id int64) string {
	if l != nil {
		if name, ok := l.categories[id]; ok {
			return name
		}
	}
	return "-"
}

// AccountTypes returns the account type names.
func (l *Lookups) AccountTypes() accounting.Lookups {
	if l == nil {
		return accounting.NewLookups()
	}
	return l.accountTypes
}

// Observer records render timings.
type Observer interface {
	ObserveRender(format string, ok bool, elapsed time.Duration)
}

// DocumentPrinter submits a document to a print profile.
type DocumentPrinter interface {
	Print(ctx context.Context, doc *document.Document, profileID int64, copies int) printing.Outcome
}
