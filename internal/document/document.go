package document

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultFontSize is the body text size in points.
	DefaultFontSize = 10.0
	// TableFontSize is the default table cell size in points.
	TableFontSize = 9.0

	// PagePlaceholder is replaced with the current page number at render time.
	PagePlaceholder = "{PAGE}"
	// PagesPlaceholder is replaced with the total page count at render time.
	PagesPlaceholder = "{PAGES}"
	// PageNumberText is the conventional footer caption.
	PageNumberText = "Page " + PagePlaceholder + " of " + PagesPlaceholder
)

// Margins are expressed in points (1/72 inch).
type Margins struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// DefaultMargins is roughly 15mm on every side.
var DefaultMargins = Margins{Top: 42, Bottom: 42, Left: 42, Right: 42}

// Document is the root aggregate of a report. It is built once and only read
// afterwards; layout and renderers never modify it.
type Document struct {
	Name    string
	Margins Margins
	Header  []Element
	Body    []Element
	Footer  []Element
}

// WithMargins returns a shallow copy using the supplied margins.
func (d *Document) WithMargins(m Margins) *Document {
	cp := *d
	cp.Margins = m
	return &cp
}

// BodyLen reports the number of body elements.
func (d *Document) BodyLen() int {
	if d == nil {
		return 0
	}
	return len(d.Body)
}

// ErrEmptyName indicates a document without a name.
var ErrEmptyName = errors.New("document: name required")

// Builder assembles a Document.
type Builder struct {
	name    string
	margins Margins
	header  []Element
	body    []Element
	footer  []Element
	errs    []error
}

// NewBuilder starts a document with default margins.
func NewBuilder(name string) *Builder {
	return &Builder{name: strings.TrimSpace(name), margins: DefaultMargins}
}

// Margins overrides the page margins.
func (b *Builder) Margins(m Margins) *Builder {
	b.margins = m
	return b
}

// Header appends elements repeated at the top of every page.
func (b *Builder) Header(elems ...Element) *Builder {
	b.header = b.appendChecked(b.header, elems)
	return b
}

// Body appends flowing content.
func (b *Builder) Body(elems ...Element) *Builder {
	b.body = b.appendChecked(b.body, elems)
	return b
}

// Footer appends elements repeated at the bottom of every page.
func (b *Builder) Footer(elems ...Element) *Builder {
	b.footer = b.appendChecked(b.footer, elems)
	return b
}

func (b *Builder) appendChecked(dst []Element, elems []Element) []Element {
	for _, el := range elems {
		if el == nil {
			continue
		}
		if tbl, ok := el.(Table); ok {
			if err := tbl.Validate(); err != nil {
				b.errs = append(b.errs, err)
				continue
			}
		}
		dst = append(dst, el)
	}
	return dst
}

// Build returns the finished document or the first validation error.
func (b *Builder) Build() (*Document, error) {
	if b.name == "" {
		return nil, ErrEmptyName
	}
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("document %q: %w", b.name, errors.Join(b.errs...))
	}
	return &Document{
		Name:    b.name,
		Margins: b.margins,
		Header:  append([]Element(nil), b.header...),
		Body:    append([]Element(nil), b.body...),
		Footer:  append([]Element(nil), b.footer...),
	}, nil
}

// MustBuild is Build for statically known documents; it panics on error.
func (b *Builder) MustBuild() *Document {
	doc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return doc
}

// HasPageTokens reports whether s contains a page placeholder.
func HasPageTokens(s string) bool {
	return strings.Contains(s, PagePlaceholder) || strings.Contains(s, PagesPlaceholder)
}
