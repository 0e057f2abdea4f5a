package layout

import (
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// State is the paginator lifecycle.
type State int

const (
	Idle State = iota
	Measuring
	Paginating
	Complete
)

func (s State) String() string {
	switch s {
	case Measuring:
		return "measuring"
	case Paginating:
		return "paginating"
	case Complete:
		return "complete"
	default:
		return "idle"
	}
}

var (
	// ErrPageTooSmall indicates header and footer leave no room for the body.
	ErrPageTooSmall = errors.New("layout: page too small for header and footer")
	// ErrPaginatorUsed indicates Run was called twice on the same paginator.
	ErrPaginatorUsed = errors.New("layout: paginator already used")
	// ErrNilDocument indicates a missing document.
	ErrNilDocument = errors.New("layout: nil document")
)

// Box is an element placed on a page. Source is the element's index in the
// document body, or -1 for header and footer boxes. Table fragments record the
// half-open row span [RowStart, RowEnd) they carry.
type Box struct {
	Element  document.Element
	Source   int
	RowStart int
	RowEnd   int
	X        float64
	Y        float64
	Width    float64
	Height   float64
}

// Page is one physical page with its header, body and footer boxes.
type Page struct {
	Number int
	Header []Box
	Body   []Box
	Footer []Box
}

func (p *Page) hasContent() bool {
	for _, b := range p.Body {
		if b.Element.Kind() != document.KindPageBreak {
			return true
		}
	}
	return false
}

// Result is a fully paginated document with page tokens resolved.
type Result struct {
	Name         string
	Size         PageSize
	Margins      document.Margins
	ContentWidth float64
	BodyHeight   float64
	Pages        []Page
}

// PageCount returns the number of pages.
func (r Result) PageCount() int { return len(r.Pages) }

// BodyBoxes returns every body box in page order.
func (r Result) BodyBoxes() []Box {
	var out []Box
	for _, p := range r.Pages {
		out = append(out, p.Body...)
	}
	return out
}

// Paginator breaks one document into pages. It is single use.
type Paginator struct {
	size  PageSize
	state State
}

// NewPaginator prepares a paginator for the given page size.
func NewPaginator(size PageSize) *Paginator {
	return &Paginator{size: size}
}

// State reports the current lifecycle stage.
func (p *Paginator) State() State { return p.state }

// Paginate lays out doc on pages of the given size.
func Paginate(doc *document.Document, size PageSize) (Result, error) {
	return NewPaginator(size).Run(doc)
}

// Run measures the header and footer, flows the body across pages and then
// resolves page tokens once the total page count is known.
func (p *Paginator) Run(doc *document.Document) (Result, error) {
	if p.state != Idle {
		return Result{}, ErrPaginatorUsed
	}
	if doc == nil {
		return Result{}, ErrNilDocument
	}
	if !p.size.Valid() {
		return Result{}, fmt.Errorf("%w: %s", ErrPageTooSmall, p.size)
	}

	p.state = Measuring
	m := doc.Margins
	width := p.size.Width - m.Left - m.Right
	if width <= 0 {
		return Result{}, fmt.Errorf("%w: no horizontal space on %s", ErrPageTooSmall, p.size)
	}
	headerH := measureAll(doc.Header, width)
	footerH := measureAll(doc.Footer, width)
	bodyH := p.size.Height - m.Top - m.Bottom - headerH - footerH
	if bodyH <= 0 {
		return Result{}, fmt.Errorf("%w: %s leaves %.1fpt", ErrPageTooSmall, p.size, bodyH)
	}

	p.state = Paginating
	f := &flow{
		left:    m.Left,
		top:     m.Top + headerH,
		width:   width,
		avail:   bodyH,
		current: &Page{Number: 1},
	}
	for i, el := range doc.Body {
		f.place(i, el)
	}
	f.close()

	res := Result{
		Name:         doc.Name,
		Size:         p.size,
		Margins:      m,
		ContentWidth: width,
		BodyHeight:   bodyH,
		Pages:        f.pages,
	}
	total := len(res.Pages)
	footerTop := p.size.Height - m.Bottom - footerH
	for i := range res.Pages {
		page := &res.Pages[i]
		page.Header = stack(doc.Header, m.Left, m.Top, width, page.Number, total)
		page.Footer = stack(doc.Footer, m.Left, footerTop, width, page.Number, total)
		for j := range page.Body {
			page.Body[j].Element = ResolveTokens(page.Body[j].Element, page.Number, total)
		}
	}
	p.state = Complete
	return res, nil
}

func measureAll(elems []document.Element, width float64) float64 {
	var h float64
	for _, el := range elems {
		h += Measure(el, width)
	}
	return h
}

func stack(elems []document.Element, x, y, width float64, page, total int) []Box {
	boxes := make([]Box, 0, len(elems))
	for _, el := range elems {
		h := Measure(el, width)
		boxes = append(boxes, Box{Element: ResolveTokens(el, page, total), Source: -1, X: x, Y: y, Width: width, Height: h})
		y += h
	}
	return boxes
}

type flow struct {
	left, top, width, avail float64

	pages        []Page
	current      *Page
	used         float64
	breakPending bool
	breakForced  bool
}

func (f *flow) newPage() {
	f.pages = append(f.pages, *f.current)
	f.current = &Page{Number: len(f.pages) + 1}
	f.used = 0
}

func (f *flow) close() {
	f.pages = append(f.pages, *f.current)
}

// resolveBreak turns a pending break into a new page once something follows it.
func (f *flow) resolveBreak() {
	if !f.breakPending {
		return
	}
	if f.breakForced || f.current.hasContent() {
		f.newPage()
	}
	f.breakPending, f.breakForced = false, false
}

func (f *flow) put(b Box) {
	b.X = f.left
	b.Y = f.top + f.used
	b.Width = f.width
	f.current.Body = append(f.current.Body, b)
	f.used += b.Height
}

func (f *flow) place(idx int, el document.Element) {
	f.resolveBreak()
	if pb, ok := el.(document.PageBreak); ok {
		f.put(Box{Element: el, Source: idx})
		f.breakPending, f.breakForced = true, pb.Force
		return
	}
	if tbl, ok := el.(document.Table); ok && len(tbl.Rows) > 0 {
		f.placeTable(idx, tbl)
		return
	}
	h := Measure(el, f.width)
	if f.used+h > f.avail && f.current.hasContent() {
		f.newPage()
	}
	// An element taller than a fresh page is placed alone and overflows.
	f.put(Box{Element: el, Source: idx, Height: h})
}

// placeTable splits a table across pages. Every fragment carries the column
// headers; fragments after the first are marked Continued.
func (f *flow) placeTable(idx int, tbl document.Table) {
	headerH, rowH := TableHeights(tbl, f.width)
	start := 0
	for start < len(tbl.Rows) {
		used := headerH
		fit := 0
		for start+fit < len(tbl.Rows) && f.used+used+rowH[start+fit] <= f.avail {
			used += rowH[start+fit]
			fit++
		}
		if fit == 0 {
			if f.current.hasContent() {
				f.newPage()
				continue
			}
			fit = 1
			used += rowH[start]
		}
		frag := tbl.Slice(start, start+fit, start > 0)
		f.put(Box{Element: frag, Source: idx, RowStart: start, RowEnd: start + fit, Height: used})
		start += fit
		if start < len(tbl.Rows) {
			f.newPage()
		}
	}
}
