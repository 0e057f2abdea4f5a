// Package layout measures document elements and breaks a document body into
// physical pages.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

// PageSize is a physical page in points (1/72 inch).
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

var (
	A4     = PageSize{Name: "A4", Width: 595.28, Height: 841.89}
	A5     = PageSize{Name: "A5", Width: 419.53, Height: 595.28}
	Letter = PageSize{Name: "Letter", Width: 612, Height: 792}
	Legal  = PageSize{Name: "Legal", Width: 612, Height: 1008}
)

// DefaultPageSize is used when callers do not pick one.
var DefaultPageSize = A4

var presets = map[string]PageSize{
	"A4":     A4,
	"A5":     A5,
	"LETTER": Letter,
	"LEGAL":  Legal,
}

// ErrUnknownPageSize indicates an unsupported page size name.
var ErrUnknownPageSize = errors.New("layout: unknown page size")

// ParsePageSize resolves a preset name. A "-landscape" suffix rotates the page.
func ParsePageSize(name string) (PageSize, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return DefaultPageSize, nil
	}
	landscape := false
	if trimmed, ok := strings.CutSuffix(key, "-LANDSCAPE"); ok {
		key, landscape = trimmed, true
	}
	size, ok := presets[key]
	if !ok {
		return PageSize{}, fmt.Errorf("%w: %q", ErrUnknownPageSize, name)
	}
	if landscape {
		return size.Landscape(), nil
	}
	return size, nil
}

// Landscape returns the page with the long edge horizontal.
func (p PageSize) Landscape() PageSize {
	if p.Width >= p.Height {
		return p
	}
	return PageSize{Name: p.Name + " landscape", Width: p.Height, Height: p.Width}
}

// IsLandscape reports whether the page is wider than tall.
func (p PageSize) IsLandscape() bool {
	return p.Width > p.Height
}

// Valid reports whether both dimensions are positive.
func (p PageSize) Valid() bool {
	return p.Width > 0 && p.Height > 0
}

// Inches converts the page dimensions, as Gotenberg expects them.
func (p PageSize) Inches() (w, h float64) {
	return p.Width / 72, p.Height / 72
}

func (p PageSize) String() string {
	return fmt.Sprintf("%s (%.0fx%.0fpt)", p.Name, p.Width, p.Height)
}
