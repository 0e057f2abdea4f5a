package layout

import (
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// ResolveTokens substitutes {PAGE} and {PAGES} in every string of el. Elements
// are values, so the original is left untouched.
func ResolveTokens(el document.Element, page, total int) document.Element {
	r := strings.NewReplacer(
		document.PagePlaceholder, strconv.Itoa(page),
		document.PagesPlaceholder, strconv.Itoa(total),
	)
	return rewriteStrings(el, r.Replace)
}

// StripTokens removes page tokens, collapsing "Page {PAGE} of {PAGES}" style
// captions for targets that number pages natively.
func StripTokens(el document.Element) document.Element {
	return rewriteStrings(el, func(s string) string {
		if !document.HasPageTokens(s) {
			return s
		}
		if s == document.PageNumberText {
			return ""
		}
		return strings.TrimSpace(strings.NewReplacer(document.PagePlaceholder, "", document.PagesPlaceholder, "").Replace(s))
	})
}

func rewriteStrings(el document.Element, fn func(string) string) document.Element {
	switch e := el.(type) {
	case document.Text:
		e.Content = fn(e.Content)
		return e
	case document.Table:
		cols := make([]document.Column, len(e.Columns))
		for i, c := range e.Columns {
			c.Header = fn(c.Header)
			cols[i] = c
		}
		rows := make([][]string, len(e.Rows))
		for i, row := range e.Rows {
			rows[i] = mapStrings(row, fn)
		}
		e.Columns, e.Rows = cols, rows
		return e
	case document.KeyValueRow:
		e.Pairs = mapPairs(e.Pairs, fn)
		return e
	case document.ReportHeaderBlock:
		e.CompanyName, e.Title, e.Subtitle = fn(e.CompanyName), fn(e.Title), fn(e.Subtitle)
		return e
	case document.ThreeColumnHeader:
		e.Left, e.Center, e.Right = fn(e.Left), fn(e.Center), fn(e.Right)
		return e
	case document.TwoColumnSection:
		e.Left, e.Right = mapPairs(e.Left, fn), mapPairs(e.Right, fn)
		return e
	case document.SignatureSection:
		e.Labels, e.Names = mapStrings(e.Labels, fn), mapStrings(e.Names, fn)
		return e
	case document.Image:
		e.AltText = fn(e.AltText)
		return e
	case document.Line, document.Spacing, document.PageBreak:
		return e
	default:
		return el
	}
}

func mapStrings(in []string, fn func(string) string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fn(s)
	}
	return out
}

func mapPairs(in []document.KeyValue, fn func(string) string) []document.KeyValue {
	if in == nil {
		return nil
	}
	out := make([]document.KeyValue, len(in))
	for i, kv := range in {
		out[i] = document.KeyValue{Key: fn(kv.Key), Value: fn(kv.Value)}
	}
	return out
}

// HasTokens reports whether any string in el carries a page token.
func HasTokens(el document.Element) bool {
	found := false
	rewriteStrings(el, func(s string) string {
		found = found || document.HasPageTokens(s)
		return s
	})
	return found
}
