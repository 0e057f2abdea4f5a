package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

func bigTable(rows int) document.Table {
	t := document.Table{Columns: []document.Column{
		{Header: "Code", Weight: 1},
		{Header: "Name", Weight: 3},
		{Header: "Amount", Weight: 2, Align: document.AlignRight},
	}}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, []string{fmt.Sprintf("C%03d", i), "Customer", "1,000.00"})
	}
	return t
}

func testDoc(body ...document.Element) *document.Document {
	return document.NewBuilder("Test").
		Header(document.ReportHeaderBlock{CompanyName: "Acme", Title: "List"}).
		Body(body...).
		Footer(document.Text{Content: document.PageNumberText}).
		MustBuild()
}

func TestParsePageSize(t *testing.T) {
	got, err := ParsePageSize("letter")
	require.NoError(t, err)
	assert.Equal(t, Letter, got)

	got, err = ParsePageSize("a4-landscape")
	require.NoError(t, err)
	assert.True(t, got.IsLandscape())
	assert.Equal(t, A4.Height, got.Width)

	got, err = ParsePageSize("")
	require.NoError(t, err)
	assert.Equal(t, A4, got)

	_, err = ParsePageSize("B5")
	assert.ErrorIs(t, err, ErrUnknownPageSize)
}

func TestWrapRespectsWidth(t *testing.T) {
	lines := Wrap("the quick brown fox jumps over the lazy dog", 10, 60)
	require.NotEmpty(t, lines)
	for _, l := range lines {
		assert.LessOrEqual(t, TextWidth(l, 10), 60.0, l)
	}
	assert.Equal(t, []string{"abcdefghij", "klm"}, Wrap("abcdefghijklm", 10, 60))
	assert.Equal(t, []string{"a", "", "b"}, Wrap("a\n\nb", 10, 100))
	assert.Equal(t, "abc...", Truncate("abcdefghijkl", 10, 36))
}

func TestPaginatorStates(t *testing.T) {
	p := NewPaginator(A4)
	assert.Equal(t, Idle, p.State())
	_, err := p.Run(testDoc(document.Text{Content: "hello"}))
	require.NoError(t, err)
	assert.Equal(t, Complete, p.State())
	_, err = p.Run(testDoc())
	assert.ErrorIs(t, err, ErrPaginatorUsed)
}

func TestPaginateSplitsTableAndRepeatsHeader(t *testing.T) {
	tbl := bigTable(200)
	res, err := Paginate(testDoc(document.Text{Content: "intro"}, tbl, document.Text{Content: "end"}), A4)
	require.NoError(t, err)
	require.Greater(t, res.PageCount(), 1)

	rows := 0
	fragments := 0
	for _, b := range res.BodyBoxes() {
		frag, ok := b.Element.(document.Table)
		if !ok {
			continue
		}
		fragments++
		assert.Equal(t, tbl.HeaderTexts(), frag.HeaderTexts())
		assert.Equal(t, b.RowStart > 0, frag.Continued)
		assert.Equal(t, tbl.Rows[b.RowStart:b.RowEnd], frag.Rows)
		rows += len(frag.Rows)
	}
	assert.Equal(t, len(tbl.Rows), rows)
	assert.Equal(t, res.PageCount(), fragments)

	for _, page := range res.Pages {
		var used float64
		for _, b := range page.Body {
			used += b.Height
		}
		assert.LessOrEqual(t, used, res.BodyHeight+0.001)
	}
}

func TestPaginateReconstructsBody(t *testing.T) {
	body := []document.Element{
		document.Text{Content: "a"},
		bigTable(120),
		document.PageBreak{},
		document.KeyValueRow{Pairs: []document.KeyValue{{Key: "Total", Value: "1"}}},
		document.Spacing{Height: 500},
		document.Spacing{Height: 500},
		document.SignatureSection{Labels: []string{"Prepared", "Approved"}},
	}
	res, err := Paginate(testDoc(body...), A5)
	require.NoError(t, err)

	seen := map[int]int{}
	last := -1
	for _, b := range res.BodyBoxes() {
		assert.GreaterOrEqual(t, b.Source, last, "boxes stay in body order")
		last = b.Source
		if _, ok := b.Element.(document.Table); ok {
			seen[b.Source] += b.RowEnd - b.RowStart
			continue
		}
		seen[b.Source]++
	}
	for i, el := range body {
		if tbl, ok := el.(document.Table); ok {
			assert.Equal(t, len(tbl.Rows), seen[i])
			continue
		}
		assert.Equal(t, 1, seen[i], "element %d placed once", i)
	}
}

func TestPageBreakStartsNewPage(t *testing.T) {
	res, err := Paginate(testDoc(document.Text{Content: "one"}, document.PageBreak{}, document.Text{Content: "two"}), A4)
	require.NoError(t, err)
	require.Equal(t, 2, res.PageCount())
	assert.Equal(t, "two", res.Pages[1].Body[0].Element.(document.Text).Content)
}

func TestForcedPageBreaksLeaveBlankPages(t *testing.T) {
	plain, err := Paginate(testDoc(document.Text{Content: "one"}, document.PageBreak{}, document.PageBreak{}, document.Text{Content: "two"}), A4)
	require.NoError(t, err)
	assert.Equal(t, 2, plain.PageCount())

	forced, err := Paginate(testDoc(
		document.Text{Content: "one"},
		document.PageBreak{Force: true},
		document.PageBreak{Force: true},
		document.Text{Content: "two"},
	), A4)
	require.NoError(t, err)
	require.Equal(t, 3, forced.PageCount())
	for _, b := range forced.Pages[1].Body {
		assert.Equal(t, document.KindPageBreak, b.Element.Kind())
	}
	assert.Equal(t, "two", forced.Pages[2].Body[0].Element.(document.Text).Content)
}

func TestOversizedElementAlone(t *testing.T) {
	res, err := Paginate(testDoc(
		document.Text{Content: "before"},
		document.Spacing{Height: 5000},
		document.Text{Content: "after"},
	), A4)
	require.NoError(t, err)
	require.Equal(t, 3, res.PageCount())
	require.Len(t, res.Pages[1].Body, 1)
	assert.Equal(t, 1, res.Pages[1].Body[0].Source)
}

func TestPageTokensResolved(t *testing.T) {
	res, err := Paginate(testDoc(bigTable(150)), A4)
	require.NoError(t, err)
	total := res.PageCount()
	for _, page := range res.Pages {
		require.Len(t, page.Footer, 1)
		want := fmt.Sprintf("Page %d of %d", page.Number, total)
		assert.Equal(t, want, page.Footer[0].Element.(document.Text).Content)
	}
}

func TestPageTooSmall(t *testing.T) {
	_, err := Paginate(testDoc(document.Text{Content: "x"}), PageSize{Name: "tiny", Width: 200, Height: 100})
	assert.ErrorIs(t, err, ErrPageTooSmall)
}

func TestStripTokens(t *testing.T) {
	el := StripTokens(document.Text{Content: document.PageNumberText})
	assert.Equal(t, "", el.(document.Text).Content)
	el = StripTokens(document.ThreeColumnHeader{Left: "Printed", Right: "{PAGE}/{PAGES}"})
	assert.Equal(t, "/", el.(document.ThreeColumnHeader).Right)
}

func TestDocumentUntouchedByPagination(t *testing.T) {
	doc := testDoc(bigTable(100))
	_, err := Paginate(doc, A4)
	require.NoError(t, err)
	assert.Equal(t, document.PageNumberText, doc.Footer[0].(document.Text).Content)
	assert.Len(t, doc.Body[0].(document.Table).Rows, 100)
}
