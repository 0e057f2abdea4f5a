package render

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
)

// DefaultDPI is used when an ImageRenderer has no DPI set.
const DefaultDPI = 96

var (
	inkColor   = color.Gray{Y: 0}
	gridColor  = color.Gray{Y: 0x99}
	headerFill = color.Gray{Y: 0xe6}
)

// variant selects one of the Go Mono faces.
type variant int

const (
	regular variant = iota
	bold
	italic
	boldItalic
)

func weight(b bool) variant {
	if b {
		return bold
	}
	return regular
}

func variantOf(st document.TextStyle) variant {
	v := weight(st.Bold)
	if st.Italic {
		v += italic
	}
	return v
}

// Go Mono advances every glyph by 0.6em, matching layout.CharWidthFactor. It
// covers Latin (including Latin-1 and Latin Extended-A), Greek and Cyrillic;
// runes outside the face are drawn as '?'.
var monoFonts = sync.OnceValues(func() ([4]*opentype.Font, error) {
	var out [4]*opentype.Font
	for i, ttf := range [][]byte{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return out, err
		}
		out[i] = f
	}
	return out, nil
})

// ImageRenderer rasterizes each page into a PNG.
type ImageRenderer struct {
	DPI int
}

// NewImageRenderer returns a renderer at the given DPI.
func NewImageRenderer(dpi int) ImageRenderer {
	return ImageRenderer{DPI: dpi}
}

// Format implements Renderer.
func (ImageRenderer) Format() Format { return FormatPNG }

// Render implements Renderer.
func (r ImageRenderer) Render(doc *document.Document, size layout.PageSize) Result {
	return guard(FormatPNG, func() Result {
		lay, failed := paginate(FormatPNG, doc, size)
		if failed != nil {
			return *failed
		}
		return r.RenderLayout(lay)
	})
}

// RenderLayout rasterizes an already paginated document.
func (r ImageRenderer) RenderLayout(lay layout.Result) Result {
	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	scale := float64(dpi) / 72
	fonts, err := monoFonts()
	if err != nil {
		return Failed(FormatPNG, err)
	}
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	pages := make([][]byte, 0, len(lay.Pages))
	for _, page := range lay.Pages {
		c := newCanvas(lay.Size, scale, fonts)
		for _, boxes := range [][]layout.Box{page.Header, page.Body, page.Footer} {
			for _, b := range boxes {
				c.drawBox(b)
			}
		}
		if c.err != nil {
			return Failed(FormatPNG, c.err)
		}
		var buf bytes.Buffer
		if err := enc.Encode(&buf, c.img); err != nil {
			return Failed(FormatPNG, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return Result{Format: FormatPNG, Pages: pages, PageCount: len(pages)}
}

type faceKey struct {
	v    variant
	size float64
}

type canvas struct {
	img   *image.RGBA
	scale float64
	fonts [4]*opentype.Font
	faces map[faceKey]font.Face
	err   error
}

func newCanvas(size layout.PageSize, scale float64, fonts [4]*opentype.Font) *canvas {
	w := int(math.Ceil(size.Width * scale))
	h := int(math.Ceil(size.Height * scale))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &canvas{img: img, scale: scale, fonts: fonts, faces: make(map[faceKey]font.Face)}
}

// face returns the face for v at size points, sized to the canvas resolution.
func (c *canvas) face(v variant, size float64) font.Face {
	key := faceKey{v: v, size: size}
	if f, ok := c.faces[key]; ok {
		return f
	}
	f, err := opentype.NewFace(c.fonts[v], &opentype.FaceOptions{Size: size * c.scale, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		if c.err == nil {
			c.err = err
		}
		return nil
	}
	c.faces[key] = f
	return f
}

func (c *canvas) px(v float64) int {
	return int(math.Round(v * c.scale))
}

func (c *canvas) fill(x, y, w, h float64, col color.Color) {
	r := image.Rect(c.px(x), c.px(y), c.px(x+w), c.px(y+h))
	if r.Dy() == 0 {
		r.Max.Y = r.Min.Y + 1
	}
	if r.Dx() == 0 {
		r.Max.X = r.Min.X + 1
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) hline(x, y, w, thickness float64, col color.Color) {
	c.fill(x, y, w, thickness, col)
}

func (c *canvas) vline(x, y, h float64, col color.Color) {
	r := image.Rect(c.px(x), c.px(y), c.px(x)+1, c.px(y+h))
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// text draws a single line with its top-left corner at (x, y). Each rune sits
// in a cell of size*CharWidthFactor so drawn widths match measured widths.
func (c *canvas) text(s string, x, y, size float64, v variant) {
	face := c.face(v, size)
	if face == nil {
		return
	}
	runes := drawable(face, s)
	if len(runes) == 0 {
		return
	}
	m := face.Metrics()
	lineH := layout.LineHeight(size) * c.scale
	ascent, descent := m.Ascent.Round(), m.Descent.Round()
	baseline := fixed.I(int(math.Round(y*c.scale+(lineH-float64(ascent+descent))/2)) + ascent)
	cell := size * layout.CharWidthFactor * c.scale
	d := font.Drawer{Dst: c.img, Src: image.NewUniform(inkColor), Face: face}
	for i, r := range runes {
		if r == ' ' {
			continue
		}
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(math.Round((x*c.scale + float64(i)*cell) * 64)), Y: baseline}
		d.DrawString(string(r))
	}
}

func (c *canvas) alignedText(s string, x, y, width, size float64, align document.Alignment, v variant) {
	s = layout.Truncate(s, size, width)
	switch align {
	case document.AlignCenter:
		x += (width - layout.TextWidth(s, size)) / 2
	case document.AlignRight:
		x += width - layout.TextWidth(s, size)
	}
	c.text(s, x, y, size, v)
}

// drawable maps s to the runes the face can draw: tabs become spaces, control
// characters are dropped and runes without a glyph become '?'.
func drawable(face font.Face, s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r == '\t':
			out = append(out, ' ')
		case r < 0x20 || r == 0x7f:
		default:
			if _, ok := face.GlyphAdvance(r); !ok {
				r = '?'
			}
			out = append(out, r)
		}
	}
	return out
}

func (c *canvas) drawBox(b layout.Box) {
	switch e := b.Element.(type) {
	case document.Text:
		size := e.Style.FontSize()
		y := b.Y
		for _, line := range layout.Wrap(e.Content, size, b.Width) {
			c.alignedText(line, b.X, y, b.Width, size, e.Align, variantOf(e.Style))
			y += layout.LineHeight(size)
		}
	case document.Table:
		c.drawTable(e, b)
	case document.KeyValueRow:
		c.drawPairs(e.Pairs, b.X, b.Y+2, b.Width, layout.KeyValueSize(e.FontSize), weight(e.Bold))
	case document.Line:
		t := layout.RuleThickness(e)
		c.hline(b.X, b.Y+(b.Height-t)/2, b.Width, t, inkColor)
	case document.Spacing, document.PageBreak:
	case document.ReportHeaderBlock:
		y := b.Y
		c.alignedText(e.CompanyName, b.X, y, b.Width, layout.ReportCompanySize, document.AlignCenter, bold)
		y += layout.LineHeight(layout.ReportCompanySize)
		c.alignedText(e.Title, b.X, y, b.Width, layout.ReportTitleSize, document.AlignCenter, bold)
		y += layout.LineHeight(layout.ReportTitleSize)
		if e.Subtitle != "" {
			c.alignedText(e.Subtitle, b.X, y, b.Width, layout.ReportSubtitleSize, document.AlignCenter, regular)
		}
	case document.ThreeColumnHeader:
		size := layout.KeyValueSize(e.FontSize)
		third := b.Width / 3
		c.alignedText(e.Left, b.X, b.Y, third, size, document.AlignLeft, regular)
		c.alignedText(e.Center, b.X+third, b.Y, third, size, document.AlignCenter, regular)
		c.alignedText(e.Right, b.X+2*third, b.Y, third, size, document.AlignRight, regular)
	case document.TwoColumnSection:
		size := layout.KeyValueSize(e.FontSize)
		half := b.Width / 2
		for i, kv := range e.Left {
			c.alignedText(kv.Key+": "+kv.Value, b.X, b.Y+float64(i)*layout.LineHeight(size), half, size, document.AlignLeft, regular)
		}
		for i, kv := range e.Right {
			c.alignedText(kv.Key+": "+kv.Value, b.X+half, b.Y+float64(i)*layout.LineHeight(size), half, size, document.AlignLeft, regular)
		}
	case document.SignatureSection:
		c.drawSignatures(e, b)
	case document.Image:
		c.drawImage(e, b)
	default:
	}
}

func (c *canvas) drawPairs(pairs []document.KeyValue, x, y, width, size float64, v variant) {
	if len(pairs) == 0 {
		return
	}
	slot := width / float64(len(pairs))
	for i, kv := range pairs {
		c.alignedText(kv.Key+": "+kv.Value, x+float64(i)*slot, y, slot, size, document.AlignLeft, v)
	}
}

func (c *canvas) drawTable(t document.Table, b layout.Box) {
	size := t.EffectiveFontSize()
	widths := t.ColumnWidths(b.Width)
	y := b.Y
	drawRow := func(cells []string, header bool) {
		h := layout.RowHeight(cells, widths, size)
		if header {
			c.fill(b.X, y, b.Width, h, headerFill)
		}
		lines := layout.CellLines(cells, widths, size)
		x := b.X
		for i, cl := range lines {
			ty := y + layout.CellPadding
			for _, line := range cl {
				c.alignedText(line, x+layout.CellPadding, ty, widths[i]-2*layout.CellPadding, size, t.Columns[i].Align, weight(header))
				ty += layout.LineHeight(size)
			}
			c.vline(x, y, h, gridColor)
			x += widths[i]
		}
		c.vline(b.X+b.Width, y, h, gridColor)
		c.hline(b.X, y, b.Width, 0, gridColor)
		y += h
	}
	drawRow(t.HeaderTexts(), true)
	for _, row := range t.Rows {
		drawRow(row, false)
	}
	c.hline(b.X, y, b.Width, 0, gridColor)
}

func (c *canvas) drawSignatures(s document.SignatureSection, b layout.Box) {
	if len(s.Labels) == 0 {
		return
	}
	size := document.DefaultFontSize
	slot := b.Width / float64(len(s.Labels))
	lh := layout.LineHeight(size)
	for i, label := range s.Labels {
		x := b.X + float64(i)*slot
		c.alignedText(label, x, b.Y, slot, size, document.AlignCenter, regular)
		ruleY := b.Y + lh + layout.SignatureGap - 2
		c.hline(x+slot*0.1, ruleY, slot*0.8, 0.5, inkColor)
		if i < len(s.Names) {
			c.alignedText(s.Names[i], x, b.Y+lh+layout.SignatureGap, slot, size, document.AlignCenter, regular)
		}
	}
}

// drawImage decodes and scales an embedded image; undecodable data is skipped.
func (c *canvas) drawImage(img document.Image, b layout.Box) {
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return
	}
	w, h := layout.ImageSize(img, b.Width)
	x := b.X
	switch img.Align {
	case document.AlignCenter:
		x += (b.Width - w) / 2
	case document.AlignRight:
		x += b.Width - w
	}
	dst := image.Rect(c.px(x), c.px(b.Y), c.px(x+w), c.px(b.Y+h))
	draw.CatmullRom.Scale(c.img, dst, src, src.Bounds(), draw.Over, nil)
}
