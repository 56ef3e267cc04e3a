// Package text rasterizes a font face into a glyph atlas and lays out
// strings as textured quads. It does no GL work, so layouts can be checked
// without a context.
package text

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FloatsPerGlyph is the vertex data of one glyph quad: two triangles of
// (x, y, u, v).
const FloatsPerGlyph = 6 * 4

// Glyph is one character's placement in the atlas and its metrics, all in
// pixels.
type Glyph struct {
	AtlasX, AtlasY float32 // top-left in the atlas
	Width, Height  float32
	BearingX       float32 // offset from the pen position
	BearingY       float32 // baseline to glyph top
	Advance        float32
}

// Atlas is a single-channel glyph sheet for printable ASCII.
type Atlas struct {
	Image  *image.Alpha
	Glyphs map[rune]Glyph
}

// LoadFace opens a TrueType/OpenType file at the given pixel size. An empty
// path returns the built-in 7x13 bitmap face.
func LoadFace(path string, pixels int) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(pixels), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

// Rasterize packs ASCII 32..126 of face into rows of an atlas width pixels
// wide, growing the height to fit.
func Rasterize(face font.Face, width int) (*Atlas, error) {
	const padding = 1

	type placed struct {
		r       rune
		dr      image.Rectangle
		mask    image.Image
		maskp   image.Point
		advance fixed.Int26_6
	}
	var glyphs []placed
	for r := rune(32); r <= 126; r++ {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		glyphs = append(glyphs, placed{r, dr, mask, maskp, advance})
	}
	if len(glyphs) == 0 {
		return nil, fmt.Errorf("font face has no printable ASCII glyphs")
	}

	// shelf packing; positions are computed once and reused for drawing
	pos := make([]image.Point, len(glyphs))
	x, y, row := 0, 0, 0
	for i, g := range glyphs {
		w, h := g.dr.Dx(), g.dr.Dy()
		if w == 0 || h == 0 || g.mask == nil {
			continue
		}
		if w > width {
			return nil, fmt.Errorf("glyph %q is %dpx wide, atlas is %dpx", g.r, w, width)
		}
		if x+w > width {
			x, y, row = 0, y+row+padding, 0
		}
		pos[i] = image.Pt(x, y)
		x += w + padding
		row = max(row, h)
	}

	atlas := &Atlas{
		Image:  image.NewAlpha(image.Rect(0, 0, width, max(y+row, 1))),
		Glyphs: make(map[rune]Glyph, len(glyphs)),
	}
	for i, g := range glyphs {
		glyph := Glyph{
			BearingX: float32(g.dr.Min.X),
			BearingY: float32(-g.dr.Min.Y),
			Advance:  float32(math.Round(float64(g.advance) / 64)),
		}
		if w, h := g.dr.Dx(), g.dr.Dy(); w > 0 && h > 0 && g.mask != nil {
			p := pos[i]
			draw.Draw(atlas.Image, image.Rect(p.X, p.Y, p.X+w, p.Y+h), g.mask, g.maskp, draw.Src)
			glyph.AtlasX, glyph.AtlasY = float32(p.X), float32(p.Y)
			glyph.Width, glyph.Height = float32(w), float32(h)
		}
		atlas.Glyphs[g.r] = glyph
	}
	return atlas, nil
}

// glyph returns the metrics for r, substituting a space for characters the
// atlas lacks.
func (a *Atlas) glyph(r rune) (Glyph, bool) {
	if g, ok := a.Glyphs[r]; ok {
		return g, true
	}
	g := a.Glyphs[' ']
	return Glyph{Advance: g.Advance}, false
}

// Measure returns the width and the tallest glyph height of s at scale.
func (a *Atlas) Measure(s string, scale float32) (float32, float32) {
	var w, h float32
	for _, r := range s {
		g, _ := a.glyph(r)
		w += g.Advance * scale
		h = max(h, g.Height*scale)
	}
	return w, h
}

// Layout appends quads for each line to dst, the first baseline at (x, y)
// and each following one lineStep lower. Coordinates are pixels with y
// growing downwards; uv is normalized to the atlas.
func (a *Atlas) Layout(dst []float32, lines []string, x, y, lineStep, scale float32) []float32 {
	aw := float32(a.Image.Rect.Dx())
	ah := float32(a.Image.Rect.Dy())

	for _, line := range lines {
		pen := x
		for _, r := range line {
			g, ok := a.glyph(r)
			if ok && g.Width > 0 {
				x0 := pen + g.BearingX*scale
				y0 := y - g.BearingY*scale
				x1 := x0 + g.Width*scale
				y1 := y0 + g.Height*scale
				u0, v0 := g.AtlasX/aw, g.AtlasY/ah
				u1, v1 := (g.AtlasX+g.Width)/aw, (g.AtlasY+g.Height)/ah
				dst = append(dst,
					x0, y1, u0, v1,
					x0, y0, u0, v0,
					x1, y0, u1, v0,
					x0, y1, u0, v1,
					x1, y0, u1, v0,
					x1, y1, u1, v1,
				)
			}
			pen += g.Advance * scale
		}
		y += lineStep
	}
	return dst
}
