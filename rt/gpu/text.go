package gpu

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type textVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

type glyphInfo struct {
	UVMin [2]float32
	UVMax [2]float32
	Size  [2]float32
	Off   [2]float32
	Adv   float32
}

// fontAtlas rasterizes printable ASCII into a single alpha texture.
type fontAtlas struct {
	Image  *image.Alpha
	Glyphs map[rune]glyphInfo
	Face   font.Face
}

const atlasSize = 512

func newFontAtlas(size float64) (*fontAtlas, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize))
	glyphs := make(map[rune]glyphInfo)

	x, y := 2, 2
	rowHeight := 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()
		if x+w >= atlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= atlasSize {
			break
		}
		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		glyphs[r] = glyphInfo{
			UVMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			UVMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			Size:  [2]float32{float32(w), float32(h)},
			Off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			Adv:   float32(adv) / 64,
		}
		x += w + 4
		rowHeight = max(rowHeight, h)
	}
	return &fontAtlas{Image: atlas, Glyphs: glyphs, Face: face}, nil
}

// lineHeight is in pixels.
func (a *fontAtlas) lineHeight() float32 {
	return float32(a.Face.Metrics().Height.Ceil())
}

// vertices lays out lines top-left in pixels from (x, y) and returns
// triangles in clip space for a screen of the given size.
func (a *fontAtlas) vertices(lines []string, x, y float32, color [4]float32, screenW, screenH int) []textVertex {
	sw, sh := float32(screenW), float32(screenH)
	ascent := float32(a.Face.Metrics().Ascent.Ceil())
	out := make([]textVertex, 0, 64)

	posY := y + ascent
	for _, line := range lines {
		posX := x
		for _, r := range line {
			g, ok := a.Glyphs[r]
			if !ok {
				continue
			}
			x0 := (posX+g.Off[0])/sw*2 - 1
			y0 := 1 - (posY+g.Off[1])/sh*2
			x1 := (posX+g.Off[0]+g.Size[0])/sw*2 - 1
			y1 := 1 - (posY+g.Off[1]+g.Size[1])/sh*2

			out = append(out,
				textVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.UVMin[0], g.UVMin[1]}, Color: color},
				textVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: color},
				textVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: color},
				textVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UVMax[0], g.UVMin[1]}, Color: color},
				textVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.UVMax[0], g.UVMax[1]}, Color: color},
				textVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UVMin[0], g.UVMax[1]}, Color: color},
			)
			posX += g.Adv
		}
		posY += a.lineHeight()
	}
	return out
}
