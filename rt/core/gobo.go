package core

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io/fs"
	"math"

	_ "golang.org/x/image/bmp"
)

const GoboSize = 256

// ProceduralGobo draws a radial cone mask: opaque inside the umbra, a
// square-root falloff across the penumbra and black outside the cone.
func ProceduralGobo(umbra, penumbra float32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, GoboSize, GoboSize))
	total := float64(umbra + penumbra)
	center := float64(GoboSize-1) / 2

	for y := 0; y < GoboSize; y++ {
		for x := 0; x < GoboSize; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			dist := math.Sqrt(dx*dx + dy*dy)
			angle := total * dist / 127

			var v uint8
			switch {
			case angle > total:
				v = 0
			case angle > float64(umbra):
				f := 1 - (angle-float64(umbra))/float64(penumbra)
				v = uint8(255 * math.Sqrt(math.Max(f, 0)))
			default:
				v = 255
			}
			img.SetRGBA(x, y, color.RGBA{v, v, v, v})
		}
	}
	return img
}

// LoadGobo decodes a gobo image (BMP or PNG) from fsys.
func LoadGobo(fsys fs.FS, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open gobo %q: %w", name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode gobo %q: %w", name, err)
	}
	return img, nil
}

// WhiteImage is the default texture for untextured meshes and light cans.
func WhiteImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

// BeamImage fades from the cone axis to its edge.
func BeamImage() *image.RGBA {
	const w, h = 64, 64
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := math.Abs(float64(x)/(w-1)*2 - 1)
			v := uint8(255 * (1 - u*u))
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// FlatNormalImage encodes an unperturbed tangent-space normal.
func FlatNormalImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = 128
		img.Pix[i+1] = 128
		img.Pix[i+2] = 255
		img.Pix[i+3] = 255
	}
	return img
}
