package core

import (
	"bytes"
	"image"
	"image/color"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestProceduralGobo(t *testing.T) {
	img := ProceduralGobo(20, 10)
	require.Equal(t, image.Rect(0, 0, GoboSize, GoboSize), img.Bounds())

	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(127, 127), "umbra")
	assert.Equal(t, color.RGBA{0, 0, 0, 0}, img.RGBAAt(0, 0), "outside the cone")

	band := img.RGBAAt(233, 127).R
	assert.Greater(t, band, uint8(0), "penumbra")
	assert.Less(t, band, uint8(255), "penumbra")

	// falloff is monotonic towards the rim
	assert.GreaterOrEqual(t, img.RGBAAt(225, 127).R, img.RGBAAt(240, 127).R)
}

func TestProceduralGoboWithoutPenumbra(t *testing.T) {
	img := ProceduralGobo(30, 0)
	for x := 127; x < GoboSize; x++ {
		v := img.RGBAAt(x, 127).R
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d has value %d, expected a hard edge", x, v)
		}
	}
}

func TestLoadGoboBMP(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	src.SetRGBA(1, 1, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, src))

	fsys := fstest.MapFS{"gobos/star.bmp": {Data: buf.Bytes()}}
	img, err := LoadGobo(fsys, "gobos/star.bmp")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	r, _, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)

	_, err = LoadGobo(fsys, "gobos/none.bmp")
	assert.Error(t, err)
}

func TestBeamGeometry(t *testing.T) {
	desc := LightDesc{Umbra: 20, Penumbra: 10, Color: Color{10, 20, 30}}
	verts := BeamGeometry(&desc)
	require.Len(t, verts, BeamSlices*3)

	r := float32(2.5881905) // 10 * sin(15deg)
	for i := 0; i < len(verts); i += 3 {
		apex := verts[i]
		assert.Equal(t, uint8(0x20), apex.Color[3])
		assert.Equal(t, uint8(10), apex.Color[0])
		assert.Equal(t, float32(0), apex.Pos.Len())

		for _, rim := range verts[i+1 : i+3] {
			assert.Equal(t, uint8(0), rim.Color[3])
			assert.Equal(t, float32(BeamDistance), rim.Pos.Z())
			assert.InDelta(t, r, rim.Pos.Vec2().Len(), 1e-4)
			assert.Equal(t, float32(1), rim.UV.Y())
		}
	}

	// first and last horizontal slices are symmetric about the axis
	assert.InDelta(t, -verts[1].Pos.Y(), verts[len(verts)-5].Pos.Y(), 1e-5)
}
