package services

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
)

// halfNoisy : moitié gauche blanche, moitié droite texturée.
func halfNoisy(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.White)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			v := uint8((x*31 + y*17) ^ (x * y))
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestEntropyCropRect_KeepsDetailedSide(t *testing.T) {
	rect := entropyCropRect(imaging.Grayscale(halfNoisy(200, 100)), 100, 100)
	assert.Equal(t, image.Rect(100, 0, 200, 100), rect)
}

func TestEntropyCropRect_UniformImageIsCentered(t *testing.T) {
	rect := entropyCropRect(imaging.Grayscale(imaging.New(100, 200, color.White)), 100, 100)
	assert.Equal(t, image.Rect(0, 49, 100, 149), rect)
}

func TestCoverEntropy_ExactSize(t *testing.T) {
	for _, size := range [][2]int{{100, 100}, {50, 80}, {300, 120}} {
		out := CoverEntropy(halfNoisy(200, 100), size[0], size[1])
		assert.Equal(t, size[0], out.Bounds().Dx())
		assert.Equal(t, size[1], out.Bounds().Dy())
	}
}

func TestStripWidth(t *testing.T) {
	assert.Equal(t, 20, stripWidth(200, 100))
	assert.Equal(t, 8, stripWidth(108, 100))
	assert.Equal(t, 1, stripWidth(5, 4))
}
