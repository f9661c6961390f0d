package services

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// CoverEntropy redimensionne img pour couvrir w×h puis rogne l'excédent en
// retirant, bande par bande, le bord le moins détaillé (entropie de l'histogramme
// des niveaux de gris la plus faible).
func CoverEntropy(img image.Image, w, h int) *image.NRGBA {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	scale := math.Max(float64(w)/float64(sw), float64(h)/float64(sh))
	rw := max(w, int(math.Ceil(float64(sw)*scale)))
	rh := max(h, int(math.Ceil(float64(sh)*scale)))

	resized := imaging.Resize(img, rw, rh, imaging.Lanczos)
	rect := entropyCropRect(imaging.Grayscale(resized), w, h)
	return imaging.Crop(resized, rect)
}

// entropyCropRect calcule la fenêtre w×h retenue dans gray (origine 0,0).
func entropyCropRect(gray *image.NRGBA, w, h int) image.Rectangle {
	x0, y0 := 0, 0
	x1, y1 := gray.Bounds().Dx(), gray.Bounds().Dy()

	for x1-x0 > w {
		strip := stripWidth(x1-x0, w)
		left := regionEntropy(gray, image.Rect(x0, y0, x0+strip, y1))
		right := regionEntropy(gray, image.Rect(x1-strip, y0, x1, y1))
		switch {
		case left < right:
			x0 += strip
		case right < left:
			x1 -= strip
		default:
			half := strip / 2
			x0 += half
			x1 -= strip - half
		}
	}

	for y1-y0 > h {
		strip := stripWidth(y1-y0, h)
		top := regionEntropy(gray, image.Rect(x0, y0, x1, y0+strip))
		bottom := regionEntropy(gray, image.Rect(x0, y1-strip, x1, y1))
		switch {
		case top < bottom:
			y0 += strip
		case bottom < top:
			y1 -= strip
		default:
			half := strip / 2
			y0 += half
			y1 -= strip - half
		}
	}

	return image.Rect(x0, y0, x1, y1)
}

// stripWidth : au plus 10% de la dimension courante, jamais plus que l'excédent.
func stripWidth(current, target int) int {
	return min(current-target, max(1, current/10))
}

func regionEntropy(gray *image.NRGBA, r image.Rectangle) float64 {
	var hist [256]int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := r.Min.X; x < r.Max.X; x++ {
			hist[row[x*4]]++
		}
	}

	total := float64(r.Dx() * r.Dy())
	if total == 0 {
		return 0
	}
	var e float64
	for _, n := range hist {
		if n == 0 {
			continue
		}
		p := float64(n) / total
		e -= p * math.Log2(p)
	}
	return e
}
