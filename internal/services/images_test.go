package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"testing"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/config"
	"furniro_back_end/internal/models"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeriver(storage ObjectStorage) *ImageDeriver {
	d := NewImageDeriver(storage, config.ImageConfig{MaxBox: 1080, Quality: 80, MaxFiles: 5, MaxSizes: 5, Workers: 2})
	d.newKey = func() string { return "img1" }
	return d
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.White)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func decodedBounds(t *testing.T, data []byte) image.Rectangle {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds()
}

func TestImageDeriver_Derive(t *testing.T) {
	storage := newMemStorage()
	d := newTestDeriver(storage)
	sizes := []models.ImageSize{{Width: 100, Height: 100}, {Width: 200, Height: 200}}

	out, err := d.Derive(context.Background(), []ImageUpload{{
		Filename: "canape.png", ContentType: "image/png", Data: pngBytes(t, 2000, 1000),
	}}, sizes)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "https://cdn.furniro.test/uploads/original/img1.jpeg", out[0].Original)
	assert.Equal(t, []models.ResizedImage{
		{Width: 100, Height: 100, URL: "https://cdn.furniro.test/uploads/100x100/img1.jpeg"},
		{Width: 200, Height: 200, URL: "https://cdn.furniro.test/uploads/200x200/img1.jpeg"},
	}, out[0].Resized)

	assert.Equal(t, 3, storage.puts)
	assert.Equal(t, image.Rect(0, 0, 1080, 540), decodedBounds(t, storage.objects["original/img1.jpeg"]))
	assert.Equal(t, image.Rect(0, 0, 100, 100), decodedBounds(t, storage.objects["100x100/img1.jpeg"]))
	assert.Equal(t, image.Rect(0, 0, 200, 200), decodedBounds(t, storage.objects["200x200/img1.jpeg"]))
}

func TestImageDeriver_SmallImageIsNotUpscaled(t *testing.T) {
	storage := newMemStorage()
	d := newTestDeriver(storage)

	_, err := d.Derive(context.Background(), []ImageUpload{{
		Filename: "petit.png", Data: pngBytes(t, 300, 200),
	}}, []models.ImageSize{{Width: 400, Height: 400}})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 300, 200), decodedBounds(t, storage.objects["original/img1.jpeg"]))
	assert.Equal(t, image.Rect(0, 0, 400, 400), decodedBounds(t, storage.objects["400x400/img1.jpeg"]))
}

func TestImageDeriver_ValidationBeforeUpload(t *testing.T) {
	img := pngBytes(t, 50, 50)
	ok := []models.ImageSize{{Width: 10, Height: 10}}

	cases := []struct {
		name    string
		uploads []ImageUpload
		sizes   []models.ImageSize
	}{
		{"taille trop grande", []ImageUpload{{Filename: "a.png", Data: img}}, []models.ImageSize{{Width: 2000, Height: 2000}}},
		{"taille nulle", []ImageUpload{{Filename: "a.png", Data: img}}, []models.ImageSize{{Width: 0, Height: 10}}},
		{"aucune taille", []ImageUpload{{Filename: "a.png", Data: img}}, nil},
		{"trop de tailles", []ImageUpload{{Filename: "a.png", Data: img}}, make([]models.ImageSize, 6)},
		{"aucun fichier", nil, ok},
		{"trop de fichiers", make([]ImageUpload, 6), ok},
		{"fichier vide", []ImageUpload{{Filename: "vide.png"}}, ok},
		{"pas une image", []ImageUpload{{Filename: "a.png", ContentType: "image/png", Data: []byte("hello world")}}, ok},
		{"type déclaré refusé", []ImageUpload{{Filename: "a.gif", ContentType: "image/gif", Data: img}}, ok},
		{"second fichier invalide", []ImageUpload{{Filename: "a.png", Data: img}, {Filename: "b.txt", Data: []byte("%PDF-1.4")}}, ok},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storage := newMemStorage()
			_, err := newTestDeriver(storage).Derive(context.Background(), tc.uploads, tc.sizes)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
			assert.Zero(t, storage.puts)
		})
	}
}

// declaredPNG retourne un PNG minuscule dont l'en-tête IHDR annonce w x h.
func declaredPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngBytes(t, 1, 1)
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestImageDeriver_RejectsOversizedHeaderBeforeDecode(t *testing.T) {
	bomb := declaredPNG(t, 30000, 30000)
	require.Less(t, len(bomb), 200)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(bomb))
	require.NoError(t, err)
	require.Equal(t, 30000, cfg.Width)

	storage := newMemStorage()
	d := newTestDeriver(storage)
	_, err = d.Derive(context.Background(),
		[]ImageUpload{{Filename: "ok.png", Data: pngBytes(t, 50, 50)}, {Filename: "bomb.png", ContentType: "image/png", Data: bomb}},
		[]models.ImageSize{{Width: 10, Height: 10}})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, apperr.Message(err), "bomb.png")
	assert.Zero(t, storage.puts)
}

func TestImageDeriver_PixelCeilingFromConfig(t *testing.T) {
	storage := newMemStorage()
	d := NewImageDeriver(storage, config.ImageConfig{MaxBox: 1080, Quality: 80, MaxFiles: 5, MaxSizes: 5, Workers: 1, MaxPixels: 300 * 200})
	sizes := []models.ImageSize{{Width: 10, Height: 10}}

	_, err := d.Derive(context.Background(), []ImageUpload{{Filename: "a.png", Data: pngBytes(t, 301, 200)}}, sizes)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, storage.puts)

	_, err = d.Derive(context.Background(), []ImageUpload{{Filename: "a.png", Data: pngBytes(t, 300, 200)}}, sizes)
	require.NoError(t, err)
	assert.Equal(t, 2, storage.puts)
}

func TestImageDeriver_CleansUpOnStorageFailure(t *testing.T) {
	storage := newMemStorage()
	storage.failOn = "200x200/"
	d := newTestDeriver(storage)

	_, err := d.Derive(context.Background(), []ImageUpload{{Filename: "a.png", Data: pngBytes(t, 400, 400)}},
		[]models.ImageSize{{Width: 100, Height: 100}, {Width: 200, Height: 200}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Empty(t, storage.objects)
}

func TestImageDeriver_ParseSizes(t *testing.T) {
	d := newTestDeriver(newMemStorage())

	sizes, err := d.ParseSizes("100x100, 640X480,")
	require.NoError(t, err)
	assert.Equal(t, []models.ImageSize{{Width: 100, Height: 100}, {Width: 640, Height: 480}}, sizes)

	for _, raw := range []string{"", "abc", "100", "10xabc", "0x10", "5000x10"} {
		_, err := d.ParseSizes(raw)
		assert.True(t, apperr.Is(err, apperr.KindValidation), raw)
	}
}
