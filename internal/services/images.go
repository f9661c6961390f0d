package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"strconv"
	"strings"
	"sync"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/config"
	"furniro_back_end/internal/models"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var allowedImageTypes = map[string]bool{"image/jpeg": true, "image/png": true}

const defaultMaxPixels = 40_000_000

type ImageUpload struct {
	Filename    string
	ContentType string // type déclaré par le client
	Data        []byte
}

type ImageDeriver struct {
	storage   ObjectStorage
	maxBox    int
	quality   int
	maxFiles  int
	maxSizes  int
	maxPixels int
	workers   int
	newKey    func() string
}

func NewImageDeriver(storage ObjectStorage, cfg config.ImageConfig) *ImageDeriver {
	maxPixels := cfg.MaxPixels
	if maxPixels <= 0 {
		maxPixels = defaultMaxPixels
	}
	return &ImageDeriver{
		storage:   storage,
		maxBox:    cfg.MaxBox,
		quality:   cfg.Quality,
		maxFiles:  cfg.MaxFiles,
		maxSizes:  cfg.MaxSizes,
		maxPixels: maxPixels,
		workers:   max(1, cfg.Workers),
		newKey:    func() string { return uuid.NewString() },
	}
}

// ParseSizes lit une liste "WxH,WxH" et vérifie chaque dimension.
func (d *ImageDeriver) ParseSizes(raw string) ([]models.ImageSize, error) {
	var sizes []models.ImageSize
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ws, hs, ok := strings.Cut(strings.ToLower(part), "x")
		if !ok {
			return nil, apperr.Validation("Taille invalide %q (format attendu LARGEURxHAUTEUR)", part)
		}
		w, errW := strconv.Atoi(strings.TrimSpace(ws))
		h, errH := strconv.Atoi(strings.TrimSpace(hs))
		if errW != nil || errH != nil {
			return nil, apperr.Validation("Taille invalide %q (format attendu LARGEURxHAUTEUR)", part)
		}
		sizes = append(sizes, models.ImageSize{Width: w, Height: h})
	}
	if err := d.validateSizes(sizes); err != nil {
		return nil, err
	}
	return sizes, nil
}

func (d *ImageDeriver) validateSizes(sizes []models.ImageSize) error {
	if len(sizes) == 0 || len(sizes) > d.maxSizes {
		return apperr.Validation("Entre 1 et %d tailles sont attendues", d.maxSizes)
	}
	for _, s := range sizes {
		if s.Width < 1 || s.Height < 1 || s.Width > d.maxBox || s.Height > d.maxBox {
			return apperr.Validation("Taille %dx%d hors limites (1 à %d px)", s.Width, s.Height, d.maxBox)
		}
	}
	return nil
}

func (d *ImageDeriver) validateUploads(uploads []ImageUpload) error {
	if len(uploads) == 0 || len(uploads) > d.maxFiles {
		return apperr.Validation("Entre 1 et %d fichiers sont attendus", d.maxFiles)
	}
	for _, u := range uploads {
		if len(u.Data) == 0 {
			return apperr.Validation("Fichier %s vide", u.Filename)
		}
		declared := strings.ToLower(strings.TrimSpace(strings.Split(u.ContentType, ";")[0]))
		if declared != "" && !allowedImageTypes[declared] {
			return apperr.Validation("Type de fichier non supporté pour %s (JPEG ou PNG)", u.Filename)
		}
		if !allowedImageTypes[mimetype.Detect(u.Data).String()] {
			return apperr.Validation("Le contenu de %s n'est pas une image JPEG ou PNG", u.Filename)
		}
		if err := d.checkDimensions(u); err != nil {
			return err
		}
	}
	return nil
}

// checkDimensions lit seulement l'en-tête : le décodage complet alloue
// largeur x hauteur pixels quelle que soit la taille du fichier.
func (d *ImageDeriver) checkDimensions(u ImageUpload) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(u.Data))
	if err != nil {
		return &apperr.Error{Kind: apperr.KindValidation, Message: fmt.Sprintf("Image %s illisible", u.Filename), Err: err}
	}
	if cfg.Width < 1 || cfg.Height < 1 || int64(cfg.Width)*int64(cfg.Height) > int64(d.maxPixels) {
		return apperr.Validation("Image %s trop grande (%dx%d, %d pixels maximum)", u.Filename, cfg.Width, cfg.Height, d.maxPixels)
	}
	return nil
}

// Derive normalise chaque image, l'envoie comme original puis produit toutes
// les tailles en parallèle. Tout est validé avant le premier envoi ; en cas
// d'échec, les objets déjà envoyés par cette requête sont supprimés.
func (d *ImageDeriver) Derive(ctx context.Context, uploads []ImageUpload, sizes []models.ImageSize) ([]models.DerivedImage, error) {
	if err := d.validateUploads(uploads); err != nil {
		return nil, err
	}
	if err := d.validateSizes(sizes); err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		keys []string
	)
	put := func(ctx context.Context, key string, data []byte) (string, error) {
		url, err := d.storage.Put(ctx, key, data, "image/jpeg")
		if err != nil {
			return "", apperr.Internal(err, "Erreur envoi de l'image")
		}
		mu.Lock()
		keys = append(keys, key)
		mu.Unlock()
		return url, nil
	}

	out := make([]models.DerivedImage, 0, len(uploads))
	for _, u := range uploads {
		img, err := d.deriveOne(ctx, u, sizes, put)
		if err != nil {
			d.cleanup(ctx, keys)
			return nil, err
		}
		out = append(out, *img)
	}
	log.Printf("🖼️ %d image(s) traitée(s), %d taille(s) chacune", len(uploads), len(sizes))
	return out, nil
}

type putFunc func(ctx context.Context, key string, data []byte) (string, error)

func (d *ImageDeriver) deriveOne(ctx context.Context, u ImageUpload, sizes []models.ImageSize, put putFunc) (*models.DerivedImage, error) {
	src, err := imaging.Decode(bytes.NewReader(u.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Message: fmt.Sprintf("Image %s illisible", u.Filename), Err: err}
	}

	// Fit ne fait que réduire : une image plus petite que la boîte est conservée
	normalized := imaging.Fit(src, d.maxBox, d.maxBox, imaging.Lanczos)
	data, err := d.encode(normalized)
	if err != nil {
		return nil, err
	}

	id := d.newKey()
	original, err := put(ctx, "original/"+id+".jpeg", data)
	if err != nil {
		return nil, err
	}

	resized := make([]models.ResizedImage, len(sizes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, size := range sizes {
		g.Go(func() error {
			cropped := CoverEntropy(normalized, size.Width, size.Height)
			data, err := d.encode(cropped)
			if err != nil {
				return err
			}
			url, err := put(gctx, fmt.Sprintf("%dx%d/%s.jpeg", size.Width, size.Height, id), data)
			if err != nil {
				return err
			}
			resized[i] = models.ResizedImage{Width: size.Width, Height: size.Height, URL: url}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &models.DerivedImage{Original: original, Resized: resized}, nil
}

func (d *ImageDeriver) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(d.quality)); err != nil {
		return nil, apperr.Internal(err, "Erreur encodage JPEG")
	}
	return buf.Bytes(), nil
}

func (d *ImageDeriver) cleanup(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := d.storage.Remove(ctx, key); err != nil {
			log.Printf("⚠️ Objet %s non supprimé après échec: %v", key, err)
		}
	}
}
