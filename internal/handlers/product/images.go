package product

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"furniro_back_end/internal/handlers"
	"furniro_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 10 << 20

// =========================
// 🟢 UPLOAD ET DÉRIVATION D'IMAGES
// =========================

// UploadImages reçoit des fichiers "files" et une liste "sizes" (WxH,WxH) et
// renvoie l'URL de l'original et de chaque taille.
func (h *Handler) UploadImages(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.maxFiles)*maxImageBytes+(1<<20))

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formulaire multipart invalide ou trop volumineux"})
		return
	}

	sizes, err := h.images.ParseSizes(c.PostForm("sizes"))
	if err != nil {
		handlers.Fail(c, err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichiers manquants"})
		return
	}
	if len(files) > h.maxFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%d fichiers maximum", h.maxFiles)})
		return
	}

	uploads := make([]services.ImageUpload, 0, len(files))
	for _, fh := range files {
		u, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		uploads = append(uploads, u)
	}

	images, err := h.images.Derive(c.Request.Context(), uploads, sizes)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func readUpload(fh *multipart.FileHeader) (services.ImageUpload, error) {
	if fh.Size > maxImageBytes {
		return services.ImageUpload{}, fmt.Errorf("Fichier %s trop volumineux (10 Mo maximum)", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return services.ImageUpload{}, fmt.Errorf("Fichier %s illisible", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return services.ImageUpload{}, fmt.Errorf("Fichier %s illisible", fh.Filename)
	}
	return services.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
