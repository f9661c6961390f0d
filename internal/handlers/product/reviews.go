package product

import (
	"net/http"

	"furniro_back_end/internal/handlers"
	"furniro_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateReview crée un avis sur un produit existant
func (h *Handler) CreateReview(c *gin.Context) {
	var in models.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	r, err := h.reviews.Create(c.Request.Context(), in)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GetProductReviews retourne les avis d'un produit avec la note moyenne
func (h *Handler) GetProductReviews(c *gin.Context) {
	out, err := h.reviews.ListByProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteReview(c *gin.Context) {
	if err := h.reviews.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
