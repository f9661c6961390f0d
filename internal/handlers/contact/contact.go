package contact

import (
	"context"
	"net/http"

	"furniro_back_end/internal/handlers"
	"furniro_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

type Feedback interface {
	Create(ctx context.Context, in models.FeedbackInput) (*models.Feedback, error)
	List(ctx context.Context) ([]models.Feedback, error)
	Archive(ctx context.Context, id string) (*models.Feedback, error)
}

type MailOffers interface {
	Subscribe(ctx context.Context, email string) (*models.MailOffer, error)
	Unsubscribe(ctx context.Context, email string) error
}

// Handler couvre les formulaires publics : feedback et newsletter.
type Handler struct {
	feedback Feedback
	offers   MailOffers
}

func NewHandler(feedback Feedback, offers MailOffers) *Handler {
	return &Handler{feedback: feedback, offers: offers}
}

func (h *Handler) CreateFeedback(c *gin.Context) {
	var in models.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	f, err := h.feedback.Create(c.Request.Context(), in)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) ListFeedback(c *gin.Context) {
	items, err := h.feedback.List(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) ArchiveFeedback(c *gin.Context) {
	f, err := h.feedback.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) Subscribe(c *gin.Context) {
	var in models.MailOfferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	offer, err := h.offers.Subscribe(c.Request.Context(), in.Email)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	if err := h.offers.Unsubscribe(c.Request.Context(), c.Param("email")); err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
