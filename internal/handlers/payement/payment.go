package payement

import (
	"context"
	"log"
	"net/http"

	"furniro_back_end/internal/handlers"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

const maxWebhookBytes = int64(65536)

type Payments interface {
	CheckoutNew(ctx context.Context, in models.OrderInput) (*services.CheckoutResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (services.WebhookEvent, error)
}

type Handler struct {
	payments Payments
}

func NewHandler(payments Payments) *Handler {
	return &Handler{payments: payments}
}

// ✅ Enregistre la commande puis crée la session Stripe Checkout
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var in models.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	res, err := h.payments.CheckoutNew(c.Request.Context(), in)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ✅ Webhook Stripe
func (h *Handler) StripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	event, err := h.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Println("❌ Webhook Stripe rejeté:", err)
		handlers.Fail(c, err)
		return
	}

	log.Printf("📥 Événement Stripe traité : %s", event.EventID())
	c.JSON(http.StatusOK, gin.H{"received": true})
}
