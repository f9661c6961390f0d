package order

import (
	"context"
	"net/http"

	"furniro_back_end/internal/handlers"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

const historyLimit = 50

type Orders interface {
	Create(ctx context.Context, in models.OrderInput) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	Delete(ctx context.Context, id string) error
}

type Checkout interface {
	CheckoutExisting(ctx context.Context, orderID string) (*services.CheckoutResult, error)
}

type History interface {
	History(ctx context.Context, orderID string, limit int) ([]models.AuditEntry, error)
}

type Handler struct {
	orders   Orders
	checkout Checkout
	history  History
}

func NewHandler(orders Orders, checkout Checkout, history History) *Handler {
	return &Handler{orders: orders, checkout: checkout, history: history}
}

// CreateOrder enregistre une commande non payée, prix figés au tarif courant.
func (h *Handler) CreateOrder(c *gin.Context) {
	var in models.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	o, err := h.orders.Create(c.Request.Context(), in)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckoutOrder ouvre une nouvelle session de paiement pour une commande
// existante non payée.
func (h *Handler) CheckoutOrder(c *gin.Context) {
	res, err := h.checkout.CheckoutExisting(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetOrderHistory retourne le journal d'audit d'une commande.
func (h *Handler) GetOrderHistory(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Fail(c, err)
		return
	}

	events, err := h.history.History(c.Request.Context(), o.ID.Hex(), historyLimit)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": o.ID.Hex(), "events": events})
}
