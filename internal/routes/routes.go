package routes

import (
	"net/http"
	"time"

	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/handlers/contact"
	"furniro_back_end/internal/handlers/order"
	"furniro_back_end/internal/handlers/payement"
	"furniro_back_end/internal/handlers/product"
	"furniro_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Product *product.Handler
	Order   *order.Handler
	Payment *payement.Handler
	Contact *contact.Handler
}

// NewRouter construit le moteur gin avec les middlewares communs et toutes les
// routes de l'API.
func NewRouter(h Handlers, limiter cache.Store, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterRoutes(r, h, limiter)
	return r
}

func RegisterRoutes(r *gin.Engine, h Handlers, limiter cache.Store) {
	api := r.Group("/api")

	// Produits
	api.POST("/products", h.Product.CreateProduct)
	api.GET("/products", h.Product.ListProducts)
	api.GET("/products/:id", h.Product.GetProduct)
	api.PATCH("/products/:id", h.Product.UpdateProduct)
	api.DELETE("/products/:id", h.Product.DeleteProduct)

	// Catégories
	api.POST("/categories", h.Product.CreateCategory)
	api.GET("/categories", h.Product.ListCategories)
	api.GET("/categories/:id", h.Product.GetCategory)
	api.PUT("/categories/:id", h.Product.UpdateCategory)
	api.DELETE("/categories/:id", h.Product.DeleteCategory)

	// Avis
	api.POST("/reviews", h.Product.CreateReview)
	api.GET("/reviews/product/:productId", h.Product.GetProductReviews)
	api.DELETE("/reviews/:id", h.Product.DeleteReview)

	// Images
	api.POST("/upload", h.Product.UploadImages)

	// Commandes
	api.POST("/orders", h.Order.CreateOrder)
	api.GET("/orders", h.Order.ListOrders)
	api.GET("/orders/:id", h.Order.GetOrder)
	api.DELETE("/orders/:id", h.Order.DeleteOrder)
	api.POST("/orders/:id/checkout", h.Order.CheckoutOrder)
	api.GET("/orders/:id/history", h.Order.GetOrderHistory)

	// Stripe
	api.POST("/stripe/create-checkout-session", h.Payment.CreateCheckoutSession)
	api.POST("/stripe/webhook", h.Payment.StripeWebhook)

	// Formulaires publics
	contactLimit := middleware.RateLimit(limiter, "contact", middleware.ContactMaxRequests, middleware.ContactWindow)
	api.POST("/feedback", contactLimit, h.Contact.CreateFeedback)
	api.GET("/feedback", h.Contact.ListFeedback)
	api.PATCH("/feedback/:id/archive", h.Contact.ArchiveFeedback)
	api.POST("/mail-offers", contactLimit, h.Contact.Subscribe)
	api.DELETE("/mail-offers/:email", contactLimit, h.Contact.Unsubscribe)
}
