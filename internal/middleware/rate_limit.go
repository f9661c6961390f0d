package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"furniro_back_end/internal/cache"

	"github.com/gin-gonic/gin"
)

const (
	// Limites des formulaires publics (feedback, newsletter)
	ContactMaxRequests = 10
	ContactWindow      = 1 * time.Minute
)

// RateLimit limite le nombre de requêtes par IP sur une fenêtre fixe. Si le
// cache est indisponible la requête passe.
func RateLimit(store cache.Store, name string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.ClientIP())

		requests, err := store.Incr(c.Request.Context(), key, window)
		if err != nil {
			log.Printf("⚠️ Rate limit %s indisponible: %v", name, err)
			c.Next()
			return
		}

		if requests > limit {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de requêtes. Réessayez dans %d secondes", int(window.Seconds())),
				"retry_after": int(window.Seconds()),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, limit-requests)))
		c.Next()
	}
}
