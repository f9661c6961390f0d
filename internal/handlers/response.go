package handlers

import (
	"log"
	"net/http"

	"furniro_back_end/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Fail traduit une erreur métier en réponse JSON {"error": "..."}. Les erreurs
// internes sont journalisées avec leur cause et renvoyées sous un message
// générique.
func Fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("❌ [%s] %s %s: %v", c.GetString("request_id"), c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

// BadRequest répond 400 pour un corps ou des paramètres mal formés.
func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
}
