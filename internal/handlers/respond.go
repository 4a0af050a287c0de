package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lootlink/internal/services"
)

// statusForKind maps service error kinds to HTTP status codes.
func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindCapExceeded, services.KindPrecondition:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindInvalidState:
		return http.StatusConflict
	case services.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standard error envelope. Untyped errors are logged
// and surfaced as a generic 500.
func respondError(c *gin.Context, err error) {
	if kind, ok := services.KindOf(err); ok {
		c.JSON(statusForKind(kind), gin.H{
			"success": false,
			"error":   string(kind),
			"message": err.Error(),
		})
		return
	}

	log.Printf("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "Internal server error",
	})
}
