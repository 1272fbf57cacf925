package handler

import (
	"errors"
	"net/http"

	"github.com/draftline/draftline/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to HTTP status codes and writes the response.
func writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var fatalErr *domain.JobFatalError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &fatalErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fatalErr.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
