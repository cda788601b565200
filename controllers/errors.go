package controllers

import (
	"errors"
	"net/http"

	"eqcoach/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, services.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "Still working on the previous message"})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.As(err, &ve):
		c.JSON(http.StatusConflict, gin.H{"error": ve.Reason, "op": ve.Op})
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
}
