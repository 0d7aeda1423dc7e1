package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"tasktracker/internal/metrics"
	"tasktracker/internal/storage"

	"github.com/gin-gonic/gin"
)

// internalError logs err and answers with a generic 500.
func internalError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	var se *storage.Error
	if errors.As(err, &se) {
		metrics.StoreErrors.WithLabelValues(se.Op).Inc()
	}
	if logger != nil {
		logger.Error(msg,
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path),
		)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
