package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/St0bbe/remix-of-our-little-pix/store"
)

// respondStoreError maps store errors onto HTTP responses: validation
// failures become 400s with the validation message, missing ids become
// 404s, anything else is logged and surfaced as a generic failure notice.
func respondStoreError(c *gin.Context, err error, notFoundMsg, failureMsg string) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	default:
		slog.Error(failureMsg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": failureMsg})
	}
}
