package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shutterbin/image-service/internal/events"
)

// Delete removes an image when the caller presents the delete token issued at
// upload time. A missing id and a wrong token produce the same 404 so the
// endpoint cannot be used to probe which ids exist.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")

	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("X-Delete-Token")
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delete token required"})
		return
	}

	// Grab the record before the store forgets it; we still need the
	// provider key to release the bytes.
	img, found := h.Store.GetByID(id)

	if !h.Store.Delete(id, token) {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}

	if found {
		if err := h.Provider.Remove(c.Request.Context(), img.ProviderKey); err != nil {
			log.Printf("warning: failed to remove object %s from storage: %v", img.ProviderKey, err)
		}
	}

	if events.Enabled() {
		event := map[string]interface{}{
			"action":   "deleted",
			"image_id": id,
		}
		if err := events.Publish("images.deleted", event); err != nil {
			log.Printf("warning: failed to publish images.deleted event: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
}
