package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/shutterbin/image-service/internal/models"
	"github.com/shutterbin/image-service/internal/provider"
)

// Raw serves the image bytes themselves. Locally stored images are streamed
// off disk; remote images redirect to the object store URL so the bytes never
// pass through this process.
func (h *Handler) Raw(c *gin.Context) {
	id := c.Param("id")

	img, ok := h.Store.GetByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}

	if img.Provider == models.ProviderLocal {
		if local, ok := h.Provider.(*provider.LocalProvider); ok {
			c.Header("Content-Type", img.Mime)
			c.Header("Cache-Control", "public, max-age=31536000, immutable")
			c.File(filepath.Join(local.Dir(), img.ProviderKey))
			return
		}
	}

	c.Redirect(http.StatusFound, img.RawURL)
}
