package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Get returns the public metadata view for one image. The delete token is
// never part of this shape.
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")

	img, ok := h.Store.GetByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image": img.View()})
}
