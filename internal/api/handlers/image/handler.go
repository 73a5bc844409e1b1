// Package handlers implements the image endpoints. The storage provider and
// metadata store are injected at startup; handlers never pick a backend
// themselves.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shutterbin/image-service/internal/provider"
	"github.com/shutterbin/image-service/internal/scan"
	"github.com/shutterbin/image-service/internal/store"
)

// MaxUploadSize caps an upload payload at 10 MiB.
const MaxUploadSize = 10 << 20

// allowedMimes is the upload allow-list. Anything else is rejected before
// the provider is consulted.
var allowedMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

type Handler struct {
	Store    store.Store
	Provider provider.Provider
	Scanner  *scan.Scanner
}

func New(st store.Store, p provider.Provider, sc *scan.Scanner) *Handler {
	return &Handler{
		Store:    st,
		Provider: p,
		Scanner:  sc,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "provider": h.Provider.Name()})
}
