package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shutterbin/image-service/internal/events"
	"github.com/shutterbin/image-service/internal/provider"
	"github.com/shutterbin/image-service/internal/store"
)

// Upload accepts one multipart image, places it on the active provider and
// records its metadata. The response is the only place the delete token ever
// appears.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		// Some clients post under "image" instead.
		if fileHeader, err = c.FormFile("image"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
			return
		}
	}

	if fileHeader.Size > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large: " + fileHeader.Filename})
		return
	}

	mime := fileHeader.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = mimeForExtension(strings.ToLower(filepath.Ext(fileHeader.Filename)))
	}
	if !allowedMimes[mime] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported content type: " + mime})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	// Buffer the whole payload before anything durable happens, so an
	// aborted transfer fails here and never reaches disk or the store.
	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file: " + err.Error()})
		return
	}
	if len(data) > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large: " + fileHeader.Filename})
		return
	}

	result, err := h.Provider.Upload(c.Request.Context(), provider.UploadInput{
		Reader:   bytes.NewReader(data),
		Filename: fileHeader.Filename,
		Mime:     mime,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload to storage: " + err.Error()})
		return
	}

	img, err := h.Store.Create(store.CreateInput{
		Provider:    h.Provider.Name(),
		ProviderKey: result.ProviderKey,
		RawURL:      result.RawURL,
		Width:       result.Width,
		Height:      result.Height,
		Mime:        mime,
		Size:        int64(len(data)),
	})
	if err != nil {
		// Don't leave orphaned bytes behind a record that never existed.
		if remErr := h.Provider.Remove(c.Request.Context(), result.ProviderKey); remErr != nil {
			log.Printf("warning: failed to cleanup object after metadata save failure: %v", remErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save image metadata"})
		return
	}

	if events.Enabled() {
		event := map[string]interface{}{
			"action":       "uploaded",
			"image_id":     img.ID,
			"provider":     img.Provider,
			"provider_key": img.ProviderKey,
			"mime":         img.Mime,
			"size":         img.Size,
		}
		if err := events.Publish("images.uploaded", event); err != nil {
			log.Printf("warning: failed to publish images.uploaded event: %v", err)
		}
	}

	if h.Scanner != nil {
		go h.Scanner.Scan(img.ID, img.DeleteToken, data)
	}

	c.JSON(http.StatusCreated, gin.H{
		"image": img.Receipt(),
		"links": gin.H{
			"view": "/api/images/" + img.ID,
			"raw":  img.RawURL,
		},
	})
}

// mimeForExtension is the fallback for clients that send no part header.
func mimeForExtension(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}
