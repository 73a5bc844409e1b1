// Package store owns the lifetime of image metadata records.
package store

import (
	"github.com/shutterbin/image-service/internal/models"
)

// CreateInput is everything a record needs except what the store itself
// generates: id, delete token and creation timestamp.
type CreateInput struct {
	Provider    string
	ProviderKey string
	RawURL      string
	Width       int
	Height      int
	Mime        string
	Size        int64
}

// Store is the metadata record contract. The in-memory implementation is the
// default; a durable one can replace it without touching callers.
type Store interface {
	// Create generates a fresh id and delete token, stamps the creation
	// time and persists the record. The returned record carries the token
	// for one-time delivery to the uploader.
	Create(in CreateInput) (models.Image, error)

	// GetByID looks up a record. A miss is an ordinary (zero, false)
	// result, not an error.
	GetByID(id string) (models.Image, bool)

	// Delete removes the record only when both id and token match the
	// stored values exactly. Any mismatch, including an unknown id,
	// returns false with nothing changed.
	Delete(id, deleteToken string) bool
}
