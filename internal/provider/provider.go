// Package provider holds the storage backends an upload can be placed on.
// Callers depend only on the Provider contract; the concrete backend is
// chosen once at startup from configuration.
package provider

import (
	"context"
	"fmt"
	"io"
)

// UploadInput carries one validated upload. Reader may be a fully buffered
// source or a stream; backends normalize it to a single buffer first.
type UploadInput struct {
	Reader   io.Reader
	Filename string
	Mime     string
}

// UploadResult is what a backend reports after placing the bytes. Width and
// Height are zero when the format gave none up.
type UploadResult struct {
	ProviderKey string
	RawURL      string
	Width       int
	Height      int
}

// Provider is the upload contract shared by all backends.
type Provider interface {
	// Name is the tag recorded on metadata records: "local" or "remote".
	Name() string
	// Upload places the bytes and returns where they can be fetched from.
	// I/O and remote-service failures propagate unchanged.
	Upload(ctx context.Context, in UploadInput) (UploadResult, error)
	// Remove deletes previously uploaded bytes by their provider key.
	Remove(ctx context.Context, providerKey string) error
}

// readAll drains the input into one buffer, preserving chunk order. Both
// backends need the whole payload in hand before doing anything durable, so
// a truncated stream fails here and never reaches disk or the remote service.
func readAll(in UploadInput) ([]byte, error) {
	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload body: %w", err)
	}
	return data, nil
}

// extensionForMime maps a validated content type to the on-disk/object
// extension. Unmapped types fall back to jpg.
func extensionForMime(mime string) string {
	switch mime {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/bmp":
		return "bmp"
	default:
		return "jpg"
	}
}
