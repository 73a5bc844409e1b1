package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shutterbin/image-service/internal/ident"
	"github.com/shutterbin/image-service/internal/imagemeta"
	"github.com/shutterbin/image-service/internal/models"
)

// LocalProvider writes uploads into a managed directory served by the HTTP
// layer under /uploads.
type LocalProvider struct {
	dir string
}

// NewLocal ensures the upload directory exists and returns a provider
// writing into it.
func NewLocal(dir string) (*LocalProvider, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalProvider{dir: dir}, nil
}

func (p *LocalProvider) Name() string {
	return models.ProviderLocal
}

// Dir is the managed upload directory, needed by the raw-file handler.
func (p *LocalProvider) Dir() string {
	return p.dir
}

func (p *LocalProvider) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	data, err := readAll(in)
	if err != nil {
		return UploadResult{}, err
	}

	// The filename id is independent of the eventual record id; this
	// provider never learns what the metadata store assigns.
	filename := ident.New() + "." + extensionForMime(in.Mime)
	path := filepath.Join(p.dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return UploadResult{}, fmt.Errorf("failed to write %s: %w", filename, err)
	}

	width, height, _ := imagemeta.Dimensions(data, in.Mime)

	return UploadResult{
		ProviderKey: filename,
		RawURL:      "/uploads/" + filename,
		Width:       width,
		Height:      height,
	}, nil
}

func (p *LocalProvider) Remove(ctx context.Context, providerKey string) error {
	// providerKey is a bare filename; Base strips anything a stored record
	// should never contain anyway.
	path := filepath.Join(p.dir, filepath.Base(providerKey))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", providerKey, err)
	}
	return nil
}
