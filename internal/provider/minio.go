package provider

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/shutterbin/image-service/internal/ident"
	"github.com/shutterbin/image-service/internal/imagemeta"
	"github.com/shutterbin/image-service/internal/models"
)

// RemoteConfig holds the connection settings for the object-storage backend.
type RemoteConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RemoteProvider stores uploads in an S3-compatible object store. RawURL
// points straight at the object on the store's own origin.
type RemoteProvider struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewRemote connects to the object store and creates the bucket if it does
// not exist yet.
func NewRemote(cfg RemoteConfig) (*RemoteProvider, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("Created bucket: %s", cfg.Bucket)
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	log.Println("Connected to object storage successfully")
	return &RemoteProvider{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket),
	}, nil
}

func (p *RemoteProvider) Name() string {
	return models.ProviderRemote
}

func (p *RemoteProvider) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	data, err := readAll(in)
	if err != nil {
		return UploadResult{}, err
	}

	objectName := ident.New() + "." + extensionForMime(in.Mime)
	_, err = p.client.PutObject(
		ctx,
		p.bucket,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: in.Mime},
	)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload to object storage: %w", err)
	}

	// The object store keeps bytes opaque, so dimensions come from the
	// same header sniff the local backend uses.
	width, height, _ := imagemeta.Dimensions(data, in.Mime)

	return UploadResult{
		ProviderKey: objectName,
		RawURL:      p.baseURL + "/" + objectName,
		Width:       width,
		Height:      height,
	}, nil
}

func (p *RemoteProvider) Remove(ctx context.Context, providerKey string) error {
	return p.client.RemoveObject(ctx, p.bucket, providerKey, minio.RemoveObjectOptions{})
}
