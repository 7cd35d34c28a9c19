package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"elib-backend/internal/config"
)

// ResourceKind tells the media store how an asset is handled.
// Images are re-encoded/derived (thumbnails), raw assets are stored
// byte-for-byte.
type ResourceKind string

const (
	KindImage ResourceKind = "image"
	KindRaw   ResourceKind = "raw"
)

// UploadOptions mirror the media store's upload contract: a target
// folder, the asset format, the resource kind and the staged filename
// whose base becomes the object name.
type UploadOptions struct {
	Folder       string
	Format       string
	Kind         ResourceKind
	OverrideName string
	// ContentType overrides the kind/format-derived content type.
	ContentType string
}

// UploadResult carries the durable public URL plus the object key the
// URL resolves to.
type UploadResult struct {
	URL string
	Key string
}

// MediaStore is the external collaborator holding binary assets.
type MediaStore interface {
	UploadFile(ctx context.Context, localPath string, opts UploadOptions) (*UploadResult, error)
	Download(ctx context.Context, key string) ([]byte, error)
	// Delete removes an asset by its public identifier. Image ids carry
	// no extension and match every stored variant; raw ids are exact
	// object keys.
	Delete(ctx context.Context, publicID string, kind ResourceKind) error
}

// MinIOStore implements MediaStore on a MinIO/S3 bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
	secure bool
}

func NewMinIOStore(cfg config.MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStore{
		client: client,
		bucket: cfg.Bucket,
		secure: cfg.UseSSL,
	}, nil
}

// UploadFile pushes a staged local file into the bucket.
// The object key is folder/<base name without extension>.<format>, so
// the returned URL always ends in the asset's format.
func (s *MinIOStore) UploadFile(ctx context.Context, localPath string, opts UploadOptions) (*UploadResult, error) {
	name := opts.OverrideName
	if name == "" {
		name = filepath.Base(localPath)
	}
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	key := fmt.Sprintf("%s/%s.%s", opts.Folder, name, opts.Format)

	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/" + opts.Format
		if opts.Kind == KindImage {
			contentType = "image/" + opts.Format
		}
	}

	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &UploadResult{URL: s.objectURL(key), Key: key}, nil
}

// Download fetches an object into memory (used by the thumbnail job).
func (s *MinIOStore) Download(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// Delete removes an asset by public id. An image id has its extension
// stripped, so deletion walks every object under "<id>." (original plus
// derived variants). A raw id is the exact object key.
func (s *MinIOStore) Delete(ctx context.Context, publicID string, kind ResourceKind) error {
	if kind != KindImage {
		if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", publicID, err)
		}
		return nil
	}

	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix: publicID + ".",
	})

	deleted := 0
	for object := range objectsCh {
		if object.Err != nil {
			return fmt.Errorf("error listing objects for %s: %w", publicID, object.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", object.Key, err)
		}
		deleted++
	}
	if deleted == 0 {
		return fmt.Errorf("no objects found for public id %s", publicID)
	}
	return nil
}

func (s *MinIOStore) objectURL(key string) string {
	scheme := "http"
	if s.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucket, key)
}
