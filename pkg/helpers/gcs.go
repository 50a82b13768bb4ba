package helpers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Asset is what the asset store hands back after an upload. PublicID is the
// handle needed to destroy the object later.
type Asset struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSAssetStore stores uploaded images as GCS objects. The object path acts
// as the public identifier.
type GCSAssetStore struct {
	Client *storage.Client
	Bucket string
}

func NewGCSAssetStore(client *storage.Client, bucket string) *GCSAssetStore {
	return &GCSAssetStore{Client: client, Bucket: bucket}
}

func (s *GCSAssetStore) Upload(ctx context.Context, payload []byte, folder string) (Asset, error) {
	if s.Client == nil || s.Bucket == "" {
		return Asset{}, errors.New("asset store not configured")
	}
	objectPath := path.Join(folder, uuid.NewString())
	wc := s.Client.Bucket(s.Bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = http.DetectContentType(payload)
	wc.ChunkSize = 0 // small objects, no chunking
	if _, err := wc.Write(payload); err != nil {
		_ = wc.Close()
		return Asset{}, err
	}
	if err := wc.Close(); err != nil {
		return Asset{}, err
	}
	return Asset{PublicID: objectPath, URL: PublicURL(s.Bucket, objectPath)}, nil
}

// Destroy deletes the object behind publicID. A missing or empty identifier
// is not an error: the delete-user path destroys avatars unconditionally,
// including accounts that never uploaded one.
func (s *GCSAssetStore) Destroy(ctx context.Context, publicID string) error {
	if s.Client == nil || s.Bucket == "" {
		return errors.New("asset store not configured")
	}
	if publicID == "" {
		return nil
	}
	err := s.Client.Bucket(s.Bucket).Object(publicID).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
