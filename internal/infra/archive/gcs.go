package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/cascadeslots/engine/internal/config"
)

// GCSArchive archives sealed spin results to Google Cloud Storage.
type GCSArchive struct {
	client     *gcs.Client
	bucketName string
	publicURL  string
}

var _ Archive = (*GCSArchive)(nil)

// NewGCSArchive creates a new GCS-backed archive client. It relies on
// Application Default Credentials, the same as the rest of the deployment.
func NewGCSArchive(cfg *config.StorageConfig) (*GCSArchive, error) {
	ctx := context.Background()

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	a := &GCSArchive{
		client:     client,
		bucketName: cfg.BucketName,
		publicURL:  cfg.PublicURL,
	}

	if _, err := client.Bucket(cfg.BucketName).Attrs(ctx); err != nil {
		return nil, fmt.Errorf("failed to access bucket %s: %w", cfg.BucketName, err)
	}

	return a, nil
}

func (a *GCSArchive) Store(ctx context.Context, spinID uuid.UUID, sealedAt time.Time, payload []byte) (string, error) {
	key := objectKey(spinID, sealedAt)

	obj := a.client.Bucket(a.bucketName).Object(key)
	writer := obj.NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := io.Copy(writer, bytes.NewReader(payload)); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to archive spin %s: %w", spinID, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer for spin %s: %w", spinID, err)
	}

	return fmt.Sprintf("%s/%s/%s", a.publicURL, a.bucketName, key), nil
}

func (a *GCSArchive) Fetch(ctx context.Context, spinID uuid.UUID, sealedAt time.Time) ([]byte, error) {
	key := objectKey(spinID, sealedAt)

	reader, err := a.client.Bucket(a.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archived spin %s: %w", spinID, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read archived spin %s: %w", spinID, err)
	}

	return data, nil
}

func (a *GCSArchive) Exists(ctx context.Context, spinID uuid.UUID, sealedAt time.Time) (bool, error) {
	key := objectKey(spinID, sealedAt)

	_, err := a.client.Bucket(a.bucketName).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check archived spin %s: %w", spinID, err)
	}

	return true, nil
}
