package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cascadeslots/engine/internal/config"
)

// MinIOArchive archives sealed spin results to a MinIO/S3-compatible bucket.
type MinIOArchive struct {
	client     *minio.Client
	bucketName string
	publicURL  string
}

var _ Archive = (*MinIOArchive)(nil)

// NewMinIOArchive creates a new MinIO-backed archive client.
func NewMinIOArchive(cfg *config.StorageConfig) (*MinIOArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	a := &MinIOArchive{
		client:     client,
		bucketName: cfg.BucketName,
		publicURL:  cfg.PublicURL,
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return a, nil
}

func (a *MinIOArchive) Store(ctx context.Context, spinID uuid.UUID, sealedAt time.Time, payload []byte) (string, error) {
	key := objectKey(spinID, sealedAt)

	_, err := a.client.PutObject(ctx, a.bucketName, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive spin %s: %w", spinID, err)
	}

	return fmt.Sprintf("%s/%s/%s", a.publicURL, a.bucketName, key), nil
}

func (a *MinIOArchive) Fetch(ctx context.Context, spinID uuid.UUID, sealedAt time.Time) ([]byte, error) {
	key := objectKey(spinID, sealedAt)

	obj, err := a.client.GetObject(ctx, a.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archived spin %s: %w", spinID, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read archived spin %s: %w", spinID, err)
	}

	return data, nil
}

func (a *MinIOArchive) Exists(ctx context.Context, spinID uuid.UUID, sealedAt time.Time) (bool, error) {
	key := objectKey(spinID, sealedAt)

	_, err := a.client.StatObject(ctx, a.bucketName, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to check archived spin %s: %w", spinID, err)
	}

	return true, nil
}
