package external

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/danthegoodman1/relfetch/settings"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type (
	// MinioStore keeps payloads in a self-hosted S3-compatible bucket
	MinioStore struct {
		mc     *minio.Client
		bucket string
	}
)

func NewMinioStore(sc settings.StoreConfig) (*MinioStore, error) {
	if sc.Endpoint == "" || sc.Bucket == "" {
		return nil, fmt.Errorf("minio store %s needs an endpoint and a bucket", sc.Name)
	}
	mc, err := minio.New(sc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
		Secure: sc.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("error in minio.New: %w", err)
	}
	return &MinioStore{mc: mc, bucket: sc.Bucket}, nil
}

func (m *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.mc.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("error in minio GetObject: %w", err)
	}
	defer obj.Close()

	b, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("error reading minio object: %w", err)
	}
	return b, nil
}

func (m *MinioStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := m.mc.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("error in minio PutObject: %w", err)
	}
	return nil
}
