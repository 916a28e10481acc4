// Package archive copies snapshot documents to object storage as timestamped
// backups. Uploads are best-effort; the in-memory ledgers and the primary
// snapshot store never wait on them.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Archiver struct {
	client *minio.Client
	bucket string
}

func New(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Archiver, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Archiver{client: client, bucket: bucket}, nil
}

// EnsureBucket creates the backup bucket if it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Store uploads one snapshot document under a timestamped object name, e.g.
// "snapshot:resources" becomes "resources/20260314T120000Z.json".
func (a *Archiver) Store(ctx context.Context, key string, doc []byte) error {
	name := fmt.Sprintf("%s/%s.json",
		strings.TrimPrefix(key, "snapshot:"),
		time.Now().UTC().Format("20060102T150405Z"),
	)
	_, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(doc), int64(len(doc)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

// StoreAsync uploads in the background and only logs failures.
func (a *Archiver) StoreAsync(key string, doc []byte) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.Store(ctx, key, doc); err != nil {
			log.Printf("archive: %v", err)
		}
	}()
}
