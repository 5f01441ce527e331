// Package storage backs up the JSON database file to an object-store bucket,
// giving the single-file store off-host copies to restore from.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// SnapshotConfig is the object-store target for database snapshots, loaded
// from MINIO_* environment variables. An empty endpoint disables snapshots.
type SnapshotConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// SnapshotConfigFromEnv reads the snapshot target from the environment.
func SnapshotConfigFromEnv() SnapshotConfig {
	cfg := SnapshotConfig{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		Bucket:    os.Getenv("MINIO_BUCKET"),
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "telcwrite"
	}
	return cfg
}

// Enabled reports whether a snapshot target is configured at all.
func (c SnapshotConfig) Enabled() bool { return c.Endpoint != "" }

// SnapshotStore uploads timestamped copies of the database file.
type SnapshotStore struct {
	client *minio.Client
	bucket string
}

// NewSnapshotStore creates the client and ensures the bucket exists.
func NewSnapshotStore(cfg SnapshotConfig) (*SnapshotStore, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("snapshot target not configured")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &SnapshotStore{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// UploadSnapshot copies the database file under a timestamped key and
// returns the key.
func (s *SnapshotStore) UploadSnapshot(ctx context.Context, dbPath string) (string, error) {
	f, err := os.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("open snapshot source: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat snapshot source: %w", err)
	}
	key := fmt.Sprintf("snapshots/%s-%s", time.Now().UTC().Format("20060102T150405Z"), path.Base(dbPath))
	_, err = s.client.PutObject(ctx, s.bucket, key, f, info.Size(),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	return key, nil
}
