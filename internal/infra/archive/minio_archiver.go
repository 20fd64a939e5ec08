package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/diabetes-risk/internal/domain/records"
)

// Options configures the S3-compatible archive target.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
}

// objectStore is the subset of the minio client the archiver needs.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioArchiver writes each saved record as a JSON object.
type MinioArchiver struct {
	client objectStore
	bucket string
	prefix string
	logger *slog.Logger

	bucketMu    sync.Mutex
	bucketReady bool
}

// NewMinioArchiver constructs the archiver.
func NewMinioArchiver(opts Options, logger *slog.Logger) (*MinioArchiver, error) {
	endpoint := sanitizeEndpoint(opts.Endpoint)
	if endpoint == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("archive endpoint and bucket are required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       strings.HasPrefix(strings.ToLower(strings.TrimSpace(opts.Endpoint)), "https"),
		Region:       opts.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init archive client: %w", err)
	}
	return newMinioArchiver(client, opts.Bucket, opts.Prefix, logger), nil
}

func newMinioArchiver(client objectStore, bucket, prefix string, logger *slog.Logger) *MinioArchiver {
	return &MinioArchiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.With("component", "archive.minio"),
	}
}

// Archive uploads the record under <prefix>/<yyyy>/<mm>/<dd>/<id>.json.
func (a *MinioArchiver) Archive(ctx context.Context, record records.Record) error {
	if err := a.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure archive bucket: %w", err)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	key := objectKey(a.prefix, record)
	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType:      "application/json",
		DisableMultipart: true,
	})
	if err != nil {
		return fmt.Errorf("put archive object: %w", err)
	}
	a.logger.Debug("record archived", "key", key, "etag", info.ETag)
	return nil
}

// ensureBucket checks the bucket until one check succeeds; failures are retried
// on the next call.
func (a *MinioArchiver) ensureBucket(ctx context.Context) error {
	a.bucketMu.Lock()
	defer a.bucketMu.Unlock()
	if a.bucketReady {
		return nil
	}
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err == nil && exists {
		a.bucketReady = true
		return nil
	}
	err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	a.bucketReady = true
	return nil
}

func objectKey(prefix string, record records.Record) string {
	ts := record.CreatedAt.UTC()
	key := fmt.Sprintf("%04d/%02d/%02d/%d.json", ts.Year(), ts.Month(), ts.Day(), record.ID)
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

var _ records.Archiver = (*MinioArchiver)(nil)
