// Package storage uploads pipeline artifacts to S3-compatible object
// storage and keeps a local history of runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "github.com/b3flow/ibovscan/internal/errors"
	"github.com/b3flow/ibovscan/internal/logger"
)

// S3Config holds the object storage connection settings. Endpoint may omit
// the scheme; MinIO deployments without TLS get http.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Uploader ships local files into one bucket.
type Uploader struct {
	client *s3.Client
	up     *manager.Uploader
	bucket string
	log    *logger.Logger
}

// NewUploader builds an uploader against an S3-compatible endpoint.
// Path-style addressing is forced because MinIO does not resolve
// virtual-host bucket names.
func NewUploader(ctx context.Context, cfg S3Config, log *logger.Logger) (*Uploader, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, apperrors.NewUpload("configure", fmt.Errorf("endpoint and bucket are required"))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, apperrors.NewUpload("configure", err)
	}

	endpoint := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Uploader{
		client: client,
		up:     manager.NewUploader(client),
		bucket: cfg.Bucket,
		log:    log.WithComponent("storage"),
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) && !strings.Contains(err.Error(), "NotFound") {
		return apperrors.NewUpload("head_bucket", err)
	}

	_, err = u.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(u.bucket)})
	if err != nil {
		return apperrors.NewUpload("create_bucket", err)
	}
	u.log.Infof("Created bucket %s", u.bucket)
	return nil
}

// DateFolder is the object key prefix for a run day, e.g. "20260828".
func DateFolder(t time.Time) string {
	return t.Format("20060102")
}

// UploadFile ships one local file to <prefix>/<basename>.
func (u *Uploader) UploadFile(ctx context.Context, path, prefix string) error {
	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewUpload("open", err)
	}
	defer f.Close()

	key := prefix + "/" + filepath.Base(path)
	_, err = u.up.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return apperrors.NewUpload("put_object", err)
	}

	u.log.Infof("Uploaded %s", key)
	return nil
}

// UploadDir ships every regular file under dir into the given key prefix.
// A file that fails to upload is logged and skipped; the count of
// successful uploads comes back with the first error seen, if any.
func (u *Uploader) UploadDir(ctx context.Context, dir, prefix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, apperrors.NewUpload("read_dir", err)
	}

	uploaded := 0
	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := u.UploadFile(ctx, path, prefix); err != nil {
			u.log.WithError(err).Warnf("Upload failed for %s", entry.Name())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		uploaded++
	}
	return uploaded, firstErr
}

func normalizeEndpoint(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
