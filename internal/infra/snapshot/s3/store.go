// Package s3 implements the snapshot archive on an S3-compatible backend
// (AWS S3 or MinIO). Minimal surface area: single bucket, keys map to object
// keys directly.
package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"fluxcore/internal/infra/snapshot/core"
)

// Archive implements core.Archive backed by an S3 bucket.
type Archive struct {
	client *s3.Client
	bucket string
}

// Config holds explicit construction parameters (mostly for tests). For prod
// we rely primarily on environment variables.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional; if set enables custom endpoint (e.g. MinIO)
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string // optional
	SessionToken    string // optional
	PathStyle       bool
}

// Environment variables:
//   FLUXCORE_SNAPSHOT_DRIVER=s3
//   FLUXCORE_SNAPSHOT_S3_BUCKET=<bucket> (required)
//   FLUXCORE_SNAPSHOT_S3_REGION=<region> (default us-east-1)
//   FLUXCORE_SNAPSHOT_S3_ENDPOINT=<url> (optional, for MinIO)
//   FLUXCORE_SNAPSHOT_S3_PATH_STYLE=true|false (default false)
//   AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)

// New creates an S3 snapshot archive from Config.
func New(ctx context.Context, cfg Config) (*Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Archive{client: client, bucket: cfg.Bucket}, nil
}

// OpenFromEnv constructs an S3 archive from process environment.
func OpenFromEnv(ctx context.Context) (*Archive, error) {
	bucket := os.Getenv("FLUXCORE_SNAPSHOT_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("FLUXCORE_SNAPSHOT_S3_BUCKET required for s3 driver")
	}
	cfg := Config{
		Bucket:    bucket,
		Region:    os.Getenv("FLUXCORE_SNAPSHOT_S3_REGION"),
		Endpoint:  os.Getenv("FLUXCORE_SNAPSHOT_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("FLUXCORE_SNAPSHOT_S3_PATH_STYLE"), "true"),
	}
	return New(ctx, cfg)
}

// Driver returns the archive driver identifier.
func (a *Archive) Driver() core.Driver { return core.DriverS3 }

// Put uploads a snapshot object, replacing any existing object at key.
func (a *Archive) Put(ctx context.Context, key string, r io.Reader, contentType string) (core.Info, error) {
	input := &s3.PutObjectInput{Bucket: &a.bucket, Key: &key, Body: r}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := a.client.PutObject(ctx, input); err != nil {
		return core.Info{}, err
	}
	return a.head(ctx, key)
}

// Get downloads a snapshot object.
func (a *Archive) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &a.bucket, Key: &key})
	if err != nil {
		return core.Info{}, nil, err
	}
	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return a.objectInfo(key, size, out.ContentType, out.LastModified), out.Body, nil
}

// List enumerates objects under prefix, sorted by key.
func (a *Archive) List(ctx context.Context, prefix string) ([]core.Info, error) {
	var infos []core.Info
	var token *string
	for {
		out, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket: &a.bucket, Prefix: &prefix, ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			var size int64
			if obj.Size != nil {
				size = *obj.Size
			}
			infos = append(infos, core.Info{
				Key:          aws.ToString(obj.Key),
				Size:         size,
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Delete removes a snapshot object. S3 deletes are idempotent; absent keys
// do not error.
func (a *Archive) Delete(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &a.bucket, Key: &key})
	return err
}

func (a *Archive) head(ctx context.Context, key string) (core.Info, error) {
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &a.bucket, Key: &key})
	if err != nil {
		return core.Info{}, err
	}
	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return a.objectInfo(key, size, out.ContentType, out.LastModified), nil
}

func (a *Archive) objectInfo(key string, size int64, contentType *string, lastModified *time.Time) core.Info {
	info := core.Info{Key: key, Size: size, LastModified: time.Now().UTC()}
	if contentType != nil {
		info.ContentType = *contentType
	}
	if lastModified != nil {
		info.LastModified = *lastModified
	}
	return info
}
