// Package storage uploads product and banner images to S3 compatible object
// storage (AWS S3, Cloudflare R2, MinIO).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"storefront-service/internal/config"
)

// MaxImageSize is the largest accepted upload in bytes
const MaxImageSize = 5 << 20

var (
	ErrUnsupportedType = errors.New("file type not allowed (allowed: jpg, jpeg, png, webp, gif)")
	ErrTooLarge        = errors.New("file exceeds the 5MB limit")
)

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// Image is a stored object and where it can be fetched
type Image struct {
	URL         string `json:"url"`
	ObjectKey   string `json:"objectKey"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// ImageStore uploads images to a bucket
type ImageStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewImageStore builds an S3 client with static credentials. A custom
// endpoint switches to path-style addressing.
func NewImageStore(ctx context.Context, cfg *config.Config) (*ImageStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		),
		awsconfig.WithRegion(cfg.StorageRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.StorageEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
			o.UsePathStyle = true
		}
	})

	return &ImageStore{
		client:    client,
		bucket:    cfg.StorageBucket,
		publicURL: strings.TrimRight(cfg.StoragePublicURL, "/"),
	}, nil
}

// Upload stores an image under folder/<uuid><ext>
func (s *ImageStore) Upload(ctx context.Context, folder, filename, contentType string, size int64, body io.Reader) (*Image, error) {
	ext, ct, err := ValidateImage(filename, contentType, size)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(folder, ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}

	return &Image{URL: s.URL(key), ObjectKey: key, ContentType: ct, Size: size}, nil
}

// Delete removes an object; deleting a missing key is not an error in S3
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URL is the public address of key
func (s *ImageStore) URL(key string) string {
	if s.publicURL == "" {
		return fmt.Sprintf("/%s/%s", s.bucket, key)
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

// ValidateImage checks extension and size and resolves the content type
func ValidateImage(filename, contentType string, size int64) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return "", "", ErrUnsupportedType
	}
	if size > MaxImageSize {
		return "", "", ErrTooLarge
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return ext, contentType, nil
}

// ObjectKey builds a unique, date-partitioned key
func ObjectKey(folder, ext string) string {
	return fmt.Sprintf("%s/%s/%s%s", strings.Trim(folder, "/"), time.Now().UTC().Format("2006/01"), uuid.NewString(), ext)
}
