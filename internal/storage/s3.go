// Package storage hands out presigned upload URLs for user documents.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MaxUploadSize mirrors the 4MB limit of the upload widget.
const MaxUploadSize = 4 << 20

// allowed upload content types
var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"text/plain":      true,
}

func AllowedContentType(ct string) bool { return allowedTypes[ct] }

type Options struct {
	Bucket          string
	Region          string
	Endpoint        string // S3-compatible endpoint (MinIO, LocalStack); empty for AWS
	AccessKeyID     string
	SecretAccessKey string
	PresignTTL      time.Duration
}

type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error)
}

// PresignedRequest is the subset of the v4 presign result we hand out.
type PresignedRequest struct {
	URL string
}

type s3Presigner struct{ c *s3.PresignClient }

func (p s3Presigner) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error) {
	req, err := p.c.PresignPutObject(ctx, in, optFns...)
	if err != nil {
		return nil, err
	}
	return &PresignedRequest{URL: req.URL}, nil
}

// S3Store issues presigned PUT URLs under a per-user prefix.
type S3Store struct {
	presigner Presigner
	bucket    string
	ttl       time.Duration
	now       func() time.Time
}

func NewS3Store(ctx context.Context, opts Options) (*S3Store, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithPresigner(s3Presigner{c: s3.NewPresignClient(client)}, opts.Bucket, opts.PresignTTL), nil
}

func NewS3StoreWithPresigner(p Presigner, bucket string, ttl time.Duration) *S3Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &S3Store{presigner: p, bucket: bucket, ttl: ttl, now: time.Now}
}

// PresignUpload returns a PUT URL and the object key for a new upload.
func (s *S3Store) PresignUpload(ctx context.Context, userID, fileName, contentType string, size int64) (url, key string, expires time.Time, err error) {
	key = fmt.Sprintf("users/%s/%s-%s", userID, uuid.NewString(), sanitize(fileName))

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to presign put object: %w", err)
	}
	return req.URL, key, s.now().Add(s.ttl), nil
}

func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
