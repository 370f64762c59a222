// Package storage talks to the S3 bucket that holds slide images.
package storage

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/aws/aws-sdk-go-v2/aws"
    awsconfig "github.com/aws/aws-sdk-go-v2/config"
    "github.com/aws/aws-sdk-go-v2/credentials"
    "github.com/aws/aws-sdk-go-v2/service/s3"

    "github.com/pistac/admin-backend/internal/config"
)

type S3Store struct {
    client     *s3.Client
    presigner  *s3.PresignClient
    bucket     string
    prefix     string
    presignTTL time.Duration
}

// NewS3Store builds a client for cfg. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
    if cfg.Bucket == "" {
        return nil, fmt.Errorf("S3_BUCKET is required")
    }
    opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
    if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
        opts = append(opts, awsconfig.WithCredentialsProvider(
            credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
        ))
    }
    awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
    if err != nil {
        return nil, err
    }
    client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
        if cfg.Endpoint != "" {
            o.BaseEndpoint = aws.String(cfg.Endpoint)
            o.UsePathStyle = true
        }
    })
    ttl := cfg.PresignTTL
    if ttl <= 0 {
        ttl = 15 * time.Minute
    }
    return &S3Store{
        client:     client,
        presigner:  s3.NewPresignClient(client),
        bucket:     cfg.Bucket,
        prefix:     cfg.KeyPrefix,
        presignTTL: ttl,
    }, nil
}

// ObjectKey maps an image key stored on a slide to its full bucket key.
// Keys that already carry the prefix, and absolute URLs, are left alone.
func ObjectKey(prefix, key string) string {
    key = strings.TrimLeft(key, "/")
    if prefix == "" || strings.HasPrefix(key, prefix) {
        return key
    }
    return prefix + key
}

// IsExternal reports whether key is a full URL rather than a bucket key.
func IsExternal(key string) bool {
    return strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://")
}

// Delete removes the object. Empty and external keys are ignored.
func (s *S3Store) Delete(ctx context.Context, key string) error {
    if key == "" || IsExternal(key) {
        return nil
    }
    _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
        Bucket: aws.String(s.bucket),
        Key:    aws.String(ObjectKey(s.prefix, key)),
    })
    return err
}

// PresignedGetURL returns a temporary download URL for key. External keys
// are returned as is.
func (s *S3Store) PresignedGetURL(ctx context.Context, key string) (string, error) {
    if key == "" {
        return "", nil
    }
    if IsExternal(key) {
        return key, nil
    }
    req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
        Bucket: aws.String(s.bucket),
        Key:    aws.String(ObjectKey(s.prefix, key)),
    }, func(o *s3.PresignOptions) {
        o.Expires = s.presignTTL
    })
    if err != nil {
        return "", err
    }
    return req.URL, nil
}
