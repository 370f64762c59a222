package config

import "time"

// StorageConfig points at the S3 bucket holding slide images.  An empty
// Bucket disables object storage; slides then keep whatever image key they
// were given and no presigned URLs are produced.
type StorageConfig struct {
    Bucket          string
    Region          string
    AccessKeyID     string
    SecretAccessKey string
    Endpoint        string // S3-compatible endpoint such as MinIO; empty for AWS
    KeyPrefix       string
    PresignTTL      time.Duration
}

func LoadStorageConfig() StorageConfig {
    return StorageConfig{
        Bucket:          envStr("S3_BUCKET", ""),
        Region:          envStr("S3_REGION", "us-east-1"),
        AccessKeyID:     envStr("S3_ACCESS_KEY_ID", ""),
        SecretAccessKey: envStr("S3_SECRET_ACCESS_KEY", ""),
        Endpoint:        envStr("S3_ENDPOINT", ""),
        KeyPrefix:       envStr("S3_KEY_PREFIX", "slides/"),
        PresignTTL:      envDur("S3_PRESIGN_TTL", 15*time.Minute),
    }
}
