package storage

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/pistac/admin-backend/internal/config"
)

func TestObjectKey(t *testing.T) {
    tests := []struct {
        prefix, key, want string
    }{
        {"slides/", "hero.png", "slides/hero.png"},
        {"slides/", "/hero.png", "slides/hero.png"},
        {"slides/", "slides/hero.png", "slides/hero.png"},
        {"", "hero.png", "hero.png"},
    }
    for _, tc := range tests {
        t.Run(tc.key, func(t *testing.T) {
            assert.Equal(t, tc.want, ObjectKey(tc.prefix, tc.key))
        })
    }
}

func TestExternalKeysBypassBucket(t *testing.T) {
    s, err := NewS3Store(context.Background(), config.StorageConfig{
        Bucket:          "media",
        Region:          "us-east-1",
        AccessKeyID:     "AKIDEXAMPLE",
        SecretAccessKey: "secret",
        Endpoint:        "http://127.0.0.1:9000",
        KeyPrefix:       "slides/",
    })
    require.NoError(t, err)

    url, err := s.PresignedGetURL(context.Background(), "https://cdn.example.com/a.png")
    require.NoError(t, err)
    assert.Equal(t, "https://cdn.example.com/a.png", url)
    assert.NoError(t, s.Delete(context.Background(), "https://cdn.example.com/a.png"))
    assert.NoError(t, s.Delete(context.Background(), ""))

    // presigning is local; no request leaves the process
    url, err = s.PresignedGetURL(context.Background(), "hero.png")
    require.NoError(t, err)
    assert.Contains(t, url, "/media/slides/hero.png")
    assert.Contains(t, url, "X-Amz-Signature=")
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
    _, err := NewS3Store(context.Background(), config.StorageConfig{})
    assert.Error(t, err)
}
