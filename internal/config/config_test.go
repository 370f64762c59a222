package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadReadsRequiredAndDefaults(t *testing.T) {
    for k, v := range map[string]string{
        "APP_ENV": "dev", "APP_PORT": "8080", "DB_USER": "root", "DB_HOST": "db",
        "DB_PORT": "3306", "DB_NAME": "pistac", "JWT_SECRET": "s3cret",
    } {
        t.Setenv(k, v)
    }
    t.Setenv("DB_PASS", "")
    t.Setenv("LOG_LEVEL", "")
    t.Setenv("LOG_PRETTY", "")
    t.Setenv("DB_AUTO_MIGRATE", "")

    c := Load()
    assert.Equal(t, "8080", c.Port)
    assert.Equal(t, "pistac", c.DBName)
    assert.Empty(t, c.DBPass)
    assert.Equal(t, "info", c.LogLevel)
    assert.True(t, c.LogPretty)
    assert.False(t, c.AutoMigrate)
}

func TestRateLimitClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    c := LoadRateLimitConfig()
    assert.Equal(t, 1, c.Capacity)
    assert.Equal(t, 1, c.RefillTokens)
    assert.Equal(t, 10*time.Second, c.TTL)
}

func TestSatelliteLoaders(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    t.Setenv("CACHE_TTL", "not-a-duration")
    cc := LoadCacheConfig()
    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cc.Methods)
    assert.Equal(t, 15*time.Second, cc.TTL)

    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://guest:guest@mq:5672/")
    q := LoadQueueConfig()
    assert.Equal(t, "amqp://guest:guest@mq:5672/", q.URL)
    assert.Equal(t, "admin.audit", q.AuditQueue)

    t.Setenv("S3_BUCKET", "media")
    t.Setenv("S3_KEY_PREFIX", "")
    s := LoadStorageConfig()
    assert.Equal(t, "media", s.Bucket)
    assert.Equal(t, "slides/", s.KeyPrefix)
}
