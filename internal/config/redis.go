package config

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from REDIS_* variables:
//   REDIS_ADDR (host:port) or REDIS_HOST + REDIS_PORT, the latter winning
//   REDIS_PASSWORD, REDIS_DB
//   REDIS_TLS enables TLS; REDIS_TLS_INSECURE skips certificate checks
// It returns nil when the server does not answer a ping, and callers then
// run without caching and rate limiting.
func NewRedisClient(ctx context.Context) *redis.Client {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
        addr = host + ":" + port
    }
    var tlsConf *tls.Config
    if envBool("REDIS_TLS", false) {
        tlsConf = &tls.Config{InsecureSkipVerify: envBool("REDIS_TLS_INSECURE", false)}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  envStr("REDIS_PASSWORD", ""),
        DB:        envInt("REDIS_DB", 0),
        TLSConfig: tlsConf,
    })
    pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(pingCtx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
