package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "sort"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/pistac/admin-backend/internal/config"
    "github.com/pistac/admin-backend/internal/logging"
)

// captureWriter tees the response body into buf, up to limit bytes.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    limit     int
    truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.truncated {
        if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
            cw.truncated = true
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cachedResponse is the value stored in Redis.
type cachedResponse struct {
    Status      int    `json:"s"`
    ContentType string `json:"ct"`
    Body        []byte `json:"b"`
}

// cacheKey hashes the route and, for route_query, the sorted query string
// so ?a=1&b=2 and ?b=2&a=1 share an entry.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    parts := []string{c.Request().Method, c.Path()}
    for _, name := range c.ParamNames() {
        parts = append(parts, name+"="+c.Param(name))
    }
    if !strings.EqualFold(cfg.KeyStrategy, "route") {
        q := c.QueryParams()
        keys := make([]string, 0, len(q))
        for k := range q {
            keys = append(keys, k)
        }
        sort.Strings(keys)
        for _, k := range keys {
            vals := append([]string(nil), q[k]...)
            sort.Strings(vals)
            parts = append(parts, k+"="+strings.Join(vals, ","))
        }
    }
    sum := sha1.Sum([]byte(strings.Join(parts, "|")))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// NewRedisCache caches successful responses of the configured methods.  It
// is meant for public listings only: admin responses must always reflect
// the latest write.  A nil client or disabled config yields a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 15 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, hit.ContentType, hit.Body)
                }
            } else if err != redis.Nil {
                logging.Debug().Err(err).Str("key", key).Msg("cache read failed")
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated {
                return nil
            }
            payload, err := json.Marshal(cachedResponse{
                Status:      cw.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        cw.buf.Bytes(),
            })
            if err != nil {
                return nil
            }
            // the request context may already be cancelled once the body is flushed
            if err := rdb.SetEx(context.Background(), key, payload, ttl).Err(); err != nil {
                logging.Debug().Err(err).Str("key", key).Msg("cache write failed")
            }
            return nil
        }
    }
}
