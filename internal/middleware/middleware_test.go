package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/pistac/admin-backend/internal/config"
    "github.com/pistac/admin-backend/internal/queue"
    "github.com/pistac/admin-backend/internal/utils"
)

const secret = "test-secret"

func newEcho() *echo.Echo {
    e := echo.New()
    g := e.Group("/admin", JWTAuth(secret), RequireAdmin())
    g.GET("/whoami", func(c echo.Context) error {
        id, _ := UserID(c)
        return c.JSON(http.StatusOK, echo.Map{
            "id":    id,
            "role":  Role(c),
            "actor": queue.ActorFrom(c.Request().Context()),
        })
    })
    return e
}

func do(e *echo.Echo, token string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuthAndRole(t *testing.T) {
    e := newEcho()

    admin, err := utils.NewAccessToken(secret, 7, "admin", time.Minute)
    require.NoError(t, err)
    rec := do(e, admin.Token)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"id":7,"role":"admin","actor":7}`, rec.Body.String())

    user, err := utils.NewAccessToken(secret, 8, "user", time.Minute)
    require.NoError(t, err)
    assert.Equal(t, http.StatusForbidden, do(e, user.Token).Code)

    other, err := utils.NewAccessToken("other-secret", 7, "admin", time.Minute)
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, do(e, other.Token).Code)

    expired, err := utils.NewAccessToken(secret, 7, "admin", -time.Minute)
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, do(e, expired.Token).Code)

    assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
}

func TestSubjectID(t *testing.T) {
    tests := []struct {
        in   any
        want uint64
        ok   bool
    }{
        {float64(12), 12, true},
        {"34", 34, true},
        {float64(1.5), 0, false},
        {"abc", 0, false},
        {nil, 0, false},
        {float64(0), 0, false},
    }
    for _, tc := range tests {
        got, ok := subjectID(tc.in)
        assert.Equal(t, tc.ok, ok, "%v", tc.in)
        assert.Equal(t, tc.want, got, "%v", tc.in)
    }
}

func TestDisabledCacheAndLimiterPassThrough(t *testing.T) {
    e := echo.New()
    e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
        NewRedisCache(config.CacheConfig{Enabled: true}, nil),
        NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCacheKeyIgnoresQueryOrder(t *testing.T) {
    e := echo.New()
    cfg := config.CacheConfig{Prefix: "c", KeyStrategy: "route_query"}
    key := func(target string) string {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
        c.SetPath("/v1/articles")
        return cacheKey(cfg, c)
    }
    assert.Equal(t, key("/v1/articles?a=1&b=2"), key("/v1/articles?b=2&a=1"))
    assert.NotEqual(t, key("/v1/articles?a=1"), key("/v1/articles?a=2"))

    cfg.KeyStrategy = "route"
    assert.Equal(t, key("/v1/articles?a=1"), key("/v1/articles?a=2"))
}

func TestRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/admin/slides", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/admin/slides")
    c.Set(ctxUserID, uint64(3))

    cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
    assert.Equal(t, "rl:u3:POST /v1/admin/slides", rateKey(cfg, c))
    cfg.KeyStrategy = "ip"
    assert.Equal(t, "rl:10.0.0.1", rateKey(cfg, c))
}
