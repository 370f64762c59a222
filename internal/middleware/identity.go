package middleware

import (
    "encoding/json"
    "strconv"

    "github.com/labstack/echo/v4"
)

// Context keys written by JWTAuth.
const (
    ctxUserID = "user_id"
    ctxRole   = "role"
)

// UserID returns the authenticated user's id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxUserID).(uint64)
    return id, ok && id != 0
}

// Role returns the authenticated user's role, or "".
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// subjectID accepts the "sub" claim as a JSON number or a decimal string.
func subjectID(v any) (uint64, bool) {
    switch t := v.(type) {
    case float64:
        if t <= 0 || t != float64(uint64(t)) {
            return 0, false
        }
        return uint64(t), true
    case json.Number:
        n, err := strconv.ParseUint(t.String(), 10, 64)
        return n, err == nil && n != 0
    case string:
        n, err := strconv.ParseUint(t, 10, 64)
        return n, err == nil && n != 0
    }
    return 0, false
}

// subjectKey identifies the caller in cache and rate limit keys.
func subjectKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return "u" + strconv.FormatUint(id, 10)
    }
    return "anon"
}
