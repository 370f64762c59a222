package middleware

import (
    "time"

    "github.com/labstack/echo/v4"

    "github.com/pistac/admin-backend/internal/logging"
)

// RequestLogger writes one structured line per request.
func RequestLogger() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            status := c.Response().Status
            ev := logging.Info()
            switch {
            case status >= 500:
                ev = logging.Error()
            case status >= 400:
                ev = logging.Warn()
            }
            ev = ev.Str("method", c.Request().Method).
                Str("route", c.Path()).
                Str("uri", c.Request().RequestURI).
                Int("status", status).
                Dur("latency", time.Since(start)).
                Str("ip", c.RealIP())
            if id, ok := UserID(c); ok {
                ev = ev.Uint64("user_id", id)
            }
            if err != nil {
                ev = ev.Err(err)
            }
            ev.Msg("request")
            return nil
        }
    }
}
