package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "reflect"
    "strconv"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/pistac/admin-backend/internal/logging"
    "github.com/pistac/admin-backend/internal/middleware"
    "github.com/pistac/admin-backend/internal/repository"
)

// validate checks request DTOs. Field names in messages are the json names.
var validate = newValidator()

func newValidator() *validator.Validate {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return v
}

// fieldMessage turns the first validator failure into a ValidationError.
func fieldMessage(err error) error {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) || len(verrs) == 0 {
        return repository.Invalid("", "%s", err.Error())
    }
    fe := verrs[0]
    field := fe.Field()
    switch fe.Tag() {
    case "required":
        return repository.Invalid(field, "is required")
    case "max":
        if fe.Kind() == reflect.Slice {
            return repository.Invalid(field, "must contain at most %s items", fe.Param())
        }
        return repository.Invalid(field, "must be at most %s characters", fe.Param())
    case "gte":
        return repository.Invalid(field, "must be at least %s", fe.Param())
    case "oneof":
        return repository.Invalid(field, "must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
    case "email":
        return repository.Invalid(field, "must be a valid email address")
    case "url":
        return repository.Invalid(field, "must be a valid URL")
    case "min":
        return repository.Invalid(field, "must contain at least %s items", fe.Param())
    }
    return repository.Invalid(field, "failed %s validation", fe.Tag())
}

// bindJSON decodes the body into dst and runs struct validation.
func bindJSON(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return repository.Invalid("", "invalid request body")
    }
    if err := validate.Struct(dst); err != nil {
        return fieldMessage(err)
    }
    return nil
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, repository.Invalid(name, "must be a positive integer")
    }
    return id, nil
}

// queryID reads an optional positive integer query parameter; 0 when absent.
func queryID(c echo.Context, name string) (uint64, error) {
    raw := strings.TrimSpace(c.QueryParam(name))
    if raw == "" {
        return 0, nil
    }
    id, err := strconv.ParseUint(raw, 10, 64)
    if err != nil {
        return 0, repository.Invalid(name, "must be a positive integer")
    }
    return id, nil
}

// queryBool reads ?name=true style flags.
func queryBool(c echo.Context, name string) bool {
    v, _ := strconv.ParseBool(c.QueryParam(name))
    return v
}

// getUserID returns the authenticated caller or an error when the request
// did not pass JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := middleware.UserID(c); ok {
        return id, nil
    }
    return 0, errors.New("invalid user_id in context")
}

// writeError maps domain errors onto status codes.  Unexpected errors are
// logged and hidden behind a generic message.
func writeError(c echo.Context, err error) error {
    var ve *repository.ValidationError
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    logging.Error().Err(err).
        Str("method", c.Request().Method).
        Str("route", c.Path()).
        Msg("request failed")
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func deleted(c echo.Context, extra echo.Map) error {
    body := echo.Map{"deleted": true}
    for k, v := range extra {
        body[k] = v
    }
    return c.JSON(http.StatusOK, body)
}
