package handler // HTTP handlers for workshops and their registrations

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/registration"
    "github.com/pistac/admin-backend/internal/repository"
)

// WorkshopHandler serves workshop and registration endpoints.
type WorkshopHandler struct {
    Lifecycle *registration.Lifecycle
}

func NewWorkshopHandler(l *registration.Lifecycle) *WorkshopHandler {
    if l == nil {
        panic("nil lifecycle passed to NewWorkshopHandler")
    }
    return &WorkshopHandler{Lifecycle: l}
}

// CreateWorkshop handles POST /v1/admin/workshops {title, startsAt?}.
func (h *WorkshopHandler) CreateWorkshop(c echo.Context) error {
    var body struct {
        Title    string `json:"title" validate:"required,max=255"`
        StartsAt string `json:"startsAt"`
    }
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    var startsAt *time.Time
    if s := strings.TrimSpace(body.StartsAt); s != "" {
        t, err := time.Parse(time.RFC3339, s)
        if err != nil {
            return writeError(c, repository.Invalid("startsAt", "must be an RFC 3339 timestamp"))
        }
        t = t.UTC()
        startsAt = &t
    }
    w, err := h.Lifecycle.CreateWorkshop(c.Request().Context(), body.Title, startsAt)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, w)
}

// ListWorkshops handles GET /v1/workshops and GET /v1/admin/workshops.
func (h *WorkshopHandler) ListWorkshops(c echo.Context) error {
    ws, err := h.Lifecycle.Workshops(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": ws})
}

// GetWorkshop handles GET /v1/admin/workshops/:id.
func (h *WorkshopHandler) GetWorkshop(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    w, err := h.Lifecycle.Workshop(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, w)
}

// DeleteWorkshop handles DELETE /v1/admin/workshops/:id[?cascade=true].
// A workshop with registrations answers 409 unless cascade is set.
func (h *WorkshopHandler) DeleteWorkshop(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    removed, err := h.Lifecycle.DeleteWorkshop(c.Request().Context(), id, queryBool(c, "cascade"))
    if err != nil {
        return writeError(c, err)
    }
    return deleted(c, echo.Map{"id": id, "registrationsRemoved": removed})
}

// ListRegistrations handles GET /v1/admin/workshop-registrations[?workshopId=],
// newest first.
func (h *WorkshopHandler) ListRegistrations(c echo.Context) error {
    workshopID, err := queryID(c, "workshopId")
    if err != nil {
        return writeError(c, err)
    }
    ctx := c.Request().Context()
    var regs []*model.WorkshopRegistration
    if workshopID != 0 {
        regs, err = h.Lifecycle.ListByWorkshop(ctx, workshopID)
    } else {
        regs, err = h.Lifecycle.ListAll(ctx)
    }
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": regs})
}

// GetRegistration handles GET /v1/admin/workshop-registrations/:id.
func (h *WorkshopHandler) GetRegistration(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    r, err := h.Lifecycle.Get(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, r)
}

// CreateRegistration handles POST /v1/admin/workshop-registrations.
func (h *WorkshopHandler) CreateRegistration(c echo.Context) error {
    var body registration.RegisterInput
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    r, err := h.Lifecycle.Register(c.Request().Context(), body)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, r)
}

// Register handles the public POST /v1/workshops/:id/register.  The row is
// always created pending.
func (h *WorkshopHandler) Register(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    var body struct {
        UserName  string  `json:"userName" validate:"required,max=255"`
        UserEmail string  `json:"userEmail" validate:"required,email,max=255"`
        UserPhone *string `json:"userPhone" validate:"omitempty,max=50"`
    }
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    r, err := h.Lifecycle.Register(c.Request().Context(), registration.RegisterInput{
        WorkshopID: id,
        UserName:   body.UserName,
        UserEmail:  body.UserEmail,
        UserPhone:  body.UserPhone,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, r)
}

// UpdateRegistration handles PATCH /v1/admin/workshop-registrations/:id {status}.
// Any status may follow any other.
func (h *WorkshopHandler) UpdateRegistration(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    var body struct {
        Status string `json:"status" validate:"required"`
    }
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    r, err := h.Lifecycle.SetStatus(c.Request().Context(), id, body.Status)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, r)
}

// DeleteRegistration handles DELETE /v1/admin/workshop-registrations/:id.
func (h *WorkshopHandler) DeleteRegistration(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    if err := h.Lifecycle.Delete(c.Request().Context(), id); err != nil {
        return writeError(c, err)
    }
    return deleted(c, echo.Map{"id": id})
}
