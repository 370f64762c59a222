package handler // HTTP handlers for users, courses and course entitlements

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/pistac/admin-backend/internal/entitlement"
)

// AccessHandler serves user administration and course access endpoints.
type AccessHandler struct {
    Resolver *entitlement.Resolver
    Users    *entitlement.Users
}

// NewAccessHandler panics if a dependency is missing.
func NewAccessHandler(resolver *entitlement.Resolver, users *entitlement.Users) *AccessHandler {
    if resolver == nil || users == nil {
        panic("nil dependency passed to NewAccessHandler")
    }
    return &AccessHandler{Resolver: resolver, Users: users}
}

// ListUsers handles GET /v1/admin/users.
func (h *AccessHandler) ListUsers(c echo.Context) error {
    users, err := h.Users.List(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": users})
}

// GetUser handles GET /v1/admin/users/:id.
func (h *AccessHandler) GetUser(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    u, err := h.Users.Get(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}

// UpdateUser handles PATCH /v1/admin/users/:id {role?, subscriptionStatus?}.
func (h *AccessHandler) UpdateUser(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    var body entitlement.ProfilePatch
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    u, err := h.Users.Update(c.Request().Context(), id, body)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}

// ListCourses handles GET /v1/courses and GET /v1/admin/courses.
func (h *AccessHandler) ListCourses(c echo.Context) error {
    courses, err := h.Resolver.Courses(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": courses})
}

// GetCourse handles GET /v1/admin/courses/:id.
func (h *AccessHandler) GetCourse(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    course, err := h.Resolver.Course(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, course)
}

// CourseAccess handles GET /v1/admin/users/:id/course-access.  It returns
// the stored grants (expired ones flagged inactive) and every course the
// user can open right now with the reason.
func (h *AccessHandler) CourseAccess(c echo.Context) error {
    userID, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    ctx := c.Request().Context()
    grants, err := h.Resolver.ListGrants(ctx, userID)
    if err != nil {
        return writeError(c, err)
    }
    entitled, err := h.Resolver.Entitled(ctx, userID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "userId":       userID,
        "grants":       grants,
        "entitlements": entitled,
    })
}

// ResolveCourse handles GET /v1/admin/users/:id/course-access/:courseId.
func (h *AccessHandler) ResolveCourse(c echo.Context) error {
    userID, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    courseID, err := parseID(c, "courseId")
    if err != nil {
        return writeError(c, err)
    }
    d, err := h.Resolver.Resolve(c.Request().Context(), userID, courseID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, d)
}

// MyCourseAccess handles GET /v1/me/courses/:courseId/access for the
// authenticated caller.
func (h *AccessHandler) MyCourseAccess(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    courseID, err := parseID(c, "courseId")
    if err != nil {
        return writeError(c, err)
    }
    d, err := h.Resolver.Resolve(c.Request().Context(), userID, courseID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, d)
}

type grantRequest struct {
    CourseID   uint64 `json:"courseId" validate:"required"`
    AccessType string `json:"accessType" validate:"max=20"`
    ExpiryDate string `json:"expiryDate" validate:"max=40"`
}

func (r grantRequest) input() entitlement.GrantInput {
    return entitlement.GrantInput{CourseID: r.CourseID, AccessType: r.AccessType, ExpiryDate: r.ExpiryDate}
}

// GrantCourseAccess handles POST /v1/admin/users/:id/grant-course-access.
// Granting again overwrites the previous grant.
func (h *AccessHandler) GrantCourseAccess(c echo.Context) error {
    userID, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    var body grantRequest
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    rec, err := h.Resolver.Grant(c.Request().Context(), userID, body.input())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, rec)
}

// GrantCourseAccessBatch handles POST .../grant-course-access/batch.  Items
// are applied one by one; the response reports each outcome, including
// items the resolver rejects as invalid.
func (h *AccessHandler) GrantCourseAccessBatch(c echo.Context) error {
    userID, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    var body struct {
        Items []grantRequest `json:"items" validate:"required,min=1,max=100"`
    }
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    items := make([]entitlement.GrantInput, len(body.Items))
    for i, it := range body.Items {
        items[i] = it.input()
    }
    results, err := h.Resolver.GrantMany(c.Request().Context(), userID, items)
    if err != nil {
        return writeError(c, err)
    }
    failed := 0
    for _, r := range results {
        if !r.OK {
            failed++
        }
    }
    return c.JSON(http.StatusOK, echo.Map{
        "results":   results,
        "succeeded": len(results) - failed,
        "failed":    failed,
    })
}

// RevokeCourseAccess handles DELETE /v1/admin/users/:id/revoke-course-access/:courseId.
// Revoking a grant that does not exist still answers 200.
func (h *AccessHandler) RevokeCourseAccess(c echo.Context) error {
    userID, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    courseID, err := parseID(c, "courseId")
    if err != nil {
        return writeError(c, err)
    }
    removed, err := h.Resolver.Revoke(c.Request().Context(), userID, courseID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"revoked": removed, "userId": userID, "courseId": courseID})
}
