package router

import (
    "github.com/labstack/echo/v4"

    "github.com/pistac/admin-backend/internal/middleware"
)

// RegisterAdmin registers every /v1/admin endpoint.  All of them require a
// valid JWT with role "admin" and pass through limiter.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string, limiter echo.MiddlewareFunc) {
    g := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireAdmin(),
        limiter,
    )

    // ---- Users and entitlements ----
    g.GET("/users", h.Access.ListUsers)
    g.GET("/users/:id", h.Access.GetUser)
    g.PATCH("/users/:id", h.Access.UpdateUser)
    g.GET("/users/:id/course-access", h.Access.CourseAccess)
    g.GET("/users/:id/course-access/:courseId", h.Access.ResolveCourse)
    g.POST("/users/:id/grant-course-access", h.Access.GrantCourseAccess)
    g.POST("/users/:id/grant-course-access/batch", h.Access.GrantCourseAccessBatch)
    g.DELETE("/users/:id/revoke-course-access/:courseId", h.Access.RevokeCourseAccess)

    // ---- Courses ----
    g.GET("/courses", h.Access.ListCourses)
    g.GET("/courses/:id", h.Access.GetCourse)

    // ---- Documents ----
    g.POST("/documents", h.Documents.CreateDocument)
    g.GET("/documents", h.Documents.ListDocuments)
    g.GET("/documents/:id", h.Documents.GetDocument)
    g.PATCH("/documents/:id", h.Documents.PatchDocument)
    g.POST("/documents/:id/toggle-featured", h.Documents.ToggleFeatured)
    g.DELETE("/documents/:id", h.Documents.DeleteDocument)
    g.GET("/magazines", h.Documents.ListMagazines)
    g.POST("/magazines", h.Documents.CreateMagazine)

    // ---- Slides ----
    g.GET("/slides", h.Display.ListSlides)
    g.POST("/slides", h.Display.CreateSlide)
    g.GET("/slides/:id", h.Display.GetSlide)
    g.PUT("/slides/:id", h.Display.ReplaceSlide)
    g.PATCH("/slides/:id", h.Display.PatchSlide)
    g.DELETE("/slides/:id", h.Display.DeleteSlide)

    // ---- Quick access ----
    g.GET("/quick-access", h.Display.ListQuickAccess)
    g.POST("/quick-access", h.Display.CreateQuickAccess)
    g.PUT("/quick-access/:id", h.Display.ReplaceQuickAccess)
    g.PATCH("/quick-access/:id", h.Display.PatchQuickAccess)
    g.DELETE("/quick-access/:id", h.Display.DeleteQuickAccess)

    // ---- Workshops and registrations ----
    g.GET("/workshops", h.Workshops.ListWorkshops)
    g.POST("/workshops", h.Workshops.CreateWorkshop)
    g.GET("/workshops/:id", h.Workshops.GetWorkshop)
    g.DELETE("/workshops/:id", h.Workshops.DeleteWorkshop)
    g.GET("/workshop-registrations", h.Workshops.ListRegistrations)
    g.POST("/workshop-registrations", h.Workshops.CreateRegistration)
    g.GET("/workshop-registrations/:id", h.Workshops.GetRegistration)
    g.PATCH("/workshop-registrations/:id", h.Workshops.UpdateRegistration)
    g.DELETE("/workshop-registrations/:id", h.Workshops.DeleteRegistration)
}
