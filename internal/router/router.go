package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/pistac/admin-backend/internal/handler"
    "github.com/pistac/admin-backend/internal/middleware"
)

// Handlers bundles every HTTP handler the API exposes.
type Handlers struct {
    Access    *handler.AccessHandler
    Documents *handler.DocumentHandler
    Display   *handler.DisplayHandler
    Workshops *handler.WorkshopHandler
}

// RegisterRoutes registers routes that need neither authentication nor
// caching.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
    e.GET("/healthz", handler.Health(db))
}

// RegisterPublic registers the guest-facing read endpoints plus workshop
// sign-up.  cache wraps the GET listings only.
func RegisterPublic(e *echo.Echo, h Handlers, cache echo.MiddlewareFunc) {
    g := e.Group("/v1")
    g.GET("/courses", h.Access.ListCourses, cache)
    g.GET("/articles", h.Documents.ListArticles, cache)
    g.GET("/articles/:id", h.Documents.GetArticle, cache)
    g.GET("/magazines", h.Documents.ListMagazines, cache)
    g.GET("/slides", h.Display.ListPublicSlides, cache)
    g.GET("/quick-access", h.Display.ListPublicQuickAccess, cache)
    g.GET("/workshops", h.Workshops.ListWorkshops, cache)
    g.POST("/workshops/:id/register", h.Workshops.Register)
}

// RegisterMe registers endpoints for any authenticated user.
func RegisterMe(e *echo.Echo, h Handlers, jwtSecret string) {
    g := e.Group("/v1/me", middleware.JWTAuth(jwtSecret))
    g.GET("/courses/:courseId/access", h.Access.MyCourseAccess)
}
