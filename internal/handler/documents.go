package handler // HTTP handlers for documents and magazines

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/publication"
)

// DocumentHandler serves article and magazine endpoints.
type DocumentHandler struct {
    Docs *publication.Service
}

func NewDocumentHandler(docs *publication.Service) *DocumentHandler {
    if docs == nil {
        panic("nil service passed to NewDocumentHandler")
    }
    return &DocumentHandler{Docs: docs}
}

// filterFrom reads ?category=&magazineId=&featured=true&published=true.
func filterFrom(c echo.Context) (model.DocumentFilter, error) {
    magazineID, err := queryID(c, "magazineId")
    if err != nil {
        return model.DocumentFilter{}, err
    }
    return model.DocumentFilter{
        Category:      strings.TrimSpace(c.QueryParam("category")),
        MagazineID:    magazineID,
        FeaturedOnly:  queryBool(c, "featured"),
        PublishedOnly: queryBool(c, "published"),
    }, nil
}

// CreateDocument handles POST /v1/admin/documents.  Without explicit flags
// the document starts as a non-featured draft.
func (h *DocumentHandler) CreateDocument(c echo.Context) error {
    var body publication.CreateInput
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    d, err := h.Docs.Create(c.Request().Context(), body)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, d)
}

// ListDocuments handles GET /v1/admin/documents; drafts included.
func (h *DocumentHandler) ListDocuments(c echo.Context) error {
    f, err := filterFrom(c)
    if err != nil {
        return writeError(c, err)
    }
    docs, err := h.Docs.ListAdmin(c.Request().Context(), f)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": docs})
}

// GetDocument handles GET /v1/admin/documents/:id.
func (h *DocumentHandler) GetDocument(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    d, err := h.Docs.Get(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, d)
}

// PatchDocument handles PATCH /v1/admin/documents/:id
// {isPublished?, isFeatured?, version?}.
func (h *DocumentHandler) PatchDocument(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    var body publication.Patch
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    d, err := h.Docs.Patch(c.Request().Context(), id, body)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, d)
}

// ToggleFeatured handles POST /v1/admin/documents/:id/toggle-featured.
func (h *DocumentHandler) ToggleFeatured(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    d, err := h.Docs.ToggleFeatured(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, d)
}

// DeleteDocument handles DELETE /v1/admin/documents/:id.
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    if err := h.Docs.Delete(c.Request().Context(), id); err != nil {
        return writeError(c, err)
    }
    return deleted(c, echo.Map{"id": id})
}

// ListArticles handles GET /v1/articles.  Only published documents are
// returned, whatever the featured flag.
func (h *DocumentHandler) ListArticles(c echo.Context) error {
    f, err := filterFrom(c)
    if err != nil {
        return writeError(c, err)
    }
    docs, err := h.Docs.ListPublic(c.Request().Context(), f)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": docs})
}

// GetArticle handles GET /v1/articles/:id; drafts answer 404.
func (h *DocumentHandler) GetArticle(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    d, err := h.Docs.GetPublic(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, d)
}

// ListMagazines handles GET /v1/magazines and GET /v1/admin/magazines.
func (h *DocumentHandler) ListMagazines(c echo.Context) error {
    mags, err := h.Docs.ListMagazines(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": mags})
}

// CreateMagazine handles POST /v1/admin/magazines.
func (h *DocumentHandler) CreateMagazine(c echo.Context) error {
    var body struct {
        Title string `json:"title" validate:"required,max=255"`
        Issue string `json:"issue" validate:"max=100"`
    }
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    m, err := h.Docs.CreateMagazine(c.Request().Context(), body.Title, body.Issue)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, m)
}
