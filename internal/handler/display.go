package handler // HTTP handlers for homepage slides and quick-access tiles

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/pistac/admin-backend/internal/logging"
    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/ordering"
    "github.com/pistac/admin-backend/internal/repository"
)

// ImageSigner turns a stored image key into a URL browsers can load.
type ImageSigner interface {
    PresignedGetURL(ctx context.Context, key string) (string, error)
}

// DisplayHandler serves the two orderable display collections.  Images is
// optional; without it slides are returned with their raw image key only.
type DisplayHandler struct {
    Slides *ordering.Collection[*model.Slide]
    Quick  *ordering.Collection[*model.QuickAccessItem]
    Images ImageSigner
}

func NewDisplayHandler(slides *ordering.Collection[*model.Slide], quick *ordering.Collection[*model.QuickAccessItem], images ImageSigner) *DisplayHandler {
    if slides == nil || quick == nil {
        panic("nil collection passed to NewDisplayHandler")
    }
    return &DisplayHandler{Slides: slides, Quick: quick, Images: images}
}

// patchItem applies a partial update.  A body that only moves or only
// toggles an item becomes a single-field write; anything else loads the
// row, merges and rewrites it.
func patchItem[T ordering.Item](ctx context.Context, coll *ordering.Collection[T], id uint64,
    order *int, active *bool, otherFields bool, merge func(T)) (T, error) {
    if !otherFields {
        switch {
        case order != nil && active == nil:
            return coll.SetOrder(ctx, id, *order)
        case order == nil && active != nil:
            return coll.SetActive(ctx, id, *active)
        case order == nil && active == nil:
            var zero T
            return zero, repository.Invalid("", "nothing to update")
        }
    }
    item, err := coll.Get(ctx, id)
    if err != nil {
        var zero T
        return zero, err
    }
    merge(item)
    return coll.Update(ctx, item)
}

func (h *DisplayHandler) sign(ctx context.Context, slides ...*model.Slide) {
    if h.Images == nil {
        return
    }
    for _, s := range slides {
        if s == nil || s.ImageKey == "" {
            continue
        }
        url, err := h.Images.PresignedGetURL(ctx, s.ImageKey)
        if err != nil {
            logging.Warn().Err(err).Uint64("slide_id", s.ID).Msg("presign slide image")
            continue
        }
        s.ImageURL = url
    }
}

func activeOrDefault(v *bool) bool {
    return v == nil || *v
}

// ---- slides ----

type slideRequest struct {
    Title       string `json:"title" validate:"required,max=255"`
    Description string `json:"description" validate:"max=2000"`
    ImageKey    string `json:"imageKey" validate:"max=512"`
    ButtonText  string `json:"buttonText" validate:"max=100"`
    ButtonURL   string `json:"buttonUrl" validate:"max=512"`
    Order       int    `json:"order" validate:"gte=0"`
    IsActive    *bool  `json:"isActive"`
}

func (r slideRequest) slide(id uint64) *model.Slide {
    return &model.Slide{
        ID:          id,
        Title:       r.Title,
        Description: r.Description,
        ImageKey:    r.ImageKey,
        ButtonText:  r.ButtonText,
        ButtonURL:   r.ButtonURL,
        Order:       r.Order,
        IsActive:    activeOrDefault(r.IsActive),
    }
}

type slidePatch struct {
    Title       *string `json:"title" validate:"omitempty,max=255"`
    Description *string `json:"description" validate:"omitempty,max=2000"`
    ImageKey    *string `json:"imageKey" validate:"omitempty,max=512"`
    ButtonText  *string `json:"buttonText" validate:"omitempty,max=100"`
    ButtonURL   *string `json:"buttonUrl" validate:"omitempty,max=512"`
    Order       *int    `json:"order" validate:"omitempty,gte=0"`
    IsActive    *bool   `json:"isActive"`
}

func (p slidePatch) otherFields() bool {
    return p.Title != nil || p.Description != nil || p.ImageKey != nil || p.ButtonText != nil || p.ButtonURL != nil
}

func (p slidePatch) merge(s *model.Slide) {
    if p.Title != nil {
        s.Title = *p.Title
    }
    if p.Description != nil {
        s.Description = *p.Description
    }
    if p.ImageKey != nil {
        s.ImageKey = *p.ImageKey
    }
    if p.ButtonText != nil {
        s.ButtonText = *p.ButtonText
    }
    if p.ButtonURL != nil {
        s.ButtonURL = *p.ButtonURL
    }
    if p.Order != nil {
        s.Order = *p.Order
    }
    if p.IsActive != nil {
        s.IsActive = *p.IsActive
    }
}

// ListSlides handles GET /v1/admin/slides: every row, inactive included.
func (h *DisplayHandler) ListSlides(c echo.Context) error {
    return h.listSlides(c, ordering.Admin)
}

// ListPublicSlides handles GET /v1/slides: active rows only.
func (h *DisplayHandler) ListPublicSlides(c echo.Context) error {
    return h.listSlides(c, ordering.Public)
}

func (h *DisplayHandler) listSlides(c echo.Context, audience ordering.Audience) error {
    ctx := c.Request().Context()
    slides, err := h.Slides.List(ctx, audience)
    if err != nil {
        return writeError(c, err)
    }
    h.sign(ctx, slides...)
    return c.JSON(http.StatusOK, echo.Map{"items": slides})
}

// GetSlide handles GET /v1/admin/slides/:id.
func (h *DisplayHandler) GetSlide(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    s, err := h.Slides.Get(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    h.sign(c.Request().Context(), s)
    return c.JSON(http.StatusOK, s)
}

// CreateSlide handles POST /v1/admin/slides.
func (h *DisplayHandler) CreateSlide(c echo.Context) error {
    var body slideRequest
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    s, err := h.Slides.Create(c.Request().Context(), body.slide(0))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, s)
}

// ReplaceSlide handles PUT /v1/admin/slides/:id.
func (h *DisplayHandler) ReplaceSlide(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    var body slideRequest
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    s, err := h.Slides.Update(c.Request().Context(), body.slide(id))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, s)
}

// PatchSlide handles PATCH /v1/admin/slides/:id.
func (h *DisplayHandler) PatchSlide(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    var body slidePatch
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    s, err := patchItem(c.Request().Context(), h.Slides, id, body.Order, body.IsActive, body.otherFields(), body.merge)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, s)
}

// DeleteSlide handles DELETE /v1/admin/slides/:id.
func (h *DisplayHandler) DeleteSlide(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    if err := h.Slides.Delete(c.Request().Context(), id); err != nil {
        return writeError(c, err)
    }
    return deleted(c, echo.Map{"id": id})
}

// ---- quick access ----

type quickAccessRequest struct {
    Title    string `json:"title" validate:"required,max=255"`
    IconName string `json:"iconName" validate:"max=100"`
    URL      string `json:"url" validate:"required,max=512"`
    Order    int    `json:"order" validate:"gte=0"`
    IsActive *bool  `json:"isActive"`
}

func (r quickAccessRequest) item(id uint64) *model.QuickAccessItem {
    return &model.QuickAccessItem{
        ID:       id,
        Title:    r.Title,
        IconName: r.IconName,
        URL:      r.URL,
        Order:    r.Order,
        IsActive: activeOrDefault(r.IsActive),
    }
}

type quickAccessPatch struct {
    Title    *string `json:"title" validate:"omitempty,max=255"`
    IconName *string `json:"iconName" validate:"omitempty,max=100"`
    URL      *string `json:"url" validate:"omitempty,max=512"`
    Order    *int    `json:"order" validate:"omitempty,gte=0"`
    IsActive *bool   `json:"isActive"`
}

func (p quickAccessPatch) otherFields() bool {
    return p.Title != nil || p.IconName != nil || p.URL != nil
}

func (p quickAccessPatch) merge(q *model.QuickAccessItem) {
    if p.Title != nil {
        q.Title = *p.Title
    }
    if p.IconName != nil {
        q.IconName = *p.IconName
    }
    if p.URL != nil {
        q.URL = *p.URL
    }
    if p.Order != nil {
        q.Order = *p.Order
    }
    if p.IsActive != nil {
        q.IsActive = *p.IsActive
    }
}

// ListQuickAccess handles GET /v1/admin/quick-access.
func (h *DisplayHandler) ListQuickAccess(c echo.Context) error {
    items, err := h.Quick.List(c.Request().Context(), ordering.Admin)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListPublicQuickAccess handles GET /v1/quick-access.
func (h *DisplayHandler) ListPublicQuickAccess(c echo.Context) error {
    items, err := h.Quick.List(c.Request().Context(), ordering.Public)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateQuickAccess handles POST /v1/admin/quick-access.
func (h *DisplayHandler) CreateQuickAccess(c echo.Context) error {
    var body quickAccessRequest
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    q, err := h.Quick.Create(c.Request().Context(), body.item(0))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, q)
}

// ReplaceQuickAccess handles PUT /v1/admin/quick-access/:id.
func (h *DisplayHandler) ReplaceQuickAccess(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    var body quickAccessRequest
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    q, err := h.Quick.Update(c.Request().Context(), body.item(id))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, q)
}

// PatchQuickAccess handles PATCH /v1/admin/quick-access/:id.
func (h *DisplayHandler) PatchQuickAccess(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    var body quickAccessPatch
    if err := bindJSON(c, &body); err != nil {
        return writeError(c, err)
    }
    q, err := patchItem(c.Request().Context(), h.Quick, id, body.Order, body.IsActive, body.otherFields(), body.merge)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, q)
}

// DeleteQuickAccess handles DELETE /v1/admin/quick-access/:id.
func (h *DisplayHandler) DeleteQuickAccess(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return writeError(c, err)
    }
    if err := h.Quick.Delete(c.Request().Context(), id); err != nil {
        return writeError(c, err)
    }
    return deleted(c, echo.Map{"id": id})
}
