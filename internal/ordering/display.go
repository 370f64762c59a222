package ordering

import (
    "strings"

    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/repository"
)

// ValidateSlide is the row check for the slide collection.
func ValidateSlide(s *model.Slide) error {
    if strings.TrimSpace(s.Title) == "" {
        return repository.Invalid("title", "is required")
    }
    if s.Order < 0 {
        return repository.Invalid("order", "must be at least 0")
    }
    return nil
}

// ValidateQuickAccess is the row check for quick-access tiles. A tile
// without a target URL is useless, so URL is required too.
func ValidateQuickAccess(q *model.QuickAccessItem) error {
    switch {
    case strings.TrimSpace(q.Title) == "":
        return repository.Invalid("title", "is required")
    case strings.TrimSpace(q.URL) == "":
        return repository.Invalid("url", "is required")
    case q.Order < 0:
        return repository.Invalid("order", "must be at least 0")
    }
    return nil
}
