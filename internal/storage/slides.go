package storage

import (
    "context"

    "github.com/pistac/admin-backend/internal/logging"
    "github.com/pistac/admin-backend/internal/model"
)

// Remover deletes stored objects by key.
type Remover interface {
    Delete(ctx context.Context, key string) error
}

// DropSlideImage returns a hook that removes a deleted slide's image.
// Failures are logged; the row is already gone.
func DropSlideImage(r Remover) func(context.Context, *model.Slide) {
    return func(ctx context.Context, s *model.Slide) {
        remove(ctx, r, s.ID, s.ImageKey)
    }
}

// DropReplacedSlideImage returns a hook that removes the previous image
// once an update points the slide at a different key.
func DropReplacedSlideImage(r Remover) func(ctx context.Context, prev, next *model.Slide) {
    return func(ctx context.Context, prev, next *model.Slide) {
        if prev.ImageKey == next.ImageKey {
            return
        }
        remove(ctx, r, prev.ID, prev.ImageKey)
    }
}

func remove(ctx context.Context, r Remover, slideID uint64, key string) {
    if key == "" {
        return
    }
    if err := r.Delete(ctx, key); err != nil {
        logging.Warn().Err(err).Uint64("slide_id", slideID).Str("key", key).Msg("slide image not removed")
    }
}
