// Package publication manages the draft/published state and the orthogonal
// featured flag of documents.
package publication

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/pistac/admin-backend/internal/logging"
    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/ordering"
    "github.com/pistac/admin-backend/internal/queue"
    "github.com/pistac/admin-backend/internal/repository"
)

// Store persists documents. UpdateFlags and ToggleFeatured must each be a
// single conditional write that bumps Version.
type Store interface {
    Create(ctx context.Context, d *model.Document) error
    GetByID(ctx context.Context, id uint64) (*model.Document, error)
    List(ctx context.Context, f model.DocumentFilter) ([]*model.Document, error)
    ToggleFeatured(ctx context.Context, id uint64) (*model.Document, error)
    UpdateFlags(ctx context.Context, id uint64, published, featured *bool, expectVersion *int64) (*model.Document, error)
    Delete(ctx context.Context, id uint64) error
}

type MagazineStore interface {
    Create(ctx context.Context, m *model.Magazine) error
    GetByID(ctx context.Context, id uint64) (*model.Magazine, error)
    List(ctx context.Context) ([]*model.Magazine, error)
}

type Service struct {
    docs   Store
    mags   MagazineStore
    events queue.Publisher
}

func NewService(docs Store, mags MagazineStore, events queue.Publisher) *Service {
    if events == nil {
        events = queue.NopPublisher{}
    }
    return &Service{docs: docs, mags: mags, events: events}
}

// CreateInput describes a new document. Unset flags default to a
// non-featured draft.
type CreateInput struct {
    Title       string `json:"title" validate:"required,max=255"`
    Content     string `json:"content"`
    Category    string `json:"category" validate:"max=100"`
    MagazineID  uint64 `json:"magazineId"`
    Order       int    `json:"order" validate:"gte=0"`
    Author      string `json:"author" validate:"max=255"`
    PublishDate string `json:"publishDate"`
    IsPublished *bool  `json:"isPublished"`
    IsFeatured  *bool  `json:"isFeatured"`
}

func parsePublishDate(s string) (*time.Time, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return nil, nil
    }
    for _, layout := range []string{time.RFC3339, "2006-01-02"} {
        if t, err := time.Parse(layout, s); err == nil {
            t = t.UTC()
            return &t, nil
        }
    }
    return nil, repository.Invalid("publishDate", "invalid date %q", s)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Document, error) {
    title := strings.TrimSpace(in.Title)
    if title == "" {
        return nil, repository.Invalid("title", "is required")
    }
    if in.Order < 0 {
        return nil, repository.Invalid("order", "must not be negative")
    }
    published, err := parsePublishDate(in.PublishDate)
    if err != nil {
        return nil, err
    }
    if in.MagazineID != 0 {
        if _, err := s.mags.GetByID(ctx, in.MagazineID); err != nil {
            if errors.Is(err, repository.ErrNotFound) {
                return nil, repository.Invalid("magazineId", "magazine %d does not exist", in.MagazineID)
            }
            return nil, err
        }
    }
    d := &model.Document{
        Title:       title,
        Content:     in.Content,
        Category:    strings.TrimSpace(in.Category),
        MagazineID:  in.MagazineID,
        Order:       in.Order,
        Author:      in.Author,
        PublishDate: published,
    }
    if in.IsPublished != nil {
        d.IsPublished = *in.IsPublished
    }
    if in.IsFeatured != nil {
        d.IsFeatured = *in.IsFeatured
    }
    if err := s.docs.Create(ctx, d); err != nil {
        return nil, fmt.Errorf("create document: %w", err)
    }
    s.emit(ctx, queue.ActionDocumentCreated, d)
    return d, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*model.Document, error) {
    return s.docs.GetByID(ctx, id)
}

// GetPublic hides drafts behind NotFound.
func (s *Service) GetPublic(ctx context.Context, id uint64) (*model.Document, error) {
    d, err := s.docs.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if !d.Visible() {
        return nil, repository.NotFound("document")
    }
    return d, nil
}

func (s *Service) ListAdmin(ctx context.Context, f model.DocumentFilter) ([]*model.Document, error) {
    docs, err := s.docs.List(ctx, f)
    if err != nil {
        return nil, fmt.Errorf("list documents: %w", err)
    }
    return ordering.Arrange(docs, ordering.Admin), nil
}

// ListPublic returns published documents only.
func (s *Service) ListPublic(ctx context.Context, f model.DocumentFilter) ([]*model.Document, error) {
    f.PublishedOnly = true
    docs, err := s.docs.List(ctx, f)
    if err != nil {
        return nil, fmt.Errorf("list documents: %w", err)
    }
    return ordering.Arrange(docs, ordering.Public), nil
}

func (s *Service) Publish(ctx context.Context, id uint64) (*model.Document, error) {
    on := true
    return s.Patch(ctx, id, Patch{IsPublished: &on})
}

func (s *Service) Unpublish(ctx context.Context, id uint64) (*model.Document, error) {
    off := false
    return s.Patch(ctx, id, Patch{IsPublished: &off})
}

func (s *Service) SetFeatured(ctx context.Context, id uint64, on bool) (*model.Document, error) {
    return s.Patch(ctx, id, Patch{IsFeatured: &on})
}

// ToggleFeatured negates the featured flag in one store write.
func (s *Service) ToggleFeatured(ctx context.Context, id uint64) (*model.Document, error) {
    d, err := s.docs.ToggleFeatured(ctx, id)
    if err != nil {
        return nil, err
    }
    s.emit(ctx, queue.ActionDocumentFlags, d)
    return d, nil
}

// Patch sets either flag. With Version set the write only applies if the
// stored version still matches, otherwise ErrConflict.
type Patch struct {
    IsPublished *bool  `json:"isPublished"`
    IsFeatured  *bool  `json:"isFeatured"`
    Version     *int64 `json:"version"`
}

func (s *Service) Patch(ctx context.Context, id uint64, p Patch) (*model.Document, error) {
    if p.IsPublished == nil && p.IsFeatured == nil {
        return nil, repository.Invalid("", "nothing to update: set isPublished or isFeatured")
    }
    d, err := s.docs.UpdateFlags(ctx, id, p.IsPublished, p.IsFeatured, p.Version)
    if errors.Is(err, repository.ErrConflict) {
        return nil, fmt.Errorf("document %d was changed by someone else, reload and retry: %w", id, err)
    }
    if err != nil {
        return nil, err
    }
    s.emit(ctx, queue.ActionDocumentFlags, d)
    return d, nil
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
    if err := s.docs.Delete(ctx, id); err != nil {
        return err
    }
    s.emit(ctx, queue.ActionDocumentDeleted, &model.Document{ID: id})
    return nil
}

func (s *Service) CreateMagazine(ctx context.Context, title, issue string) (*model.Magazine, error) {
    title = strings.TrimSpace(title)
    if title == "" {
        return nil, repository.Invalid("title", "is required")
    }
    m := &model.Magazine{Title: title, Issue: strings.TrimSpace(issue)}
    if err := s.mags.Create(ctx, m); err != nil {
        return nil, fmt.Errorf("create magazine: %w", err)
    }
    return m, nil
}

func (s *Service) ListMagazines(ctx context.Context) ([]*model.Magazine, error) {
    return s.mags.List(ctx)
}

func (s *Service) emit(ctx context.Context, action string, d *model.Document) {
    ev := queue.NewEvent(ctx, action, "document", d.ID, d)
    if err := s.events.Publish(ctx, ev); err != nil {
        logging.Warn().Err(err).Str("action", action).Msg("audit event dropped")
    }
}
