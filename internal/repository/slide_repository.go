package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/pistac/admin-backend/internal/model"
)

// SlideRepo persists homepage slides. Rows come back ordered by
// (sort_order, id); the ordering package re-applies the same rule in memory.
type SlideRepo struct {
    db *sql.DB
}

func NewSlideRepo(db *sql.DB) *SlideRepo { return &SlideRepo{db: db} }

const slideColumns = "id, title, description, image_key, button_text, button_url, sort_order, is_active, created_at"

func scanSlide(row interface{ Scan(...any) error }) (*model.Slide, error) {
    var s model.Slide
    if err := row.Scan(&s.ID, &s.Title, &s.Description, &s.ImageKey, &s.ButtonText, &s.ButtonURL,
        &s.Order, &s.IsActive, &s.CreatedAt); err != nil {
        return nil, err
    }
    return &s, nil
}

func (r *SlideRepo) Create(ctx context.Context, s *model.Slide) error {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO slides (title, description, image_key, button_text, button_url, sort_order, is_active)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
        s.Title, s.Description, s.ImageKey, s.ButtonText, s.ButtonURL, s.Order, s.IsActive)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    fresh, err := r.GetByID(ctx, uint64(id))
    if err != nil {
        return err
    }
    *s = *fresh
    return nil
}

func (r *SlideRepo) GetByID(ctx context.Context, id uint64) (*model.Slide, error) {
    s, err := scanSlide(r.db.QueryRowContext(ctx, "SELECT "+slideColumns+" FROM slides WHERE id = ?", id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, NotFound("slide")
    }
    return s, err
}

func (r *SlideRepo) List(ctx context.Context) ([]*model.Slide, error) {
    rows, err := r.db.QueryContext(ctx, "SELECT "+slideColumns+" FROM slides ORDER BY sort_order, id")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []*model.Slide{}
    for rows.Next() {
        s, err := scanSlide(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

// Update overwrites every editable column of s.
func (r *SlideRepo) Update(ctx context.Context, s *model.Slide) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE slides
         SET title = ?, description = ?, image_key = ?, button_text = ?, button_url = ?, sort_order = ?, is_active = ?
         WHERE id = ?`,
        s.Title, s.Description, s.ImageKey, s.ButtonText, s.ButtonURL, s.Order, s.IsActive, s.ID)
    if err != nil {
        return err
    }
    fresh, err := r.GetByID(ctx, s.ID)
    if err != nil {
        return err
    }
    *s = *fresh
    return nil
}

// SetOrder changes only the display rank.
func (r *SlideRepo) SetOrder(ctx context.Context, id uint64, order int) (*model.Slide, error) {
    if _, err := r.db.ExecContext(ctx, "UPDATE slides SET sort_order = ? WHERE id = ?", order, id); err != nil {
        return nil, err
    }
    return r.GetByID(ctx, id)
}

// SetActive changes only the visibility flag.
func (r *SlideRepo) SetActive(ctx context.Context, id uint64, active bool) (*model.Slide, error) {
    if _, err := r.db.ExecContext(ctx, "UPDATE slides SET is_active = ? WHERE id = ?", active, id); err != nil {
        return nil, err
    }
    return r.GetByID(ctx, id)
}

func (r *SlideRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, "DELETE FROM slides WHERE id = ?", id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return NotFound("slide")
    }
    return nil
}

// QuickAccessRepo persists quick-access tiles.
type QuickAccessRepo struct {
    db *sql.DB
}

func NewQuickAccessRepo(db *sql.DB) *QuickAccessRepo { return &QuickAccessRepo{db: db} }

const quickAccessColumns = "id, title, icon_name, url, sort_order, is_active, created_at"

func scanQuickAccess(row interface{ Scan(...any) error }) (*model.QuickAccessItem, error) {
    var q model.QuickAccessItem
    if err := row.Scan(&q.ID, &q.Title, &q.IconName, &q.URL, &q.Order, &q.IsActive, &q.CreatedAt); err != nil {
        return nil, err
    }
    return &q, nil
}

func (r *QuickAccessRepo) Create(ctx context.Context, q *model.QuickAccessItem) error {
    res, err := r.db.ExecContext(ctx,
        "INSERT INTO quick_access_items (title, icon_name, url, sort_order, is_active) VALUES (?, ?, ?, ?, ?)",
        q.Title, q.IconName, q.URL, q.Order, q.IsActive)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    fresh, err := r.GetByID(ctx, uint64(id))
    if err != nil {
        return err
    }
    *q = *fresh
    return nil
}

func (r *QuickAccessRepo) GetByID(ctx context.Context, id uint64) (*model.QuickAccessItem, error) {
    q, err := scanQuickAccess(r.db.QueryRowContext(ctx,
        "SELECT "+quickAccessColumns+" FROM quick_access_items WHERE id = ?", id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, NotFound("quick access item")
    }
    return q, err
}

func (r *QuickAccessRepo) List(ctx context.Context) ([]*model.QuickAccessItem, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+quickAccessColumns+" FROM quick_access_items ORDER BY sort_order, id")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []*model.QuickAccessItem{}
    for rows.Next() {
        q, err := scanQuickAccess(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, q)
    }
    return out, rows.Err()
}

func (r *QuickAccessRepo) Update(ctx context.Context, q *model.QuickAccessItem) error {
    if _, err := r.db.ExecContext(ctx,
        "UPDATE quick_access_items SET title = ?, icon_name = ?, url = ?, sort_order = ?, is_active = ? WHERE id = ?",
        q.Title, q.IconName, q.URL, q.Order, q.IsActive, q.ID); err != nil {
        return err
    }
    fresh, err := r.GetByID(ctx, q.ID)
    if err != nil {
        return err
    }
    *q = *fresh
    return nil
}

func (r *QuickAccessRepo) SetOrder(ctx context.Context, id uint64, order int) (*model.QuickAccessItem, error) {
    if _, err := r.db.ExecContext(ctx, "UPDATE quick_access_items SET sort_order = ? WHERE id = ?", order, id); err != nil {
        return nil, err
    }
    return r.GetByID(ctx, id)
}

func (r *QuickAccessRepo) SetActive(ctx context.Context, id uint64, active bool) (*model.QuickAccessItem, error) {
    if _, err := r.db.ExecContext(ctx, "UPDATE quick_access_items SET is_active = ? WHERE id = ?", active, id); err != nil {
        return nil, err
    }
    return r.GetByID(ctx, id)
}

func (r *QuickAccessRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, "DELETE FROM quick_access_items WHERE id = ?", id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return NotFound("quick access item")
    }
    return nil
}
