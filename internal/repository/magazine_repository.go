package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/pistac/admin-backend/internal/model"
)

type MagazineRepo struct{ db *sql.DB }

func NewMagazineRepo(db *sql.DB) *MagazineRepo { return &MagazineRepo{db: db} }

func (r *MagazineRepo) Create(ctx context.Context, m *model.Magazine) error {
    res, err := r.db.ExecContext(ctx, "INSERT INTO magazines (title, issue) VALUES (?, ?)", m.Title, m.Issue)
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
    *m = *fresh
    return nil
}

func (r *MagazineRepo) GetByID(ctx context.Context, id uint64) (*model.Magazine, error) {
    var m model.Magazine
    err := r.db.QueryRowContext(ctx, "SELECT id, title, issue, created_at FROM magazines WHERE id = ?", id).
        Scan(&m.ID, &m.Title, &m.Issue, &m.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, NotFound("magazine")
    }
    if err != nil {
        return nil, err
    }
    return &m, nil
}

// List returns magazines newest first.
func (r *MagazineRepo) List(ctx context.Context) ([]*model.Magazine, error) {
    rows, err := r.db.QueryContext(ctx, "SELECT id, title, issue, created_at FROM magazines ORDER BY id DESC")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []*model.Magazine{}
    for rows.Next() {
        m := new(model.Magazine)
        if err := rows.Scan(&m.ID, &m.Title, &m.Issue, &m.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    return out, rows.Err()
}
