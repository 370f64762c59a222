package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/pistac/admin-backend/internal/model"
)

// CourseRepo reads the static course catalogue.
type CourseRepo struct {
    db *sql.DB
}

func NewCourseRepo(db *sql.DB) *CourseRepo {
    return &CourseRepo{db: db}
}

// GetByID returns ErrNotFound (wrapped) if no course has the id.
func (r *CourseRepo) GetByID(ctx context.Context, id uint64) (*model.Course, error) {
    const q = "SELECT id, title, access_level, created_at FROM courses WHERE id = ?"
    var c model.Course
    if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Title, &c.AccessLevel, &c.CreatedAt); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, NotFound("course")
        }
        return nil, err
    }
    return &c, nil
}

// List returns every course ordered by id.
func (r *CourseRepo) List(ctx context.Context) ([]*model.Course, error) {
    const q = "SELECT id, title, access_level, created_at FROM courses ORDER BY id"
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []*model.Course{}
    for rows.Next() {
        c := new(model.Course)
        if err := rows.Scan(&c.ID, &c.Title, &c.AccessLevel, &c.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
