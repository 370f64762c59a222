// Package repository contains data access logic separated from HTTP handlers.
// This file holds the documents (articles) table. Flag writes bump the
// version column so callers can detect concurrent edits.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/pistac/admin-backend/internal/model"
)

// DocumentRepo encapsulates queries on the documents table.
type DocumentRepo struct {
    db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
    return &DocumentRepo{db: db}
}

const documentColumns = `id, title, content, category, magazine_id, sort_order, author, publish_date,
    is_published, is_featured, version, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
    var (
        d        model.Document
        magazine sql.NullInt64
        publish  sql.NullTime
    )
    if err := row.Scan(&d.ID, &d.Title, &d.Content, &d.Category, &magazine, &d.Order, &d.Author, &publish,
        &d.IsPublished, &d.IsFeatured, &d.Version, &d.CreatedAt, &d.UpdatedAt); err != nil {
        return nil, err
    }
    if magazine.Valid {
        d.MagazineID = uint64(magazine.Int64)
    }
    if publish.Valid {
        t := publish.Time.UTC()
        d.PublishDate = &t
    }
    return &d, nil
}

// Create inserts d and reloads it so defaults (timestamps, version) are filled.
func (r *DocumentRepo) Create(ctx context.Context, d *model.Document) error {
    var magazine sql.NullInt64
    if d.MagazineID != 0 {
        magazine = sql.NullInt64{Int64: int64(d.MagazineID), Valid: true}
    }
    var publish sql.NullTime
    if d.PublishDate != nil {
        publish = sql.NullTime{Time: d.PublishDate.UTC(), Valid: true}
    }
    const q = `INSERT INTO documents
               (title, content, category, magazine_id, sort_order, author, publish_date, is_published, is_featured)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, d.Title, d.Content, d.Category, magazine, d.Order, d.Author, publish,
        d.IsPublished, d.IsFeatured)
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
    *d = *fresh
    return nil
}

// GetByID returns the document or ErrNotFound.
func (r *DocumentRepo) GetByID(ctx context.Context, id uint64) (*model.Document, error) {
    d, err := scanDocument(r.db.QueryRowContext(ctx,
        "SELECT "+documentColumns+" FROM documents WHERE id = ?", id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, NotFound("document")
    }
    return d, err
}

// List returns documents matching f ordered by sort_order then id.
func (r *DocumentRepo) List(ctx context.Context, f model.DocumentFilter) ([]*model.Document, error) {
    var (
        where []string
        args  []any
    )
    if f.PublishedOnly {
        where = append(where, "is_published = 1")
    }
    if f.FeaturedOnly {
        where = append(where, "is_featured = 1")
    }
    if f.Category != "" {
        where = append(where, "category = ?")
        args = append(args, f.Category)
    }
    if f.MagazineID != 0 {
        where = append(where, "magazine_id = ?")
        args = append(args, f.MagazineID)
    }
    q := "SELECT " + documentColumns + " FROM documents"
    if len(where) > 0 {
        q += " WHERE " + strings.Join(where, " AND ")
    }
    q += " ORDER BY sort_order, id"

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []*model.Document{}
    for rows.Next() {
        d, err := scanDocument(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// ToggleFeatured negates is_featured in one statement so two concurrent
// toggles both take effect.
func (r *DocumentRepo) ToggleFeatured(ctx context.Context, id uint64) (*model.Document, error) {
    const q = `UPDATE documents
               SET is_featured = NOT is_featured, version = version + 1, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, id)
    if err != nil {
        return nil, err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return nil, NotFound("document")
    }
    return r.GetByID(ctx, id)
}

// UpdateFlags writes is_published and/or is_featured in one statement.
// Nil flags keep their stored value. When expectVersion is non-nil the write
// only applies if the stored version still matches; otherwise ErrConflict
// is returned and the row is untouched.
func (r *DocumentRepo) UpdateFlags(ctx context.Context, id uint64, published, featured *bool, expectVersion *int64) (*model.Document, error) {
    sets := []string{"version = version + 1", "updated_at = CURRENT_TIMESTAMP"}
    var args []any
    if published != nil {
        sets = append(sets, "is_published = ?")
        args = append(args, *published)
    }
    if featured != nil {
        sets = append(sets, "is_featured = ?")
        args = append(args, *featured)
    }
    q := "UPDATE documents SET " + strings.Join(sets, ", ") + " WHERE id = ?"
    args = append(args, id)
    if expectVersion != nil {
        q += " AND version = ?"
        args = append(args, *expectVersion)
    }
    res, err := r.db.ExecContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // Distinguish a missing row from a stale version.
        if _, err := r.GetByID(ctx, id); err != nil {
            return nil, err
        }
        return nil, ErrConflict
    }
    return r.GetByID(ctx, id)
}

// Delete removes a document; ErrNotFound if it did not exist.
func (r *DocumentRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return NotFound("document")
    }
    return nil
}
