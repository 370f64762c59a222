// Package repository: workshops and their registrations. Workshop deletion
// is refused while registrations reference it unless the caller asks for a
// cascade, in which case both are removed in one transaction.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/pistac/admin-backend/internal/model"
)

type WorkshopRepo struct {
    db *sql.DB
}

func NewWorkshopRepo(db *sql.DB) *WorkshopRepo {
    return &WorkshopRepo{db: db}
}

func (r *WorkshopRepo) Create(ctx context.Context, w *model.Workshop) error {
    var starts sql.NullTime
    if w.StartsAt != nil {
        starts = sql.NullTime{Time: w.StartsAt.UTC(), Valid: true}
    }
    res, err := r.db.ExecContext(ctx, "INSERT INTO workshops (title, starts_at) VALUES (?, ?)", w.Title, starts)
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
    *w = *fresh
    return nil
}

func (r *WorkshopRepo) GetByID(ctx context.Context, id uint64) (*model.Workshop, error) {
    var (
        w      model.Workshop
        starts sql.NullTime
    )
    err := r.db.QueryRowContext(ctx, "SELECT id, title, starts_at, created_at FROM workshops WHERE id = ?", id).
        Scan(&w.ID, &w.Title, &starts, &w.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, NotFound("workshop")
    }
    if err != nil {
        return nil, err
    }
    if starts.Valid {
        t := starts.Time.UTC()
        w.StartsAt = &t
    }
    return &w, nil
}

func (r *WorkshopRepo) List(ctx context.Context) ([]*model.Workshop, error) {
    rows, err := r.db.QueryContext(ctx, "SELECT id, title, starts_at, created_at FROM workshops ORDER BY id")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []*model.Workshop{}
    for rows.Next() {
        var (
            w      model.Workshop
            starts sql.NullTime
        )
        if err := rows.Scan(&w.ID, &w.Title, &starts, &w.CreatedAt); err != nil {
            return nil, err
        }
        if starts.Valid {
            t := starts.Time.UTC()
            w.StartsAt = &t
        }
        out = append(out, &w)
    }
    return out, rows.Err()
}

// Delete removes a workshop. If registrations reference it and cascade is
// false, ErrConflict is returned and nothing changes. It returns the number
// of registrations removed alongside the workshop.
func (r *WorkshopRepo) Delete(ctx context.Context, id uint64, cascade bool) (removed int64, err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        } else {
            err = tx.Commit()
        }
    }()
    var exists uint64
    if err = tx.QueryRowContext(ctx, "SELECT id FROM workshops WHERE id = ? FOR UPDATE", id).Scan(&exists); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            err = NotFound("workshop")
        }
        return 0, err
    }
    var count int64
    if err = tx.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM workshop_registrations WHERE workshop_id = ?", id).Scan(&count); err != nil {
        return 0, err
    }
    if count > 0 && !cascade {
        err = ErrConflict
        return 0, err
    }
    if count > 0 {
        var res sql.Result
        if res, err = tx.ExecContext(ctx, "DELETE FROM workshop_registrations WHERE workshop_id = ?", id); err != nil {
            return 0, err
        }
        removed, _ = res.RowsAffected()
    }
    if _, err = tx.ExecContext(ctx, "DELETE FROM workshops WHERE id = ?", id); err != nil {
        return 0, err
    }
    return removed, nil
}

// RegistrationRepo persists workshop registrations.
type RegistrationRepo struct {
    db *sql.DB
}

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo {
    return &RegistrationRepo{db: db}
}

const registrationColumns = "id, workshop_id, user_name, user_email, user_phone, status, registration_date"

func scanRegistration(row interface{ Scan(...any) error }) (*model.WorkshopRegistration, error) {
    var (
        reg   model.WorkshopRegistration
        phone sql.NullString
    )
    if err := row.Scan(&reg.ID, &reg.WorkshopID, &reg.UserName, &reg.UserEmail, &phone, &reg.Status, &reg.RegistrationDate); err != nil {
        return nil, err
    }
    if phone.Valid {
        p := phone.String
        reg.UserPhone = &p
    }
    return &reg, nil
}

// Create inserts reg. RegistrationDate defaults to now when zero.
func (r *RegistrationRepo) Create(ctx context.Context, reg *model.WorkshopRegistration) error {
    var phone sql.NullString
    if reg.UserPhone != nil {
        phone = sql.NullString{String: *reg.UserPhone, Valid: true}
    }
    when := reg.RegistrationDate
    if when.IsZero() {
        when = time.Now().UTC()
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO workshop_registrations (workshop_id, user_name, user_email, user_phone, status, registration_date)
         VALUES (?, ?, ?, ?, ?, ?)`,
        reg.WorkshopID, reg.UserName, reg.UserEmail, phone, reg.Status, when)
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
    *reg = *fresh
    return nil
}

func (r *RegistrationRepo) GetByID(ctx context.Context, id uint64) (*model.WorkshopRegistration, error) {
    reg, err := scanRegistration(r.db.QueryRowContext(ctx,
        "SELECT "+registrationColumns+" FROM workshop_registrations WHERE id = ?", id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, NotFound("registration")
    }
    return reg, err
}

// UpdateStatus overwrites the status column.
func (r *RegistrationRepo) UpdateStatus(ctx context.Context, id uint64, status string) (*model.WorkshopRegistration, error) {
    if _, err := r.db.ExecContext(ctx,
        "UPDATE workshop_registrations SET status = ? WHERE id = ?", status, id); err != nil {
        return nil, err
    }
    return r.GetByID(ctx, id)
}

func (r *RegistrationRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, "DELETE FROM workshop_registrations WHERE id = ?", id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return NotFound("registration")
    }
    return nil
}

// List returns registrations newest first; workshopID 0 means all workshops.
func (r *RegistrationRepo) List(ctx context.Context, workshopID uint64) ([]*model.WorkshopRegistration, error) {
    q := "SELECT " + registrationColumns + " FROM workshop_registrations"
    var args []any
    if workshopID != 0 {
        q += " WHERE workshop_id = ?"
        args = append(args, workshopID)
    }
    q += " ORDER BY registration_date DESC, id DESC"
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []*model.WorkshopRegistration{}
    for rows.Next() {
        reg, err := scanRegistration(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, reg)
    }
    return out, rows.Err()
}
