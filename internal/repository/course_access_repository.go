package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/pistac/admin-backend/internal/model"
)

// CourseAccessRepo persists explicit course grants. The table carries a
// UNIQUE KEY on (user_id, course_id) so Upsert can never produce a second
// row for the same pair.
type CourseAccessRepo struct {
    db *sql.DB
}

func NewCourseAccessRepo(db *sql.DB) *CourseAccessRepo {
    return &CourseAccessRepo{db: db}
}

const accessColumns = "id, user_id, course_id, access_type, expiry_date, created_at, updated_at"

func scanAccess(row interface{ Scan(...any) error }) (*model.CourseAccess, error) {
    var (
        a      model.CourseAccess
        expiry sql.NullTime
    )
    if err := row.Scan(&a.ID, &a.UserID, &a.CourseID, &a.AccessType, &expiry, &a.CreatedAt, &a.UpdatedAt); err != nil {
        return nil, err
    }
    if expiry.Valid {
        t := expiry.Time.UTC()
        a.ExpiryDate = &t
    }
    return &a, nil
}

// Get returns the grant for (userID, courseID) or ErrNotFound.
func (r *CourseAccessRepo) Get(ctx context.Context, userID, courseID uint64) (*model.CourseAccess, error) {
    a, err := scanAccess(r.db.QueryRowContext(ctx,
        "SELECT "+accessColumns+" FROM course_access WHERE user_id = ? AND course_id = ?",
        userID, courseID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, NotFound("course access")
    }
    return a, err
}

// ListByUser returns every grant row of a user ordered by course id.
func (r *CourseAccessRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.CourseAccess, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+accessColumns+" FROM course_access WHERE user_id = ? ORDER BY course_id", userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []*model.CourseAccess{}
    for rows.Next() {
        a, err := scanAccess(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    return out, rows.Err()
}

// Upsert writes the grant in a single statement; the latest values win.
func (r *CourseAccessRepo) Upsert(ctx context.Context, userID, courseID uint64, accessType string, expiry *time.Time) (*model.CourseAccess, error) {
    var exp sql.NullTime
    if expiry != nil {
        exp = sql.NullTime{Time: expiry.UTC(), Valid: true}
    }
    const q = `INSERT INTO course_access (user_id, course_id, access_type, expiry_date)
               VALUES (?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                 access_type = VALUES(access_type),
                 expiry_date = VALUES(expiry_date),
                 updated_at = CURRENT_TIMESTAMP`
    if _, err := r.db.ExecContext(ctx, q, userID, courseID, accessType, exp); err != nil {
        return nil, err
    }
    return r.Get(ctx, userID, courseID)
}

// Delete removes the grant. It reports whether a row existed; a missing row
// is not an error.
func (r *CourseAccessRepo) Delete(ctx context.Context, userID, courseID uint64) (bool, error) {
    res, err := r.db.ExecContext(ctx,
        "DELETE FROM course_access WHERE user_id = ? AND course_id = ?", userID, courseID)
    if err != nil {
        return false, err
    }
    n, _ := res.RowsAffected()
    return n > 0, nil
}
