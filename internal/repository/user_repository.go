package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/pistac/admin-backend/internal/model"
)

const userColumns = "id,username,email,role,subscription_status,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
    var (
        u     model.User
        email sql.NullString
    )
    if err := row.Scan(&u.ID, &u.Username, &email, &u.Role, &u.SubscriptionStatus, &u.CreatedAt, &u.UpdatedAt); err != nil {
        return nil, err
    }
    u.Email = email.String
    return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
    u, err := scanUser(r.DB.QueryRowContext(ctx,
        "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, NotFound("user")
    }
    return u, err
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
    rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []*model.User{}
    for rows.Next() {
        u, err := scanUser(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, u)
    }
    return out, rows.Err()
}

// UpdateProfile sets role and subscription status. Empty values keep the
// current column.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, role string, tier model.Tier) (*model.User, error) {
    _, err := r.DB.ExecContext(ctx,
        `UPDATE users
         SET role = COALESCE(NULLIF(?, ''), role),
             subscription_status = COALESCE(NULLIF(?, ''), subscription_status),
             updated_at = CURRENT_TIMESTAMP
         WHERE id = ?`, role, string(tier), id)
    if err != nil {
        return nil, err
    }
    // MySQL reports 0 affected rows when the values did not change, so
    // existence is decided by the follow-up read.
    return r.GetByID(ctx, id)
}
