package model

import "time"

// Roles recognised by the admin API.  The external identity provider puts
// one of these values into the "role" claim of the access token.
const (
    RoleAdmin = "admin"
    RoleUser  = "user"
)

// User represents a row of the `users` table.  Users are created by the
// registration flow of the identity provider; this service only reads them
// and lets an admin change Role and SubscriptionStatus.
//
// Fields:
//  ID                 – primary key identifier of the user.
//  Username           – unique login name.
//  Email              – contact address (may be empty for legacy rows).
//  Role               – admin or user.
//  SubscriptionStatus – free, premium or vip; compared against Course.AccessLevel.
type User struct {
    ID                 uint64    `json:"id"`                 // users.id
    Username           string    `json:"username"`           // users.username
    Email              string    `json:"email"`              // users.email
    Role               string    `json:"role"`               // users.role
    SubscriptionStatus Tier      `json:"subscriptionStatus"` // users.subscription_status
    CreatedAt          time.Time `json:"createdAt"`          // users.created_at
    UpdatedAt          time.Time `json:"updatedAt"`          // users.updated_at
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
    return r == RoleAdmin || r == RoleUser
}
