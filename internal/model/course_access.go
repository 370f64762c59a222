package model

import "time"

// Access types an admin may attach to a grant.
const (
    AccessGranted   = "granted"
    AccessPurchased = "purchased"
    AccessTrial     = "trial"
)

// ValidAccessType reports whether s is a known access type.
func ValidAccessType(s string) bool {
    switch s {
    case AccessGranted, AccessPurchased, AccessTrial:
        return true
    }
    return false
}

// CourseAccess is an explicit grant of one course to one user.  The pair
// (UserID, CourseID) is unique in `course_access`; a new grant replaces
// the previous one.
type CourseAccess struct {
    ID         uint64     `json:"id"`                   // course_access.id
    UserID     uint64     `json:"userId"`               // course_access.user_id
    CourseID   uint64     `json:"courseId"`             // course_access.course_id
    AccessType string     `json:"accessType"`           // course_access.access_type
    ExpiryDate *time.Time `json:"expiryDate,omitempty"` // course_access.expiry_date (nullable)
    CreatedAt  time.Time  `json:"createdAt"`            // course_access.created_at
    UpdatedAt  time.Time  `json:"updatedAt"`            // course_access.updated_at
}

// ActiveAt reports whether the grant is still in force at now.  A grant
// without expiry never lapses.
func (a *CourseAccess) ActiveAt(now time.Time) bool {
    return a.ExpiryDate == nil || a.ExpiryDate.After(now)
}
