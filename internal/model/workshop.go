package model

import "time"

// Registration statuses.  Any status may move to any other.
const (
    RegistrationPending   = "pending"
    RegistrationConfirmed = "confirmed"
    RegistrationCancelled = "cancelled"
)

// ValidRegistrationStatus reports whether s is a known registration status.
func ValidRegistrationStatus(s string) bool {
    switch s {
    case RegistrationPending, RegistrationConfirmed, RegistrationCancelled:
        return true
    }
    return false
}

// Workshop is a scheduled training session users can register for.
type Workshop struct {
    ID        uint64     `json:"id"`
    Title     string     `json:"title"`
    StartsAt  *time.Time `json:"startsAt,omitempty"`
    CreatedAt time.Time  `json:"createdAt"`
}

// WorkshopRegistration is one sign-up for a workshop.
type WorkshopRegistration struct {
    ID               uint64    `json:"id"`
    WorkshopID       uint64    `json:"workshopId"`
    UserName         string    `json:"userName"`
    UserEmail        string    `json:"userEmail"`
    UserPhone        *string   `json:"userPhone,omitempty"`
    Status           string    `json:"status"`
    RegistrationDate time.Time `json:"registrationDate"`
}
