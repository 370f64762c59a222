package model

import "time"

// Tier is the ordered ranking free < premium < vip used both for a user's
// subscription and for the access level a course requires.
type Tier string

const (
    TierFree    Tier = "free"
    TierPremium Tier = "premium"
    TierVIP     Tier = "vip"
)

// Rank returns the position of t in the tier ordering.  Unknown tiers rank
// below free so they never satisfy a requirement.
func (t Tier) Rank() int {
    switch t {
    case TierFree:
        return 0
    case TierPremium:
        return 1
    case TierVIP:
        return 2
    }
    return -1
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool { return t.Rank() >= 0 }

// Satisfies reports whether a subscription at tier t is enough for a course
// requiring level.
func (t Tier) Satisfies(level Tier) bool {
    return t.Valid() && level.Valid() && t.Rank() >= level.Rank()
}

// Course is static reference data for entitlement checks.
type Course struct {
    ID          uint64    `json:"id"`          // courses.id
    Title       string    `json:"title"`       // courses.title
    AccessLevel Tier      `json:"accessLevel"` // courses.access_level
    CreatedAt   time.Time `json:"createdAt"`   // courses.created_at
}
