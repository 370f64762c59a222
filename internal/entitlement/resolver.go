// Package entitlement decides whether a user may open a course and manages
// the explicit grants that feed that decision.
//
// Precedence is fixed: a free course is open to everyone; otherwise a live
// grant wins; otherwise the user's subscription tier must reach the course
// level. An expired grant is ignored exactly as if it did not exist.
package entitlement

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/pistac/admin-backend/internal/logging"
    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/queue"
    "github.com/pistac/admin-backend/internal/repository"
)

// Reason explains a Decision.
type Reason string

const (
    ReasonPublic           Reason = "public"
    ReasonGrant            Reason = "grant"
    ReasonSubscription     Reason = "subscription"
    ReasonInsufficientTier Reason = "insufficient-tier"
)

// Decision is the outcome of Resolve. AccessType and ExpiresAt are set only
// when Reason is ReasonGrant.
type Decision struct {
    UserID     uint64     `json:"userId"`
    CourseID   uint64     `json:"courseId"`
    Allowed    bool       `json:"allowed"`
    Reason     Reason     `json:"reason"`
    AccessType string     `json:"accessType,omitempty"`
    ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

type UserStore interface {
    GetByID(ctx context.Context, id uint64) (*model.User, error)
}

type CourseStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Course, error)
    List(ctx context.Context) ([]*model.Course, error)
}

type AccessStore interface {
    Get(ctx context.Context, userID, courseID uint64) (*model.CourseAccess, error)
    ListByUser(ctx context.Context, userID uint64) ([]*model.CourseAccess, error)
    Upsert(ctx context.Context, userID, courseID uint64, accessType string, expiry *time.Time) (*model.CourseAccess, error)
    Delete(ctx context.Context, userID, courseID uint64) (bool, error)
}

// Resolver answers access questions and applies grant/revoke writes.
// Reads take no locks; a Resolve racing a Revoke may observe either state.
type Resolver struct {
    users   UserStore
    courses CourseStore
    access  AccessStore
    events  queue.Publisher
    now     func() time.Time
}

func NewResolver(users UserStore, courses CourseStore, access AccessStore, events queue.Publisher) *Resolver {
    if events == nil {
        events = queue.NopPublisher{}
    }
    return &Resolver{users: users, courses: courses, access: access, events: events, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
    r.now = now
    return r
}

// Decide applies the precedence rule to already loaded rows. grant may be nil.
func Decide(user *model.User, course *model.Course, grant *model.CourseAccess, now time.Time) Decision {
    d := Decision{UserID: user.ID, CourseID: course.ID}
    switch {
    case course.AccessLevel == model.TierFree:
        d.Allowed, d.Reason = true, ReasonPublic
    case grant != nil && grant.ActiveAt(now):
        d.Allowed, d.Reason = true, ReasonGrant
        d.AccessType, d.ExpiresAt = grant.AccessType, grant.ExpiryDate
    case user.SubscriptionStatus.Satisfies(course.AccessLevel):
        d.Allowed, d.Reason = true, ReasonSubscription
    default:
        d.Reason = ReasonInsufficientTier
    }
    return d
}

// Resolve answers "can user access course". Unknown user or course yields
// a wrapped repository.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, userID, courseID uint64) (Decision, error) {
    course, err := r.courses.GetByID(ctx, courseID)
    if err != nil {
        return Decision{}, err
    }
    user, err := r.users.GetByID(ctx, userID)
    if err != nil {
        return Decision{}, err
    }
    if course.AccessLevel == model.TierFree {
        return Decide(user, course, nil, r.now()), nil
    }
    grant, err := r.access.Get(ctx, userID, courseID)
    if err != nil && !errors.Is(err, repository.ErrNotFound) {
        return Decision{}, err
    }
    return Decide(user, course, grant, r.now()), nil
}

// Entitled returns an allowed Decision for every course the user can open
// right now, in course id order.
func (r *Resolver) Entitled(ctx context.Context, userID uint64) ([]Decision, error) {
    user, err := r.users.GetByID(ctx, userID)
    if err != nil {
        return nil, err
    }
    courses, err := r.courses.List(ctx)
    if err != nil {
        return nil, err
    }
    grants, err := r.access.ListByUser(ctx, userID)
    if err != nil {
        return nil, err
    }
    byCourse := make(map[uint64]*model.CourseAccess, len(grants))
    for _, g := range grants {
        byCourse[g.CourseID] = g
    }
    now := r.now()
    out := []Decision{}
    for _, c := range courses {
        if d := Decide(user, c, byCourse[c.ID], now); d.Allowed {
            out = append(out, d)
        }
    }
    return out, nil
}

// Grant is a CourseAccess row together with whether it is live now.
type Grant struct {
    *model.CourseAccess
    Active bool `json:"active"`
}

// ListGrants returns the user's grant rows, expired ones included.
func (r *Resolver) ListGrants(ctx context.Context, userID uint64) ([]Grant, error) {
    if _, err := r.users.GetByID(ctx, userID); err != nil {
        return nil, err
    }
    rows, err := r.access.ListByUser(ctx, userID)
    if err != nil {
        return nil, err
    }
    now := r.now()
    out := make([]Grant, 0, len(rows))
    for _, a := range rows {
        out = append(out, Grant{CourseAccess: a, Active: a.ActiveAt(now)})
    }
    return out, nil
}

// GrantInput is one grant request. ExpiryDate is optional and accepts
// RFC 3339 timestamps or plain YYYY-MM-DD dates (midnight UTC).
type GrantInput struct {
    CourseID   uint64 `json:"courseId"`
    AccessType string `json:"accessType"`
    ExpiryDate string `json:"expiryDate,omitempty"`
}

// ParseExpiry parses an optional expiry. Empty means no expiry.
func ParseExpiry(s string) (*time.Time, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return nil, nil
    }
    for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
        if t, err := time.Parse(layout, s); err == nil {
            t = t.UTC()
            return &t, nil
        }
    }
    return nil, repository.Invalid("expiryDate", "invalid date %q", s)
}

func normalizeAccessType(s string) (string, error) {
    s = strings.ToLower(strings.TrimSpace(s))
    if s == "" {
        return model.AccessGranted, nil
    }
    if !model.ValidAccessType(s) {
        return "", repository.Invalid("accessType", "must be one of granted, purchased, trial")
    }
    return s, nil
}

// Grant upserts the CourseAccess row for (userID, in.CourseID). Input is
// fully validated before anything is written, so a rejected grant leaves
// any prior row untouched.
func (r *Resolver) Grant(ctx context.Context, userID uint64, in GrantInput) (*model.CourseAccess, error) {
    if in.CourseID == 0 {
        return nil, repository.Invalid("courseId", "is required")
    }
    accessType, err := normalizeAccessType(in.AccessType)
    if err != nil {
        return nil, err
    }
    expiry, err := ParseExpiry(in.ExpiryDate)
    if err != nil {
        return nil, err
    }
    if _, err := r.users.GetByID(ctx, userID); err != nil {
        return nil, err
    }
    if _, err := r.courses.GetByID(ctx, in.CourseID); err != nil {
        return nil, err
    }
    rec, err := r.access.Upsert(ctx, userID, in.CourseID, accessType, expiry)
    if err != nil {
        return nil, fmt.Errorf("upsert course access: %w", err)
    }
    r.emit(ctx, queue.NewEvent(ctx, queue.ActionAccessGranted, "user", userID, rec))
    return rec, nil
}

// GrantResult reports one item of a batch grant.
type GrantResult struct {
    CourseID uint64              `json:"courseId"`
    OK       bool                `json:"ok"`
    Error    string              `json:"error,omitempty"`
    Record   *model.CourseAccess `json:"record,omitempty"`
    err      error
}

// Err returns the underlying error of a failed item.
func (g GrantResult) Err() error { return g.err }

// GrantMany applies each grant independently. It is not atomic: earlier
// items stay written when a later one fails. Only an unknown user fails the
// whole call.
func (r *Resolver) GrantMany(ctx context.Context, userID uint64, items []GrantInput) ([]GrantResult, error) {
    if _, err := r.users.GetByID(ctx, userID); err != nil {
        return nil, err
    }
    out := make([]GrantResult, 0, len(items))
    for _, in := range items {
        rec, err := r.Grant(ctx, userID, in)
        res := GrantResult{CourseID: in.CourseID, OK: err == nil, Record: rec, err: err}
        if err != nil {
            res.Error = err.Error()
        }
        out = append(out, res)
    }
    return out, nil
}

// Revoke deletes the grant. Revoking a grant that does not exist succeeds.
func (r *Resolver) Revoke(ctx context.Context, userID, courseID uint64) (bool, error) {
    removed, err := r.access.Delete(ctx, userID, courseID)
    if err != nil {
        return false, fmt.Errorf("delete course access: %w", err)
    }
    if removed {
        r.emit(ctx, queue.NewEvent(ctx, queue.ActionAccessRevoked, "user", userID,
            map[string]uint64{"courseId": courseID}))
    }
    return removed, nil
}

// Courses lists the course catalogue.
func (r *Resolver) Courses(ctx context.Context) ([]*model.Course, error) {
    return r.courses.List(ctx)
}

func (r *Resolver) Course(ctx context.Context, id uint64) (*model.Course, error) {
    return r.courses.GetByID(ctx, id)
}

func (r *Resolver) emit(ctx context.Context, ev queue.AuditEvent) {
    if err := r.events.Publish(ctx, ev); err != nil {
        logWarn(err, ev.Action)
    }
}

func logWarn(err error, action string) {
    logging.Warn().Err(err).Str("action", action).Msg("audit event dropped")
}
