package entitlement

import (
    "context"
    "strings"

    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/queue"
    "github.com/pistac/admin-backend/internal/repository"
)

// UserDirectory is the user table as seen by admins.
type UserDirectory interface {
    UserStore
    List(ctx context.Context) ([]*model.User, error)
    UpdateProfile(ctx context.Context, id uint64, role string, tier model.Tier) (*model.User, error)
}

// Users lets admins change a user's role and subscription tier. A tier
// change takes effect on the next Resolve; nothing is cached.
type Users struct {
    store  UserDirectory
    events queue.Publisher
}

func NewUsers(store UserDirectory, events queue.Publisher) *Users {
    if events == nil {
        events = queue.NopPublisher{}
    }
    return &Users{store: store, events: events}
}

// ProfilePatch holds the fields an admin may change. Nil leaves a field as is.
type ProfilePatch struct {
    Role               *string `json:"role"`
    SubscriptionStatus *string `json:"subscriptionStatus"`
}

func (u *Users) List(ctx context.Context) ([]*model.User, error) { return u.store.List(ctx) }

func (u *Users) Get(ctx context.Context, id uint64) (*model.User, error) {
    return u.store.GetByID(ctx, id)
}

func (u *Users) Update(ctx context.Context, id uint64, p ProfilePatch) (*model.User, error) {
    if p.Role == nil && p.SubscriptionStatus == nil {
        return nil, repository.Invalid("", "nothing to update: set role or subscriptionStatus")
    }
    var role string
    if p.Role != nil {
        role = strings.ToLower(strings.TrimSpace(*p.Role))
        if !model.ValidRole(role) {
            return nil, repository.Invalid("role", "must be admin or user")
        }
    }
    var tier model.Tier
    if p.SubscriptionStatus != nil {
        tier = model.Tier(strings.ToLower(strings.TrimSpace(*p.SubscriptionStatus)))
        if !tier.Valid() {
            return nil, repository.Invalid("subscriptionStatus", "must be one of free, premium, vip")
        }
    }
    if _, err := u.store.GetByID(ctx, id); err != nil {
        return nil, err
    }
    user, err := u.store.UpdateProfile(ctx, id, role, tier)
    if err != nil {
        return nil, err
    }
    ev := queue.NewEvent(ctx, queue.ActionUserUpdated, "user", id, user)
    if err := u.events.Publish(ctx, ev); err != nil {
        logWarn(err, ev.Action)
    }
    return user, nil
}
