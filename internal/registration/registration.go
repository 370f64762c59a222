// Package registration handles workshops and the sign-ups attached to them.
// Registration status is a free-form field: any status may follow any other.
package registration

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "strings"
    "time"

    "github.com/pistac/admin-backend/internal/logging"
    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/queue"
    "github.com/pistac/admin-backend/internal/repository"
)

type WorkshopStore interface {
    Create(ctx context.Context, w *model.Workshop) error
    GetByID(ctx context.Context, id uint64) (*model.Workshop, error)
    List(ctx context.Context) ([]*model.Workshop, error)
    Delete(ctx context.Context, id uint64, cascade bool) (int64, error)
}

type Store interface {
    Create(ctx context.Context, r *model.WorkshopRegistration) error
    GetByID(ctx context.Context, id uint64) (*model.WorkshopRegistration, error)
    UpdateStatus(ctx context.Context, id uint64, status string) (*model.WorkshopRegistration, error)
    Delete(ctx context.Context, id uint64) error
    List(ctx context.Context, workshopID uint64) ([]*model.WorkshopRegistration, error)
}

type Lifecycle struct {
    workshops WorkshopStore
    regs      Store
    events    queue.Publisher
    now       func() time.Time
}

func NewLifecycle(workshops WorkshopStore, regs Store, events queue.Publisher) *Lifecycle {
    if events == nil {
        events = queue.NopPublisher{}
    }
    return &Lifecycle{workshops: workshops, regs: regs, events: events, now: time.Now}
}

// WithClock replaces the time source used to stamp registrations.
func (l *Lifecycle) WithClock(now func() time.Time) *Lifecycle {
    l.now = now
    return l
}

// SortNewestFirst orders registrations by registration date descending,
// then id descending.
func SortNewestFirst(regs []*model.WorkshopRegistration) {
    sort.SliceStable(regs, func(i, j int) bool {
        a, b := regs[i], regs[j]
        if !a.RegistrationDate.Equal(b.RegistrationDate) {
            return a.RegistrationDate.After(b.RegistrationDate)
        }
        return a.ID > b.ID
    })
}

// ---- workshops ----

func (l *Lifecycle) CreateWorkshop(ctx context.Context, title string, startsAt *time.Time) (*model.Workshop, error) {
    title = strings.TrimSpace(title)
    if title == "" {
        return nil, repository.Invalid("title", "is required")
    }
    w := &model.Workshop{Title: title, StartsAt: startsAt}
    if err := l.workshops.Create(ctx, w); err != nil {
        return nil, fmt.Errorf("create workshop: %w", err)
    }
    return w, nil
}

func (l *Lifecycle) Workshop(ctx context.Context, id uint64) (*model.Workshop, error) {
    return l.workshops.GetByID(ctx, id)
}

func (l *Lifecycle) Workshops(ctx context.Context) ([]*model.Workshop, error) {
    return l.workshops.List(ctx)
}

// DeleteWorkshop refuses with ErrConflict while registrations reference
// the workshop, unless cascade is set, in which case they go with it.
func (l *Lifecycle) DeleteWorkshop(ctx context.Context, id uint64, cascade bool) (int64, error) {
    removed, err := l.workshops.Delete(ctx, id, cascade)
    if errors.Is(err, repository.ErrConflict) {
        return 0, fmt.Errorf("workshop %d still has registrations, pass cascade to remove them: %w", id, err)
    }
    if err != nil {
        return 0, err
    }
    l.emit(ctx, queue.NewEvent(ctx, queue.ActionWorkshopDeleted, "workshop", id,
        map[string]any{"cascade": cascade, "registrationsRemoved": removed}))
    return removed, nil
}

// ---- registrations ----

// RegisterInput is a sign-up request. Every registration starts pending;
// SetStatus moves it afterwards.
type RegisterInput struct {
    WorkshopID uint64  `json:"workshopId" validate:"required"`
    UserName   string  `json:"userName" validate:"required,max=255"`
    UserEmail  string  `json:"userEmail" validate:"required,email,max=255"`
    UserPhone  *string `json:"userPhone" validate:"omitempty,max=50"`
}

func (l *Lifecycle) Register(ctx context.Context, in RegisterInput) (*model.WorkshopRegistration, error) {
    name := strings.TrimSpace(in.UserName)
    email := strings.TrimSpace(in.UserEmail)
    switch {
    case in.WorkshopID == 0:
        return nil, repository.Invalid("workshopId", "is required")
    case name == "":
        return nil, repository.Invalid("userName", "is required")
    case email == "":
        return nil, repository.Invalid("userEmail", "is required")
    }
    if _, err := l.workshops.GetByID(ctx, in.WorkshopID); err != nil {
        return nil, err
    }
    var phone *string
    if in.UserPhone != nil && strings.TrimSpace(*in.UserPhone) != "" {
        p := strings.TrimSpace(*in.UserPhone)
        phone = &p
    }
    reg := &model.WorkshopRegistration{
        WorkshopID:       in.WorkshopID,
        UserName:         name,
        UserEmail:        email,
        UserPhone:        phone,
        Status:           model.RegistrationPending,
        RegistrationDate: l.now().UTC(),
    }
    if err := l.regs.Create(ctx, reg); err != nil {
        return nil, fmt.Errorf("create registration: %w", err)
    }
    l.emit(ctx, queue.NewEvent(ctx, queue.ActionRegistrationCreated, "registration", reg.ID, reg))
    return reg, nil
}

func (l *Lifecycle) Get(ctx context.Context, id uint64) (*model.WorkshopRegistration, error) {
    return l.regs.GetByID(ctx, id)
}

// SetStatus moves a registration to status. Every transition is allowed,
// cancelled back to confirmed included.
func (l *Lifecycle) SetStatus(ctx context.Context, id uint64, status string) (*model.WorkshopRegistration, error) {
    status = strings.ToLower(strings.TrimSpace(status))
    if !model.ValidRegistrationStatus(status) {
        return nil, repository.Invalid("status", "must be one of pending, confirmed, cancelled")
    }
    if _, err := l.regs.GetByID(ctx, id); err != nil {
        return nil, err
    }
    reg, err := l.regs.UpdateStatus(ctx, id, status)
    if err != nil {
        return nil, err
    }
    l.emit(ctx, queue.NewEvent(ctx, queue.ActionRegistrationStatus, "registration", reg.ID, reg))
    return reg, nil
}

// Delete removes one registration. The workshop is not touched.
func (l *Lifecycle) Delete(ctx context.Context, id uint64) error {
    if err := l.regs.Delete(ctx, id); err != nil {
        return err
    }
    l.emit(ctx, queue.NewEvent(ctx, queue.ActionRegistrationDeleted, "registration", id, nil))
    return nil
}

func (l *Lifecycle) ListByWorkshop(ctx context.Context, workshopID uint64) ([]*model.WorkshopRegistration, error) {
    if _, err := l.workshops.GetByID(ctx, workshopID); err != nil {
        return nil, err
    }
    return l.list(ctx, workshopID)
}

func (l *Lifecycle) ListAll(ctx context.Context) ([]*model.WorkshopRegistration, error) {
    return l.list(ctx, 0)
}

func (l *Lifecycle) list(ctx context.Context, workshopID uint64) ([]*model.WorkshopRegistration, error) {
    regs, err := l.regs.List(ctx, workshopID)
    if err != nil {
        return nil, fmt.Errorf("list registrations: %w", err)
    }
    SortNewestFirst(regs)
    return regs, nil
}

func (l *Lifecycle) emit(ctx context.Context, ev queue.AuditEvent) {
    if err := l.events.Publish(ctx, ev); err != nil {
        logging.Warn().Err(err).Str("action", ev.Action).Msg("audit event dropped")
    }
}
