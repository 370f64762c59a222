package registration

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/queue"
    "github.com/pistac/admin-backend/internal/repository"
    "github.com/pistac/admin-backend/internal/testutil"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newLifecycle() (*Lifecycle, *clock, *testutil.RecordingPublisher) {
    store := testutil.NewStore()
    events := &testutil.RecordingPublisher{}
    c := &clock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
    return NewLifecycle(store.Workshops(), store.Registrations(), events).WithClock(c.now), c, events
}

func TestRegisterStartsPendingAndMayCancelDirectly(t *testing.T) {
    l, _, events := newLifecycle()
    ctx := context.Background()
    w, err := l.CreateWorkshop(ctx, "Go basics", nil)
    require.NoError(t, err)

    r, err := l.Register(ctx, RegisterInput{WorkshopID: w.ID, UserName: "Ana", UserEmail: "ana@example.com"})
    require.NoError(t, err)
    assert.Equal(t, model.RegistrationPending, r.Status)
    assert.Nil(t, r.UserPhone)

    r, err = l.SetStatus(ctx, r.ID, "cancelled")
    require.NoError(t, err)
    assert.Equal(t, model.RegistrationCancelled, r.Status)

    r, err = l.SetStatus(ctx, r.ID, "confirmed")
    require.NoError(t, err)
    assert.Equal(t, model.RegistrationConfirmed, r.Status)

    assert.Equal(t, []string{
        queue.ActionRegistrationCreated,
        queue.ActionRegistrationStatus,
        queue.ActionRegistrationStatus,
    }, events.Actions())
}

func TestRegisterValidation(t *testing.T) {
    l, _, _ := newLifecycle()
    ctx := context.Background()
    w, err := l.CreateWorkshop(ctx, "w", nil)
    require.NoError(t, err)

    _, err = l.Register(ctx, RegisterInput{WorkshopID: w.ID, UserEmail: "a@b.c"})
    assert.True(t, errors.Is(err, repository.ErrValidation))
    _, err = l.Register(ctx, RegisterInput{WorkshopID: w.ID, UserName: "a", UserEmail: "  "})
    assert.True(t, errors.Is(err, repository.ErrValidation))
    _, err = l.Register(ctx, RegisterInput{WorkshopID: 404, UserName: "a", UserEmail: "a@b.c"})
    assert.True(t, errors.Is(err, repository.ErrNotFound))

    _, err = l.SetStatus(ctx, 404, "confirmed")
    assert.True(t, errors.Is(err, repository.ErrNotFound))
    _, err = l.SetStatus(ctx, 404, "maybe")
    assert.True(t, errors.Is(err, repository.ErrValidation))
}

func TestListNewestFirst(t *testing.T) {
    l, c, _ := newLifecycle()
    ctx := context.Background()
    w1, _ := l.CreateWorkshop(ctx, "w1", nil)
    w2, _ := l.CreateWorkshop(ctx, "w2", nil)

    in := func(w uint64) RegisterInput {
        return RegisterInput{WorkshopID: w, UserName: "u", UserEmail: "u@example.com"}
    }
    first, err := l.Register(ctx, in(w1.ID))
    require.NoError(t, err)
    same, err := l.Register(ctx, in(w1.ID))
    require.NoError(t, err)
    c.t = c.t.Add(time.Hour)
    later, err := l.Register(ctx, in(w2.ID))
    require.NoError(t, err)

    all, err := l.ListAll(ctx)
    require.NoError(t, err)
    require.Len(t, all, 3)
    assert.Equal(t, []uint64{later.ID, same.ID, first.ID}, []uint64{all[0].ID, all[1].ID, all[2].ID})

    byW1, err := l.ListByWorkshop(ctx, w1.ID)
    require.NoError(t, err)
    require.Len(t, byW1, 2)
    assert.Equal(t, same.ID, byW1[0].ID)

    _, err = l.ListByWorkshop(ctx, 404)
    assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestDeleteRegistrationKeepsWorkshop(t *testing.T) {
    l, _, _ := newLifecycle()
    ctx := context.Background()
    w, _ := l.CreateWorkshop(ctx, "w", nil)
    r, err := l.Register(ctx, RegisterInput{WorkshopID: w.ID, UserName: "u", UserEmail: "u@example.com"})
    require.NoError(t, err)

    require.NoError(t, l.Delete(ctx, r.ID))
    assert.True(t, errors.Is(l.Delete(ctx, r.ID), repository.ErrNotFound))
    _, err = l.Workshop(ctx, w.ID)
    assert.NoError(t, err)
}

func TestDeleteWorkshopConflictAndCascade(t *testing.T) {
    l, _, events := newLifecycle()
    ctx := context.Background()
    w, _ := l.CreateWorkshop(ctx, "w", nil)
    r, err := l.Register(ctx, RegisterInput{WorkshopID: w.ID, UserName: "u", UserEmail: "u@example.com"})
    require.NoError(t, err)

    _, err = l.DeleteWorkshop(ctx, w.ID, false)
    assert.True(t, errors.Is(err, repository.ErrConflict))
    _, err = l.Get(ctx, r.ID)
    require.NoError(t, err)

    removed, err := l.DeleteWorkshop(ctx, w.ID, true)
    require.NoError(t, err)
    assert.Equal(t, int64(1), removed)
    _, err = l.Get(ctx, r.ID)
    assert.True(t, errors.Is(err, repository.ErrNotFound))
    assert.Contains(t, events.Actions(), queue.ActionWorkshopDeleted)

    empty, _ := l.CreateWorkshop(ctx, "empty", nil)
    removed, err = l.DeleteWorkshop(ctx, empty.ID, false)
    require.NoError(t, err)
    assert.Zero(t, removed)

    _, err = l.DeleteWorkshop(ctx, 404, true)
    assert.True(t, errors.Is(err, repository.ErrNotFound))
}
