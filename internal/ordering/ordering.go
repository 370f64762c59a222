// Package ordering implements the display ordering shared by slides,
// quick-access tiles and published documents: ascending by order, ties
// broken by id, with inactive rows hidden from public consumers.
package ordering

import (
    "context"
    "fmt"
    "sort"

    "github.com/pistac/admin-backend/internal/logging"
    "github.com/pistac/admin-backend/internal/queue"
    "github.com/pistac/admin-backend/internal/repository"
)

// Item is anything that can be placed in a display sequence.
type Item interface {
    SortKey() (order int, id uint64)
    Visible() bool
}

// Audience selects which rows a listing returns.
type Audience int

const (
    Admin Audience = iota
    Public
)

// Sort returns a sorted copy of items. Order values may repeat or skip.
func Sort[T Item](items []T) []T {
    out := make([]T, len(items))
    copy(out, items)
    sort.SliceStable(out, func(i, j int) bool {
        oi, ii := out[i].SortKey()
        oj, ij := out[j].SortKey()
        if oi != oj {
            return oi < oj
        }
        return ii < ij
    })
    return out
}

// VisibleOnly returns a sorted copy holding only visible items.
func VisibleOnly[T Item](items []T) []T {
    sorted := Sort(items)
    out := sorted[:0]
    for _, it := range sorted {
        if it.Visible() {
            out = append(out, it)
        }
    }
    return out
}

// Arrange applies the listing rule for audience.
func Arrange[T Item](items []T, audience Audience) []T {
    if audience == Public {
        return VisibleOnly(items)
    }
    return Sort(items)
}

// Store is the persistence a Collection needs. The MySQL slide and
// quick-access repositories both satisfy it.
type Store[T Item] interface {
    List(ctx context.Context) ([]T, error)
    GetByID(ctx context.Context, id uint64) (T, error)
    Create(ctx context.Context, item T) error
    Update(ctx context.Context, item T) error
    SetOrder(ctx context.Context, id uint64, order int) (T, error)
    SetActive(ctx context.Context, id uint64, active bool) (T, error)
    Delete(ctx context.Context, id uint64) error
}

// Collection manages one orderable, togglable table.
type Collection[T Item] struct {
    entity   string
    store    Store[T]
    validate func(T) error
    onDelete func(context.Context, T)
    onUpdate func(ctx context.Context, prev, next T)
    events   queue.Publisher
}

// NewCollection wires a collection. validate runs before Create and Update
// and may be nil.
func NewCollection[T Item](entity string, store Store[T], validate func(T) error, events queue.Publisher) *Collection[T] {
    if events == nil {
        events = queue.NopPublisher{}
    }
    return &Collection[T]{entity: entity, store: store, validate: validate, events: events}
}

// OnDelete registers a hook run after a row is removed, for cleaning up
// resources the row referenced.
func (c *Collection[T]) OnDelete(fn func(context.Context, T)) *Collection[T] {
    c.onDelete = fn
    return c
}

// OnUpdate registers a hook run after Update with the row as it was before
// the write and as written.
func (c *Collection[T]) OnUpdate(fn func(ctx context.Context, prev, next T)) *Collection[T] {
    c.onUpdate = fn
    return c
}

func (c *Collection[T]) List(ctx context.Context, audience Audience) ([]T, error) {
    items, err := c.store.List(ctx)
    if err != nil {
        return nil, fmt.Errorf("list %s: %w", c.entity, err)
    }
    return Arrange(items, audience), nil
}

func (c *Collection[T]) Get(ctx context.Context, id uint64) (T, error) {
    return c.store.GetByID(ctx, id)
}

func (c *Collection[T]) Create(ctx context.Context, item T) (T, error) {
    if err := c.check(item); err != nil {
        var zero T
        return zero, err
    }
    if err := c.store.Create(ctx, item); err != nil {
        var zero T
        return zero, fmt.Errorf("create %s: %w", c.entity, err)
    }
    c.emit(ctx, queue.ActionDisplayChanged, item)
    return item, nil
}

// Update overwrites every editable field. item must carry the id of an
// existing row.
func (c *Collection[T]) Update(ctx context.Context, item T) (T, error) {
    var zero T
    _, id := item.SortKey()
    prev, err := c.store.GetByID(ctx, id)
    if err != nil {
        return zero, err
    }
    if err := c.check(item); err != nil {
        return zero, err
    }
    if err := c.store.Update(ctx, item); err != nil {
        return zero, fmt.Errorf("update %s: %w", c.entity, err)
    }
    if c.onUpdate != nil {
        c.onUpdate(ctx, prev, item)
    }
    c.emit(ctx, queue.ActionDisplayChanged, item)
    return item, nil
}

// SetOrder changes the display rank of one row. Other rows keep theirs.
func (c *Collection[T]) SetOrder(ctx context.Context, id uint64, order int) (T, error) {
    var zero T
    if order < 0 {
        return zero, repository.Invalid("order", "must not be negative")
    }
    item, err := c.store.SetOrder(ctx, id, order)
    if err != nil {
        return zero, err
    }
    c.emit(ctx, queue.ActionDisplayChanged, item)
    return item, nil
}

func (c *Collection[T]) SetActive(ctx context.Context, id uint64, active bool) (T, error) {
    item, err := c.store.SetActive(ctx, id, active)
    if err != nil {
        var zero T
        return zero, err
    }
    c.emit(ctx, queue.ActionDisplayChanged, item)
    return item, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id uint64) error {
    item, err := c.store.GetByID(ctx, id)
    if err != nil {
        return err
    }
    if err := c.store.Delete(ctx, id); err != nil {
        return err
    }
    if c.onDelete != nil {
        c.onDelete(ctx, item)
    }
    c.emit(ctx, queue.ActionDisplayDeleted, item)
    return nil
}

func (c *Collection[T]) check(item T) error {
    order, _ := item.SortKey()
    if order < 0 {
        return repository.Invalid("order", "must not be negative")
    }
    if c.validate != nil {
        return c.validate(item)
    }
    return nil
}

func (c *Collection[T]) emit(ctx context.Context, action string, item T) {
    _, id := item.SortKey()
    if err := c.events.Publish(ctx, queue.NewEvent(ctx, action, c.entity, id, item)); err != nil {
        logging.Warn().Err(err).Str("action", action).Msg("audit event dropped")
    }
}
