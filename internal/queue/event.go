// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "context"
    "time"

    "github.com/google/uuid"
)

// Audit actions published by the domain packages.
const (
    ActionAccessGranted       = "course_access.granted"
    ActionAccessRevoked       = "course_access.revoked"
    ActionDocumentCreated     = "document.created"
    ActionDocumentFlags       = "document.flags_changed"
    ActionDocumentDeleted     = "document.deleted"
    ActionDisplayChanged      = "display.changed"
    ActionDisplayDeleted      = "display.deleted"
    ActionRegistrationCreated = "registration.created"
    ActionRegistrationStatus  = "registration.status_changed"
    ActionRegistrationDeleted = "registration.deleted"
    ActionWorkshopDeleted     = "workshop.deleted"
    ActionUserUpdated         = "user.updated"
)

// AuditEvent is published after every admin state transition. It carries
// the new authoritative state of the touched row so consumers never need
// to query the primary database.
type AuditEvent struct {
    ID         string `json:"id,omitempty"` // unique per event; consumers dedupe redeliveries on it
    Action     string `json:"action"`
    Entity     string `json:"entity"`
    EntityID   uint64 `json:"entity_id"`
    ActorID    uint64 `json:"actor_id,omitempty"`
    Data       any    `json:"data,omitempty"`
    OccurredAt string `json:"occurred_at"`
}

// Publisher delivers audit events. Implementations must be safe for
// concurrent use.
type Publisher interface {
    Publish(ctx context.Context, ev AuditEvent) error
}

// NopPublisher drops every event. Used when no broker is configured and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, AuditEvent) error { return nil }

type actorKey struct{}

// WithActor attaches the id of the admin performing a request to ctx.
func WithActor(ctx context.Context, userID uint64) context.Context {
    return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns the admin id stored by WithActor, or 0.
func ActorFrom(ctx context.Context) uint64 {
    id, _ := ctx.Value(actorKey{}).(uint64)
    return id
}

// NewEvent stamps an event with a fresh id, the actor from ctx and the
// current time.
func NewEvent(ctx context.Context, action, entity string, id uint64, data any) AuditEvent {
    return AuditEvent{
        ID:         uuid.NewString(),
        Action:     action,
        Entity:     entity,
        EntityID:   id,
        ActorID:    ActorFrom(ctx),
        Data:       data,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
}
