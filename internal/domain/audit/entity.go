package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionSubmit   Action = "submit"
	ActionDecide   Action = "decide"
	ActionComment  Action = "comment"
	ActionAttach   Action = "attach"
	ActionAnalyze  Action = "analyze"
	ActionRefresh  Action = "refresh"
	ActionSettings Action = "settings"
)

type EntityType string

const (
	EntityEmployee EntityType = "employee"
	EntityDocument EntityType = "document"
	EntityWorkflow EntityType = "workflow"
	EntityFeedback EntityType = "feedback"
	EntitySettings EntityType = "settings"
)

// Entry is one append-only audit record.
type Entry struct {
	ID         string
	Actor      string
	Action     Action
	EntityType EntityType
	EntityID   string
	Details    map[string]interface{}
	CreatedAt  time.Time
}

type actorKey struct{}

// WithActor attaches the acting principal's display name to ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor set by WithActor, or fallback.
func ActorFromContext(ctx context.Context, fallback string) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return fallback
}
