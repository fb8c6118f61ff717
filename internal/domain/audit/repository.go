package audit

import "context"

type Filter struct {
	EntityType *EntityType
	EntityID   *string
	Actor      *string
	Page       int
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, int64, error)
}
