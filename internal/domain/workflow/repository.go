package workflow

import "context"

type Filter struct {
	RequesterID *string
	Type        *Type
	Status      *Status
	SortOrder   string
	Page        int
	Limit       int
}

type Repository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, filter Filter) ([]Request, int64, error)
	// Update writes req only if the stored version still equals
	// expectedVersion, and returns the row with the incremented version.
	// A stale version yields *ConflictError.
	Update(ctx context.Context, req Request, expectedVersion int) (Request, error)
	Delete(ctx context.Context, id string, expectedVersion int) error
}
