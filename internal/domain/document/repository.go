package document

import (
	"context"
	"time"
)

// Filter narrows a document listing. Status filters are translated into
// an expiry window by the service, never matched against the cached column.
type Filter struct {
	EmployeeID *string
	Category   *Category
	Search     *string

	ExpiresAfter *time.Time
	ExpiresUntil *time.Time

	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type Repository interface {
	Create(ctx context.Context, doc Document) (Document, error)
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, filter Filter) ([]Document, int64, error)
	ListAll(ctx context.Context) ([]Document, error)
	Update(ctx context.Context, doc Document) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}
