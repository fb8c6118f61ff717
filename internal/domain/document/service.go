package document

import (
	"context"
	"time"
)

type DocumentService interface {
	Create(ctx context.Context, req CreateDocumentRequest) (DocumentResponse, error)
	Get(ctx context.Context, id string) (DocumentResponse, error)
	List(ctx context.Context, filter DocumentFilter) (ListDocumentResponse, error)
	Update(ctx context.Context, req UpdateDocumentRequest) (DocumentResponse, error)
	Delete(ctx context.Context, id string) error

	// ListExpiring returns every Warning or Expired document evaluated at now.
	ListExpiring(ctx context.Context, now time.Time) ([]DocumentResponse, error)
	// RefreshStatuses recomputes the cached status column and reports
	// the documents whose status changed.
	RefreshStatuses(ctx context.Context, now time.Time) (RefreshResult, error)
}
