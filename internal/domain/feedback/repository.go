package feedback

import (
	"context"
	"time"
)

type Filter struct {
	Department *string
	Label      *Label
	Page       int
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, f Feedback) (Feedback, error)
	GetByID(ctx context.Context, id string) (Feedback, error)
	List(ctx context.Context, filter Filter) ([]Feedback, int64, error)
	ListAll(ctx context.Context) ([]Feedback, error)
	UpdateAnalysis(ctx context.Context, id string, score float64, label Label, at time.Time) error
}
