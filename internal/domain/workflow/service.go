package workflow

import "context"

type WorkflowService interface {
	Create(ctx context.Context, req CreateRequestRequest) (RequestResponse, error)
	Get(ctx context.Context, id string) (RequestResponse, error)
	List(ctx context.Context, filter RequestFilter) (ListRequestResponse, error)
	Submit(ctx context.Context, req SubmitRequest) (RequestResponse, error)
	Decide(ctx context.Context, req DecideRequest) (RequestResponse, error)
	Comment(ctx context.Context, req CommentRequest) (RequestResponse, error)
	Attach(ctx context.Context, req AttachRequest) (RequestResponse, error)
	Delete(ctx context.Context, req DeleteRequest) error
}
