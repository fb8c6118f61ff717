package feedback

import "context"

type FeedbackService interface {
	Submit(ctx context.Context, req SubmitFeedbackRequest) (FeedbackResponse, error)
	List(ctx context.Context, filter FeedbackFilter) (ListFeedbackResponse, error)
	RecordAnalysis(ctx context.Context, req RecordAnalysisRequest) (FeedbackResponse, error)
	Dashboard(ctx context.Context) (Dashboard, error)
}
