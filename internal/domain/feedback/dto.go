package feedback

import (
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/employee"
	"github.com/lucidata/hr-core-go/internal/pkg/validator"
)

type SubmitFeedbackRequest struct {
	Text       string `json:"text"`
	Department string `json:"department"`
	Anonymous  bool   `json:"anonymous"`

	// Set from the caller identity when the feedback is not anonymous.
	EmployeeID *string `json:"-"`
}

func (r *SubmitFeedbackRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("text", r.Text)
	errs.MaxLen("text", r.Text, 4000)
	errs.MaxLen("department", r.Department, 100)

	return errs.Err()
}

// DepartmentOrDefault returns the submitted department or the shared default.
func (r *SubmitFeedbackRequest) DepartmentOrDefault() string {
	if validator.IsEmpty(r.Department) {
		return employee.DefaultDepartment
	}
	return r.Department
}

// RecordAnalysisRequest stores the output of an external sentiment analyzer.
type RecordAnalysisRequest struct {
	ID    string  `json:"-"`
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

func (r *RecordAnalysisRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("id", r.ID)
	if r.Score < -1 || r.Score > 1 {
		errs.Add("score", ErrScoreOutOfRange.Error())
	}
	if l := Label(r.Label); !l.IsValid() || l == LabelUnanalyzed {
		errs.Add("label", ErrInvalidLabel.Error())
	}

	return errs.Err()
}

type FeedbackFilter struct {
	Department *string
	Label      *string
	Page       int
	Limit      int
}

func (f *FeedbackFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Label != nil && !Label(*f.Label).IsValid() {
		errs.Add("label", "label must be Positive, Neutral, Negative or Unanalyzed")
	}
	return errs.Err()
}

type FeedbackResponse struct {
	ID             string     `json:"id"`
	Anonymous      bool       `json:"anonymous"`
	EmployeeID     *string    `json:"employee_id,omitempty"`
	Department     string     `json:"department"`
	Text           string     `json:"text"`
	SentimentScore *float64   `json:"sentiment_score,omitempty"`
	Label          Label      `json:"label"`
	AnalyzedAt     *time.Time `json:"analyzed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewFeedbackResponse(f Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:             f.ID,
		Anonymous:      f.IsAnonymous(),
		EmployeeID:     f.EmployeeID,
		Department:     f.Department,
		Text:           f.Text,
		SentimentScore: f.SentimentScore,
		Label:          f.Label,
		AnalyzedAt:     f.AnalyzedAt,
		CreatedAt:      f.CreatedAt,
	}
}

type ListFeedbackResponse struct {
	Feedback   []FeedbackResponse `json:"feedback"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
