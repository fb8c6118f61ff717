package feedback

import "time"

type Label string

const (
	LabelUnanalyzed Label = "Unanalyzed"
	LabelPositive   Label = "Positive"
	LabelNeutral    Label = "Neutral"
	LabelNegative   Label = "Negative"
)

func (l Label) IsValid() bool {
	switch l {
	case LabelUnanalyzed, LabelPositive, LabelNeutral, LabelNegative:
		return true
	}
	return false
}

// Feedback is an employee comment. A nil EmployeeID means it was
// submitted anonymously.
type Feedback struct {
	ID             string
	EmployeeID     *string
	Department     string
	Text           string
	SentimentScore *float64
	Label          Label
	AnalyzedAt     *time.Time
	CreatedAt      time.Time
}

func (f Feedback) IsAnonymous() bool {
	return f.EmployeeID == nil
}
