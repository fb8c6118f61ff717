package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v float64) *float64 { return &v }

func TestSummarize(t *testing.T) {
	emp := "01939b2e-5c4f-7a3b-8d1e-2f3a4b5c6d7e"
	items := []Feedback{
		{Department: "IT", Label: LabelPositive, SentimentScore: score(0.8)},
		{Department: "IT", Label: LabelNegative, SentimentScore: score(-0.4), EmployeeID: &emp},
		{Department: "Sales", Label: LabelUnanalyzed},
		{Department: "Call Center", Label: LabelNeutral, SentimentScore: score(0.0)},
	}

	d := Summarize(items)

	assert.Equal(t, 4, d.Total)
	assert.Equal(t, 3, d.Anonymous)
	assert.Equal(t, 3, d.Analyzed)
	require.NotNil(t, d.AverageScore)
	assert.InDelta(t, 0.1333, *d.AverageScore, 0.001)

	assert.Equal(t, []LabelCount{
		{LabelPositive, 1}, {LabelNeutral, 1}, {LabelNegative, 1}, {LabelUnanalyzed, 1},
	}, d.Labels)

	require.Len(t, d.Departments, 3)
	assert.Equal(t, "Call Center", d.Departments[0].Department)
	assert.Equal(t, "IT", d.Departments[1].Department)
	assert.Equal(t, 2, d.Departments[1].Count)
	assert.InDelta(t, 0.2, *d.Departments[1].AverageScore, 0.0001)
	assert.Nil(t, d.Departments[2].AverageScore)
}

func TestSummarize_Empty(t *testing.T) {
	d := Summarize(nil)
	assert.Zero(t, d.Total)
	assert.Nil(t, d.AverageScore)
	assert.Len(t, d.Labels, 4)
	assert.Empty(t, d.Departments)
}

func TestRecordAnalysisRequest_Validate(t *testing.T) {
	req := RecordAnalysisRequest{ID: "x", Score: 0.5, Label: "Positive"}
	assert.NoError(t, req.Validate())

	req.Label = string(LabelUnanalyzed)
	assert.Error(t, req.Validate())

	req = RecordAnalysisRequest{ID: "x", Score: 1.5, Label: "Negative"}
	assert.Error(t, req.Validate())
}
