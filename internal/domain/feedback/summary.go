package feedback

import "sort"

type LabelCount struct {
	Label Label `json:"label"`
	Count int   `json:"count"`
}

type DepartmentSummary struct {
	Department   string   `json:"department"`
	Count        int      `json:"count"`
	AverageScore *float64 `json:"average_score,omitempty"`
}

type Dashboard struct {
	Total        int                 `json:"total"`
	Anonymous    int                 `json:"anonymous"`
	Analyzed     int                 `json:"analyzed"`
	AverageScore *float64            `json:"average_score,omitempty"`
	Labels       []LabelCount        `json:"labels"`
	Departments  []DepartmentSummary `json:"departments"`
}

// Summarize aggregates feedback for the dashboard. Averages only count
// items that carry a sentiment score.
func Summarize(items []Feedback) Dashboard {
	d := Dashboard{Total: len(items)}

	labels := map[Label]int{
		LabelPositive:   0,
		LabelNeutral:    0,
		LabelNegative:   0,
		LabelUnanalyzed: 0,
	}
	type acc struct {
		count  int
		scored int
		sum    float64
	}
	depts := map[string]*acc{}
	var scored int
	var sum float64

	for _, f := range items {
		if f.IsAnonymous() {
			d.Anonymous++
		}
		labels[f.Label]++

		a := depts[f.Department]
		if a == nil {
			a = &acc{}
			depts[f.Department] = a
		}
		a.count++

		if f.SentimentScore != nil {
			d.Analyzed++
			scored++
			sum += *f.SentimentScore
			a.scored++
			a.sum += *f.SentimentScore
		}
	}

	d.AverageScore = average(sum, scored)

	for _, l := range []Label{LabelPositive, LabelNeutral, LabelNegative, LabelUnanalyzed} {
		d.Labels = append(d.Labels, LabelCount{Label: l, Count: labels[l]})
	}

	d.Departments = make([]DepartmentSummary, 0, len(depts))
	for name, a := range depts {
		d.Departments = append(d.Departments, DepartmentSummary{
			Department:   name,
			Count:        a.count,
			AverageScore: average(a.sum, a.scored),
		})
	}
	sort.Slice(d.Departments, func(i, j int) bool {
		return d.Departments[i].Department < d.Departments[j].Department
	})
	return d
}

func average(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}
