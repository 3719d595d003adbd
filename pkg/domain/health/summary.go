package health

// Grade is the letter grade of an overall score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Status is the label paired with a grade.
type Status string

const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusFair      Status = "fair"
	StatusPoor      Status = "poor"
	StatusCritical  Status = "critical"
)

// Summary is the headline of an analysis.
type Summary struct {
	OverallScore float64 `json:"overallScore"`
	HealthGrade  Grade   `json:"healthGrade"`
	Status       Status  `json:"status"`
}

// CreateSummary grades the overall score against bands checked top-down.
// Scores below every band are F/critical.
func CreateSummary(m DetailedHealthMetrics, bands []GradeBand) Summary {
	s := Summary{OverallScore: m.OverallScore, HealthGrade: GradeF, Status: StatusCritical}
	for _, b := range bands {
		if m.OverallScore >= b.Min {
			s.HealthGrade = b.Grade
			s.Status = b.Status
			break
		}
	}
	return s
}
