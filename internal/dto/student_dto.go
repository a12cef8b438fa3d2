package dto

import "time"

// StudentProgressSummary aggregates a student's submissions.
type StudentProgressSummary struct {
	Total         int      `json:"total"`
	Pending       int      `json:"pending"`
	Graded        int      `json:"graded"`
	RetakeAllowed int      `json:"retake_allowed"`
	AverageGrade  *float64 `json:"average_grade"`
}

// StudentDashboardResponse is the payload of the student dashboard.
type StudentDashboardResponse struct {
	StudentID   uint                   `json:"student_id"`
	Summary     StudentProgressSummary `json:"summary"`
	Submissions []SubmissionResponse   `json:"submissions"`
	GeneratedAt time.Time              `json:"generated_at"`
	CacheHit    bool                   `json:"cache_hit"`
}
