package dto

import (
	"time"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// ScoreCriterionRequest selects a level for one rubric criterion inside a grading session.
type ScoreCriterionRequest struct {
	LevelID  string  `json:"level_id" validate:"required,max=64"`
	Feedback *string `json:"feedback" validate:"omitempty,max=2000"`
}

// GradingSessionUpdateRequest is a partial update of the session's free-form fields.
// Grade is only accepted when the submission has no rubric attached.
type GradingSessionUpdateRequest struct {
	Grade    *int    `json:"grade" validate:"omitempty,gte=0,lte=100"`
	Feedback *string `json:"feedback" validate:"omitempty,max=5000"`
}

// GradingSessionResponse exposes the edit snapshot of an open grading session.
type GradingSessionResponse struct {
	SessionID    string              `json:"session_id"`
	SubmissionID uint                `json:"submission_id"`
	Rubric       *RubricResponse     `json:"rubric"`
	Grade        *int                `json:"grade"`
	GradeDerived bool                `json:"grade_derived"`
	TotalPoints  int                 `json:"total_points"`
	MaxPoints    int                 `json:"max_points"`
	Feedback     string              `json:"feedback"`
	RubricScores models.RubricScores `json:"rubric_scores"`
	CanSave      bool                `json:"can_save"`
	OpenedBy     uint                `json:"opened_by"`
	OpenedAt     time.Time           `json:"opened_at"`
}

// GradingSessionOpenRequest starts a grading session for one submission.
type GradingSessionOpenRequest struct {
	SubmissionID uint `json:"submission_id" validate:"required,gt=0"`
}
