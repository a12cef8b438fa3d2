package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus captures where a submission sits in the grading lifecycle.
type SubmissionStatus string

const (
	// SubmissionStatusPending indicates the submission awaits grading.
	SubmissionStatusPending SubmissionStatus = "pending"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded SubmissionStatus = "graded"
	// SubmissionStatusRetakeAllowed indicates the learner may resubmit; any prior grade is gone.
	SubmissionStatusRetakeAllowed SubmissionStatus = "retake_allowed"
)

// RubricScore records the level chosen for one criterion and optional per-criterion feedback.
type RubricScore struct {
	LevelID  string `json:"level_id"`
	Feedback string `json:"feedback,omitempty"`
}

// RubricScores maps criterion identifiers to the level selected for them.
type RubricScores map[string]RubricScore

// Clone returns an independent copy of the selections.
func (s RubricScores) Clone() RubricScores {
	clone := make(RubricScores, len(s))
	for criterionID, score := range s {
		clone[criterionID] = score
	}
	return clone
}

// Submission is a student's attempt at a lesson assignment.
type Submission struct {
	ID              uint                             `gorm:"primaryKey" json:"id"`
	StudentID       uint                             `gorm:"not null;index" json:"student_id"`
	CourseID        uint                             `gorm:"not null;index" json:"course_id"`
	LessonID        uint                             `gorm:"not null;index" json:"lesson_id"`
	AssignmentTitle string                           `gorm:"size:255;not null" json:"assignment_title"`
	RubricID        *uint                            `gorm:"index" json:"rubric_id"`
	Status          SubmissionStatus                 `gorm:"size:32;not null;index" json:"status"`
	Grade           *int                             `json:"grade"`
	Feedback        string                           `gorm:"type:text" json:"feedback"`
	RubricScores    datatypes.JSONType[RubricScores] `json:"rubric_scores"`
	GradedBy        *uint                            `json:"graded_by"`
	GradedAt        *time.Time                       `json:"graded_at"`
	CreatedAt       time.Time                        `json:"created_at"`
	UpdatedAt       time.Time                        `json:"updated_at"`
	Student         User                             `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	History         []SubmissionGradeHistory         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"history"`
}

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// Scores returns the stored rubric selections, never nil.
func (s Submission) Scores() RubricScores {
	scores := s.RubricScores.Data()
	if scores == nil {
		return RubricScores{}
	}
	return scores
}

// SetScores replaces the stored rubric selections.
func (s *Submission) SetScores(scores RubricScores) {
	s.RubricScores = datatypes.NewJSONType(scores)
}

// SubmissionGradeHistory keeps an audit trail of every saved grade.
type SubmissionGradeHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	Grade        int       `gorm:"not null" json:"grade"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	GradedBy     uint      `gorm:"not null" json:"graded_by"`
	GradedAt     time.Time `gorm:"not null" json:"graded_at"`
}
