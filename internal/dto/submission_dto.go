package dto

import (
	"time"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// SubmissionCreateRequest is sent by a student handing in a lesson assignment.
type SubmissionCreateRequest struct {
	CourseID uint `json:"course_id" validate:"required,gt=0"`
	LessonID uint `json:"lesson_id" validate:"required,gt=0"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	CourseID  *uint   `query:"course_id"`
	StudentID *uint   `query:"student_id"`
	Status    *string `query:"status" validate:"omitempty,oneof=pending graded retake_allowed"`
}

// ConfirmationRequest guards destructive actions. Confirm must be true for the action to apply.
type ConfirmationRequest struct {
	Confirm bool `json:"confirm"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID              uint                             `json:"id"`
	StudentID       uint                             `json:"student_id"`
	CourseID        uint                             `json:"course_id"`
	LessonID        uint                             `json:"lesson_id"`
	AssignmentTitle string                           `json:"assignment_title"`
	RubricID        *uint                            `json:"rubric_id"`
	Status          string                           `json:"status"`
	Grade           *int                             `json:"grade"`
	Feedback        string                           `json:"feedback"`
	RubricScores    models.RubricScores              `json:"rubric_scores"`
	GradedBy        *uint                            `json:"graded_by"`
	GradedAt        *time.Time                       `json:"graded_at"`
	History         []SubmissionGradeHistoryResponse `json:"history"`
	CreatedAt       time.Time                        `json:"created_at"`
	UpdatedAt       time.Time                        `json:"updated_at"`
	Student         StudentLite                      `json:"student"`
}

// SubmissionGradeHistoryResponse serializes grading history entries.
type SubmissionGradeHistoryResponse struct {
	Grade    int       `json:"grade"`
	Feedback string    `json:"feedback"`
	GradedBy uint      `json:"graded_by"`
	GradedAt time.Time `json:"graded_at"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:              model.ID,
		StudentID:       model.StudentID,
		CourseID:        model.CourseID,
		LessonID:        model.LessonID,
		AssignmentTitle: model.AssignmentTitle,
		RubricID:        model.RubricID,
		Status:          string(model.Status),
		Grade:           model.Grade,
		Feedback:        model.Feedback,
		RubricScores:    model.Scores().Clone(),
		GradedBy:        model.GradedBy,
		GradedAt:        model.GradedAt,
		History:         []SubmissionGradeHistoryResponse{},
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	for _, entry := range model.History {
		response.History = append(response.History, SubmissionGradeHistoryResponse{
			Grade:    entry.Grade,
			Feedback: entry.Feedback,
			GradedBy: entry.GradedBy,
			GradedAt: entry.GradedAt,
		})
	}

	return response
}

// NewSubmissionResponseSlice converts a list of models.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSubmissionResponse(item))
	}
	return responses
}
