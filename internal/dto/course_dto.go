package dto

import (
	"time"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// CourseCreateRequest is used by instructors to author a new course.
type CourseCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Category    string `json:"category" validate:"omitempty,max=128"`
	Published   bool   `json:"published"`
}

// CourseUpdateRequest is a typed partial update; nil fields are left unchanged.
type CourseUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" validate:"omitempty,max=128"`
	Published   *bool   `json:"published"`
}

// LessonCreateRequest appends a lesson to a course.
type LessonCreateRequest struct {
	Title           string `json:"title" validate:"required,min=3,max=255"`
	Summary         string `json:"summary" validate:"omitempty,max=2000"`
	AssignmentTitle string `json:"assignment_title" validate:"omitempty,max=255"`
	RubricID        *uint  `json:"rubric_id" validate:"omitempty,gt=0"`
}

// CourseFilter describes query string filters for public course listings.
type CourseFilter struct {
	Category string `query:"category" validate:"omitempty,max=128"`
}

// ApplyOutlineRequest turns a generated outline into course lessons.
type ApplyOutlineRequest struct {
	Modules []OutlineModule `json:"modules" validate:"required,min=1,dive"`
}

// CourseResponse is returned to API clients when viewing a course.
type CourseResponse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Published   bool             `json:"published"`
	CoverURL    string           `json:"cover_url"`
	Instructor  InstructorLite   `json:"instructor"`
	Lessons     []LessonResponse `json:"lessons"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// InstructorLite summarizes a course author.
type InstructorLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// LessonResponse serializes a lesson.
type LessonResponse struct {
	ID              uint   `json:"id"`
	CourseID        uint   `json:"course_id"`
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	Position        int    `json:"position"`
	AssignmentTitle string `json:"assignment_title"`
	RubricID        *uint  `json:"rubric_id"`
}

// NewLessonResponse converts a lesson model.
func NewLessonResponse(model models.Lesson) LessonResponse {
	return LessonResponse{
		ID:              model.ID,
		CourseID:        model.CourseID,
		Title:           model.Title,
		Summary:         model.Summary,
		Position:        model.Position,
		AssignmentTitle: model.AssignmentTitle,
		RubricID:        model.RubricID,
	}
}

// NewLessonResponseSlice converts a list of lessons.
func NewLessonResponseSlice(items []models.Lesson) []LessonResponse {
	responses := make([]LessonResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewLessonResponse(item))
	}
	return responses
}

// NewCourseResponse converts a course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Category:    model.Category,
		Published:   model.Published,
		CoverURL:    model.CoverURL,
		Instructor: InstructorLite{
			ID:   model.Instructor.ID,
			Name: model.Instructor.Name,
		},
		Lessons:   NewLessonResponseSlice(model.Lessons),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewCourseResponseSlice converts a list of courses.
func NewCourseResponseSlice(items []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewCourseResponse(item))
	}
	return responses
}
