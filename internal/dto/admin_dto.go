package dto

import (
	"time"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// UserFilter describes query string filters for the admin user listing.
type UserFilter struct {
	Role   *string `query:"role" validate:"omitempty,oneof=admin instructor student"`
	Search string  `query:"search" validate:"omitempty,max=128"`
}

// UserResponse serializes a platform account.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse converts a user model.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Role:      string(model.Role),
		CreatedAt: model.CreatedAt,
	}
}

// NewUserResponseSlice converts a list of users.
func NewUserResponseSlice(items []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewUserResponse(item))
	}
	return responses
}

// AdminOverviewResponse powers the admin dashboard counters.
type AdminOverviewResponse struct {
	UsersByRole         map[string]int64 `json:"users_by_role"`
	Courses             int              `json:"courses"`
	PublishedCourses    int              `json:"published_courses"`
	SubmissionsByStatus map[string]int64 `json:"submissions_by_status"`
	GeneratedAt         time.Time        `json:"generated_at"`
}

// InstructorCourseSummary counts submissions per status for one course.
type InstructorCourseSummary struct {
	CourseID      uint   `json:"course_id"`
	Title         string `json:"title"`
	Lessons       int    `json:"lessons"`
	Pending       int64  `json:"pending"`
	Graded        int64  `json:"graded"`
	RetakeAllowed int64  `json:"retake_allowed"`
}

// InstructorOverviewResponse powers the instructor dashboard.
type InstructorOverviewResponse struct {
	InstructorID uint                      `json:"instructor_id"`
	Courses      []InstructorCourseSummary `json:"courses"`
	TotalPending int64                     `json:"total_pending"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}
