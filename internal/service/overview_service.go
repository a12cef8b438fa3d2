package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/repository"
)

// OverviewService aggregates counters for the admin and instructor dashboards.
type OverviewService interface {
	Admin(ctx context.Context) (dto.AdminOverviewResponse, error)
	Instructor(ctx context.Context, instructorID uint) (dto.InstructorOverviewResponse, error)
}

type overviewService struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOverviewService constructs an OverviewService.
func NewOverviewService(users repository.UserRepository, courses repository.CourseRepository, submissions repository.SubmissionRepository, logger zerolog.Logger) OverviewService {
	return &overviewService{
		users:       users,
		courses:     courses,
		submissions: submissions,
		logger:      logger.With().Str("component", "overview_service").Logger(),
		now:         time.Now,
	}
}

func (s *overviewService) Admin(ctx context.Context) (dto.AdminOverviewResponse, error) {
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return dto.AdminOverviewResponse{}, err
	}
	courses, err := s.courses.List(ctx, repository.CourseFilter{})
	if err != nil {
		return dto.AdminOverviewResponse{}, err
	}
	byStatus, err := s.submissions.CountByStatus(ctx, repository.SubmissionFilter{})
	if err != nil {
		return dto.AdminOverviewResponse{}, err
	}

	response := dto.AdminOverviewResponse{
		UsersByRole:         make(map[string]int64, 3),
		Courses:             len(courses),
		SubmissionsByStatus: make(map[string]int64, 3),
		GeneratedAt:         s.now().UTC(),
	}
	for _, role := range []models.Role{models.RoleAdmin, models.RoleInstructor, models.RoleStudent} {
		response.UsersByRole[string(role)] = byRole[role]
	}
	for _, status := range []models.SubmissionStatus{models.SubmissionStatusPending, models.SubmissionStatusGraded, models.SubmissionStatusRetakeAllowed} {
		response.SubmissionsByStatus[string(status)] = byStatus[status]
	}
	for _, course := range courses {
		if course.Published {
			response.PublishedCourses++
		}
	}
	return response, nil
}

func (s *overviewService) Instructor(ctx context.Context, instructorID uint) (dto.InstructorOverviewResponse, error) {
	courses, err := s.courses.List(ctx, repository.CourseFilter{InstructorID: &instructorID})
	if err != nil {
		return dto.InstructorOverviewResponse{}, err
	}

	response := dto.InstructorOverviewResponse{
		InstructorID: instructorID,
		Courses:      make([]dto.InstructorCourseSummary, 0, len(courses)),
		GeneratedAt:  s.now().UTC(),
	}
	for _, course := range courses {
		courseID := course.ID
		counts, err := s.submissions.CountByStatus(ctx, repository.SubmissionFilter{CourseID: &courseID})
		if err != nil {
			return dto.InstructorOverviewResponse{}, err
		}

		summary := dto.InstructorCourseSummary{
			CourseID:      course.ID,
			Title:         course.Title,
			Lessons:       len(course.Lessons),
			Pending:       counts[models.SubmissionStatusPending],
			Graded:        counts[models.SubmissionStatusGraded],
			RetakeAllowed: counts[models.SubmissionStatusRetakeAllowed],
		}
		response.TotalPending += summary.Pending
		response.Courses = append(response.Courses, summary)
	}
	return response, nil
}
