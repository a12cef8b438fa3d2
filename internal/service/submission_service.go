package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/observability"
	"github.com/noah-isme/gema-learn-api/internal/repository"
)

var (
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrLessonNotFound indicates the lesson does not exist or its course is not published.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrLessonHasNoAssignment indicates the lesson cannot receive submissions.
	ErrLessonHasNoAssignment = errors.New("lesson has no assignment")
	// ErrAlreadySubmitted indicates the student already has an open or graded attempt.
	ErrAlreadySubmitted = errors.New("assignment already submitted")
)

// SubmissionService exposes the submission store to students and instructors.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter, actor ActivityActor) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint, actor ActivityActor) (dto.SubmissionResponse, error)
	Create(ctx context.Context, payload dto.SubmissionCreateRequest, actor ActivityActor) (dto.SubmissionResponse, error)
	AllowRetake(ctx context.Context, id uint, payload dto.ConfirmationRequest, actor ActivityActor) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	courses     repository.CourseRepository
	validator   *validator.Validate
	dashboards  DashboardInvalidator
	events      SubmissionEventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. dashboards and events may be nil.
func NewSubmissionService(submissions repository.SubmissionRepository, courses repository.CourseRepository, validate *validator.Validate, dashboards DashboardInvalidator, events SubmissionEventPublisher, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		courses:     courses,
		validator:   validate,
		dashboards:  dashboards,
		events:      events,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter, actor ActivityActor) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		CourseID:  filter.CourseID,
		StudentID: filter.StudentID,
	}
	if filter.Status != nil {
		status := models.SubmissionStatus(*filter.Status)
		repoFilter.Status = &status
	}

	switch {
	case actor.Is(models.RoleStudent):
		studentID := actor.ID
		repoFilter.StudentID = &studentID
	case actor.Is(models.RoleInstructor):
		instructorID := actor.ID
		repoFilter.InstructorID = &instructorID
	case actor.Is(models.RoleAdmin):
	default:
		return nil, ErrForbidden
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id uint, actor ActivityActor) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id, actor)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !actor.Is(models.RoleStudent) {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	course, err := s.courses.GetByID(ctx, payload.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrLessonNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !course.Published {
		return dto.SubmissionResponse{}, ErrLessonNotFound
	}

	lesson, err := s.courses.GetLesson(ctx, payload.CourseID, payload.LessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrLessonNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !lesson.HasAssignment() {
		return dto.SubmissionResponse{}, ErrLessonHasNoAssignment
	}

	studentID := actor.ID
	lessonID := lesson.ID
	existing, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID, LessonID: &lessonID})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	var submission models.Submission
	switch {
	case len(existing) == 0:
		submission = models.Submission{
			StudentID:       actor.ID,
			CourseID:        course.ID,
			LessonID:        lesson.ID,
			AssignmentTitle: lesson.AssignmentTitle,
			RubricID:        lesson.RubricID,
			Status:          models.SubmissionStatusPending,
		}
		submission.SetScores(models.RubricScores{})
		if err := s.submissions.Create(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}
	case existing[0].Status == models.SubmissionStatusRetakeAllowed:
		// a retake reuses the record so feedback from the previous attempt stays visible
		submission = existing[0]
		submission.Status = models.SubmissionStatusPending
		submission.Grade = nil
		if err := s.submissions.Update(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}
	default:
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	}

	s.afterChange(ctx, submission, SubmissionEventSubmitted, actor)
	s.logger.Info().Uint("submission_id", submission.ID).Uint("student_id", actor.ID).Uint("lesson_id", lesson.ID).Msg("submission received")

	return s.reload(ctx, submission), nil
}

func (s *submissionService) AllowRetake(ctx context.Context, id uint, payload dto.ConfirmationRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	if !payload.Confirm {
		return dto.SubmissionResponse{}, ErrConfirmationRequired
	}
	if actor.Is(models.RoleStudent) {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	submission, err := s.load(ctx, id, actor)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission.Status = models.SubmissionStatusRetakeAllowed
	submission.Grade = nil
	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.RetakesAllowed().Inc()
	s.afterChange(ctx, submission, SubmissionEventRetakeAllowed, actor)
	s.logger.Info().Uint("submission_id", submission.ID).Uint("actor_id", actor.ID).Msg("retake allowed")

	return s.reload(ctx, submission), nil
}

// load fetches a submission and enforces ownership: students see their own work,
// instructors the work handed in on their courses.
func (s *submissionService) load(ctx context.Context, id uint, actor ActivityActor) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}

	if err := authorizeSubmission(ctx, s.courses, submission, actor); err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *submissionService) reload(ctx context.Context, submission models.Submission) dto.SubmissionResponse {
	fresh, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to reload submission")
		return dto.NewSubmissionResponse(submission)
	}
	return dto.NewSubmissionResponse(fresh)
}

func (s *submissionService) afterChange(ctx context.Context, submission models.Submission, eventType string, actor ActivityActor) {
	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, submission.StudentID)
	}
	publishSubmissionEvent(ctx, s.events, s.logger, SubmissionEvent{
		Type:         eventType,
		SubmissionID: submission.ID,
		StudentID:    submission.StudentID,
		CourseID:     submission.CourseID,
		Status:       string(submission.Status),
		Grade:        submission.Grade,
		ActorID:      actor.ID,
		OccurredAt:   s.now().UTC(),
	})
}

func authorizeSubmission(ctx context.Context, courses repository.CourseRepository, submission models.Submission, actor ActivityActor) error {
	switch {
	case actor.Is(models.RoleAdmin):
		return nil
	case actor.Is(models.RoleStudent):
		if submission.StudentID != actor.ID {
			return ErrForbidden
		}
		return nil
	case actor.Is(models.RoleInstructor):
		course, err := courses.GetByID(ctx, submission.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrForbidden
			}
			return err
		}
		if course.InstructorID != actor.ID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}
