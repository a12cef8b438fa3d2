package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/observability"
	"github.com/noah-isme/gema-learn-api/internal/repository"
)

var (
	// ErrCourseNotFound indicates the course does not exist or is not visible to the caller.
	ErrCourseNotFound = errors.New("course not found")
	// ErrUploadsDisabled indicates no object storage is configured.
	ErrUploadsDisabled = errors.New("file uploads are not configured")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the detected MIME type is not an accepted image.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadMissing indicates the request carried no file.
	ErrUploadMissing = errors.New("file is required")
)

var coverMimeTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
	"image/gif":  {},
}

// FileUploader abstracts the object storage used for course covers.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// CourseService covers the public catalog and instructor course authoring.
type CourseService interface {
	ListPublished(ctx context.Context, filter dto.CourseFilter) ([]dto.CourseResponse, error)
	GetPublished(ctx context.Context, id uint) (dto.CourseResponse, error)
	ListOwned(ctx context.Context, actor ActivityActor) ([]dto.CourseResponse, error)
	GetOwned(ctx context.Context, id uint, actor ActivityActor) (dto.CourseResponse, error)
	Create(ctx context.Context, payload dto.CourseCreateRequest, actor ActivityActor) (dto.CourseResponse, error)
	Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest, actor ActivityActor) (dto.CourseResponse, error)
	Delete(ctx context.Context, id uint, payload dto.ConfirmationRequest, actor ActivityActor) error
	AddLesson(ctx context.Context, id uint, payload dto.LessonCreateRequest, actor ActivityActor) (dto.LessonResponse, error)
	ApplyOutline(ctx context.Context, id uint, payload dto.ApplyOutlineRequest, actor ActivityActor) (dto.CourseResponse, error)
	UploadCover(ctx context.Context, id uint, file *multipart.FileHeader, actor ActivityActor) (dto.CourseResponse, error)
}

type courseService struct {
	courses    repository.CourseRepository
	rubrics    repository.RubricRepository
	dashboards DashboardInvalidator
	validator  *validator.Validate
	uploader   FileUploader
	maxUpload  int64
	logger     zerolog.Logger
}

// NewCourseService constructs a CourseService. A nil uploader disables cover uploads.
// Dashboards of students whose submissions vanish with a deleted course are dropped through dashboards.
func NewCourseService(courses repository.CourseRepository, rubrics repository.RubricRepository, dashboards DashboardInvalidator, validate *validator.Validate, uploader FileUploader, maxUploadBytes int64, logger zerolog.Logger) CourseService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &courseService{
		courses:    courses,
		rubrics:    rubrics,
		dashboards: dashboards,
		validator:  validate,
		uploader:   uploader,
		maxUpload:  maxUploadBytes,
		logger:     logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) ListPublished(ctx context.Context, filter dto.CourseFilter) ([]dto.CourseResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	courses, err := s.courses.List(ctx, repository.CourseFilter{
		PublishedOnly: true,
		Category:      strings.TrimSpace(filter.Category),
	})
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) GetPublished(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.find(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if !course.Published {
		return dto.CourseResponse{}, ErrCourseNotFound
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) ListOwned(ctx context.Context, actor ActivityActor) ([]dto.CourseResponse, error) {
	filter := repository.CourseFilter{}
	if !actor.Is(models.RoleAdmin) {
		instructorID := actor.ID
		filter.InstructorID = &instructorID
	}

	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) GetOwned(ctx context.Context, id uint, actor ActivityActor) (dto.CourseResponse, error) {
	course, err := s.owned(ctx, id, actor)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest, actor ActivityActor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}
	if !actor.Is(models.RoleInstructor) {
		return dto.CourseResponse{}, ErrForbidden
	}

	course := models.Course{
		Title:        strings.TrimSpace(payload.Title),
		Description:  strings.TrimSpace(payload.Description),
		Category:     strings.TrimSpace(payload.Category),
		InstructorID: actor.ID,
		Published:    payload.Published,
	}
	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Uint("instructor_id", actor.ID).Msg("course created")
	return s.respond(ctx, course.ID)
}

func (s *courseService) Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest, actor ActivityActor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.owned(ctx, id, actor)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	if payload.Title != nil {
		course.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		course.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Category != nil {
		course.Category = strings.TrimSpace(*payload.Category)
	}
	if payload.Published != nil {
		course.Published = *payload.Published
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}
	return s.respond(ctx, course.ID)
}

func (s *courseService) Delete(ctx context.Context, id uint, payload dto.ConfirmationRequest, actor ActivityActor) error {
	if !payload.Confirm {
		return ErrConfirmationRequired
	}
	if _, err := s.owned(ctx, id, actor); err != nil {
		return err
	}

	students, err := s.courses.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	invalidateDashboards(ctx, s.dashboards, students)

	s.logger.Info().
		Uint("course_id", id).
		Uint("actor_id", actor.ID).
		Int("students_affected", len(students)).
		Msg("course deleted")
	return nil
}

func (s *courseService) AddLesson(ctx context.Context, id uint, payload dto.LessonCreateRequest, actor ActivityActor) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}
	if _, err := s.owned(ctx, id, actor); err != nil {
		return dto.LessonResponse{}, err
	}

	if payload.RubricID != nil {
		if _, err := s.rubrics.GetByID(ctx, *payload.RubricID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.LessonResponse{}, ErrRubricNotFound
			}
			return dto.LessonResponse{}, err
		}
	}

	lesson := models.Lesson{
		Title:           strings.TrimSpace(payload.Title),
		Summary:         strings.TrimSpace(payload.Summary),
		AssignmentTitle: strings.TrimSpace(payload.AssignmentTitle),
		RubricID:        payload.RubricID,
	}
	created, err := s.courses.AppendLessons(ctx, id, []models.Lesson{lesson})
	if err != nil {
		return dto.LessonResponse{}, err
	}
	return dto.NewLessonResponse(created[0]), nil
}

func (s *courseService) ApplyOutline(ctx context.Context, id uint, payload dto.ApplyOutlineRequest, actor ActivityActor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}
	if _, err := s.owned(ctx, id, actor); err != nil {
		return dto.CourseResponse{}, err
	}

	lessons := make([]models.Lesson, 0)
	for _, module := range payload.Modules {
		moduleTitle := strings.TrimSpace(module.ModuleTitle)
		for _, item := range module.Lessons {
			lessons = append(lessons, models.Lesson{
				Title:   truncate(fmt.Sprintf("%s: %s", moduleTitle, strings.TrimSpace(item.Title)), 255),
				Summary: strings.TrimSpace(item.Summary),
			})
		}
	}

	if _, err := s.courses.AppendLessons(ctx, id, lessons); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", id).Int("lessons", len(lessons)).Msg("outline applied")
	return s.respond(ctx, id)
}

func (s *courseService) UploadCover(ctx context.Context, id uint, file *multipart.FileHeader, actor ActivityActor) (dto.CourseResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-learn-api/internal/service/course")
	ctx, span := tracer.Start(ctx, "course.upload_cover")
	span.SetAttributes(
		attribute.Int64("course.id", int64(id)),
		attribute.Int64("upload.max_bytes", s.maxUpload),
	)
	defer span.End()

	if s.uploader == nil {
		return dto.CourseResponse{}, failSpan(span, ErrUploadsDisabled, "uploads_disabled")
	}
	if file == nil {
		return dto.CourseResponse{}, failSpan(span, ErrUploadMissing, "validation_failed")
	}

	course, err := s.owned(ctx, id, actor)
	if err != nil {
		return dto.CourseResponse{}, failSpan(span, err, "course_lookup_failed")
	}

	if file.Size > s.maxUpload {
		observability.CoverUploads().WithLabelValues("rejected_size").Inc()
		return dto.CourseResponse{}, failSpan(span, ErrUploadTooLarge, "payload_too_large")
	}

	handle, err := file.Open()
	if err != nil {
		return dto.CourseResponse{}, failSpan(span, err, "open_failed")
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxUpload+1)); err != nil {
		return dto.CourseResponse{}, failSpan(span, err, "read_failed")
	}
	if int64(buf.Len()) > s.maxUpload {
		observability.CoverUploads().WithLabelValues("rejected_size").Inc()
		return dto.CourseResponse{}, failSpan(span, ErrUploadTooLarge, "payload_too_large")
	}

	detected := mimetype.Detect(buf.Bytes()).String()
	if idx := strings.Index(detected, ";"); idx >= 0 {
		detected = detected[:idx]
	}
	span.SetAttributes(attribute.String("upload.detected_mime", detected))
	if _, ok := coverMimeTypes[detected]; !ok {
		observability.CoverUploads().WithLabelValues("rejected_type").Inc()
		return dto.CourseResponse{}, failSpan(span, ErrUploadTypeNotAllowed, "type_not_allowed")
	}

	url, err := s.uploader.Upload(ctx, fmt.Sprintf("course-%d-%s", course.ID, course.Title), bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.CoverUploads().WithLabelValues("storage_failed").Inc()
		return dto.CourseResponse{}, failSpan(span, err, "storage_failed")
	}

	course.CoverURL = url
	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, failSpan(span, err, "persistence_failed")
	}

	observability.CoverUploads().WithLabelValues("stored").Inc()
	span.SetStatus(codes.Ok, "stored")
	return s.respond(ctx, course.ID)
}

func (s *courseService) find(ctx context.Context, id uint) (models.Course, error) {
	return findCourse(ctx, s.courses, id)
}

func (s *courseService) owned(ctx context.Context, id uint, actor ActivityActor) (models.Course, error) {
	return ownedCourse(ctx, s.courses, id, actor)
}

func findCourse(ctx context.Context, courses repository.CourseRepository, id uint) (models.Course, error) {
	course, err := courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

// ownedCourse loads a course the actor may edit: admins any, instructors their own.
func ownedCourse(ctx context.Context, courses repository.CourseRepository, id uint, actor ActivityActor) (models.Course, error) {
	course, err := findCourse(ctx, courses, id)
	if err != nil {
		return models.Course{}, err
	}
	switch {
	case actor.Is(models.RoleAdmin):
		return course, nil
	case actor.Is(models.RoleInstructor) && course.InstructorID == actor.ID:
		return course, nil
	default:
		return models.Course{}, ErrForbidden
	}
}

func (s *courseService) respond(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.find(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
