package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/grading"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/observability"
	"github.com/noah-isme/gema-learn-api/internal/repository"
)

var (
	// ErrRubricNotAttached indicates criterion scoring was attempted on a submission without a rubric.
	ErrRubricNotAttached = errors.New("submission has no rubric attached")
	// ErrGradeDerived indicates a manual grade was sent for a rubric-scored submission.
	ErrGradeDerived = errors.New("grade is derived from the rubric and cannot be set manually")
	// ErrGradeUnresolvable indicates save was attempted before any grade could be resolved.
	ErrGradeUnresolvable = errors.New("a grade is required before saving")
	// ErrRubricMissing indicates the submission references a rubric that is not in the catalog.
	ErrRubricMissing = errors.New("attached rubric not found")
)

// GradingService drives the open, score, save or cancel workflow over a single submission.
type GradingService interface {
	Open(ctx context.Context, submissionID uint, actor ActivityActor) (dto.GradingSessionResponse, error)
	Get(ctx context.Context, sessionID string, actor ActivityActor) (dto.GradingSessionResponse, error)
	ScoreCriterion(ctx context.Context, sessionID, criterionID string, payload dto.ScoreCriterionRequest, actor ActivityActor) (dto.GradingSessionResponse, error)
	Update(ctx context.Context, sessionID string, payload dto.GradingSessionUpdateRequest, actor ActivityActor) (dto.GradingSessionResponse, error)
	Save(ctx context.Context, sessionID string, actor ActivityActor) (dto.SubmissionResponse, error)
	Cancel(ctx context.Context, sessionID string, actor ActivityActor) error
}

type gradingService struct {
	submissions repository.SubmissionRepository
	rubrics     repository.RubricRepository
	courses     repository.CourseRepository
	sessions    GradingSessionStore
	validator   *validator.Validate
	dashboards  DashboardInvalidator
	events      SubmissionEventPublisher
	policy      *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
	newID       func() string
}

// GradingDependencies groups the collaborators of the grading workflow.
type GradingDependencies struct {
	Submissions repository.SubmissionRepository
	Rubrics     repository.RubricRepository
	Courses     repository.CourseRepository
	Sessions    GradingSessionStore
	Validator   *validator.Validate
	Dashboards  DashboardInvalidator
	Events      SubmissionEventPublisher
	Logger      zerolog.Logger
}

// NewGradingService constructs the grading workflow.
func NewGradingService(deps GradingDependencies) GradingService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &gradingService{
		submissions: deps.Submissions,
		rubrics:     deps.Rubrics,
		courses:     deps.Courses,
		sessions:    deps.Sessions,
		validator:   deps.Validator,
		dashboards:  deps.Dashboards,
		events:      deps.Events,
		policy:      policy,
		logger:      deps.Logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *gradingService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	tracer := otel.Tracer("github.com/noah-isme/gema-learn-api/internal/service/grading")
	return tracer.Start(ctx, name)
}

func (s *gradingService) Open(ctx context.Context, submissionID uint, actor ActivityActor) (dto.GradingSessionResponse, error) {
	ctx, span := s.startSpan(ctx, "grading.open")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrSubmissionNotFound
		}
		return dto.GradingSessionResponse{}, failSpan(span, err, "submission_lookup_failed")
	}
	if err := s.authorize(ctx, submission, actor); err != nil {
		return dto.GradingSessionResponse{}, failSpan(span, err, "forbidden")
	}

	session := GradingSession{
		ID:           s.newID(),
		SubmissionID: submission.ID,
		StudentID:    submission.StudentID,
		Feedback:     submission.Feedback,
		RubricScores: submission.Scores().Clone(),
		OpenedBy:     actor.ID,
		OpenedAt:     s.now().UTC(),
	}
	if submission.Grade != nil {
		grade := *submission.Grade
		session.Grade = &grade
	}

	if submission.RubricID != nil {
		rubric, err := s.rubrics.GetByID(ctx, *submission.RubricID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = ErrRubricMissing
			}
			return dto.GradingSessionResponse{}, failSpan(span, err, "rubric_lookup_failed")
		}
		rubric = rubric.Clone()
		session.Rubric = &rubric

		// selections for criteria that left the rubric are not carried into the session
		for criterionID := range session.RubricScores {
			if _, ok := rubric.Criterion(criterionID); !ok {
				delete(session.RubricScores, criterionID)
			}
		}
	} else {
		session.RubricScores = models.RubricScores{}
	}
	session.Recompute()

	if err := s.sessions.Save(ctx, session); err != nil {
		return dto.GradingSessionResponse{}, failSpan(span, err, "session_store_failed")
	}

	observability.GradingSessions().WithLabelValues("opened").Inc()
	span.SetAttributes(
		attribute.String("grading.session_id", session.ID),
		attribute.Bool("grading.rubric", session.Rubric != nil),
	)
	s.logger.Info().Str("session_id", session.ID).Uint("submission_id", submission.ID).Uint("actor_id", actor.ID).Msg("grading session opened")

	return newGradingSessionResponse(session), nil
}

func (s *gradingService) Get(ctx context.Context, sessionID string, actor ActivityActor) (dto.GradingSessionResponse, error) {
	session, err := s.loadSession(ctx, sessionID, actor)
	if err != nil {
		return dto.GradingSessionResponse{}, err
	}
	return newGradingSessionResponse(session), nil
}

func (s *gradingService) ScoreCriterion(ctx context.Context, sessionID, criterionID string, payload dto.ScoreCriterionRequest, actor ActivityActor) (dto.GradingSessionResponse, error) {
	ctx, span := s.startSpan(ctx, "grading.score_criterion")
	span.SetAttributes(
		attribute.String("grading.session_id", sessionID),
		attribute.String("grading.criterion_id", criterionID),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.GradingSessionResponse{}, failSpan(span, err, "validation_failed")
	}

	session, err := s.loadSession(ctx, sessionID, actor)
	if err != nil {
		return dto.GradingSessionResponse{}, failSpan(span, err, "session_lookup_failed")
	}
	if session.Rubric == nil {
		return dto.GradingSessionResponse{}, failSpan(span, ErrRubricNotAttached, "rubric_not_attached")
	}

	levelID := strings.TrimSpace(payload.LevelID)
	if err := grading.ValidateSelection(*session.Rubric, criterionID, levelID); err != nil {
		return dto.GradingSessionResponse{}, failSpan(span, err, "invalid_selection")
	}

	score := session.RubricScores[criterionID]
	score.LevelID = levelID
	if payload.Feedback != nil {
		score.Feedback = strings.TrimSpace(*payload.Feedback)
	}
	if session.RubricScores == nil {
		session.RubricScores = models.RubricScores{}
	}
	session.RubricScores[criterionID] = score

	result := session.Recompute()
	if err := s.sessions.Save(ctx, session); err != nil {
		return dto.GradingSessionResponse{}, failSpan(span, err, "session_store_failed")
	}

	span.SetAttributes(attribute.Int("grading.grade", result.Grade))
	return newGradingSessionResponse(session), nil
}

func (s *gradingService) Update(ctx context.Context, sessionID string, payload dto.GradingSessionUpdateRequest, actor ActivityActor) (dto.GradingSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradingSessionResponse{}, err
	}

	session, err := s.loadSession(ctx, sessionID, actor)
	if err != nil {
		return dto.GradingSessionResponse{}, err
	}

	if payload.Grade != nil {
		if session.Rubric != nil {
			return dto.GradingSessionResponse{}, ErrGradeDerived
		}
		grade := *payload.Grade
		session.Grade = &grade
	}
	if payload.Feedback != nil {
		session.Feedback = *payload.Feedback
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return dto.GradingSessionResponse{}, err
	}
	return newGradingSessionResponse(session), nil
}

func (s *gradingService) Save(ctx context.Context, sessionID string, actor ActivityActor) (dto.SubmissionResponse, error) {
	ctx, span := s.startSpan(ctx, "grading.save")
	span.SetAttributes(
		attribute.String("grading.session_id", sessionID),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	session, err := s.loadSession(ctx, sessionID, actor)
	if err != nil {
		return dto.SubmissionResponse{}, failSpan(span, err, "session_lookup_failed")
	}

	grade := grading.Resolve(session.Rubric, session.RubricScores, session.Grade)
	if grade == nil {
		return dto.SubmissionResponse{}, failSpan(span, ErrGradeUnresolvable, "grade_unresolvable")
	}

	submission, err := s.submissions.GetByID(ctx, session.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, failSpan(span, err, "submission_lookup_failed")
	}

	gradedAt := s.now().UTC()
	gradedBy := actor.ID
	feedback := s.policy.Sanitize(strings.TrimSpace(session.Feedback))

	scores := make(models.RubricScores, len(session.RubricScores))
	for criterionID, score := range session.RubricScores {
		score.Feedback = s.policy.Sanitize(score.Feedback)
		scores[criterionID] = score
	}

	submission.Status = models.SubmissionStatusGraded
	submission.Grade = grade
	submission.Feedback = feedback
	submission.SetScores(scores)
	submission.GradedBy = &gradedBy
	submission.GradedAt = &gradedAt

	history := models.SubmissionGradeHistory{
		Grade:    *grade,
		Feedback: feedback,
		GradedBy: gradedBy,
		GradedAt: gradedAt,
	}
	if err := s.submissions.SaveGrade(ctx, &submission, &history); err != nil {
		return dto.SubmissionResponse{}, failSpan(span, err, "submission_update_failed")
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("failed to close grading session")
	}
	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, submission.StudentID)
	}
	publishSubmissionEvent(ctx, s.events, s.logger, SubmissionEvent{
		Type:         SubmissionEventGraded,
		SubmissionID: submission.ID,
		StudentID:    submission.StudentID,
		CourseID:     submission.CourseID,
		Status:       string(submission.Status),
		Grade:        submission.Grade,
		ActorID:      actor.ID,
		OccurredAt:   gradedAt,
	})

	observability.GradingSessions().WithLabelValues("saved").Inc()
	observability.SavedGrades().Observe(float64(*grade))
	span.SetAttributes(attribute.Int("grading.grade", *grade))
	s.logger.Info().Str("session_id", session.ID).Uint("submission_id", submission.ID).Int("grade", *grade).Msg("submission graded")

	fresh, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to reload graded submission")
		return dto.NewSubmissionResponse(submission), nil
	}
	return dto.NewSubmissionResponse(fresh), nil
}

func (s *gradingService) Cancel(ctx context.Context, sessionID string, actor ActivityActor) error {
	session, err := s.loadSession(ctx, sessionID, actor)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return err
	}

	observability.GradingSessions().WithLabelValues("cancelled").Inc()
	s.logger.Info().Str("session_id", session.ID).Uint("submission_id", session.SubmissionID).Msg("grading session cancelled")
	return nil
}

func (s *gradingService) loadSession(ctx context.Context, sessionID string, actor ActivityActor) (GradingSession, error) {
	session, err := s.sessions.Get(ctx, strings.TrimSpace(sessionID))
	if err != nil {
		return GradingSession{}, err
	}
	if !actor.Is(models.RoleAdmin) && session.OpenedBy != actor.ID {
		return GradingSession{}, ErrGradingSessionNotFound
	}
	return session, nil
}

func (s *gradingService) authorize(ctx context.Context, submission models.Submission, actor ActivityActor) error {
	if actor.Is(models.RoleStudent) {
		return ErrForbidden
	}
	return authorizeSubmission(ctx, s.courses, submission, actor)
}

func newGradingSessionResponse(session GradingSession) dto.GradingSessionResponse {
	response := dto.GradingSessionResponse{
		SessionID:    session.ID,
		SubmissionID: session.SubmissionID,
		Feedback:     session.Feedback,
		RubricScores: session.RubricScores.Clone(),
		CanSave:      session.CanSave(),
		OpenedBy:     session.OpenedBy,
		OpenedAt:     session.OpenedAt,
	}
	if session.Grade != nil {
		grade := *session.Grade
		response.Grade = &grade
	}
	if session.Rubric != nil {
		rubric := dto.NewRubricResponse(*session.Rubric)
		result := grading.Evaluate(*session.Rubric, session.RubricScores)
		response.Rubric = &rubric
		response.GradeDerived = true
		response.TotalPoints = result.TotalPoints
		response.MaxPoints = result.MaxPoints
	}
	return response
}

func failSpan(span trace.Span, err error, status string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	return err
}
