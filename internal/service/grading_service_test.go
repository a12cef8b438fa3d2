package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/grading"
	"github.com/noah-isme/gema-learn-api/internal/models"
)

type gradingHarness struct {
	*fixture
	svc        GradingService
	sessions   GradingSessionStore
	dashboards *recordingInvalidator
	events     *recordingPublisher
}

func newGradingHarness(t *testing.T) *gradingHarness {
	t.Helper()
	f := newFixture(t)
	h := &gradingHarness{
		fixture:    f,
		sessions:   NewMemoryGradingSessionStore(time.Hour),
		dashboards: &recordingInvalidator{},
		events:     &recordingPublisher{},
	}
	svc := NewGradingService(GradingDependencies{
		Submissions: f.submissions,
		Rubrics:     f.rubrics,
		Courses:     f.courses,
		Sessions:    h.sessions,
		Validator:   f.validate,
		Dashboards:  h.dashboards,
		Events:      h.events,
		Logger:      testLogger(),
	}).(*gradingService)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }
	h.svc = svc
	return h
}

func (h *gradingHarness) snapshot(t *testing.T, id uint) string {
	t.Helper()
	submission, err := h.submissions.GetByID(context.Background(), id)
	require.NoError(t, err)
	raw, err := json.Marshal(submission)
	require.NoError(t, err)
	return string(raw)
}

func TestGradingOpenDerivesGradeFromRubric(t *testing.T) {
	h := newGradingHarness(t)
	essay := h.submissionFor(t, h.eko, h.lessonByTitle(t, h.webDev, "Reflective Essay"))

	session, err := h.svc.Open(context.Background(), essay.ID, actorOf(h.budi))
	require.NoError(t, err)
	require.NotEmpty(t, session.SessionID)
	require.NotNil(t, session.Rubric)
	require.True(t, session.GradeDerived)
	require.Equal(t, 20, session.TotalPoints)
	require.Equal(t, 30, session.MaxPoints)
	require.Equal(t, 67, *session.Grade)
	require.True(t, session.CanSave)
	require.Equal(t, "strong", session.RubricScores["thesis"].LevelID)
}

func TestGradingEditsDoNotTouchStoredSubmissionUntilSave(t *testing.T) {
	h := newGradingHarness(t)
	ctx := context.Background()
	essay := h.submissionFor(t, h.eko, h.lessonByTitle(t, h.webDev, "Reflective Essay"))
	before := h.snapshot(t, essay.ID)

	session, err := h.svc.Open(ctx, essay.ID, actorOf(h.budi))
	require.NoError(t, err)

	updated, err := h.svc.ScoreCriterion(ctx, session.SessionID, "evidence", dto.ScoreCriterionRequest{LevelID: "compelling", Feedback: stringPointer("Well sourced")}, actorOf(h.budi))
	require.NoError(t, err)
	require.Equal(t, 100, *updated.Grade)
	require.Equal(t, "Well sourced", updated.RubricScores["evidence"].Feedback)

	_, err = h.svc.Update(ctx, session.SessionID, dto.GradingSessionUpdateRequest{Feedback: stringPointer("Rewritten feedback")}, actorOf(h.budi))
	require.NoError(t, err)

	require.Equal(t, before, h.snapshot(t, essay.ID))
}

func TestGradingCancelLeavesSubmissionUnchanged(t *testing.T) {
	h := newGradingHarness(t)
	ctx := context.Background()
	essay := h.submissionFor(t, h.eko, h.lessonByTitle(t, h.webDev, "Reflective Essay"))
	before := h.snapshot(t, essay.ID)

	session, err := h.svc.Open(ctx, essay.ID, actorOf(h.budi))
	require.NoError(t, err)
	_, err = h.svc.ScoreCriterion(ctx, session.SessionID, "thesis", dto.ScoreCriterionRequest{LevelID: "missing"}, actorOf(h.budi))
	require.NoError(t, err)

	require.NoError(t, h.svc.Cancel(ctx, session.SessionID, actorOf(h.budi)))
	require.Equal(t, before, h.snapshot(t, essay.ID))

	_, err = h.svc.Get(ctx, session.SessionID, actorOf(h.budi))
	require.ErrorIs(t, err, ErrGradingSessionNotFound)
	require.Empty(t, h.events.events)
	require.Empty(t, h.dashboards.students)
}

func TestGradingSaveWritesRubricGradeAndHistory(t *testing.T) {
	h := newGradingHarness(t)
	ctx := context.Background()
	htmlLesson := h.lessonByTitle(t, h.webDev, "HTML Basics")
	pending := h.submissionFor(t, h.dewi, htmlLesson)

	session, err := h.svc.Open(ctx, pending.ID, actorOf(h.budi))
	require.NoError(t, err)
	require.Equal(t, 0, *session.Grade)
	require.Equal(t, 40, session.MaxPoints)

	for criterion, level := range map[string]string{"correctness": "complete", "semantics": "some", "style": "tidy"} {
		_, err = h.svc.ScoreCriterion(ctx, session.SessionID, criterion, dto.ScoreCriterionRequest{LevelID: level}, actorOf(h.budi))
		require.NoError(t, err)
	}
	_, err = h.svc.Update(ctx, session.SessionID, dto.GradingSessionUpdateRequest{Feedback: stringPointer("<script>alert(1)</script>Nice layout")}, actorOf(h.budi))
	require.NoError(t, err)

	saved, err := h.svc.Save(ctx, session.SessionID, actorOf(h.budi))
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusGraded), saved.Status)
	require.Equal(t, 88, *saved.Grade)
	require.Equal(t, "Nice layout", saved.Feedback)
	require.Equal(t, "complete", saved.RubricScores["correctness"].LevelID)
	require.Equal(t, h.budi.ID, *saved.GradedBy)
	require.Len(t, saved.History, 1)
	require.Equal(t, 88, saved.History[0].Grade)

	require.Equal(t, []uint{h.dewi.ID}, h.dashboards.students)
	require.Len(t, h.events.events, 1)
	require.Equal(t, SubmissionEventGraded, h.events.events[0].Type)

	_, err = h.svc.Get(ctx, session.SessionID, actorOf(h.budi))
	require.ErrorIs(t, err, ErrGradingSessionNotFound)
}

func TestGradingSaveRejectedWithoutRubricOrGrade(t *testing.T) {
	h := newGradingHarness(t)
	ctx := context.Background()
	chart := h.submissionFor(t, h.dewi, h.lessonByTitle(t, h.dataLiteracy, "Reading Charts"))
	before := h.snapshot(t, chart.ID)

	session, err := h.svc.Open(ctx, chart.ID, actorOf(h.citra))
	require.NoError(t, err)
	require.Nil(t, session.Rubric)
	require.Nil(t, session.Grade)
	require.False(t, session.CanSave)

	_, err = h.svc.Save(ctx, session.SessionID, actorOf(h.citra))
	require.ErrorIs(t, err, ErrGradeUnresolvable)
	require.Equal(t, before, h.snapshot(t, chart.ID))

	updated, err := h.svc.Update(ctx, session.SessionID, dto.GradingSessionUpdateRequest{Grade: intPointer(78)}, actorOf(h.citra))
	require.NoError(t, err)
	require.True(t, updated.CanSave)
	require.False(t, updated.GradeDerived)

	saved, err := h.svc.Save(ctx, session.SessionID, actorOf(h.citra))
	require.NoError(t, err)
	require.Equal(t, 78, *saved.Grade)
	require.Empty(t, saved.RubricScores)
}

func TestGradingRejectsModeMismatches(t *testing.T) {
	h := newGradingHarness(t)
	ctx := context.Background()

	chart := h.submissionFor(t, h.dewi, h.lessonByTitle(t, h.dataLiteracy, "Reading Charts"))
	manual, err := h.svc.Open(ctx, chart.ID, actorOf(h.citra))
	require.NoError(t, err)
	_, err = h.svc.ScoreCriterion(ctx, manual.SessionID, "thesis", dto.ScoreCriterionRequest{LevelID: "strong"}, actorOf(h.citra))
	require.ErrorIs(t, err, ErrRubricNotAttached)

	essay := h.submissionFor(t, h.eko, h.lessonByTitle(t, h.webDev, "Reflective Essay"))
	derived, err := h.svc.Open(ctx, essay.ID, actorOf(h.budi))
	require.NoError(t, err)
	_, err = h.svc.Update(ctx, derived.SessionID, dto.GradingSessionUpdateRequest{Grade: intPointer(90)}, actorOf(h.budi))
	require.ErrorIs(t, err, ErrGradeDerived)

	_, err = h.svc.ScoreCriterion(ctx, derived.SessionID, "thesis", dto.ScoreCriterionRequest{LevelID: "legendary"}, actorOf(h.budi))
	require.ErrorIs(t, err, grading.ErrUnknownLevel)
	_, err = h.svc.ScoreCriterion(ctx, derived.SessionID, "originality", dto.ScoreCriterionRequest{LevelID: "strong"}, actorOf(h.budi))
	require.ErrorIs(t, err, grading.ErrUnknownCriterion)
}

func TestGradingEnforcesOwnership(t *testing.T) {
	h := newGradingHarness(t)
	ctx := context.Background()
	essay := h.submissionFor(t, h.eko, h.lessonByTitle(t, h.webDev, "Reflective Essay"))

	_, err := h.svc.Open(ctx, essay.ID, actorOf(h.citra))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = h.svc.Open(ctx, essay.ID, actorOf(h.eko))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = h.svc.Open(ctx, 9999, actorOf(h.budi))
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	session, err := h.svc.Open(ctx, essay.ID, actorOf(h.budi))
	require.NoError(t, err)
	_, err = h.svc.Get(ctx, session.SessionID, actorOf(h.citra))
	require.ErrorIs(t, err, ErrGradingSessionNotFound)

	_, err = h.svc.Get(ctx, session.SessionID, actorOf(h.admin))
	require.NoError(t, err)
}
