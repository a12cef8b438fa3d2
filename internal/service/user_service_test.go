package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/repository"
)

func TestUserListFilters(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.users, nil, f.validate, testLogger())
	ctx := context.Background()

	all, err := svc.List(ctx, dto.UserFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)

	students, err := svc.List(ctx, dto.UserFilter{Role: stringPointer("student")})
	require.NoError(t, err)
	require.Len(t, students, 2)

	matches, err := svc.List(ctx, dto.UserFilter{Search: "CITRA"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "instructor", matches[0].Role)

	_, err = svc.List(ctx, dto.UserFilter{Role: stringPointer("owner")})
	require.True(t, isValidationErr(err))
}

func TestUserDeleteRules(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.users, nil, f.validate, testLogger())
	ctx := context.Background()

	require.ErrorIs(t, svc.Delete(ctx, f.eko.ID, dto.ConfirmationRequest{}, actorOf(f.admin)), ErrConfirmationRequired)
	require.ErrorIs(t, svc.Delete(ctx, f.eko.ID, dto.ConfirmationRequest{Confirm: true}, actorOf(f.budi)), ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, f.admin.ID, dto.ConfirmationRequest{Confirm: true}, actorOf(f.admin)), ErrCannotDeleteSelf)
	require.ErrorIs(t, svc.Delete(ctx, 9999, dto.ConfirmationRequest{Confirm: true}, actorOf(f.admin)), ErrUserNotFound)

	require.NoError(t, svc.Delete(ctx, f.eko.ID, dto.ConfirmationRequest{Confirm: true}, actorOf(f.admin)))
	_, err := f.users.GetByID(ctx, f.eko.ID)
	require.Error(t, err)
}

func TestUserDeleteStudentRemovesTheirSubmissions(t *testing.T) {
	f := newFixture(t)
	dashboards := &recordingInvalidator{}
	svc := NewUserService(f.users, dashboards, f.validate, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, f.eko.ID, dto.ConfirmationRequest{Confirm: true}, actorOf(f.admin)))

	studentID := f.eko.ID
	left, err := f.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	require.NoError(t, err)
	require.Empty(t, left)
	require.Equal(t, []uint{f.eko.ID}, dashboards.students)
}

func TestUserDeleteInstructorRemovesTheirCourses(t *testing.T) {
	f := newFixture(t)
	dashboards := &recordingInvalidator{}
	svc := NewUserService(f.users, dashboards, f.validate, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, f.budi.ID, dto.ConfirmationRequest{Confirm: true}, actorOf(f.admin)))

	instructorID := f.budi.ID
	courses, err := f.courses.List(ctx, repository.CourseFilter{InstructorID: &instructorID})
	require.NoError(t, err)
	require.Empty(t, courses)
	require.ElementsMatch(t, []uint{f.dewi.ID, f.eko.ID}, dashboards.students)

	overview, err := NewOverviewService(f.users, f.courses, f.submissions, testLogger()).Admin(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, overview.Courses)
	require.Equal(t, map[string]int64{"pending": 1, "graded": 1, "retake_allowed": 0}, overview.SubmissionsByStatus)
}
