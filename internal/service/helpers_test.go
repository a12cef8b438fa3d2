package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-learn-api/internal/database"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fixture struct {
	db          *gorm.DB
	validate    *validator.Validate
	users       repository.UserRepository
	rubrics     repository.RubricRepository
	courses     repository.CourseRepository
	submissions repository.SubmissionRepository
	content     repository.SiteContentRepository

	admin, budi, citra, dewi, eko models.User
	webDev, dataLiteracy, draftGo models.Course
	essayRubric, codingRubric     models.Rubric
}

// newFixture opens a private in-memory database and loads the demo catalog into it.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &fixture{
		db:          db,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		users:       repository.NewUserRepository(db),
		rubrics:     repository.NewRubricRepository(db),
		courses:     repository.NewCourseRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		content:     repository.NewSiteContentRepository(db),
	}

	seed := NewSeedService(SeedRepositories{
		Users:       f.users,
		Rubrics:     f.rubrics,
		Courses:     f.courses,
		Submissions: f.submissions,
		SiteContent: f.content,
	}, f.validate, testLogger())
	summary, err := seed.SeedCatalog(context.Background())
	require.NoError(t, err)
	require.False(t, summary.Skipped)

	f.admin = f.userByEmail(t, "admin@gema.test")
	f.budi = f.userByEmail(t, "budi@gema.test")
	f.citra = f.userByEmail(t, "citra@gema.test")
	f.dewi = f.userByEmail(t, "dewi@gema.test")
	f.eko = f.userByEmail(t, "eko@gema.test")

	f.webDev = f.courseByTitle(t, "Intro to Web Development")
	f.dataLiteracy = f.courseByTitle(t, "Data Literacy")
	f.draftGo = f.courseByTitle(t, "Advanced Go")

	rubrics, err := f.rubrics.List(context.Background())
	require.NoError(t, err)
	for _, rubric := range rubrics {
		switch rubric.Title {
		case "Essay Rubric":
			f.essayRubric = rubric
		case "Coding Project Rubric":
			f.codingRubric = rubric
		}
	}
	require.NotZero(t, f.essayRubric.ID)
	require.NotZero(t, f.codingRubric.ID)

	return f
}

func (f *fixture) userByEmail(t *testing.T, email string) models.User {
	t.Helper()
	users, err := f.users.List(context.Background(), repository.UserFilter{Search: email})
	require.NoError(t, err)
	require.Len(t, users, 1)
	return users[0]
}

func (f *fixture) courseByTitle(t *testing.T, title string) models.Course {
	t.Helper()
	courses, err := f.courses.List(context.Background(), repository.CourseFilter{})
	require.NoError(t, err)
	for _, course := range courses {
		if course.Title == title {
			full, err := f.courses.GetByID(context.Background(), course.ID)
			require.NoError(t, err)
			return full
		}
	}
	t.Fatalf("course %q not seeded", title)
	return models.Course{}
}

func (f *fixture) lessonByTitle(t *testing.T, course models.Course, title string) models.Lesson {
	t.Helper()
	for _, lesson := range course.Lessons {
		if lesson.Title == title {
			return lesson
		}
	}
	t.Fatalf("lesson %q not seeded", title)
	return models.Lesson{}
}

// submissionFor returns the single submission a student handed in for a lesson.
func (f *fixture) submissionFor(t *testing.T, student models.User, lesson models.Lesson) models.Submission {
	t.Helper()
	studentID, lessonID := student.ID, lesson.ID
	items, err := f.submissions.List(context.Background(), repository.SubmissionFilter{StudentID: &studentID, LessonID: &lessonID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	return items[0]
}

func actorOf(user models.User) ActivityActor {
	return ActivityActor{ID: user.ID, Role: string(user.Role)}
}

type recordingInvalidator struct {
	students []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, studentID uint) {
	r.students = append(r.students, studentID)
}

type recordingPublisher struct {
	events []SubmissionEvent
}

func (r *recordingPublisher) Publish(_ context.Context, event SubmissionEvent) error {
	r.events = append(r.events, event)
	return nil
}

func intPointer(v int) *int {
	return &v
}

func stringPointer(v string) *string {
	return &v
}

func isValidationErr(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
