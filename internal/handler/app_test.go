package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-learn-api/internal/config"
	"github.com/noah-isme/gema-learn-api/internal/database"
	"github.com/noah-isme/gema-learn-api/internal/handler"
	"github.com/noah-isme/gema-learn-api/internal/middleware"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/repository"
	"github.com/noah-isme/gema-learn-api/internal/router"
	"github.com/noah-isme/gema-learn-api/internal/service"
)

type testEnv struct {
	app         *fiber.App
	users       repository.UserRepository
	courses     repository.CourseRepository
	submissions repository.SubmissionRepository
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestEnv serves the full route table over a seeded private database with demo authentication.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	users := repository.NewUserRepository(db)
	rubrics := repository.NewRubricRepository(db)
	courses := repository.NewCourseRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	content := repository.NewSiteContentRepository(db)

	_, err = service.NewSeedService(service.SeedRepositories{
		Users:       users,
		Rubrics:     rubrics,
		Courses:     courses,
		Submissions: submissions,
		SiteContent: content,
	}, validate, log).SeedCatalog(context.Background())
	require.NoError(t, err)

	dashboards := service.NewStudentDashboardService(submissions, nil, time.Minute, log)
	grading := service.NewGradingService(service.GradingDependencies{
		Submissions: submissions,
		Rubrics:     rubrics,
		Courses:     courses,
		Sessions:    service.NewMemoryGradingSessionStore(time.Hour),
		Validator:   validate,
		Dashboards:  dashboards,
		Logger:      log,
	})

	cfg := config.Config{AppName: "GEMA Learn Test", AppEnv: "test", AuthMode: config.AuthModeDemo, AIRateLimit: 100}
	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &log})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:           handler.NewCourseHandler(service.NewCourseService(courses, rubrics, dashboards, validate, nil, 0, log), service.NewGradebookService(courses, submissions, log), log),
		RubricHandler:           handler.NewRubricHandler(service.NewRubricService(rubrics), log),
		SubmissionHandler:       handler.NewSubmissionHandler(service.NewSubmissionService(submissions, courses, validate, dashboards, nil, log), log),
		GradingHandler:          handler.NewGradingHandler(grading, log),
		AssistantHandler:        handler.NewAssistantHandler(service.NewAssistantService(nil, validate, log), log),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboards, log),
		OverviewHandler:         handler.NewOverviewHandler(service.NewOverviewService(users, courses, submissions, log), log),
		AdminUserHandler:        handler.NewAdminUserHandler(service.NewUserService(users, dashboards, validate, log), log),
		SiteContentHandler:      handler.NewSiteContentHandler(service.NewSiteContentService(content, validate, log), log),
		AuthMiddleware: middleware.Authenticate(middleware.AuthConfig{
			Mode:   cfg.AuthMode,
			Users:  users,
			Logger: log,
		}),
		DisableMetrics: true,
	})

	return &testEnv{app: app, users: users, courses: courses, submissions: submissions}
}

func (e *testEnv) user(t *testing.T, email string) models.User {
	t.Helper()
	found, err := e.users.List(context.Background(), repository.UserFilter{Search: email})
	require.NoError(t, err)
	require.Len(t, found, 1)
	return found[0]
}

func (e *testEnv) course(t *testing.T, title string) models.Course {
	t.Helper()
	all, err := e.courses.List(context.Background(), repository.CourseFilter{})
	require.NoError(t, err)
	for _, course := range all {
		if course.Title == title {
			return course
		}
	}
	t.Fatalf("course %q not seeded", title)
	return models.Course{}
}

func (e *testEnv) submission(t *testing.T, student models.User, course models.Course, lessonTitle string) models.Submission {
	t.Helper()
	for _, lesson := range course.Lessons {
		if lesson.Title != lessonTitle {
			continue
		}
		studentID, lessonID := student.ID, lesson.ID
		items, err := e.submissions.List(context.Background(), repository.SubmissionFilter{StudentID: &studentID, LessonID: &lessonID})
		require.NoError(t, err)
		require.Len(t, items, 1)
		return items[0]
	}
	t.Fatalf("lesson %q not seeded", lessonTitle)
	return models.Submission{}
}

// call sends a JSON request as the given user; a zero user sends no identity.
func (e *testEnv) call(t *testing.T, method, path string, as models.User, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if as.ID != 0 {
		req.Header.Set(middleware.HeaderDemoUser, fmt.Sprint(as.ID))
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var payload envelope
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	}
	return resp, payload
}

func decodeData(t *testing.T, payload envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(payload.Data, target))
}
