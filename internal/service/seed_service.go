package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/grading"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/repository"
)

// SeedSummary reports what the start-up seed inserted.
type SeedSummary struct {
	Skipped     bool
	Users       int
	Rubrics     int
	Courses     int
	Lessons     int
	Submissions int
	Pages       int
}

// SeedService loads the demo catalog into an empty store.
type SeedService interface {
	SeedCatalog(ctx context.Context) (SeedSummary, error)
}

// SeedRepositories groups the stores written by the seed.
type SeedRepositories struct {
	Users       repository.UserRepository
	Rubrics     repository.RubricRepository
	Courses     repository.CourseRepository
	Submissions repository.SubmissionRepository
	SiteContent repository.SiteContentRepository
}

type seedService struct {
	repos     SeedRepositories
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSeedService constructs a seeding service.
func NewSeedService(repos SeedRepositories, validate *validator.Validate, logger zerolog.Logger) SeedService {
	return &seedService{
		repos:     repos,
		validator: validate,
		logger:    logger.With().Str("component", "seed_service").Logger(),
		now:       time.Now,
	}
}

// SeedCatalog is a no-op when any user already exists.
func (s *seedService) SeedCatalog(ctx context.Context) (SeedSummary, error) {
	existing, err := s.repos.Users.List(ctx, repository.UserFilter{})
	if err != nil {
		return SeedSummary{}, err
	}
	if len(existing) > 0 {
		s.logger.Info().Int("users", len(existing)).Msg("store already populated, skipping seed")
		return SeedSummary{Skipped: true}, nil
	}

	var summary SeedSummary

	users := seedUsers()
	for i := range users {
		if err := s.repos.Users.Create(ctx, &users[i]); err != nil {
			return summary, fmt.Errorf("seed user %s: %w", users[i].Email, err)
		}
		summary.Users++
	}
	admin, budi, citra, dewi, eko := users[0], users[1], users[2], users[3], users[4]

	rubrics := seedRubrics()
	for i := range rubrics {
		if err := s.validator.Struct(rubrics[i]); err != nil {
			return summary, fmt.Errorf("rubric %q is invalid: %w", rubrics[i].Title, err)
		}
		if err := s.repos.Rubrics.Create(ctx, &rubrics[i]); err != nil {
			return summary, fmt.Errorf("seed rubric %q: %w", rubrics[i].Title, err)
		}
		summary.Rubrics++
	}
	essay, coding := rubrics[0], rubrics[1]

	webDev := models.Course{
		Title:        "Intro to Web Development",
		Description:  "Build and style your first web pages, then reflect on the process.",
		Category:     "programming",
		InstructorID: budi.ID,
		Published:    true,
	}
	dataLiteracy := models.Course{
		Title:        "Data Literacy",
		Description:  "Read, question and explain charts you meet every day.",
		Category:     "data",
		InstructorID: citra.ID,
		Published:    true,
	}
	advancedGo := models.Course{
		Title:        "Advanced Go",
		Description:  "Concurrency patterns and service design. Draft in progress.",
		Category:     "programming",
		InstructorID: budi.ID,
	}
	for _, course := range []*models.Course{&webDev, &dataLiteracy, &advancedGo} {
		if err := s.repos.Courses.Create(ctx, course); err != nil {
			return summary, fmt.Errorf("seed course %q: %w", course.Title, err)
		}
		summary.Courses++
	}

	webLessons, err := s.repos.Courses.AppendLessons(ctx, webDev.ID, []models.Lesson{
		{Title: "HTML Basics", Summary: "Document structure and semantic tags.", AssignmentTitle: "Build a personal page", RubricID: &coding.ID},
		{Title: "CSS Layout", Summary: "Flexbox and grid for page layout."},
		{Title: "Reflective Essay", Summary: "Write about what you learned building the page.", AssignmentTitle: "Learning reflection", RubricID: &essay.ID},
	})
	if err != nil {
		return summary, fmt.Errorf("seed web development lessons: %w", err)
	}
	dataLessons, err := s.repos.Courses.AppendLessons(ctx, dataLiteracy.ID, []models.Lesson{
		{Title: "Reading Charts", Summary: "Axes, scales and the stories they hide.", AssignmentTitle: "Chart critique"},
	})
	if err != nil {
		return summary, fmt.Errorf("seed data literacy lessons: %w", err)
	}
	goLessons, err := s.repos.Courses.AppendLessons(ctx, advancedGo.ID, []models.Lesson{
		{Title: "Goroutines and Channels", Summary: "Structured concurrency with context."},
	})
	if err != nil {
		return summary, fmt.Errorf("seed advanced go lessons: %w", err)
	}
	summary.Lessons = len(webLessons) + len(dataLessons) + len(goLessons)

	now := s.now().UTC()
	essayScores := models.RubricScores{
		"thesis":   {LevelID: "strong", Feedback: "Clear central claim."},
		"evidence": {LevelID: "adequate"},
	}
	essayGrade := grading.Calculate(essay, essayScores)
	chartGrade := 85
	gradedAt := now.Add(-24 * time.Hour)

	submissions := []struct {
		submission models.Submission
		scores     models.RubricScores
	}{
		{submission: pendingSubmission(dewi.ID, webDev.ID, webLessons[0])},
		{submission: pendingSubmission(dewi.ID, dataLiteracy.ID, dataLessons[0])},
		{
			submission: gradedSubmission(eko.ID, webDev.ID, webLessons[2], essayGrade, "Good structure, add more sources.", budi.ID, gradedAt),
			scores:     essayScores,
		},
		{submission: gradedSubmission(eko.ID, dataLiteracy.ID, dataLessons[0], chartGrade, "Sharp observations on the truncated axis.", citra.ID, gradedAt)},
	}
	for _, item := range submissions {
		submission := item.submission
		submission.SetScores(item.scores.Clone())
		if submission.IsGraded() {
			history := models.SubmissionGradeHistory{
				Grade:    *submission.Grade,
				Feedback: submission.Feedback,
				GradedBy: *submission.GradedBy,
				GradedAt: *submission.GradedAt,
			}
			if err := s.repos.Submissions.SaveGrade(ctx, &submission, &history); err != nil {
				return summary, fmt.Errorf("seed graded submission: %w", err)
			}
		} else if err := s.repos.Submissions.Create(ctx, &submission); err != nil {
			return summary, fmt.Errorf("seed submission: %w", err)
		}
		summary.Submissions++
	}

	for _, page := range seedPages(admin.ID) {
		if err := s.repos.SiteContent.Upsert(ctx, &page); err != nil {
			return summary, fmt.Errorf("seed page %q: %w", page.Slug, err)
		}
		summary.Pages++
	}

	s.logger.Info().
		Int("users", summary.Users).
		Int("rubrics", summary.Rubrics).
		Int("courses", summary.Courses).
		Int("lessons", summary.Lessons).
		Int("submissions", summary.Submissions).
		Msg("demo catalog seeded")
	return summary, nil
}

func seedUsers() []models.User {
	return []models.User{
		{Name: "Ayu Pratiwi", Email: "admin@gema.test", Role: models.RoleAdmin},
		{Name: "Budi Santoso", Email: "budi@gema.test", Role: models.RoleInstructor},
		{Name: "Citra Lestari", Email: "citra@gema.test", Role: models.RoleInstructor},
		{Name: "Dewi Anggraini", Email: "dewi@gema.test", Role: models.RoleStudent},
		{Name: "Eko Prasetyo", Email: "eko@gema.test", Role: models.RoleStudent},
	}
}

func seedRubrics() []models.Rubric {
	return []models.Rubric{
		{
			Title: "Essay Rubric",
			Criteria: []models.RubricCriterion{
				{
					ID:          "thesis",
					Description: "States a clear, arguable thesis",
					Levels: []models.RubricLevel{
						{ID: "missing", Name: "Missing", Points: 0},
						{ID: "developing", Name: "Developing", Points: 5},
						{ID: "strong", Name: "Strong", Points: 10},
					},
				},
				{
					ID:          "evidence",
					Description: "Supports claims with evidence",
					Levels: []models.RubricLevel{
						{ID: "weak", Name: "Weak", Points: 5},
						{ID: "adequate", Name: "Adequate", Points: 10},
						{ID: "compelling", Name: "Compelling", Points: 20},
					},
				},
			},
		},
		{
			Title: "Coding Project Rubric",
			Criteria: []models.RubricCriterion{
				{
					ID:          "correctness",
					Description: "Page renders and meets the brief",
					Levels: []models.RubricLevel{
						{ID: "broken", Name: "Broken", Points: 0},
						{ID: "partial", Name: "Partial", Points: 10},
						{ID: "complete", Name: "Complete", Points: 20},
					},
				},
				{
					ID:          "semantics",
					Description: "Uses semantic HTML elements",
					Levels: []models.RubricLevel{
						{ID: "none", Name: "None", Points: 0},
						{ID: "some", Name: "Some", Points: 5},
						{ID: "consistent", Name: "Consistent", Points: 10},
					},
				},
				{
					ID:          "style",
					Description: "Readable, consistently formatted markup",
					Levels: []models.RubricLevel{
						{ID: "messy", Name: "Messy", Points: 0},
						{ID: "tidy", Name: "Tidy", Points: 10},
					},
				},
			},
		},
	}
}

func seedPages(adminID uint) []models.SiteContent {
	return []models.SiteContent{
		{Slug: "hero", Title: "Learn by doing", Body: "<p>Courses with real assignments and clear, rubric based feedback.</p>", UpdatedBy: adminID},
		{Slug: "about", Title: "About GEMA Learn", Body: "<p>GEMA Learn connects students with instructors who grade every assignment against a published rubric.</p>", UpdatedBy: adminID},
		{Slug: "faq", Title: "Frequently asked questions", Body: "<h3>Can I resubmit?</h3><p>Only when your instructor allows a retake.</p>", UpdatedBy: adminID},
	}
}

func pendingSubmission(studentID, courseID uint, lesson models.Lesson) models.Submission {
	return models.Submission{
		StudentID:       studentID,
		CourseID:        courseID,
		LessonID:        lesson.ID,
		AssignmentTitle: lesson.AssignmentTitle,
		RubricID:        lesson.RubricID,
		Status:          models.SubmissionStatusPending,
	}
}

func gradedSubmission(studentID, courseID uint, lesson models.Lesson, grade int, feedback string, gradedBy uint, gradedAt time.Time) models.Submission {
	submission := pendingSubmission(studentID, courseID, lesson)
	submission.Status = models.SubmissionStatusGraded
	submission.Grade = &grade
	submission.Feedback = feedback
	submission.GradedBy = &gradedBy
	submission.GradedAt = &gradedAt
	return submission
}
