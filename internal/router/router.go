package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-learn-api/internal/config"
	"github.com/noah-isme/gema-learn-api/internal/handler"
	"github.com/noah-isme/gema-learn-api/internal/middleware"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler           *handler.CourseHandler
	RubricHandler           *handler.RubricHandler
	SubmissionHandler       *handler.SubmissionHandler
	GradingHandler          *handler.GradingHandler
	AssistantHandler        *handler.AssistantHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	OverviewHandler         *handler.OverviewHandler
	AdminUserHandler        *handler.AdminUserHandler
	SiteContentHandler      *handler.SiteContentHandler
	SeedHandler             *handler.SeedHandler
	AuthMiddleware          fiber.Handler
	HealthProbes            []handler.HealthProbe
	DisableMetrics          bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	if !deps.DisableMetrics {
		app.Get("/metrics", observability.MetricsHandler())
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	auth := deps.AuthMiddleware
	if auth == nil {
		auth = func(c *fiber.Ctx) error { return c.Next() }
	}
	assistantLimit := middleware.RateLimit("assistant", cfg.AIRateLimit, time.Minute)

	public := api.Group("/public")
	if deps.CourseHandler != nil {
		deps.CourseHandler.RegisterPublic(public.Group("/courses"))
	}
	if deps.SiteContentHandler != nil {
		deps.SiteContentHandler.RegisterPublic(public.Group("/content"))
	}
	if deps.AssistantHandler != nil {
		deps.AssistantHandler.RegisterHelp(public.Group("/help", assistantLimit))
	}

	student := api.Group("/student", auth, middleware.RequireRole(models.RoleStudent))
	if deps.StudentDashboardHandler != nil {
		deps.StudentDashboardHandler.Register(student)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterStudent(student.Group("/submissions"))
	}

	// Admins may act on any course, so they share the instructor surface.
	instructor := api.Group("/instructor", auth, middleware.RequireRole(models.RoleInstructor, models.RoleAdmin))
	if deps.OverviewHandler != nil {
		deps.OverviewHandler.RegisterInstructor(instructor)
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(instructor.Group("/courses"))
	}
	if deps.RubricHandler != nil {
		deps.RubricHandler.Register(instructor.Group("/rubrics"))
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterInstructor(instructor.Group("/submissions"))
	}
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(instructor.Group("/grading-sessions"))
	}
	if deps.AssistantHandler != nil {
		deps.AssistantHandler.RegisterOutline(instructor.Group("/outlines", assistantLimit))
	}

	admin := api.Group("/admin", auth, middleware.RequireRole(models.RoleAdmin))
	if deps.OverviewHandler != nil {
		deps.OverviewHandler.RegisterAdmin(admin)
	}
	if deps.AdminUserHandler != nil {
		deps.AdminUserHandler.Register(admin.Group("/users"))
	}
	if deps.SiteContentHandler != nil {
		deps.SiteContentHandler.RegisterAdmin(admin.Group("/content"))
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(admin)
	}
}
