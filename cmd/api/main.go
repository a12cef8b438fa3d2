package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/config"
	"github.com/noah-isme/gema-learn-api/internal/database"
	"github.com/noah-isme/gema-learn-api/internal/handler"
	"github.com/noah-isme/gema-learn-api/internal/middleware"
	"github.com/noah-isme/gema-learn-api/internal/repository"
	"github.com/noah-isme/gema-learn-api/internal/router"
	"github.com/noah-isme/gema-learn-api/internal/service"
	"github.com/noah-isme/gema-learn-api/pkg/ai"
	cloud "github.com/noah-isme/gema-learn-api/pkg/cloudinary"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logger.With().Str("app", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	if cfg.UsesInMemoryStore() {
		logger.Warn().Msg("no database url configured, using in-memory sqlite")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Close()
	}

	var uploader service.FileUploader
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Enabled() {
		imageUploader, err := cloud.New(cloudCfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		uploader = imageUploader
	} else {
		logger.Info().Msg("cloudinary not configured, cover uploads disabled")
	}

	var assistant ai.Assistant
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		openaiAssistant, err := ai.NewOpenAIAssistant(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create assistant")
		}
		assistant = openaiAssistant
	} else {
		logger.Info().Msg("assistant not configured, outline and help search disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	rubricRepo := repository.NewRubricRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	siteContentRepo := repository.NewSiteContentRepository(db)

	seedService := service.NewSeedService(service.SeedRepositories{
		Users:       userRepo,
		Rubrics:     rubricRepo,
		Courses:     courseRepo,
		Submissions: submissionRepo,
		SiteContent: siteContentRepo,
	}, validate, logger)
	if cfg.SeedOnStart {
		if _, err := seedService.SeedCatalog(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo catalog")
		}
	}

	var sessions service.GradingSessionStore
	if redisClient != nil {
		sessions = service.NewRedisGradingSessionStore(redisClient, "", cfg.GradingSessionTTL)
	} else {
		sessions = service.NewMemoryGradingSessionStore(cfg.GradingSessionTTL)
	}

	var events service.SubmissionEventPublisher
	if natsConn != nil {
		events = service.NewNATSSubmissionPublisher(natsConn, cfg.EventSubjectPrefix, logger)
	}

	dashboardService := service.NewStudentDashboardService(submissionRepo, redisClient, cfg.DashboardCacheTTL, logger)
	submissionService := service.NewSubmissionService(submissionRepo, courseRepo, validate, dashboardService, events, logger)
	gradingService := service.NewGradingService(service.GradingDependencies{
		Submissions: submissionRepo,
		Rubrics:     rubricRepo,
		Courses:     courseRepo,
		Sessions:    sessions,
		Validator:   validate,
		Dashboards:  dashboardService,
		Events:      events,
		Logger:      logger,
	})
	courseService := service.NewCourseService(courseRepo, rubricRepo, dashboardService, validate, uploader, cfg.MaxUploadBytes, logger)
	gradebookService := service.NewGradebookService(courseRepo, submissionRepo, logger)
	rubricService := service.NewRubricService(rubricRepo)
	assistantService := service.NewAssistantService(assistant, validate, logger)
	userService := service.NewUserService(userRepo, dashboardService, validate, logger)
	overviewService := service.NewOverviewService(userRepo, courseRepo, submissionRepo, logger)
	siteContentService := service.NewSiteContentService(siteContentRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.MaxUploadBytes) + 1<<20,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:           handler.NewCourseHandler(courseService, gradebookService, logger),
		RubricHandler:           handler.NewRubricHandler(rubricService, logger),
		SubmissionHandler:       handler.NewSubmissionHandler(submissionService, logger),
		GradingHandler:          handler.NewGradingHandler(gradingService, logger),
		AssistantHandler:        handler.NewAssistantHandler(assistantService, logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, logger),
		OverviewHandler:         handler.NewOverviewHandler(overviewService, logger),
		AdminUserHandler:        handler.NewAdminUserHandler(userService, logger),
		SiteContentHandler:      handler.NewSiteContentHandler(siteContentService, logger),
		SeedHandler:             handler.NewSeedHandler(seedService, logger),
		HealthProbes:            healthProbes(db, redisClient, natsConn),
		AuthMiddleware: middleware.Authenticate(middleware.AuthConfig{
			Mode:   cfg.AuthMode,
			Secret: cfg.JWTSecret,
			Users:  userRepo,
			Logger: logger,
		}),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	logger.Info().Str("address", cfg.HTTPAddress()).Str("auth_mode", cfg.AuthMode).Msg("server started")

	waitForShutdown(app, logger)
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) []handler.HealthProbe {
	probes := []handler.HealthProbe{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if redisClient != nil {
		probes = append(probes, handler.HealthProbe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	if natsConn != nil {
		probes = append(probes, handler.HealthProbe{
			Name: "nats",
			Check: func(context.Context) error {
				if !natsConn.IsConnected() {
					return fmt.Errorf("nats status %s", natsConn.Status())
				}
				return nil
			},
		})
	}
	return probes
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
