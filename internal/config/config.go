package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Auth modes supported by the API.
const (
	AuthModeDemo = "demo"
	AuthModeJWT  = "jwt"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	EventSubjectPrefix     string
	AuthMode               string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	DashboardCacheTTL      time.Duration
	GradingSessionTTL      time.Duration
	SeedOnStart            bool
	AIProvider             string
	OpenAIAPIKey           string
	OpenAIModel            string
	AIRateLimit            int
	CORSAllowOrigins       string
	MaxUploadBytes         int64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// UsesInMemoryStore reports whether the service runs without an external database.
func (c Config) UsesInMemoryStore() bool {
	return strings.TrimSpace(c.DatabaseURL) == ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Learn API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("auth.mode", AuthModeDemo)
	v.SetDefault("events.subject_prefix", "gema.learn")
	v.SetDefault("cloudinary.folder", "gema/courses")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("grading.session_ttl", "2h")
	v.SetDefault("seed.on_start", true)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.rate_limit", 10)
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("upload.max_bytes", 5<<20)

	dashboardTTL, err := parseDuration(v.GetString("dashboard.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	sessionTTL, err := parseDuration(v.GetString("grading.session_ttl"), 2*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading session ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventSubjectPrefix:     v.GetString("events.subject_prefix"),
		AuthMode:               strings.ToLower(strings.TrimSpace(v.GetString("auth.mode"))),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		DashboardCacheTTL:      dashboardTTL,
		GradingSessionTTL:      sessionTTL,
		SeedOnStart:            v.GetBool("seed.on_start"),
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		OpenAIModel:            v.GetString("openai_model"),
		AIRateLimit:            v.GetInt("ai.rate_limit"),
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
		MaxUploadBytes:         v.GetInt64("upload.max_bytes"),
	}

	switch cfg.AuthMode {
	case AuthModeDemo:
	case AuthModeJWT:
		if cfg.JWTSecret == "" {
			return Config{}, fmt.Errorf("jwt secret must be provided when auth mode is jwt")
		}
	default:
		return Config{}, fmt.Errorf("unsupported auth mode %q", cfg.AuthMode)
	}

	if cfg.AIRateLimit <= 0 {
		cfg.AIRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
