package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/observability"
)

const slowRequestThreshold = time.Second

// Observability records request metrics and one access log line per /api request.
// The log carries the caller identity once authentication has run.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if !strings.HasPrefix(c.Path(), "/api/") {
			return err
		}
		duration := time.Since(start)

		route := routeTemplate(c)
		method := c.Method()
		status := c.Response().StatusCode()
		statusLabel := strconv.Itoa(status)

		observability.HTTPRequests().WithLabelValues(method, route, statusLabel).Inc()
		observability.HTTPLatency().WithLabelValues(method, route).Observe(duration.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.HTTPErrors().WithLabelValues(method, route, statusLabel).Inc()
		}

		fields := logger.With().
			Str("correlation_id", GetCorrelationID(c)).
			Str("area", routeArea(c.Path())).
			Str("route", route).
			Str("method", method).
			Int("status", status).
			Dur("latency", duration)
		if id, ok := c.Locals("user_id").(uint); ok && id > 0 {
			fields = fields.Uint("user_id", id)
		}
		if role, ok := c.Locals("user_role").(string); ok && role != "" {
			fields = fields.Str("role", role)
		}
		requestLogger := fields.Logger()

		switch {
		case status >= fiber.StatusInternalServerError:
			requestLogger.Error().Msg("request failed")
		case status >= fiber.StatusBadRequest:
			requestLogger.Warn().Msg("request rejected")
		case duration > slowRequestThreshold:
			requestLogger.Warn().Msg("slow request")
		default:
			requestLogger.Info().Msg("request completed")
		}

		return err
	}
}

func routeTemplate(c *fiber.Ctx) string {
	if c.Route() != nil && c.Route().Path != "" {
		return c.Route().Path
	}
	return c.Path()
}

// routeArea returns the audience segment of /api/v1/<area>/..., or "system" for top-level routes.
func routeArea(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 4 {
		return "system"
	}
	switch parts[2] {
	case "public", "student", "instructor", "admin":
		return parts[2]
	}
	return "system"
}
