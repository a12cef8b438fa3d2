package observability_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-learn-api/internal/observability"
)

func TestMetricsHandlerExposesDomainCollectors(t *testing.T) {
	observability.RetakesAllowed().Inc()
	observability.GradingSessions().WithLabelValues("saved").Inc()

	app := fiber.New()
	app.Get("/metrics", observability.MetricsHandler())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "learn_retakes_allowed_total")
	require.Contains(t, string(body), `learn_grading_sessions_total{outcome="saved"}`)
}
