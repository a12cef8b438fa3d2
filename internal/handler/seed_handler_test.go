package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-learn-api/internal/handler"
	"github.com/noah-isme/gema-learn-api/internal/service"
)

type mockSeedService struct {
	summary service.SeedSummary
	err     error
	calls   int
}

func (m *mockSeedService) SeedCatalog(context.Context) (service.SeedSummary, error) {
	m.calls++
	return m.summary, m.err
}

func seedApp(svc service.SeedService) *fiber.App {
	app := fiber.New()
	handler.NewSeedHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/admin"))
	return app
}

func TestSeedHandlerSeedsEmptyStore(t *testing.T) {
	svc := &mockSeedService{summary: service.SeedSummary{Users: 5, Courses: 3}}

	resp, err := seedApp(svc).Test(httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, 1, svc.calls)
}

func TestSeedHandlerReportsSkip(t *testing.T) {
	svc := &mockSeedService{summary: service.SeedSummary{Skipped: true}}

	resp, err := seedApp(svc).Test(httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSeedHandlerHidesInternalErrors(t *testing.T) {
	svc := &mockSeedService{err: errors.New("disk full")}

	resp, err := seedApp(svc).Test(httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotContains(t, string(body), "disk full")
}
