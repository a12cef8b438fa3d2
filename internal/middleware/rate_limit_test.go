package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitKeysByUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get(HeaderDemoUser) == "1" {
			c.Locals("user_id", uint(1))
		} else {
			c.Locals("user_id", uint(2))
		}
		return c.Next()
	})
	app.Use(RateLimit("outline", 2, time.Minute))
	app.Post("/outlines", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/outlines", nil)
		req.Header.Set(HeaderDemoUser, user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, send("1"))
	require.Equal(t, fiber.StatusOK, send("1"))
	require.Equal(t, fiber.StatusTooManyRequests, send("1"))
	require.Equal(t, fiber.StatusOK, send("2"))
}

func TestRouteArea(t *testing.T) {
	cases := map[string]string{
		"/api/v1/health":                      "system",
		"/api/v1/public/courses":              "public",
		"/api/v1/student/dashboard":           "student",
		"/api/v1/instructor/grading-sessions": "instructor",
		"/api/v1/admin/users/3":               "admin",
		"/api/v1/other/thing":                 "system",
	}
	for path, want := range cases {
		require.Equal(t, want, routeArea(path), path)
	}
}
