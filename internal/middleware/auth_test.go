package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/config"
	"github.com/noah-isme/gema-learn-api/internal/models"
)

const testSecret = "grading-secret"

type stubUsers map[uint]models.User

func (s stubUsers) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := s[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func identityApp(cfg AuthConfig) *fiber.App {
	app := fiber.New()
	app.Use(Authenticate(cfg))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, _ := c.Locals("user_id").(uint)
		role, _ := c.Locals("user_role").(string)
		return c.JSON(fiber.Map{"id": id, "role": role})
	})
	return app
}

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func whoami(t *testing.T, app *fiber.App, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestDemoIdentityUsesStoredRole(t *testing.T) {
	app := identityApp(AuthConfig{
		Mode:   config.AuthModeDemo,
		Users:  stubUsers{4: {ID: 4, Role: models.RoleStudent}},
		Logger: zerolog.Nop(),
	})

	status, body := whoami(t, app, map[string]string{HeaderDemoUser: "4", HeaderDemoRole: "instructor"})
	require.Equal(t, fiber.StatusOK, status)
	require.JSONEq(t, `{"id":4,"role":"student"}`, body)

	status, _ = whoami(t, app, map[string]string{HeaderDemoUser: "99"})
	require.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = whoami(t, app, nil)
	require.Equal(t, fiber.StatusUnauthorized, status)
}

func TestDemoIdentityWithoutLookupTrustsHeaderRole(t *testing.T) {
	app := identityApp(AuthConfig{Mode: config.AuthModeDemo, Logger: zerolog.Nop()})

	status, body := whoami(t, app, map[string]string{HeaderDemoUser: "2", HeaderDemoRole: " Instructor "})
	require.Equal(t, fiber.StatusOK, status)
	require.JSONEq(t, `{"id":2,"role":"instructor"}`, body)

	status, _ = whoami(t, app, map[string]string{HeaderDemoUser: "2", HeaderDemoRole: "principal"})
	require.Equal(t, fiber.StatusUnauthorized, status)
}

func TestJWTIdentityAcceptsSignedToken(t *testing.T) {
	app := identityApp(AuthConfig{Mode: config.AuthModeJWT, Secret: testSecret})

	token := signedToken(t, testSecret, jwt.MapClaims{
		"sub":  "7",
		"role": []interface{}{"admin"},
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	status, body := whoami(t, app, map[string]string{fiber.HeaderAuthorization: "Bearer " + token})
	require.Equal(t, fiber.StatusOK, status)
	require.JSONEq(t, `{"id":7,"role":"admin"}`, body)
}

func TestJWTIdentityRejectsBadTokens(t *testing.T) {
	app := identityApp(AuthConfig{Mode: config.AuthModeJWT, Secret: testSecret})

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"wrong secret":   "Bearer " + signedToken(t, "other", jwt.MapClaims{"sub": 1, "role": "admin"}),
		"expired":        "Bearer " + signedToken(t, testSecret, jwt.MapClaims{"sub": 1, "role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no subject":     "Bearer " + signedToken(t, testSecret, jwt.MapClaims{"role": "admin"}),
		"unknown role":   "Bearer " + signedToken(t, testSecret, jwt.MapClaims{"sub": 1, "role": "janitor"}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			headers := map[string]string{}
			if header != "" {
				headers[fiber.HeaderAuthorization] = header
			}
			status, _ := whoami(t, app, headers)
			require.Equal(t, fiber.StatusUnauthorized, status)
		})
	}
}
