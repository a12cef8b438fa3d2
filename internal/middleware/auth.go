package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/config"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/utils"
)

// Demo identity headers used when the API runs without real authentication.
const (
	HeaderDemoUser = "X-Demo-User"
	HeaderDemoRole = "X-Demo-Role"
)

// UserLookup resolves the user behind a demo identity header.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
}

// AuthConfig selects how requests are authenticated.
type AuthConfig struct {
	Mode   string
	Secret string
	Users  UserLookup
	Logger zerolog.Logger
}

// Authenticate populates user_id and user_role locals, either from a demo
// header pair or from a signed bearer token.
func Authenticate(cfg AuthConfig) fiber.Handler {
	if cfg.Mode == config.AuthModeJWT {
		return jwtProtected(cfg.Secret)
	}
	return demoIdentity(cfg.Users, cfg.Logger)
}

func demoIdentity(users UserLookup, logger zerolog.Logger) fiber.Handler {
	logger = logger.With().Str("component", "demo_auth").Logger()

	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(HeaderDemoUser))
		if raw == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "demo user header missing")
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid demo user")
		}

		role := normalizeRoleValue(c.Get(HeaderDemoRole))
		if users != nil {
			user, err := users.GetByID(c.UserContext(), uint(id))
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.SendError(c, fiber.StatusUnauthorized, "unknown demo user")
				}
				logger.Error().Err(err).Uint64("user_id", id).Msg("failed to resolve demo user")
				return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve user")
			}
			// the stored role wins over the header so a student cannot claim instructor rights
			role = string(user.Role)
		}
		if !models.Role(role).Valid() {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid demo role")
		}

		c.Locals("user_id", uint(id))
		c.Locals("user_role", role)
		return c.Next()
	}
}

func jwtProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID, ok := userIDFromClaims(claims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "token subject missing")
		}
		role := roleFromClaims(claims)
		if !models.Role(role).Valid() {
			return utils.SendError(c, fiber.StatusUnauthorized, "token role missing")
		}

		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func userIDFromClaims(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"sub", "user_id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v > 0 {
				return uint(v), true
			}
		case string:
			parsed, err := strconv.ParseUint(v, 10, 64)
			if err == nil && parsed > 0 {
				return uint(parsed), true
			}
		}
	}
	return 0, false
}

func roleFromClaims(claims jwt.MapClaims) string {
	switch v := claims["role"].(type) {
	case string:
		return normalizeRoleValue(v)
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				return normalizeRoleValue(str)
			}
		}
	}
	return ""
}
