package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/grading"
	"github.com/noah-isme/gema-learn-api/internal/middleware"
	"github.com/noah-isme/gema-learn-api/internal/service"
	"github.com/noah-isme/gema-learn-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	return service.ActivityActor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// statusFor maps service sentinels onto HTTP status codes. Unknown errors report false.
func statusFor(err error) (int, bool) {
	switch {
	case isValidationError(err),
		errors.Is(err, service.ErrInvalidSlug),
		errors.Is(err, service.ErrUploadMissing),
		errors.Is(err, service.ErrCannotDeleteSelf):
		return fiber.StatusBadRequest, true
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, true
	case errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrLessonNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrRubricNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSiteContentNotFound),
		errors.Is(err, service.ErrGradingSessionNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, service.ErrAlreadySubmitted):
		return fiber.StatusConflict, true
	case errors.Is(err, service.ErrUploadTooLarge):
		return fiber.StatusRequestEntityTooLarge, true
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return fiber.StatusUnsupportedMediaType, true
	case errors.Is(err, service.ErrConfirmationRequired):
		return fiber.StatusPreconditionRequired, true
	case errors.Is(err, service.ErrGradeUnresolvable),
		errors.Is(err, service.ErrGradeDerived),
		errors.Is(err, service.ErrRubricNotAttached),
		errors.Is(err, service.ErrRubricMissing),
		errors.Is(err, service.ErrLessonHasNoAssignment),
		errors.Is(err, grading.ErrUnknownCriterion),
		errors.Is(err, grading.ErrUnknownLevel):
		return fiber.StatusUnprocessableEntity, true
	case errors.Is(err, service.ErrAssistantFailed):
		return fiber.StatusBadGateway, true
	case errors.Is(err, service.ErrAssistantUnavailable),
		errors.Is(err, service.ErrUploadsDisabled):
		return fiber.StatusServiceUnavailable, true
	}
	return 0, false
}

// sendServiceError writes the envelope for err. Unmapped errors are logged and hidden behind fallback.
func sendServiceError(c *fiber.Ctx, base zerolog.Logger, err error, fallback string) error {
	if status, ok := statusFor(err); ok {
		return utils.SendError(c, status, err.Error())
	}
	middleware.RequestLogger(base, c).Error().Err(err).Str("path", c.Path()).Msg(fallback)
	return utils.SendError(c, fiber.StatusInternalServerError, fallback)
}
