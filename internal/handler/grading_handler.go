package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/service"
	"github.com/noah-isme/gema-learn-api/internal/utils"
)

// GradingHandler exposes the grading session workflow to instructors.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading session endpoints to the router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("", h.open)
	router.Get("/:sessionId", h.get)
	router.Patch("/:sessionId", h.update)
	router.Put("/:sessionId/criteria/:criterionId", h.scoreCriterion)
	router.Post("/:sessionId/save", h.save)
	router.Delete("/:sessionId", h.cancel)
}

func (h *GradingHandler) open(c *fiber.Ctx) error {
	var payload dto.GradingSessionOpenRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.SubmissionID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "submission_id is required")
	}

	session, err := h.service.Open(c.UserContext(), payload.SubmissionID, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to open grading session")
	}

	return utils.SendCreated(c, "grading session opened", session)
}

func (h *GradingHandler) get(c *fiber.Ctx) error {
	session, err := h.service.Get(c.UserContext(), sessionID(c), activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load grading session")
	}

	return utils.SendSuccess(c, "grading session retrieved", session)
}

func (h *GradingHandler) update(c *fiber.Ctx) error {
	var payload dto.GradingSessionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	session, err := h.service.Update(c.UserContext(), sessionID(c), payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update grading session")
	}

	return utils.SendSuccess(c, "grading session updated", session)
}

func (h *GradingHandler) scoreCriterion(c *fiber.Ctx) error {
	var payload dto.ScoreCriterionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	criterionID := strings.TrimSpace(c.Params("criterionId"))
	session, err := h.service.ScoreCriterion(c.UserContext(), sessionID(c), criterionID, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to score criterion")
	}

	return utils.SendSuccess(c, "criterion scored", session)
}

func (h *GradingHandler) save(c *fiber.Ctx) error {
	submission, err := h.service.Save(c.UserContext(), sessionID(c), activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to save grade")
	}

	return utils.SendSuccess(c, "grade saved", submission)
}

func (h *GradingHandler) cancel(c *fiber.Ctx) error {
	if err := h.service.Cancel(c.UserContext(), sessionID(c), activityActorFromContext(c)); err != nil {
		return sendServiceError(c, h.logger, err, "failed to cancel grading session")
	}

	return utils.SendSuccess(c, "grading session cancelled", nil)
}

func sessionID(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Params("sessionId"))
}
