package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/service"
	"github.com/noah-isme/gema-learn-api/internal/utils"
)

// AssistantHandler exposes outline generation and help search.
type AssistantHandler struct {
	service service.AssistantService
	logger  zerolog.Logger
}

// NewAssistantHandler constructs an assistant handler.
func NewAssistantHandler(service service.AssistantService, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		logger:  logger.With().Str("component", "assistant_handler").Logger(),
	}
}

// RegisterOutline wires outline generation for instructors.
func (h *AssistantHandler) RegisterOutline(router fiber.Router) {
	router.Post("", h.outline)
}

// RegisterHelp wires the public help search.
func (h *AssistantHandler) RegisterHelp(router fiber.Router) {
	router.Post("/search", h.searchHelp)
}

func (h *AssistantHandler) outline(c *fiber.Ctx) error {
	var payload dto.OutlineRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	outline, err := h.service.GenerateOutline(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to generate outline")
	}
	return utils.SendSuccess(c, "outline generated", outline)
}

func (h *AssistantHandler) searchHelp(c *fiber.Ctx) error {
	var payload dto.HelpSearchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	answer, err := h.service.SearchHelp(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to search help")
	}
	return utils.SendSuccess(c, "help answer generated", answer)
}
