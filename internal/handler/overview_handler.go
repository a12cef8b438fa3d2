package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/service"
	"github.com/noah-isme/gema-learn-api/internal/utils"
)

// OverviewHandler serves the admin and instructor dashboards.
type OverviewHandler struct {
	service service.OverviewService
	logger  zerolog.Logger
}

// NewOverviewHandler constructs the handler.
func NewOverviewHandler(service service.OverviewService, logger zerolog.Logger) *OverviewHandler {
	return &OverviewHandler{
		service: service,
		logger:  logger.With().Str("component", "overview_handler").Logger(),
	}
}

// RegisterAdmin wires the platform-wide overview.
func (h *OverviewHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/overview", h.admin)
}

// RegisterInstructor wires the per-instructor overview.
func (h *OverviewHandler) RegisterInstructor(router fiber.Router) {
	router.Get("/overview", h.instructor)
}

func (h *OverviewHandler) admin(c *fiber.Ctx) error {
	overview, err := h.service.Admin(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load overview")
	}
	return utils.SendSuccess(c, "overview retrieved", overview)
}

func (h *OverviewHandler) instructor(c *fiber.Ctx) error {
	instructorID := userIDFromContext(c)
	if instructorID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user context")
	}

	overview, err := h.service.Instructor(c.UserContext(), instructorID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load overview")
	}
	return utils.SendSuccess(c, "overview retrieved", overview)
}
