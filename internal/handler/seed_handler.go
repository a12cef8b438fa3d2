package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/service"
	"github.com/noah-isme/gema-learn-api/internal/utils"
)

// SeedHandler lets an admin load the demo catalog into an empty store.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/seed", h.seed)
}

func (h *SeedHandler) seed(c *fiber.Ctx) error {
	summary, err := h.service.SeedCatalog(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to seed catalog")
	}

	if summary.Skipped {
		return utils.SendSuccess(c, "store already populated", summary)
	}
	return utils.SendCreated(c, "demo catalog seeded", summary)
}
