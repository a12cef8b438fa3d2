package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/service"
	"github.com/noah-isme/gema-learn-api/internal/utils"
)

// SiteContentHandler serves editable public page blocks.
type SiteContentHandler struct {
	service service.SiteContentService
	logger  zerolog.Logger
}

// NewSiteContentHandler constructs the handler.
func NewSiteContentHandler(service service.SiteContentService, logger zerolog.Logger) *SiteContentHandler {
	return &SiteContentHandler{
		service: service,
		logger:  logger.With().Str("component", "site_content_handler").Logger(),
	}
}

// RegisterPublic wires read access.
func (h *SiteContentHandler) RegisterPublic(router fiber.Router) {
	router.Get("/:slug", h.get)
}

// RegisterAdmin wires editing.
func (h *SiteContentHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/:slug", h.get)
	router.Put("/:slug", h.upsert)
}

func (h *SiteContentHandler) get(c *fiber.Ctx) error {
	content, err := h.service.Get(c.UserContext(), c.Params("slug"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load content")
	}

	c.Set(fiber.HeaderCacheControl, "public, max-age=60")
	return utils.SendSuccess(c, "content retrieved", content)
}

func (h *SiteContentHandler) upsert(c *fiber.Ctx) error {
	var payload dto.SiteContentUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	content, err := h.service.Upsert(c.UserContext(), c.Params("slug"), payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to save content")
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return utils.SendSuccess(c, "content saved", content)
}
