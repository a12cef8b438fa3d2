package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/service"
	"github.com/noah-isme/gema-learn-api/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CourseHandler serves the public catalog and instructor course authoring.
type CourseHandler struct {
	courses   service.CourseService
	gradebook service.GradebookService
	logger    zerolog.Logger
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(courses service.CourseService, gradebook service.GradebookService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses:   courses,
		gradebook: gradebook,
		logger:    logger.With().Str("component", "course_handler").Logger(),
	}
}

// RegisterPublic attaches the read-only catalog.
func (h *CourseHandler) RegisterPublic(router fiber.Router) {
	router.Get("", h.listPublished)
	router.Get("/:id", h.getPublished)
}

// Register attaches the authoring endpoints.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.listOwned)
	router.Post("", h.create)
	router.Get("/:id", h.getOwned)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/lessons", h.addLesson)
	router.Post("/:id/outline", h.applyOutline)
	router.Post("/:id/cover", h.uploadCover)
	router.Get("/:id/gradebook", h.exportGradebook)
}

func (h *CourseHandler) listPublished(c *fiber.Ctx) error {
	var filter dto.CourseFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	courses, err := h.courses.ListPublished(c.UserContext(), filter)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list courses")
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) getPublished(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.courses.GetPublished(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load course")
	}
	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) listOwned(c *fiber.Ctx) error {
	courses, err := h.courses.ListOwned(c.UserContext(), activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list courses")
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) getOwned(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.courses.GetOwned(c.UserContext(), id, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load course")
	}
	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	course, err := h.courses.Create(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create course")
	}
	return utils.SendCreated(c, "course created", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	course, err := h.courses.Update(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update course")
	}
	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ConfirmationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	if err := h.courses.Delete(c.UserContext(), id, payload, activityActorFromContext(c)); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete course")
	}
	return utils.SendSuccess(c, "course deleted", nil)
}

func (h *CourseHandler) addLesson(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.LessonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	lesson, err := h.courses.AddLesson(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to add lesson")
	}
	return utils.SendCreated(c, "lesson added", lesson)
}

func (h *CourseHandler) applyOutline(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ApplyOutlineRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	course, err := h.courses.ApplyOutline(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to apply outline")
	}
	return utils.SendSuccess(c, "outline applied", course)
}

func (h *CourseHandler) uploadCover(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("cover")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "cover file is required")
	}

	course, err := h.courses.UploadCover(c.UserContext(), id, file, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to upload cover")
	}
	return utils.SendSuccess(c, "cover uploaded", course)
}

func (h *CourseHandler) exportGradebook(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	export, err := h.gradebook.Export(c.UserContext(), id, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to export gradebook")
	}

	return utils.SendAttachment(c, xlsxContentType, export.FileName, export.Content)
}
