package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ashleeec/quibly/internal/dto"
	"github.com/ashleeec/quibly/internal/service"
	"github.com/ashleeec/quibly/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	assignments service.AssignmentService
	dashboards  service.DashboardService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(assignments service.AssignmentService, dashboards service.DashboardService, validate *validator.Validate, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		dashboards:  dashboards,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:code", h.resolve)
	router.Get("/:code/dashboard", h.dashboard)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.assignments.Create(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) resolve(c *fiber.Ctx) error {
	assignment, err := h.assignments.Resolve(c.Context(), c.Params("code"))
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "invalid code")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) dashboard(c *fiber.Ctx) error {
	view, err := h.dashboards.Dashboard(c.Context(), c.Params("code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "invalid code")
		case errors.Is(err, service.ErrMalformedReport):
			requestLogger(h.logger, c).Error().Err(err).Msg("class report malformed")
			return utils.SendError(c, fiber.StatusBadGateway, "class report unavailable")
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccess(c, "dashboard retrieved", view)
}

func (h *AssignmentHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
