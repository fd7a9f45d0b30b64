package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ashleeec/quibly/internal/dto"
	"github.com/ashleeec/quibly/internal/service"
	"github.com/ashleeec/quibly/internal/utils"
	"github.com/ashleeec/quibly/pkg/ai"
)

// SessionHandler wires session HTTP routes: joining, chatting, reading
// transcripts, and invalidating cached assessments.
type SessionHandler struct {
	sessions    service.SessionService
	assessments service.AssessmentService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(sessions service.SessionService, assessments service.AssessmentService, validate *validator.Validate, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		assessments: assessments,
		validator:   validate,
		logger:      logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches session endpoints to the router group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("", h.start)
	router.Post("/:id/messages", h.reply)
	router.Get("/:id/transcript", h.transcript)
	router.Delete("/:id/assessment", h.invalidateAssessment)
}

func (h *SessionHandler) start(c *fiber.Ctx) error {
	var payload dto.SessionStartRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	started, err := h.sessions.Start(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "invalid code")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return h.handleError(c, err)
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session started", started)
}

func (h *SessionHandler) reply(c *fiber.Ctx) error {
	var payload dto.MessageSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := h.sessions.Reply(c.Context(), c.Params("id"), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "session not found")
		case errors.Is(err, service.ErrSessionClosed):
			return utils.SendError(c, fiber.StatusConflict, "session closed")
		default:
			return h.handleError(c, err)
		}
	}

	return utils.SendSuccess(c, "tutor replied", reply)
}

func (h *SessionHandler) transcript(c *fiber.Ctx) error {
	transcript, err := h.sessions.Transcript(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "session not found")
		}
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "transcript retrieved", transcript)
}

func (h *SessionHandler) invalidateAssessment(c *fiber.Ctx) error {
	if err := h.assessments.Invalidate(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "session not found")
		}
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assessment invalidated", fiber.Map{"session_id": c.Params("id")})
}

func (h *SessionHandler) handleError(c *fiber.Ctx, err error) error {
	var external *ai.ExternalServiceError
	if errors.As(err, &external) {
		requestLogger(h.logger, c).Error().Err(err).Msg("language model call failed")
		return utils.SendError(c, fiber.StatusBadGateway, "tutor unavailable, try again")
	}

	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
