package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ashleeec/quibly/internal/dto"
	"github.com/ashleeec/quibly/internal/models"
	"github.com/ashleeec/quibly/internal/repository"
	"github.com/ashleeec/quibly/pkg/ai"
)

// ErrSessionNotFound indicates the session id does not resolve.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionClosed is returned from Reply when close-on-sign-off is
// enabled and the tutor has already emitted its closing phrase.
var ErrSessionClosed = errors.New("session closed by tutor sign-off")

// SessionConfig tunes the session flow.
type SessionConfig struct {
	// CloseOnSignOff stops further tutor turns once the sign-off phrase
	// has been emitted. Off by default: the phrase is an advisory hint
	// and a session stays open to messages otherwise.
	CloseOnSignOff bool
}

// SessionService owns the student session lifecycle: joining an
// assignment, exchanging turns with the tutor, and reading transcripts.
type SessionService interface {
	Start(ctx context.Context, payload dto.SessionStartRequest) (dto.SessionStartResponse, error)
	Reply(ctx context.Context, sessionID string, payload dto.MessageSendRequest) (dto.TutorReplyResponse, error)
	AppendMessage(ctx context.Context, sessionID, role, content string) error
	Transcript(ctx context.Context, sessionID string) ([]dto.MessageResponse, error)
}

type sessionService struct {
	sessions    repository.SessionRepository
	messages    repository.MessageRepository
	assignments repository.AssignmentRepository
	dialogue    DialogueService
	validator   *validator.Validate
	cfg         SessionConfig
	logger      zerolog.Logger
}

// NewSessionService builds the session manager.
func NewSessionService(sessions repository.SessionRepository, messages repository.MessageRepository, assignments repository.AssignmentRepository, dialogue DialogueService, validate *validator.Validate, cfg SessionConfig, logger zerolog.Logger) SessionService {
	return &sessionService{
		sessions:    sessions,
		messages:    messages,
		assignments: assignments,
		dialogue:    dialogue,
		validator:   validate,
		cfg:         cfg,
		logger:      logger.With().Str("component", "session_service").Logger(),
	}
}

// Start resolves the assignment code, creates the session, and has the
// tutor open the conversation unprompted. An invalid code never creates
// a session.
func (s *sessionService) Start(ctx context.Context, payload dto.SessionStartRequest) (dto.SessionStartResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionStartResponse{}, err
	}

	assignment, err := s.assignments.GetByCode(ctx, payload.AssignmentCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionStartResponse{}, ErrAssignmentNotFound
		}

		return dto.SessionStartResponse{}, err
	}

	session := models.Session{
		ID:             uuid.NewString(),
		AssignmentCode: assignment.Code,
		StudentName:    payload.StudentName,
	}

	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.SessionStartResponse{}, err
	}

	opening, err := s.dialogue.NextTurn(ctx, assignment.Topic, assignment.Goal, nil)
	if err != nil {
		return dto.SessionStartResponse{}, fmt.Errorf("opening turn: %w", err)
	}

	if err := s.AppendMessage(ctx, session.ID, models.RoleAssistant, opening); err != nil {
		return dto.SessionStartResponse{}, err
	}

	s.logger.Info().Str("session_id", session.ID).Str("assignment_code", assignment.Code).Str("student", session.StudentName).Msg("session started")

	return dto.SessionStartResponse{
		SessionID:   session.ID,
		StudentName: session.StudentName,
		Topic:       assignment.Topic,
		Goal:        assignment.Goal,
		Description: assignment.Description,
		Opening:     opening,
		CreatedAt:   session.CreatedAt,
	}, nil
}

// Reply appends the student's message, asks the tutor for the next turn
// over the full transcript, and appends the tutor's answer.
func (s *sessionService) Reply(ctx context.Context, sessionID string, payload dto.MessageSendRequest) (dto.TutorReplyResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TutorReplyResponse{}, ErrSessionNotFound
		}

		return dto.TutorReplyResponse{}, err
	}

	assignment, err := s.assignments.GetByCode(ctx, session.AssignmentCode)
	if err != nil {
		return dto.TutorReplyResponse{}, err
	}

	history, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return dto.TutorReplyResponse{}, err
	}

	if s.cfg.CloseOnSignOff && len(history) > 0 {
		last := history[len(history)-1]
		if last.Role == models.RoleAssistant && s.dialogue.IsSignOff(last.Content) {
			return dto.TutorReplyResponse{}, ErrSessionClosed
		}
	}

	if err := s.AppendMessage(ctx, sessionID, models.RoleUser, payload.Content); err != nil {
		return dto.TutorReplyResponse{}, err
	}

	turns := make([]ai.Message, 0, len(history)+1)
	for _, message := range history {
		turns = append(turns, ai.Message{Role: message.Role, Content: message.Content})
	}
	turns = append(turns, ai.Message{Role: models.RoleUser, Content: payload.Content})

	reply, err := s.dialogue.NextTurn(ctx, assignment.Topic, assignment.Goal, turns)
	if err != nil {
		return dto.TutorReplyResponse{}, err
	}

	if err := s.AppendMessage(ctx, sessionID, models.RoleAssistant, reply); err != nil {
		return dto.TutorReplyResponse{}, err
	}

	return dto.TutorReplyResponse{
		Reply:   reply,
		SignOff: s.dialogue.IsSignOff(reply),
	}, nil
}

// AppendMessage appends one message. Content is never rejected — empty
// strings are valid turns — but the role must be a known one.
func (s *sessionService) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	if role != models.RoleAssistant && role != models.RoleUser {
		return fmt.Errorf("unknown message role %q", role)
	}

	message := models.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}

	return s.messages.Append(ctx, &message)
}

// Transcript returns the session's messages in exact append order.
func (s *sessionService) Transcript(ctx context.Context, sessionID string) ([]dto.MessageResponse, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}

		return nil, err
	}

	messages, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return dto.NewMessageResponseSlice(messages), nil
}
