package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ashleeec/quibly/internal/dto"
	"github.com/ashleeec/quibly/internal/models"
	"github.com/ashleeec/quibly/internal/repository"
	"github.com/ashleeec/quibly/pkg/ai"
)

// ErrMalformedAssessment indicates the assessment model returned a
// payload missing required fields or carrying an out-of-vocabulary
// score. Distinct from an external-service outage and never coerced.
var ErrMalformedAssessment = errors.New("malformed assessment")

// assessmentSchema is the declared shape of the assessment response.
// The score vocabulary is checked separately so the violation surfaces
// as ErrMalformedAssessment with the offending label.
var assessmentSchema = &ai.Schema{
	Name: "assessment",
	Definition: `{
		"type": "object",
		"required": ["summary", "score"],
		"properties": {
			"summary": {"type": "string"},
			"score": {"type": "string"}
		}
	}`,
}

// AssessmentService derives and caches per-session assessments.
type AssessmentService interface {
	// GetOrCompute returns the stored assessment unchanged when one
	// exists; otherwise it assesses the current transcript, persists the
	// result with an atomic upsert, and returns it. Per-session
	// assessment is at-most-once-computed.
	GetOrCompute(ctx context.Context, sessionID string) (dto.AssessmentResponse, error)
	// Invalidate drops the cached assessment so the next GetOrCompute
	// recomputes over the then-current transcript.
	Invalidate(ctx context.Context, sessionID string) error
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	sessions    repository.SessionRepository
	messages    repository.MessageRepository
	assignments repository.AssignmentRepository
	client      ai.Client
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewAssessmentService builds the assessment engine.
func NewAssessmentService(assessments repository.AssessmentRepository, sessions repository.SessionRepository, messages repository.MessageRepository, assignments repository.AssignmentRepository, client ai.Client, timeout time.Duration, logger zerolog.Logger) AssessmentService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &assessmentService{
		assessments: assessments,
		sessions:    sessions,
		messages:    messages,
		assignments: assignments,
		client:      client,
		timeout:     timeout,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
	}
}

func (s *assessmentService) GetOrCompute(ctx context.Context, sessionID string) (dto.AssessmentResponse, error) {
	stored, err := s.assessments.GetBySession(ctx, sessionID)
	if err == nil {
		return dto.NewAssessmentResponse(stored), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AssessmentResponse{}, err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrSessionNotFound
		}

		return dto.AssessmentResponse{}, err
	}

	assignment, err := s.assignments.GetByCode(ctx, session.AssignmentCode)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment, err := s.assess(ctx, assignment.Topic, assignment.Goal, sessionID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	// Concurrent first views may both compute; the upsert collapses them
	// to a single stored row.
	if err := s.assessments.Upsert(ctx, assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.logger.Info().Str("session_id", sessionID).Str("score", assessment.Score).Msg("assessment computed")

	return dto.NewAssessmentResponse(*assessment), nil
}

func (s *assessmentService) assess(ctx context.Context, topic, goal, sessionID string) (*models.Assessment, error) {
	messages, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entries := make([]transcriptEntry, 0, len(messages))
	for _, message := range messages {
		entries = append(entries, transcriptEntry{Role: message.Role, Content: message.Content})
	}

	payload, err := assessmentUserPayload(topic, goal, entries)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.CompleteJSON(callCtx, assessmentSystemPrompt, payload, assessmentSchema)
	if err != nil {
		var malformed *ai.MalformedResponseError
		if errors.As(err, &malformed) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAssessment, malformed.Err)
		}

		return nil, err
	}

	var parsed struct {
		Summary string `json:"summary"`
		Score   string `json:"score"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAssessment, err)
	}

	if !models.ValidScore(parsed.Score) {
		return nil, fmt.Errorf("%w: unrecognized score %q", ErrMalformedAssessment, parsed.Score)
	}

	return &models.Assessment{
		SessionID: sessionID,
		Summary:   parsed.Summary,
		Score:     parsed.Score,
		Raw:       []byte(raw),
	}, nil
}

func (s *assessmentService) Invalidate(ctx context.Context, sessionID string) error {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}

		return err
	}

	if err := s.assessments.Delete(ctx, sessionID); err != nil {
		return err
	}

	s.logger.Info().Str("session_id", sessionID).Msg("assessment invalidated")

	return nil
}
