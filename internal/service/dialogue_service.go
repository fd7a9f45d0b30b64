package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ashleeec/quibly/pkg/ai"
)

// DialogueConfig tunes the tutor dialogue engine.
type DialogueConfig struct {
	// MaxHistoryTurns caps how many of the most recent messages are
	// resent per turn. Request size otherwise grows with conversation
	// length. Zero means no cap.
	MaxHistoryTurns int
	// SignOffPhrase is the advisory closing line. Empty falls back to
	// DefaultSignOffPhrase.
	SignOffPhrase string
	// Timeout bounds each language-model round-trip.
	Timeout time.Duration
}

// DialogueService produces the tutor's next utterance. It keeps no
// state between calls; the caller supplies the full history each turn.
type DialogueService interface {
	NextTurn(ctx context.Context, topic, goal string, history []ai.Message) (string, error)
	IsSignOff(utterance string) bool
}

type dialogueService struct {
	client ai.Client
	cfg    DialogueConfig
	logger zerolog.Logger
}

// NewDialogueService builds the tutor dialogue engine.
func NewDialogueService(client ai.Client, cfg DialogueConfig, logger zerolog.Logger) DialogueService {
	if cfg.SignOffPhrase == "" {
		cfg.SignOffPhrase = DefaultSignOffPhrase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &dialogueService{
		client: client,
		cfg:    cfg,
		logger: logger.With().Str("component", "dialogue_service").Logger(),
	}
}

func (s *dialogueService) NextTurn(ctx context.Context, topic, goal string, history []ai.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if s.cfg.MaxHistoryTurns > 0 && len(history) > s.cfg.MaxHistoryTurns {
		history = history[len(history)-s.cfg.MaxHistoryTurns:]
	}

	reply, err := s.client.Complete(ctx, tutorSystemPrompt(topic, goal, s.cfg.SignOffPhrase), history)
	if err != nil {
		return "", err
	}

	s.logger.Debug().Int("history_len", len(history)).Bool("sign_off", s.IsSignOff(reply)).Msg("tutor turn generated")

	return reply, nil
}

func (s *dialogueService) IsSignOff(utterance string) bool {
	return containsSignOff(utterance, s.cfg.SignOffPhrase)
}
