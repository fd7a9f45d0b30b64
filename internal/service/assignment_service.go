package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ashleeec/quibly/internal/dto"
	"github.com/ashleeec/quibly/internal/models"
	"github.com/ashleeec/quibly/internal/repository"
)

// ErrAssignmentNotFound indicates the assignment code does not resolve.
// This is a normal outcome for a mistyped code, not a storage fault.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentService creates assignments and resolves shared codes.
type AssignmentService interface {
	Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Resolve(ctx context.Context, code string) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	validator *validator.Validate
	logger    zerolog.Logger
	newCode   func() string
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		newCode:   generateCode,
	}
}

// generateCode produces a short shareable identifier. Codes are random
// and assumed, not guaranteed, unique.
func generateCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Code:        s.newCode(),
		Topic:       payload.Topic,
		Goal:        payload.Goal,
		Description: payload.Description,
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Str("code", assignment.Code).Str("topic", assignment.Topic).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Resolve(ctx context.Context, code string) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}

		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}
