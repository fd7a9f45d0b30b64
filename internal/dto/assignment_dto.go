package dto

import (
	"time"

	"github.com/ashleeec/quibly/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	Topic       string `json:"topic" validate:"required,min=2"`
	Goal        string `json:"goal" validate:"required,min=2"`
	Description string `json:"description"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	Code        string    `json:"code"`
	Topic       string    `json:"topic"`
	Goal        string    `json:"goal"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		Code:        model.Code,
		Topic:       model.Topic,
		Goal:        model.Goal,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
	}
}
