package dto

import (
	"time"

	"github.com/ashleeec/quibly/internal/models"
)

// SessionStartRequest is the payload a student sends to join an assignment.
type SessionStartRequest struct {
	AssignmentCode string `json:"assignment_code" validate:"required"`
	StudentName    string `json:"student_name" validate:"required,min=1"`
}

// SessionStartResponse carries the new session plus the assignment
// intro and the tutor's unprompted opening question.
type SessionStartResponse struct {
	SessionID   string    `json:"session_id"`
	StudentName string    `json:"student_name"`
	Topic       string    `json:"topic"`
	Goal        string    `json:"goal"`
	Description string    `json:"description"`
	Opening     string    `json:"opening"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageSendRequest is a single student reply. Empty content is
// accepted; the store never rejects a message on its content.
type MessageSendRequest struct {
	Content string `json:"content"`
}

// TutorReplyResponse is the tutor's next utterance after a student
// message. SignOff is an advisory hint that the tutor emitted its
// closing phrase; the caller decides what to do with it.
type TutorReplyResponse struct {
	Reply   string `json:"reply"`
	SignOff bool   `json:"sign_off"`
}

// MessageResponse is one transcript entry.
type MessageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessageResponse converts a model into a DTO.
func NewMessageResponse(model models.Message) MessageResponse {
	return MessageResponse{
		Role:      model.Role,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}
}

// NewMessageResponseSlice converts a slice of models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	responses := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewMessageResponse(message))
	}

	return responses
}
