package dto

import (
	"time"

	"github.com/ashleeec/quibly/internal/models"
)

// AssessmentResponse is the cached per-session assessment.
type AssessmentResponse struct {
	SessionID string    `json:"session_id"`
	Summary   string    `json:"summary"`
	Score     string    `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAssessmentResponse converts a model into a DTO.
func NewAssessmentResponse(model models.Assessment) AssessmentResponse {
	return AssessmentResponse{
		SessionID: model.SessionID,
		Summary:   model.Summary,
		Score:     model.Score,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// StudentRow is one student's line on the teacher dashboard. A row
// whose assessment could not be computed stays unassessed with the
// failure noted, so the next view retries it.
type StudentRow struct {
	SessionID   string            `json:"session_id"`
	StudentName string            `json:"student_name"`
	Assessed    bool              `json:"assessed"`
	Summary     string            `json:"summary,omitempty"`
	Score       string            `json:"score,omitempty"`
	Error       string            `json:"error,omitempty"`
	Transcript  []MessageResponse `json:"transcript"`
}

// ClassReport is the aggregated class-level view.
type ClassReport struct {
	Overview   string   `json:"overview"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	NextSteps  []string `json:"next_steps"`
}

// DashboardResponse is everything a teacher sees for one assignment.
type DashboardResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	Students   []StudentRow       `json:"students"`
	Report     *ClassReport       `json:"report,omitempty"`
}
