package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ashleeec/quibly/internal/dto"
	"github.com/ashleeec/quibly/internal/repository"
	"github.com/ashleeec/quibly/pkg/ai"
)

// ErrMalformedReport indicates the class-report model returned JSON
// that does not match the declared shape.
var ErrMalformedReport = errors.New("malformed class report")

var classReportSchema = &ai.Schema{
	Name: "class_report",
	Definition: `{
		"type": "object",
		"required": ["overview", "strengths", "weaknesses", "next_steps"],
		"properties": {
			"overview": {"type": "string"},
			"strengths": {"type": "array", "items": {"type": "string"}},
			"weaknesses": {"type": "array", "items": {"type": "string"}},
			"next_steps": {"type": "array", "items": {"type": "string"}}
		}
	}`,
}

// DashboardService assembles the teacher view for one assignment:
// per-student assessment rows plus the aggregated class report.
type DashboardService interface {
	Dashboard(ctx context.Context, code string) (dto.DashboardResponse, error)
}

type dashboardService struct {
	assignments repository.AssignmentRepository
	sessions    repository.SessionRepository
	messages    repository.MessageRepository
	assessments AssessmentService
	client      ai.Client
	cache       *redis.Client
	cacheTTL    time.Duration
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewDashboardService builds the class aggregator. The cache client is
// optional; without it every view recomputes the class report.
func NewDashboardService(assignments repository.AssignmentRepository, sessions repository.SessionRepository, messages repository.MessageRepository, assessments AssessmentService, client ai.Client, cache *redis.Client, cacheTTL time.Duration, timeout time.Duration, logger zerolog.Logger) DashboardService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}

	return &dashboardService{
		assignments: assignments,
		sessions:    sessions,
		messages:    messages,
		assessments: assessments,
		client:      client,
		cache:       cache,
		cacheTTL:    cacheTTL,
		timeout:     timeout,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) Dashboard(ctx context.Context, code string) (dto.DashboardResponse, error) {
	assignment, err := s.assignments.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DashboardResponse{}, ErrAssignmentNotFound
		}

		return dto.DashboardResponse{}, err
	}

	sessions, err := s.sessions.ListByAssignment(ctx, code)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	rows := make([]dto.StudentRow, 0, len(sessions))
	contributing := make([]studentSummary, 0, len(sessions))

	for _, session := range sessions {
		messages, err := s.messages.ListBySession(ctx, session.ID)
		if err != nil {
			return dto.DashboardResponse{}, err
		}

		row := dto.StudentRow{
			SessionID:   session.ID,
			StudentName: session.StudentName,
			Transcript:  dto.NewMessageResponseSlice(messages),
		}

		assessment, err := s.assessments.GetOrCompute(ctx, session.ID)
		if err != nil {
			// The row stays unassessed and gets retried on the next view.
			// A failed computation must never render as a blank score.
			s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("assessment unavailable")
			row.Error = err.Error()
		} else {
			row.Assessed = true
			row.Summary = assessment.Summary
			row.Score = assessment.Score
			contributing = append(contributing, studentSummary{
				Name:    session.StudentName,
				Summary: assessment.Summary,
				Score:   assessment.Score,
			})
		}

		rows = append(rows, row)
	}

	response := dto.DashboardResponse{
		Assignment: dto.NewAssignmentResponse(assignment),
		Students:   rows,
	}

	if len(contributing) > 0 {
		report, err := s.classReport(ctx, assignment.Code, assignment.Topic, assignment.Goal, contributing)
		if err != nil {
			return dto.DashboardResponse{}, err
		}
		response.Report = report
	}

	return response, nil
}

// classReport aggregates the contributing assessments. The result is
// recomputed per view; when a cache client is configured the report is
// keyed by a hash of the contributing rows, so the entry turns over the
// moment any contributing assessment changes and stale reports are
// never served.
func (s *dashboardService) classReport(ctx context.Context, code, topic, goal string, students []studentSummary) (*dto.ClassReport, error) {
	key := s.reportCacheKey(code, students)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var report dto.ClassReport
			if unmarshalErr := json.Unmarshal([]byte(cached), &report); unmarshalErr == nil {
				s.logger.Debug().Str("code", code).Msg("class report cache hit")
				return &report, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read class report cache")
		}
	}

	payload, err := classReportUserPayload(topic, goal, students)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.CompleteJSON(callCtx, classReportSystemPrompt, payload, classReportSchema)
	if err != nil {
		var malformed *ai.MalformedResponseError
		if errors.As(err, &malformed) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReport, malformed.Err)
		}

		return nil, err
	}

	var report dto.ClassReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store class report cache")
			}
		}
	}

	return &report, nil
}

func (s *dashboardService) reportCacheKey(code string, students []studentSummary) string {
	digest := sha256.New()
	for _, student := range students {
		fmt.Fprintf(digest, "%s\x1f%s\x1f%s\x1e", student.Name, student.Score, student.Summary)
	}

	return fmt.Sprintf("report:%s:%s", code, hex.EncodeToString(digest.Sum(nil))[:16])
}
