package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ashleeec/quibly/internal/config"
	"github.com/ashleeec/quibly/internal/handler"
	"github.com/ashleeec/quibly/internal/models"
	"github.com/ashleeec/quibly/internal/repository"
	"github.com/ashleeec/quibly/internal/router"
	"github.com/ashleeec/quibly/internal/service"
	"github.com/ashleeec/quibly/pkg/ai"
)

// stubAIClient scripts the language model boundary so handler tests run
// the full stack underneath it.
type stubAIClient struct {
	mu      sync.Mutex
	replies []string
	reply   string
	jsons   []string
}

func (s *stubAIClient) Complete(_ context.Context, _ string, _ []ai.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replies) > 0 {
		next := s.replies[0]
		s.replies = s.replies[1:]
		return next, nil
	}
	if s.reply != "" {
		return s.reply, nil
	}
	return "What do you already know about this topic?", nil
}

func (s *stubAIClient) CompleteJSON(_ context.Context, _, _ string, _ *ai.Schema) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.jsons) == 0 {
		return nil, &ai.ExternalServiceError{Err: fmt.Errorf("no scripted response")}
	}
	next := s.jsons[0]
	s.jsons = s.jsons[1:]
	return json.RawMessage(next), nil
}

func setupApp(t *testing.T, stub ai.Client) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Assignment{}, &models.Session{}, &models.Message{}, &models.Assessment{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	assignmentRepo := repository.NewAssignmentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	dialogueService := service.NewDialogueService(stub, service.DialogueConfig{MaxHistoryTurns: 50}, logger)
	sessionService := service.NewSessionService(sessionRepo, messageRepo, assignmentRepo, dialogueService, validate, service.SessionConfig{}, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, sessionRepo, messageRepo, assignmentRepo, stub, time.Minute, logger)
	dashboardService := service.NewDashboardService(assignmentRepo, sessionRepo, messageRepo, assessmentService, stub, nil, time.Hour, time.Minute, logger)

	app := fiber.New()

	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, dashboardService, validate, logger),
		SessionHandler:    handler.NewSessionHandler(sessionService, assessmentService, validate, logger),
	})

	return app
}

func performJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}
