package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/ashleeec/quibly/internal/dto"
	"github.com/ashleeec/quibly/internal/models"
)

func createAssignment(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp := performJSON(t, app, http.MethodPost, "/api/v1/assignments", dto.AssignmentCreateRequest{
		Topic: "Photosynthesis",
		Goal:  "explain the light reactions",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	return created.Data.Code
}

func TestSessionStartReplyTranscript(t *testing.T) {
	stub := &stubAIClient{replies: []string{"What is chlorophyll for?", "And where does that happen?"}}
	app := setupApp(t, stub)
	code := createAssignment(t, app)

	startResp := performJSON(t, app, http.MethodPost, "/api/v1/sessions", dto.SessionStartRequest{
		AssignmentCode: code,
		StudentName:    "Ada",
	})
	require.Equal(t, fiber.StatusCreated, startResp.StatusCode)

	var started struct {
		Data dto.SessionStartResponse `json:"data"`
	}
	decodeResponse(t, startResp, &started)
	require.NotEmpty(t, started.Data.SessionID)
	require.Equal(t, "Ada", started.Data.StudentName)
	require.Equal(t, "Photosynthesis", started.Data.Topic)
	require.Equal(t, "What is chlorophyll for?", started.Data.Opening)

	replyResp := performJSON(t, app, http.MethodPost, "/api/v1/sessions/"+started.Data.SessionID+"/messages", dto.MessageSendRequest{
		Content: "It absorbs light.",
	})
	require.Equal(t, fiber.StatusOK, replyResp.StatusCode)

	var replied struct {
		Data dto.TutorReplyResponse `json:"data"`
	}
	decodeResponse(t, replyResp, &replied)
	require.Equal(t, "And where does that happen?", replied.Data.Reply)
	require.False(t, replied.Data.SignOff)

	transcriptResp := performJSON(t, app, http.MethodGet, "/api/v1/sessions/"+started.Data.SessionID+"/transcript", nil)
	require.Equal(t, fiber.StatusOK, transcriptResp.StatusCode)

	var transcript struct {
		Data []dto.MessageResponse `json:"data"`
	}
	decodeResponse(t, transcriptResp, &transcript)
	require.Len(t, transcript.Data, 3)
	require.Equal(t, models.RoleAssistant, transcript.Data[0].Role)
	require.Equal(t, models.RoleUser, transcript.Data[1].Role)
	require.Equal(t, "It absorbs light.", transcript.Data[1].Content)
	require.Equal(t, models.RoleAssistant, transcript.Data[2].Role)
}

func TestSessionStartUnknownCode(t *testing.T) {
	app := setupApp(t, &stubAIClient{})

	resp := performJSON(t, app, http.MethodPost, "/api/v1/sessions", dto.SessionStartRequest{
		AssignmentCode: "nope0000",
		StudentName:    "Ada",
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "invalid code", body.Message)
}

func TestSessionStartValidation(t *testing.T) {
	app := setupApp(t, &stubAIClient{})
	code := createAssignment(t, app)

	resp := performJSON(t, app, http.MethodPost, "/api/v1/sessions", dto.SessionStartRequest{
		AssignmentCode: code,
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSessionReplyUnknownSession(t *testing.T) {
	app := setupApp(t, &stubAIClient{})

	resp := performJSON(t, app, http.MethodPost, "/api/v1/sessions/missing/messages", dto.MessageSendRequest{
		Content: "hello?",
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSessionTranscriptUnknownSession(t *testing.T) {
	app := setupApp(t, &stubAIClient{})

	resp := performJSON(t, app, http.MethodGet, "/api/v1/sessions/missing/transcript", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestInvalidateAssessment(t *testing.T) {
	stub := &stubAIClient{}
	app := setupApp(t, stub)
	code := createAssignment(t, app)

	startResp := performJSON(t, app, http.MethodPost, "/api/v1/sessions", dto.SessionStartRequest{
		AssignmentCode: code,
		StudentName:    "Ada",
	})
	var started struct {
		Data dto.SessionStartResponse `json:"data"`
	}
	decodeResponse(t, startResp, &started)

	resp := performJSON(t, app, http.MethodDelete, "/api/v1/sessions/"+started.Data.SessionID+"/assessment", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	missing := performJSON(t, app, http.MethodDelete, "/api/v1/sessions/missing/assessment", nil)
	require.Equal(t, fiber.StatusNotFound, missing.StatusCode)
}
