package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ashleeec/quibly/internal/models"
	"github.com/ashleeec/quibly/pkg/ai"
)

type memoryAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[string]models.Assignment
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{assignments: make(map[string]models.Assignment)}
}

func (m *memoryAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	assignment.CreatedAt = time.Now()
	m.assignments[assignment.Code] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) GetByCode(ctx context.Context, code string) (models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	assignment, ok := m.assignments[code]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	order    []string
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]models.Session)}
}

func (m *memorySessionRepo) Create(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.CreatedAt = time.Now()
	m.sessions[session.ID] = *session
	m.order = append(m.order, session.ID)
	return nil
}

func (m *memorySessionRepo) GetByID(ctx context.Context, id string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return models.Session{}, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (m *memorySessionRepo) ListByAssignment(ctx context.Context, code string) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Session, 0)
	for _, id := range m.order {
		if session := m.sessions[id]; session.AssignmentCode == code {
			results = append(results, session)
		}
	}
	return results, nil
}

type memoryMessageRepo struct {
	mu       sync.Mutex
	messages []models.Message
	nextID   uint
}

func newMemoryMessageRepo() *memoryMessageRepo {
	return &memoryMessageRepo{nextID: 1}
}

func (m *memoryMessageRepo) Append(ctx context.Context, message *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	message.ID = m.nextID
	message.CreatedAt = time.Now()
	m.nextID++
	m.messages = append(m.messages, *message)
	return nil
}

func (m *memoryMessageRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Message, 0)
	for _, message := range m.messages {
		if message.SessionID == sessionID {
			results = append(results, message)
		}
	}
	return results, nil
}

type memoryAssessmentRepo struct {
	mu          sync.Mutex
	assessments map[string]models.Assessment
	upserts     int
}

func newMemoryAssessmentRepo() *memoryAssessmentRepo {
	return &memoryAssessmentRepo{assessments: make(map[string]models.Assessment)}
}

func (m *memoryAssessmentRepo) GetBySession(ctx context.Context, sessionID string) (models.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	assessment, ok := m.assessments[sessionID]
	if !ok {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}
	return assessment, nil
}

func (m *memoryAssessmentRepo) Upsert(ctx context.Context, assessment *models.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if existing, ok := m.assessments[assessment.SessionID]; ok {
		assessment.CreatedAt = existing.CreatedAt
	} else {
		assessment.CreatedAt = now
	}
	assessment.UpdatedAt = now
	m.assessments[assessment.SessionID] = *assessment
	m.upserts++
	return nil
}

func (m *memoryAssessmentRepo) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assessments, sessionID)
	return nil
}

// stubAI is a scriptable ai.Client that counts calls. Chat replies are
// consumed in order; the JSON payload is returned for every structured
// call unless jsonErr is set.
type stubAI struct {
	mu        sync.Mutex
	replies   []string
	reply     string
	json      string
	jsonErr   error
	chatCalls int
	jsonCalls int

	lastSystem  string
	lastHistory []ai.Message
	lastUser    string
}

func (s *stubAI) Complete(ctx context.Context, system string, history []ai.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatCalls++
	s.lastSystem = system
	s.lastHistory = append([]ai.Message(nil), history...)
	if len(s.replies) > 0 {
		reply := s.replies[0]
		s.replies = s.replies[1:]
		return reply, nil
	}
	if s.reply != "" {
		return s.reply, nil
	}
	return "What do you already know about this topic?", nil
}

func (s *stubAI) CompleteJSON(ctx context.Context, system string, user string, schema *ai.Schema) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jsonCalls++
	s.lastSystem = system
	s.lastUser = user
	if s.jsonErr != nil {
		return nil, s.jsonErr
	}
	raw := json.RawMessage(s.json)
	if err := validateStubPayload(schema, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// validateStubPayload mirrors the real client's schema gate so service
// tests exercise the same failure path.
func validateStubPayload(schema *ai.Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ai.MalformedResponseError{Content: raw, Err: err}
	}
	return nil
}
