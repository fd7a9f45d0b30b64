package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashleeec/quibly/internal/models"
)

// SessionRepository defines persistence operations for student sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	ListByAssignment(ctx context.Context, code string) ([]models.Session, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository instantiates a GORM-backed repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return models.Session{}, err
	}

	return session, nil
}

func (r *sessionRepository) ListByAssignment(ctx context.Context, code string) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.db.WithContext(ctx).Where("assignment_code = ?", code).Order("created_at ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}
