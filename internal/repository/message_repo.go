package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashleeec/quibly/internal/models"
)

// MessageRepository defines the append-only message log. Messages are
// never updated or deleted; ListBySession returns them in insertion
// order via the autoincrement primary key.
type MessageRepository interface {
	Append(ctx context.Context, message *models.Message) error
	ListBySession(ctx context.Context, sessionID string) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository instantiates a GORM-backed repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id ASC").Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}
