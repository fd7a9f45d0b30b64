package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashleeec/quibly/internal/models"
)

// AssessmentRepository persists the per-session assessment cache.
// Upsert is a single insert-or-update statement keyed on session_id, so
// two concurrent writers collapse to one stored row without error.
type AssessmentRepository interface {
	GetBySession(ctx context.Context, sessionID string) (models.Assessment, error)
	Upsert(ctx context.Context, assessment *models.Assessment) error
	Delete(ctx context.Context, sessionID string) error
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates a GORM-backed repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) GetBySession(ctx context.Context, sessionID string) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.WithContext(ctx).First(&assessment, "session_id = ?", sessionID).Error; err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

func (r *assessmentRepository) Upsert(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "score", "raw", "updated_at"}),
	}).Create(assessment).Error
}

func (r *assessmentRepository) Delete(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Delete(&models.Assessment{}, "session_id = ?", sessionID).Error
}
