package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashleeec/quibly/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
// Assignments are write-once: there is no update or delete.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByCode(ctx context.Context, code string) (models.Assignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) GetByCode(ctx context.Context, code string) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, "code = ?", code).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}
