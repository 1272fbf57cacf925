package repository

import (
	"context"
	"errors"

	"github.com/draftline/draftline/internal/domain"
	"gorm.io/gorm"
)

// ProjectRepository handles project configuration lookups.
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByID retrieves a project by its ID.
// Returns domain.ErrNotFound if no project exists.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List retrieves all projects, newest first.
func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]domain.Project, error) {
	var projects []domain.Project
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
