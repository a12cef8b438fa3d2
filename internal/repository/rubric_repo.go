package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// RubricRepository reads the rubric catalog. Create exists for seeding only.
type RubricRepository interface {
	List(ctx context.Context) ([]models.Rubric, error)
	GetByID(ctx context.Context, id uint) (models.Rubric, error)
	Create(ctx context.Context, rubric *models.Rubric) error
}

type rubricRepository struct {
	db *gorm.DB
}

// NewRubricRepository instantiates the repository.
func NewRubricRepository(db *gorm.DB) RubricRepository {
	return &rubricRepository{db: db}
}

func (r *rubricRepository) List(ctx context.Context) ([]models.Rubric, error) {
	var rubrics []models.Rubric
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rubrics).Error; err != nil {
		return nil, err
	}
	return rubrics, nil
}

func (r *rubricRepository) GetByID(ctx context.Context, id uint) (models.Rubric, error) {
	var rubric models.Rubric
	if err := r.db.WithContext(ctx).First(&rubric, id).Error; err != nil {
		return models.Rubric{}, err
	}
	return rubric, nil
}

func (r *rubricRepository) Create(ctx context.Context, rubric *models.Rubric) error {
	return r.db.WithContext(ctx).Create(rubric).Error
}
