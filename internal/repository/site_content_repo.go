package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// SiteContentRepository persists editable public page blocks.
type SiteContentRepository interface {
	Get(ctx context.Context, slug string) (models.SiteContent, error)
	List(ctx context.Context) ([]models.SiteContent, error)
	Upsert(ctx context.Context, content *models.SiteContent) error
}

type siteContentRepository struct {
	db *gorm.DB
}

// NewSiteContentRepository instantiates the repository.
func NewSiteContentRepository(db *gorm.DB) SiteContentRepository {
	return &siteContentRepository{db: db}
}

func (r *siteContentRepository) Get(ctx context.Context, slug string) (models.SiteContent, error) {
	var content models.SiteContent
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&content).Error; err != nil {
		return models.SiteContent{}, err
	}
	return content, nil
}

func (r *siteContentRepository) List(ctx context.Context) ([]models.SiteContent, error) {
	var contents []models.SiteContent
	if err := r.db.WithContext(ctx).Order("slug ASC").Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

func (r *siteContentRepository) Upsert(ctx context.Context, content *models.SiteContent) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "body", "updated_by", "updated_at"}),
	}).Create(content).Error
}
