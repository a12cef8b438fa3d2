package dto

import (
	"time"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// SiteContentUpsertRequest edits a public page block.
type SiteContentUpsertRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Body  string `json:"body" validate:"omitempty,max=20000"`
}

// SiteContentResponse serializes a public page block.
type SiteContentResponse struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSiteContentResponse converts a site content model.
func NewSiteContentResponse(model models.SiteContent) SiteContentResponse {
	return SiteContentResponse{
		Slug:      model.Slug,
		Title:     model.Title,
		Body:      model.Body,
		UpdatedAt: model.UpdatedAt,
	}
}
