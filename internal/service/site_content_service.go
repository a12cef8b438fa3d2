package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/models"
	"github.com/noah-isme/gema-learn-api/internal/repository"
)

// ErrSiteContentNotFound indicates no block is stored under the slug.
var ErrSiteContentNotFound = errors.New("content not found")

// ErrInvalidSlug indicates the slug is not lowercase letters, digits and dashes.
var ErrInvalidSlug = errors.New("invalid content slug")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// SiteContentService manages public page blocks such as the hero, about and faq sections.
type SiteContentService interface {
	Get(ctx context.Context, slug string) (dto.SiteContentResponse, error)
	Upsert(ctx context.Context, slug string, payload dto.SiteContentUpsertRequest, actor ActivityActor) (dto.SiteContentResponse, error)
}

type siteContentService struct {
	repo      repository.SiteContentRepository
	validator *validator.Validate
	policy    *bluemonday.Policy
	logger    zerolog.Logger
}

// NewSiteContentService constructs a SiteContentService.
func NewSiteContentService(repo repository.SiteContentRepository, validate *validator.Validate, logger zerolog.Logger) SiteContentService {
	return &siteContentService{
		repo:      repo,
		validator: validate,
		policy:    bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "site_content_service").Logger(),
	}
}

func (s *siteContentService) Get(ctx context.Context, slug string) (dto.SiteContentResponse, error) {
	slug, err := normalizeSlug(slug)
	if err != nil {
		return dto.SiteContentResponse{}, err
	}

	content, err := s.repo.Get(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SiteContentResponse{}, ErrSiteContentNotFound
		}
		return dto.SiteContentResponse{}, err
	}
	return dto.NewSiteContentResponse(content), nil
}

func (s *siteContentService) Upsert(ctx context.Context, slug string, payload dto.SiteContentUpsertRequest, actor ActivityActor) (dto.SiteContentResponse, error) {
	slug, err := normalizeSlug(slug)
	if err != nil {
		return dto.SiteContentResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SiteContentResponse{}, err
	}

	content := models.SiteContent{
		Slug:      slug,
		Title:     strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(payload.Title)),
		Body:      s.policy.Sanitize(payload.Body),
		UpdatedBy: actor.ID,
	}
	if err := s.repo.Upsert(ctx, &content); err != nil {
		return dto.SiteContentResponse{}, err
	}

	s.logger.Info().Str("slug", slug).Uint("actor_id", actor.ID).Msg("site content updated")
	return s.Get(ctx, slug)
}

func normalizeSlug(slug string) (string, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if len(slug) > 64 || !slugPattern.MatchString(slug) {
		return "", ErrInvalidSlug
	}
	return slug, nil
}
