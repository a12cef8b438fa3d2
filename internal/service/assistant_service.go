package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/pkg/ai"
)

var (
	// ErrAssistantUnavailable indicates no assistant provider is configured.
	ErrAssistantUnavailable = errors.New("assistant is not available")
	// ErrAssistantFailed collapses provider errors into the single message shown to users.
	ErrAssistantFailed = errors.New("assistant request failed, please try again")
)

// AssistantService fronts the generative assistant used for outlines and help search.
type AssistantService interface {
	GenerateOutline(ctx context.Context, payload dto.OutlineRequest) (dto.OutlineResponse, error)
	SearchHelp(ctx context.Context, payload dto.HelpSearchRequest) (dto.HelpSearchResponse, error)
}

type assistantService struct {
	assistant ai.Assistant
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssistantService constructs an AssistantService. A nil assistant behaves as unavailable.
func NewAssistantService(assistant ai.Assistant, validate *validator.Validate, logger zerolog.Logger) AssistantService {
	if assistant == nil {
		assistant = ai.Unavailable{}
	}
	return &assistantService{
		assistant: assistant,
		validator: validate,
		logger:    logger.With().Str("component", "assistant_service").Logger(),
	}
}

func (s *assistantService) GenerateOutline(ctx context.Context, payload dto.OutlineRequest) (dto.OutlineResponse, error) {
	payload.Topic = strings.TrimSpace(payload.Topic)
	if err := s.validator.Struct(payload); err != nil {
		return dto.OutlineResponse{}, err
	}

	outline, err := s.assistant.GenerateOutline(ctx, payload.Topic)
	if err != nil {
		return dto.OutlineResponse{}, s.mapError(err, "outline")
	}

	response := dto.OutlineResponse{
		Topic:   payload.Topic,
		Modules: make([]dto.OutlineModule, 0, len(outline.Modules)),
	}
	for _, module := range outline.Modules {
		lessons := make([]dto.OutlineLesson, 0, len(module.Lessons))
		for _, lesson := range module.Lessons {
			lessons = append(lessons, dto.OutlineLesson{Title: lesson.Title, Summary: lesson.Summary})
		}
		response.Modules = append(response.Modules, dto.OutlineModule{
			ModuleTitle: module.ModuleTitle,
			Lessons:     lessons,
		})
	}
	return response, nil
}

func (s *assistantService) SearchHelp(ctx context.Context, payload dto.HelpSearchRequest) (dto.HelpSearchResponse, error) {
	payload.Query = strings.TrimSpace(payload.Query)
	if err := s.validator.Struct(payload); err != nil {
		return dto.HelpSearchResponse{}, err
	}

	answer, err := s.assistant.SearchHelp(ctx, payload.Query)
	if err != nil {
		return dto.HelpSearchResponse{}, s.mapError(err, "help_search")
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	return dto.HelpSearchResponse{
		Query:   payload.Query,
		Answer:  answer.Answer,
		Sources: sources,
	}, nil
}

func (s *assistantService) mapError(err error, operation string) error {
	if errors.Is(err, ai.ErrUnavailable) {
		return ErrAssistantUnavailable
	}
	s.logger.Error().Err(err).Str("operation", operation).Msg("assistant request failed")
	return ErrAssistantFailed
}
