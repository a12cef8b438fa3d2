package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/dto"
	"github.com/noah-isme/gema-learn-api/internal/repository"
)

// ErrRubricNotFound indicates the rubric is not part of the catalog.
var ErrRubricNotFound = errors.New("rubric not found")

// RubricService reads the rubric catalog.
type RubricService interface {
	List(ctx context.Context) ([]dto.RubricResponse, error)
	Get(ctx context.Context, id uint) (dto.RubricResponse, error)
}

type rubricService struct {
	rubrics repository.RubricRepository
}

// NewRubricService constructs a RubricService.
func NewRubricService(rubrics repository.RubricRepository) RubricService {
	return &rubricService{rubrics: rubrics}
}

func (s *rubricService) List(ctx context.Context) ([]dto.RubricResponse, error) {
	rubrics, err := s.rubrics.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewRubricResponseSlice(rubrics), nil
}

func (s *rubricService) Get(ctx context.Context, id uint) (dto.RubricResponse, error) {
	rubric, err := s.rubrics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RubricResponse{}, ErrRubricNotFound
		}
		return dto.RubricResponse{}, err
	}
	return dto.NewRubricResponse(rubric), nil
}
