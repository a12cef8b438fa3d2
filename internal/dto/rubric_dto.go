package dto

import (
	"github.com/noah-isme/gema-learn-api/internal/grading"
	"github.com/noah-isme/gema-learn-api/internal/models"
)

// RubricResponse serializes a rubric along with its attainable maximum.
type RubricResponse struct {
	ID        uint                     `json:"id"`
	Title     string                   `json:"title"`
	Criteria  []models.RubricCriterion `json:"criteria"`
	MaxPoints int                      `json:"max_points"`
}

// NewRubricResponse converts a rubric model into a DTO without sharing its level slices.
func NewRubricResponse(model models.Rubric) RubricResponse {
	clone := model.Clone()
	return RubricResponse{
		ID:        clone.ID,
		Title:     clone.Title,
		Criteria:  []models.RubricCriterion(clone.Criteria),
		MaxPoints: grading.MaxPoints(clone),
	}
}

// NewRubricResponseSlice converts a list of rubric models.
func NewRubricResponseSlice(items []models.Rubric) []RubricResponse {
	responses := make([]RubricResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewRubricResponse(item))
	}
	return responses
}
