// Package grading derives percentage grades from rubric level selections.
package grading

import (
	"errors"
	"math"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

var (
	// ErrUnknownCriterion indicates the criterion is not part of the rubric.
	ErrUnknownCriterion = errors.New("criterion not found in rubric")
	// ErrUnknownLevel indicates the level is not offered by the criterion.
	ErrUnknownLevel = errors.New("level not found in criterion")
)

// Result is the breakdown behind a calculated grade.
type Result struct {
	TotalPoints int `json:"total_points"`
	MaxPoints   int `json:"max_points"`
	Grade       int `json:"grade"`
}

// Evaluate sums the points of the selected levels against the best attainable points of every criterion.
// Criteria without a selection, or whose selection matches no level, contribute zero points.
// A rubric whose maximum is zero yields a grade of 0.
func Evaluate(rubric models.Rubric, scores models.RubricScores) Result {
	var result Result
	for _, criterion := range rubric.Criteria {
		result.MaxPoints += criterion.MaxPoints()

		score, ok := scores[criterion.ID]
		if !ok {
			continue
		}
		if level, found := criterion.Level(score.LevelID); found {
			result.TotalPoints += level.Points
		}
	}

	if result.MaxPoints <= 0 {
		return result
	}

	grade := int(math.Round(float64(result.TotalPoints) / float64(result.MaxPoints) * 100))
	result.Grade = clamp(grade, 0, 100)
	return result
}

// Calculate returns only the percentage grade of Evaluate.
func Calculate(rubric models.Rubric, scores models.RubricScores) int {
	return Evaluate(rubric, scores).Grade
}

// MaxPoints is the sum of each criterion's best level.
func MaxPoints(rubric models.Rubric) int {
	total := 0
	for _, criterion := range rubric.Criteria {
		total += criterion.MaxPoints()
	}
	return total
}

// ValidateSelection checks that levelID is offered by criterionID within the rubric.
func ValidateSelection(rubric models.Rubric, criterionID, levelID string) error {
	criterion, ok := rubric.Criterion(criterionID)
	if !ok {
		return ErrUnknownCriterion
	}
	if _, ok := criterion.Level(levelID); !ok {
		return ErrUnknownLevel
	}
	return nil
}

// Resolve returns the grade that would be stored for a submission. With a rubric the grade is derived from the
// selections and is never nil; without one the manually entered grade is used as-is and may be nil.
func Resolve(rubric *models.Rubric, scores models.RubricScores, manual *int) *int {
	if rubric != nil {
		grade := Calculate(*rubric, scores)
		return &grade
	}
	if manual == nil {
		return nil
	}
	grade := *manual
	return &grade
}

func clamp(value, lower, upper int) int {
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}
