package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

func essayRubric() models.Rubric {
	return models.Rubric{
		ID:    1,
		Title: "Essay",
		Criteria: []models.RubricCriterion{
			{
				ID:          "c1",
				Description: "Argument",
				Levels: []models.RubricLevel{
					{ID: "c1-low", Name: "Weak", Points: 0},
					{ID: "c1-mid", Name: "Adequate", Points: 5},
					{ID: "c1-high", Name: "Strong", Points: 10},
				},
			},
			{
				ID:          "c2",
				Description: "Evidence",
				Levels: []models.RubricLevel{
					{ID: "c2-low", Name: "Thin", Points: 5},
					{ID: "c2-high", Name: "Thorough", Points: 20},
				},
			},
		},
	}
}

func TestCalculateAllMaxLevels(t *testing.T) {
	scores := models.RubricScores{
		"c1": {LevelID: "c1-high"},
		"c2": {LevelID: "c2-high"},
	}

	require.Equal(t, 100, Calculate(essayRubric(), scores))
}

func TestCalculateNoSelections(t *testing.T) {
	result := Evaluate(essayRubric(), models.RubricScores{})

	require.Equal(t, 0, result.Grade)
	require.Equal(t, 0, result.TotalPoints)
	require.Equal(t, 30, result.MaxPoints)
}

func TestCalculatePartialSelection(t *testing.T) {
	scores := models.RubricScores{"c1": {LevelID: "c1-mid"}}

	result := Evaluate(essayRubric(), scores)
	require.Equal(t, 5, result.TotalPoints)
	require.Equal(t, 30, result.MaxPoints)
	require.Equal(t, 17, result.Grade)
}

func TestCalculateZeroPointRubric(t *testing.T) {
	rubric := models.Rubric{
		Criteria: []models.RubricCriterion{
			{
				ID: "only",
				Levels: []models.RubricLevel{
					{ID: "a", Points: 0},
					{ID: "b", Points: 0},
				},
			},
		},
	}

	require.Equal(t, 0, Calculate(rubric, models.RubricScores{"only": {LevelID: "b"}}))
	require.Equal(t, 0, Calculate(rubric, nil))
}

func TestCalculateEmptyRubric(t *testing.T) {
	result := Evaluate(models.Rubric{}, models.RubricScores{"c1": {LevelID: "x"}})
	require.Equal(t, Result{}, result)
}

func TestCalculateIgnoresUnmatchedSelections(t *testing.T) {
	scores := models.RubricScores{
		"c1":      {LevelID: "missing"},
		"c2":      {LevelID: "c2-low"},
		"unknown": {LevelID: "c1-high"},
	}

	result := Evaluate(essayRubric(), scores)
	require.Equal(t, 5, result.TotalPoints)
	require.Equal(t, 17, result.Grade)
}

func TestCalculateCriterionWithoutLevelsWeighsNothing(t *testing.T) {
	rubric := essayRubric()
	rubric.Criteria = append(rubric.Criteria, models.RubricCriterion{ID: "c3", Description: "Empty"})

	require.Equal(t, 30, MaxPoints(rubric))
	require.Equal(t, 100, Calculate(rubric, models.RubricScores{
		"c1": {LevelID: "c1-high"},
		"c2": {LevelID: "c2-high"},
		"c3": {LevelID: "anything"},
	}))
}

func TestValidateSelection(t *testing.T) {
	rubric := essayRubric()

	require.NoError(t, ValidateSelection(rubric, "c1", "c1-mid"))
	require.ErrorIs(t, ValidateSelection(rubric, "c9", "c1-mid"), ErrUnknownCriterion)
	require.ErrorIs(t, ValidateSelection(rubric, "c1", "c2-high"), ErrUnknownLevel)
}

func TestResolve(t *testing.T) {
	rubric := essayRubric()
	manual := 88

	derived := Resolve(&rubric, models.RubricScores{"c2": {LevelID: "c2-high"}}, &manual)
	require.NotNil(t, derived)
	require.Equal(t, 67, *derived)

	require.Nil(t, Resolve(nil, nil, nil))

	entered := Resolve(nil, nil, &manual)
	require.NotNil(t, entered)
	require.Equal(t, 88, *entered)
	manual = 10
	require.Equal(t, 88, *entered)
}
