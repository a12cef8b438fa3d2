package models

import (
	"time"

	"gorm.io/datatypes"
)

// RubricLevel is one selectable performance tier for a criterion.
type RubricLevel struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Points int    `json:"points" validate:"gte=0"`
}

// RubricCriterion is a single evaluated dimension of a rubric.
type RubricCriterion struct {
	ID          string        `json:"id" validate:"required"`
	Description string        `json:"description" validate:"required"`
	Levels      []RubricLevel `json:"levels" validate:"dive"`
}

// Level returns the level with the given identifier.
func (c RubricCriterion) Level(levelID string) (RubricLevel, bool) {
	for _, level := range c.Levels {
		if level.ID == levelID {
			return level, true
		}
	}
	return RubricLevel{}, false
}

// MaxPoints returns the highest point value offered by the criterion. A criterion without levels weighs nothing.
func (c RubricCriterion) MaxPoints() int {
	best := 0
	for i, level := range c.Levels {
		if i == 0 || level.Points > best {
			best = level.Points
		}
	}
	return best
}

// Rubric is read-only reference data used to score submissions.
type Rubric struct {
	ID        uint                                 `gorm:"primaryKey" json:"id"`
	Title     string                               `gorm:"size:255;not null" json:"title" validate:"required"`
	Criteria  datatypes.JSONSlice[RubricCriterion] `gorm:"type:json" json:"criteria" validate:"dive"`
	CreatedAt time.Time                            `json:"created_at"`
	UpdatedAt time.Time                            `json:"updated_at"`
}

// Criterion returns the criterion with the given identifier.
func (r Rubric) Criterion(criterionID string) (RubricCriterion, bool) {
	for _, criterion := range r.Criteria {
		if criterion.ID == criterionID {
			return criterion, true
		}
	}
	return RubricCriterion{}, false
}

// Clone returns a deep copy so callers can hand the rubric out without sharing level slices.
func (r Rubric) Clone() Rubric {
	clone := r
	clone.Criteria = make(datatypes.JSONSlice[RubricCriterion], len(r.Criteria))
	for i, criterion := range r.Criteria {
		levels := make([]RubricLevel, len(criterion.Levels))
		copy(levels, criterion.Levels)
		criterion.Levels = levels
		clone.Criteria[i] = criterion
	}
	return clone
}
