package models

import "time"

// Course groups ordered lessons authored by an instructor.
type Course struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"size:128;index" json:"category"`
	InstructorID uint      `gorm:"not null;index" json:"instructor_id"`
	Published    bool      `gorm:"index" json:"published"`
	CoverURL     string    `gorm:"size:512" json:"cover_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Instructor   User      `gorm:"foreignKey:InstructorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"instructor"`
	Lessons      []Lesson  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"lessons"`
}

// Lesson is a single unit of a course. A lesson may carry an assignment graded with a rubric.
type Lesson struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CourseID        uint      `gorm:"not null;index" json:"course_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Summary         string    `gorm:"type:text" json:"summary"`
	Position        int       `gorm:"not null;default:0" json:"position"`
	AssignmentTitle string    `gorm:"size:255" json:"assignment_title"`
	RubricID        *uint     `gorm:"index" json:"rubric_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasAssignment reports whether students can submit work for the lesson.
func (l Lesson) HasAssignment() bool {
	return l.AssignmentTitle != ""
}
