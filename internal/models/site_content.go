package models

import "time"

// SiteContent is an editable public page block such as the landing hero or the FAQ.
type SiteContent struct {
	Slug      string    `gorm:"primaryKey;size:64" json:"slug"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	UpdatedBy uint      `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}
