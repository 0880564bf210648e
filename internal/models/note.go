package models

import "time"

// Note is an append-only comment attached to a project.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID string    `gorm:"size:16;index;not null" json:"projectId"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Author    string    `gorm:"size:255" json:"author"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}
