package models

import "time"

type Photo struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	ProjectID string `gorm:"size:16;index;not null" json:"-"`
	Position  int    `gorm:"not null;default:0" json:"-"` // order within the project

	Filename    string    `gorm:"size:255;not null" json:"filename"`
	ContentType string    `gorm:"size:100;not null" json:"contentType"`
	Data        string    `gorm:"type:text;not null" json:"data"` // data URL, base64 payload
	Checksum    string    `gorm:"size:64" json:"checksum"`        // blake2b-256, hex
	UploadedAt  time.Time `json:"uploadedAt"`
	UploadedBy  string    `gorm:"size:255" json:"uploadedBy"`
	Size        int64     `json:"size"`
}
