package models

import "time"

// ProjectFile is an uploaded attachment. StorageKey addresses the blob in
// the blob store and is never exposed to clients.
type ProjectFile struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  uint      `gorm:"not null;index" json:"project_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Size       int64     `gorm:"not null" json:"size"`
	Type       string    `gorm:"type:varchar(255);not null" json:"type"`
	URL        string    `gorm:"type:varchar(1024);not null" json:"url"`
	StorageKey string    `gorm:"type:varchar(255);not null" json:"-"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
