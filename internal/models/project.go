package models

import "time"

// Project statuses, priorities and types as used by the client. They are
// defaults and filter values only; any string is persisted as given.
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusOnHold     = "on-hold"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	TypeOther = "other"
)

// Project is a tracked unit of work with attachments and sub-projects.
// Columns carry no database defaults; an explicit "" is stored as given.
type Project struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	Status        string     `gorm:"type:varchar(32);not null;index" json:"status"`
	Priority      string     `gorm:"type:varchar(32);not null" json:"priority"`
	Type          string     `gorm:"type:varchar(32);not null;index" json:"type"`
	DueDate       *Date      `json:"due_date"`
	Tags          StringList `json:"tags"`
	Subdomain     *string    `gorm:"type:varchar(255)" json:"subdomain"`
	RepositoryURL *string    `gorm:"type:varchar(512)" json:"repository_url"`
	LiveURL       *string    `gorm:"type:varchar(512)" json:"live_url"`
	Features      StringList `json:"features"`
	Budget        *float64   `gorm:"type:decimal(12,2)" json:"budget"`
	Client        *string    `gorm:"type:varchar(255)" json:"client"`
	Notes         string     `gorm:"type:text;not null" json:"notes"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Files       []ProjectFile `gorm:"foreignKey:ProjectID" json:"files"`
	SubProjects []SubProject  `gorm:"foreignKey:ProjectID" json:"subprojects"`
	Progress    float64       `gorm:"-" json:"progress"`
}

// ComputeProgress sets Progress to the share of completed sub-projects, in percent.
func (p *Project) ComputeProgress() {
	if len(p.SubProjects) == 0 {
		p.Progress = 0
		return
	}
	done := 0
	for _, sp := range p.SubProjects {
		if sp.Status == SubStatusCompleted {
			done++
		}
	}
	p.Progress = float64(done) / float64(len(p.SubProjects)) * 100
}

// Normalize replaces nil collections so they encode as [] rather than null.
func (p *Project) Normalize() {
	if p.Tags == nil {
		p.Tags = StringList{}
	}
	if p.Features == nil {
		p.Features = StringList{}
	}
	if p.Files == nil {
		p.Files = []ProjectFile{}
	}
	if p.SubProjects == nil {
		p.SubProjects = []SubProject{}
	}
	p.ComputeProgress()
}

// ProjectStats counts projects per status.
type ProjectStats struct {
	Total      int64 `json:"total"`
	Planning   int64 `json:"planning"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	OnHold     int64 `json:"on_hold"`
}
