package client

import (
	"encoding/json"
	"time"
)

type Project struct {
	ID            uint          `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Status        string        `json:"status"`
	Priority      string        `json:"priority"`
	Type          string        `json:"type"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	DueDate       *string       `json:"due_date"`
	Tags          []string      `json:"tags"`
	Subdomain     *string       `json:"subdomain"`
	RepositoryURL *string       `json:"repository_url"`
	LiveURL       *string       `json:"live_url"`
	Features      []string      `json:"features"`
	Budget        *float64      `json:"budget"`
	Client        *string       `json:"client"`
	Notes         string        `json:"notes"`
	Files         []ProjectFile `json:"files"`
	SubProjects   []SubProject  `json:"subprojects"`
	Progress      float64       `json:"progress"`
}

type ProjectFile struct {
	ID         uint      `json:"id"`
	ProjectID  uint      `json:"project_id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type SubProject struct {
	ID        uint    `json:"id"`
	ProjectID uint    `json:"project_id"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	DueDate   *string `json:"due_date"`
	Assignee  *string `json:"assignee"`
}

type Stats struct {
	Total      int64 `json:"total"`
	Planning   int64 `json:"planning"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	OnHold     int64 `json:"on_hold"`
}

// ProjectFilter narrows ListProjects. Empty fields are not sent.
type ProjectFilter struct {
	Status   string
	Type     string
	Priority string
	Query    string
}

// ProjectInput is sent on create and replace. Omitted fields take server defaults.
type ProjectInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Status        string   `json:"status,omitempty"`
	Priority      string   `json:"priority,omitempty"`
	Type          string   `json:"type,omitempty"`
	DueDate       string   `json:"due_date,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Subdomain     string   `json:"subdomain,omitempty"`
	RepositoryURL string   `json:"repository_url,omitempty"`
	LiveURL       string   `json:"live_url,omitempty"`
	Features      []string `json:"features,omitempty"`
	Budget        *float64 `json:"budget,omitempty"`
	Client        string   `json:"client,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

type SubProjectInput struct {
	Name     string `json:"name"`
	Status   string `json:"status,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
	Assignee string `json:"assignee,omitempty"`
}

// SubProjectPatch changes only the fields that are set. ClearDueDate and
// ClearAssignee send an explicit null.
type SubProjectPatch struct {
	Name          *string
	Status        *string
	DueDate       *string
	Assignee      *string
	ClearDueDate  bool
	ClearAssignee bool
}

func (p SubProjectPatch) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Status != nil {
		m["status"] = *p.Status
	}
	switch {
	case p.ClearDueDate:
		m["due_date"] = nil
	case p.DueDate != nil:
		m["due_date"] = *p.DueDate
	}
	switch {
	case p.ClearAssignee:
		m["assignee"] = nil
	case p.Assignee != nil:
		m["assignee"] = *p.Assignee
	}
	return json.Marshal(m)
}

type message struct {
	Message string `json:"message"`
}
