package models

const (
	SubStatusTodo       = "todo"
	SubStatusInProgress = "in-progress"
	SubStatusCompleted  = "completed"
)

// SubProject is a checklist-style child task of a project.
type SubProject struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ProjectID uint    `gorm:"not null;index" json:"project_id"`
	Name      string  `gorm:"type:varchar(255);not null" json:"name"`
	Status    string  `gorm:"type:varchar(32);not null" json:"status"`
	DueDate   *Date   `json:"due_date"`
	Assignee  *string `gorm:"type:varchar(255)" json:"assignee"`
}

// TableName pins the table name the API has always used.
func (SubProject) TableName() string { return "subprojects" }
