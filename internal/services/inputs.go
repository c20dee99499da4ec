package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/project-manager/engine/internal/models"
	appErr "github.com/project-manager/engine/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ProjectInput is the body accepted when creating or replacing a project.
// Omitted fields take the create defaults.
type ProjectInput struct {
	Name          string   `json:"name" validate:"required"`
	Description   *string  `json:"description"`
	Status        *string  `json:"status"`
	Priority      *string  `json:"priority"`
	Type          *string  `json:"type"`
	DueDate       *string  `json:"due_date"`
	Tags          []string `json:"tags"`
	Subdomain     *string  `json:"subdomain"`
	RepositoryURL *string  `json:"repository_url"`
	LiveURL       *string  `json:"live_url"`
	Features      []string `json:"features"`
	Budget        *float64 `json:"budget"`
	Client        *string  `json:"client"`
	Notes         *string  `json:"notes"`
}

// toModel validates the input and applies defaults.
func (in *ProjectInput) toModel() (*models.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "Missing required field: name")
	}

	due, err := parseOptionalDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	tags := models.StringList{}
	if in.Tags != nil {
		tags = in.Tags
	}
	features := models.StringList{}
	if in.Features != nil {
		features = in.Features
	}

	return &models.Project{
		Name:          in.Name,
		Description:   valueOr(in.Description, ""),
		Status:        valueOr(in.Status, models.StatusPlanning),
		Priority:      valueOr(in.Priority, models.PriorityMedium),
		Type:          valueOr(in.Type, models.TypeOther),
		DueDate:       due,
		Tags:          tags,
		Subdomain:     nonEmpty(in.Subdomain),
		RepositoryURL: nonEmpty(in.RepositoryURL),
		LiveURL:       nonEmpty(in.LiveURL),
		Features:      features,
		Budget:        in.Budget,
		Client:        nonEmpty(in.Client),
		Notes:         valueOr(in.Notes, ""),
	}, nil
}

// SubProjectInput is the body accepted when adding a sub-project.
type SubProjectInput struct {
	ProjectID uint    `json:"project_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Status    *string `json:"status"`
	DueDate   *string `json:"due_date"`
	Assignee  *string `json:"assignee"`
}

// UnmarshalJSON accepts project_id as either a JSON number or a numeric string.
func (in *SubProjectInput) UnmarshalJSON(b []byte) error {
	type alias SubProjectInput
	var raw struct {
		alias
		ProjectID json.RawMessage `json:"project_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*in = SubProjectInput(raw.alias)
	in.ProjectID = 0
	if len(raw.ProjectID) == 0 || bytes.Equal(raw.ProjectID, []byte("null")) {
		return nil
	}
	id, err := parseFlexibleID(raw.ProjectID)
	if err != nil {
		return err
	}
	in.ProjectID = id
	return nil
}

// Optional records whether a JSON field was present, and its value (nil for null).
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// SubProjectPatch is a partial update; only present fields change.
type SubProjectPatch struct {
	Name     Optional[string] `json:"name"`
	Status   Optional[string] `json:"status"`
	DueDate  Optional[string] `json:"due_date"`
	Assignee Optional[string] `json:"assignee"`
}

func (p *SubProjectPatch) fields() (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if p.Name.Set {
		if p.Name.Value == nil || strings.TrimSpace(*p.Name.Value) == "" {
			return nil, appErr.Invalid("name cannot be empty")
		}
		out["name"] = strings.TrimSpace(*p.Name.Value)
	}
	if p.Status.Set {
		if p.Status.Value == nil || *p.Status.Value == "" {
			return nil, appErr.Invalid("status cannot be empty")
		}
		out["status"] = *p.Status.Value
	}
	if p.DueDate.Set {
		due, err := parseOptionalDate(p.DueDate.Value)
		if err != nil {
			return nil, err
		}
		out["due_date"] = due
	}
	if p.Assignee.Set {
		out["assignee"] = nonEmpty(p.Assignee.Value)
	}
	return out, nil
}

func parseOptionalDate(s *string) (*models.Date, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := models.ParseDate(*s)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "Invalid due_date, expected YYYY-MM-DD")
	}
	return &d, nil
}

func valueOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
