package models

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	appmodels "childminder/internal/application/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
)

const maxCommentLength = 2000

// Summary is one row of the reviewer queue.
type Summary struct {
	ID           id.ApplicationID `json:"id"`
	Status       appmodels.Status `json:"status"`
	SubmittedAt  *time.Time       `json:"submitted_at,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
	RegisterURN  string           `json:"register_urn,omitempty"`
	FlaggedTasks []appmodels.Task `json:"flagged_tasks,omitempty"`
}

func NewSummary(app *appmodels.Application) Summary {
	return Summary{
		ID:           app.ID,
		Status:       app.Status,
		SubmittedAt:  app.SubmittedAt,
		UpdatedAt:    app.UpdatedAt,
		RegisterURN:  app.RegisterURN,
		FlaggedTasks: app.FlaggedTasks(),
	}
}

// Detail is everything a reviewer reads before deciding.
type Detail struct {
	Summary
	Tasks    map[appmodels.Task]appmodels.TaskStatus `json:"tasks"`
	Flags    map[appmodels.Task]string               `json:"flags,omitempty"`
	Sections map[appmodels.Task]json.RawMessage      `json:"sections"`
}

// FlagRequest sends one task back to the applicant.
type FlagRequest struct {
	Task    string `json:"task"`
	Comment string `json:"comment"`
}

func (r *FlagRequest) Normalize() {
	r.Task = strings.TrimSpace(r.Task)
	r.Comment = strings.TrimSpace(r.Comment)
}

// Validate resolves the task name.
func (r *FlagRequest) Validate() (appmodels.Task, error) {
	errs := map[string]string{}
	task, ok := appmodels.ParseTask(r.Task)
	if !ok {
		errs["task"] = "Unknown task"
	}
	switch {
	case r.Comment == "":
		errs["comment"] = "Tell the applicant what needs to change"
	case utf8.RuneCountInString(r.Comment) > maxCommentLength:
		errs["comment"] = "Must be 2000 characters or fewer"
	}
	if err := dErrors.Validation(errs); err != nil {
		return "", err
	}
	return task, nil
}
