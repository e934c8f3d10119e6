package models

import (
	"slices"
	"time"

	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusDrafting           Status = "DRAFTING"
	StatusSubmitted          Status = "SUBMITTED"
	StatusARCReview          Status = "ARC_REVIEW"
	StatusFurtherInformation Status = "FURTHER_INFORMATION"
	StatusAccepted           Status = "ACCEPTED"
)

// Task is one section on the task list.
type Task string

const (
	TaskLoginDetails        Task = "login_details"
	TaskTypeOfChildcare     Task = "type_of_childcare"
	TaskPersonalDetails     Task = "personal_details"
	TaskFirstAid            Task = "first_aid"
	TaskEarlyYearsTraining  Task = "early_years_training"
	TaskCriminalRecordCheck Task = "criminal_record_check"
	TaskHealth              Task = "health"
	TaskReferences          Task = "references"
	TaskPeopleInHome        Task = "people_in_home"
	TaskDeclaration         Task = "declaration"
	TaskPayment             Task = "payment"
)

// Tasks is the task list order.
var Tasks = []Task{
	TaskLoginDetails,
	TaskTypeOfChildcare,
	TaskPersonalDetails,
	TaskFirstAid,
	TaskEarlyYearsTraining,
	TaskCriminalRecordCheck,
	TaskHealth,
	TaskReferences,
	TaskPeopleInHome,
	TaskDeclaration,
	TaskPayment,
}

// ParseTask accepts task names in either snake or kebab case.
func ParseTask(s string) (Task, bool) {
	for _, t := range Tasks {
		if string(t) == s || t.Slug() == s {
			return t, true
		}
	}
	return "", false
}

// Slug is the task name as used in URLs.
func (t Task) Slug() string {
	b := []byte(t)
	for i, c := range b {
		if c == '_' {
			b[i] = '-'
		}
	}
	return string(b)
}

// TaskStatus is the per-section progress shown on the task list.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "NOT_STARTED"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskFlagged    TaskStatus = "FLAGGED"
	TaskWaiting    TaskStatus = "WAITING"
)

// Application is the aggregate for one applicant's registration.
type Application struct {
	ID     id.ApplicationID
	UserID id.UserID
	Status Status
	Tasks  map[Task]TaskStatus
	// Flags holds reviewer comments for tasks sent back to the applicant.
	Flags       map[Task]string
	HiddenTasks []Task
	RegisterURN string

	ReminderSentAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SubmittedAt    *time.Time
}

// NewApplication returns a draft with every task not started.
func NewApplication(appID id.ApplicationID, userID id.UserID, now time.Time) *Application {
	tasks := make(map[Task]TaskStatus, len(Tasks))
	for _, t := range Tasks {
		tasks[t] = TaskNotStarted
	}
	return &Application{
		ID:        appID,
		UserID:    userID,
		Status:    StatusDrafting,
		Tasks:     tasks,
		Flags:     map[Task]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a *Application) TaskStatus(t Task) TaskStatus {
	if s, ok := a.Tasks[t]; ok {
		return s
	}
	return TaskNotStarted
}

func (a *Application) IsHidden(t Task) bool {
	return slices.Contains(a.HiddenTasks, t)
}

// Done reports whether a task no longer blocks the declaration.
func (a *Application) Done(t Task) bool {
	return a.IsHidden(t) || a.TaskStatus(t) == TaskCompleted
}

// Editable returns an error unless the applicant may change sections.
func (a *Application) Editable() error {
	switch a.Status {
	case StatusDrafting, StatusFurtherInformation:
		return nil
	default:
		return dErrors.New(dErrors.CodeConflict, "this application has been submitted and can no longer be changed")
	}
}

// RecordSave applies the status of a saved page. Saving a flagged task clears its flag.
func (a *Application) RecordSave(t Task, status TaskStatus, now time.Time) {
	a.Tasks[t] = status
	delete(a.Flags, t)
	a.UpdatedAt = now
	a.ReminderSentAt = nil
}

// ReadyForDeclaration reports whether every visible task before the declaration is complete.
func (a *Application) ReadyForDeclaration() bool {
	for _, t := range Tasks {
		if t == TaskDeclaration {
			return true
		}
		if !a.Done(t) {
			return false
		}
	}
	return true
}

// Submit moves a paid draft into the review queue.
func (a *Application) Submit(now time.Time) error {
	if a.Status != StatusDrafting {
		return dErrors.New(dErrors.CodeConflict, "application has already been submitted")
	}
	if a.TaskStatus(TaskDeclaration) != TaskCompleted {
		return dErrors.New(dErrors.CodeInvariantViolation, "declaration must be completed before submission")
	}
	if !a.ReadyForDeclaration() {
		return dErrors.New(dErrors.CodeInvariantViolation, "every task must be completed before submission")
	}
	a.Status = StatusSubmitted
	a.Tasks[TaskPayment] = TaskCompleted
	a.SubmittedAt = &now
	a.UpdatedAt = now
	return nil
}

// StartReview records that a reviewer has picked the application up.
func (a *Application) StartReview(now time.Time) error {
	if a.Status != StatusSubmitted {
		return dErrors.New(dErrors.CodeConflict, "only submitted applications can be reviewed")
	}
	a.Status = StatusARCReview
	a.UpdatedAt = now
	return nil
}

// Flag sends a task back to the applicant with a comment.
func (a *Application) Flag(t Task, comment string, now time.Time) error {
	switch a.Status {
	case StatusSubmitted, StatusARCReview, StatusFurtherInformation:
	default:
		return dErrors.New(dErrors.CodeConflict, "only applications under review can be flagged")
	}
	if t == TaskPayment || t == TaskLoginDetails {
		return dErrors.New(dErrors.CodeBadRequest, "this task cannot be flagged")
	}
	a.Tasks[t] = TaskFlagged
	a.Flags[t] = comment
	a.Status = StatusFurtherInformation
	a.UpdatedAt = now
	return nil
}

// FlaggedTasks lists tasks still awaiting the applicant's changes.
func (a *Application) FlaggedTasks() []Task {
	var out []Task
	for _, t := range Tasks {
		if a.TaskStatus(t) == TaskFlagged {
			out = append(out, t)
		}
	}
	return out
}

// Resubmit returns an application to review once every flag is resolved.
func (a *Application) Resubmit(now time.Time) error {
	if a.Status != StatusFurtherInformation {
		return dErrors.New(dErrors.CodeConflict, "application is not awaiting further information")
	}
	if len(a.FlaggedTasks()) > 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "all flagged tasks must be updated before resubmitting")
	}
	if !a.ReadyForDeclaration() || a.TaskStatus(TaskDeclaration) != TaskCompleted {
		return dErrors.New(dErrors.CodeInvariantViolation, "all tasks must be completed before resubmitting")
	}
	a.Status = StatusARCReview
	a.UpdatedAt = now
	return nil
}

// Accept closes a review with no outstanding flags.
func (a *Application) Accept(now time.Time) error {
	if a.Status != StatusSubmitted && a.Status != StatusARCReview {
		return dErrors.New(dErrors.CodeConflict, "only applications under review can be accepted")
	}
	if len(a.FlaggedTasks()) > 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "application has flagged tasks")
	}
	a.Status = StatusAccepted
	a.UpdatedAt = now
	return nil
}

// TaskItem is one row of the task list.
type TaskItem struct {
	Task      Task       `json:"task"`
	Status    TaskStatus `json:"status"`
	Available bool       `json:"available"`
	FirstPage string     `json:"first_page,omitempty"`
	Comment   string     `json:"comment,omitempty"`
}

// TaskList returns the visible tasks in order with their availability.
// firstPage maps a task to the page that starts it.
func (a *Application) TaskList(firstPage func(Task) string) []TaskItem {
	items := make([]TaskItem, 0, len(Tasks))
	for _, t := range Tasks {
		if a.IsHidden(t) {
			continue
		}
		item := TaskItem{
			Task:      t,
			Status:    a.TaskStatus(t),
			Available: true,
			Comment:   a.Flags[t],
		}
		switch t {
		case TaskDeclaration:
			item.Available = a.ReadyForDeclaration()
		case TaskPayment:
			item.Available = a.TaskStatus(TaskDeclaration) == TaskCompleted && a.ReadyForDeclaration() && a.Status == StatusDrafting
		}
		if firstPage != nil {
			item.FirstPage = firstPage(t)
		}
		items = append(items, item)
	}
	return items
}

// View is the applicant facing summary of an application.
type View struct {
	ID          id.ApplicationID `json:"id"`
	Status      Status           `json:"status"`
	Tasks       []TaskItem       `json:"tasks"`
	RegisterURN string           `json:"register_urn,omitempty"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// SaveResult is returned for every saved page.
type SaveResult struct {
	Task     Task       `json:"task"`
	Status   TaskStatus `json:"status"`
	Next     string     `json:"next"`
	Outcome  string     `json:"outcome,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
}

// Facts are the details the sign in security question can ask about.
type Facts struct {
	DateOfBirth *time.Time
	Postcode    id.Postcode
}

// HealthCheck is the questionnaire link sent to an adult in the home.
// Only the hash of the link token is stored.
type HealthCheck struct {
	TokenHash     string
	ApplicationID id.ApplicationID
	AdultID       id.AdultID
	CompletedAt   *time.Time
}
