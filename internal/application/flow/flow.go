// Package flow is the wizard's step graph: which page follows which, per task,
// and how the task order skips hidden tasks.
package flow

import (
	"childminder/internal/application/models"
)

// Step is one saveable page.
type Step struct {
	Page string
	Task models.Task
	// Final pages complete the task when the whole section is valid.
	Final bool
	// Next returns the following page inside the task, or "" to leave the task.
	Next func(doc models.Section) string
}

var steps = []Step{
	{Page: models.PageTypeOfChildcare, Task: models.TaskTypeOfChildcare, Next: always(models.PageOvernightCare)},
	{Page: models.PageOvernightCare, Task: models.TaskTypeOfChildcare, Final: true},

	{Page: models.PagePersonalName, Task: models.TaskPersonalDetails, Next: always(models.PagePersonalDOB)},
	{Page: models.PagePersonalDOB, Task: models.TaskPersonalDetails, Next: always(models.PagePersonalHomeAddress)},
	{Page: models.PagePersonalHomeAddress, Task: models.TaskPersonalDetails, Next: always(models.PagePersonalChildcareLoc)},
	{Page: models.PagePersonalChildcareLoc, Task: models.TaskPersonalDetails, Next: afterChildcareLocation},
	{Page: models.PagePersonalChildcareAddress, Task: models.TaskPersonalDetails, Next: always(models.PagePersonalCircumstances)},
	{Page: models.PagePersonalCircumstances, Task: models.TaskPersonalDetails, Final: true},

	{Page: models.PageFirstAidTraining, Task: models.TaskFirstAid, Final: true, Next: afterFirstAid},

	{Page: models.PageEarlyYearsTraining, Task: models.TaskEarlyYearsTraining, Final: true},

	{Page: models.PageDBSNumber, Task: models.TaskCriminalRecordCheck, Final: true, Next: afterDBSNumber},
	{Page: models.PageDBSUpdateService, Task: models.TaskCriminalRecordCheck, Final: true, Next: afterUpdateService},

	{Page: models.PageHealth, Task: models.TaskHealth, Final: true},

	{Page: models.PageReferencesFirst, Task: models.TaskReferences, Next: always(models.PageReferencesSecond)},
	{Page: models.PageReferencesSecond, Task: models.TaskReferences, Final: true},

	{Page: models.PagePeopleAdults, Task: models.TaskPeopleInHome, Next: always(models.PagePeopleChildren)},
	{Page: models.PagePeopleChildren, Task: models.TaskPeopleInHome, Final: true},

	{Page: models.PageDeclaration, Task: models.TaskDeclaration, Final: true},
}

var byPage = func() map[string]Step {
	m := make(map[string]Step, len(steps))
	for _, s := range steps {
		m[s.Page] = s
	}
	return m
}()

// Lookup returns the step for a page.
func Lookup(page string) (Step, bool) {
	s, ok := byPage[page]
	return s, ok
}

// FirstPage is where a task starts.
func FirstPage(t models.Task) string {
	switch t {
	case models.TaskLoginDetails:
		return models.PageLoginDetails
	case models.TaskPayment:
		return models.PagePayment
	}
	for _, s := range steps {
		if s.Task == t {
			return s.Page
		}
	}
	return models.PageTaskList
}

// Next returns the page after saving page with doc. Leaving a finished task
// moves to the first page of the next task the applicant still has to do; an
// unfinished task sends the applicant back to its first page.
func Next(app *models.Application, page string, doc models.Section, finished bool) string {
	step, ok := byPage[page]
	if !ok {
		return models.PageTaskList
	}
	if step.Next != nil {
		if next := step.Next(doc); next != "" {
			return next
		}
	}
	if !step.Final {
		return models.PageTaskList
	}
	if !finished {
		return FirstPage(step.Task)
	}
	return NextTask(app, step.Task)
}

// NextTask returns the first page of the next visible, unfinished task after t.
func NextTask(app *models.Application, t models.Task) string {
	after := false
	for _, candidate := range models.Tasks {
		if candidate == t {
			after = true
			continue
		}
		if !after || app.IsHidden(candidate) || app.TaskStatus(candidate) == models.TaskCompleted {
			continue
		}
		switch candidate {
		case models.TaskDeclaration:
			if !app.ReadyForDeclaration() {
				return models.PageTaskList
			}
		case models.TaskPayment:
			if app.Status != models.StatusDrafting {
				return models.PageTaskList
			}
		}
		return FirstPage(candidate)
	}
	return models.PageTaskList
}

func always(page string) func(models.Section) string {
	return func(models.Section) string { return page }
}

func afterChildcareLocation(doc models.Section) string {
	if pd, ok := doc.(*models.PersonalDetails); ok && !pd.CaresAtHome() {
		return models.PagePersonalChildcareAddress
	}
	return models.PagePersonalCircumstances
}

func afterFirstAid(doc models.Section) string {
	if fa, ok := doc.(*models.FirstAid); ok && fa.Outcome == models.FirstAidRenew {
		return models.PageFirstAidRenew
	}
	return ""
}

func afterDBSNumber(doc models.Section) string {
	if c, ok := doc.(*models.CriminalRecordCheck); ok && !c.Recent {
		return models.PageDBSUpdateService
	}
	return ""
}

func afterUpdateService(doc models.Section) string {
	if c, ok := doc.(*models.CriminalRecordCheck); ok && c.OnUpdateService != nil && !*c.OnUpdateService {
		return models.PageDBSGetNew
	}
	return ""
}
