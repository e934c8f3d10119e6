package service

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"time"

	"childminder/internal/application/flow"
	"childminder/internal/application/models"
	"childminder/internal/integrations/providers"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/requestcontext"
)

const firstAidExpiringWarning = "Your first aid certificate expires within 6 months"

// SavePage applies one wizard page to its section and returns the task status
// and the page to show next. A page that fails validation is not saved.
func (s *Service) SavePage(ctx context.Context, appID id.ApplicationID, page string, body json.RawMessage) (*models.SaveResult, error) {
	step, ok := flow.Lookup(page)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown page")
	}
	now := requestcontext.Now(ctx)

	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := app.Editable(); err != nil {
		return nil, err
	}
	if app.IsHidden(step.Task) {
		return nil, dErrors.New(dErrors.CodeConflict, "this task is not needed for your application")
	}
	if step.Task == models.TaskDeclaration && !app.ReadyForDeclaration() {
		return nil, dErrors.New(dErrors.CodeConflict, "complete every other task before the declaration")
	}

	doc, err := s.loadSection(ctx, appID, step.Task)
	if err != nil {
		return nil, err
	}
	prev, err := s.loadSection(ctx, appID, step.Task)
	if err != nil {
		return nil, err
	}
	if err := decodePage(body, doc); err != nil {
		return nil, err
	}
	doc.Normalize()
	if err := doc.ValidatePage(page, now); err != nil {
		s.metrics.IncPageRejected(string(step.Task))
		return nil, err
	}
	if err := s.beforeSave(ctx, appID, page, doc, prev); err != nil {
		s.metrics.IncPageRejected(string(step.Task))
		return nil, err
	}
	if d, ok := doc.(models.Deriver); ok {
		d.Derive(now)
	}

	status := taskStatus(step, doc, now)
	var pending []pendingCheck
	if ppl, ok := doc.(*models.PeopleInHome); ok && status == models.TaskCompleted {
		if pending, err = s.prepareHealthChecks(ppl); err != nil {
			return nil, err
		}
		if len(ppl.PendingHealthChecks()) > 0 {
			status = models.TaskWaiting
		}
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.saveSection(ctx, appID, doc, now); err != nil {
			return err
		}
		if len(pending) > 0 {
			if err := s.storeHealthChecks(ctx, appID, pending); err != nil {
				return err
			}
		}
		app.RecordSave(step.Task, status, now)
		if err := s.refreshHiddenTasks(ctx, app, doc); err != nil {
			return err
		}
		return s.update(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPageSaved(string(step.Task), string(status))
	_ = s.emit(ctx, audit.Event{
		Action:        string(audit.EventSectionSaved),
		UserID:        app.UserID,
		ApplicationID: app.ID,
		Reason:        page,
	})
	if step.Task == models.TaskCriminalRecordCheck && status == models.TaskWaiting {
		_ = s.emit(ctx, audit.Event{
			Action:        string(audit.EventDBSCheckWaiting),
			UserID:        app.UserID,
			ApplicationID: app.ID,
		})
	}
	if len(pending) > 0 {
		s.sendHealthChecks(ctx, app, pending)
	}

	result := &models.SaveResult{
		Task:   step.Task,
		Status: status,
		Next:   flow.Next(app, page, doc, status != models.TaskInProgress),
	}
	if fa, ok := doc.(*models.FirstAid); ok {
		result.Outcome = string(fa.Outcome)
		if fa.Outcome == models.FirstAidExpiringSoon {
			result.Warnings = append(result.Warnings, firstAidExpiringWarning)
		}
	}
	return result, nil
}

// decodePage merges the page's fields onto the stored document.
func decodePage(body json.RawMessage, doc models.Section) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// taskStatus is the status a save leaves the task in, before household checks.
func taskStatus(step flow.Step, doc models.Section, now time.Time) models.TaskStatus {
	if !step.Final || doc.Validate(now) != nil {
		return models.TaskInProgress
	}
	switch d := doc.(type) {
	case *models.FirstAid:
		if d.Outcome == models.FirstAidRenew {
			return models.TaskInProgress
		}
	case *models.CriminalRecordCheck:
		return d.Status()
	}
	return models.TaskCompleted
}

// beforeSave runs the checks and lookups that need more than the page itself.
func (s *Service) beforeSave(ctx context.Context, appID id.ApplicationID, page string, doc, prev models.Section) error {
	switch d := doc.(type) {
	case *models.CriminalRecordCheck:
		old := prev.(*models.CriminalRecordCheck)
		// the certificate only ever comes from the DBS service
		d.Certificate = old.Certificate
		if page != models.PageDBSNumber {
			return nil
		}
		if err := s.checkApplicantDBS(ctx, appID, d.DBSNumber); err != nil {
			return err
		}
		return s.lookupCertificate(ctx, d, old)
	case *models.PeopleInHome:
		d.CarryOver(prev.(*models.PeopleInHome))
		if page != models.PagePeopleAdults {
			return nil
		}
		return s.checkAdultDBS(ctx, appID, d)
	}
	return nil
}

// lookupCertificate asks the DBS service about a new certificate number.
// Changing the number discards the earlier update service answer.
func (s *Service) lookupCertificate(ctx context.Context, doc, prev *models.CriminalRecordCheck) error {
	if doc.DBSNumber == prev.DBSNumber && prev.Certificate != nil {
		return nil
	}
	doc.OnUpdateService = nil
	cert, err := s.dbs.Lookup(ctx, doc.DBSNumber)
	if providers.GetCategory(err) == providers.ErrorNotFound {
		doc.Certificate = &models.DBSCertificate{Found: false}
		return nil
	}
	if err != nil {
		return providers.ToDomain(err, "failed to check DBS certificate")
	}
	doc.Certificate = &models.DBSCertificate{
		Found:       true,
		Enhanced:    cert.Enhanced,
		BarredLists: cert.BarredLists,
		IssuedOn:    models.DateOf(cert.IssuedOn),
	}
	if cert.OnUpdateService {
		yes := true
		doc.OnUpdateService = &yes
	}
	return nil
}

func (s *Service) checkApplicantDBS(ctx context.Context, appID id.ApplicationID, number id.DBSNumber) error {
	doc, err := s.loadSection(ctx, appID, models.TaskPeopleInHome)
	if err != nil {
		return err
	}
	if slices.Contains(doc.(*models.PeopleInHome).DBSNumbers(), number) {
		return dErrors.Validation(map[string]string{
			"dbs_number": "This DBS number is already used by someone in your home",
		})
	}
	return nil
}

func (s *Service) checkAdultDBS(ctx context.Context, appID id.ApplicationID, ppl *models.PeopleInHome) error {
	doc, err := s.loadSection(ctx, appID, models.TaskCriminalRecordCheck)
	if err != nil {
		return err
	}
	own := doc.(*models.CriminalRecordCheck).DBSNumber
	if own.IsZero() {
		return nil
	}
	errs := map[string]string{}
	for i, a := range ppl.Adults {
		if a.DBSNumber == own {
			errs["adults."+strconv.Itoa(i)+".dbs_number"] = "This DBS number is the same as your own"
		}
	}
	return dErrors.Validation(errs)
}

// refreshHiddenTasks recomputes which tasks the applicant can skip after a save
// of type of childcare or personal details.
func (s *Service) refreshHiddenTasks(ctx context.Context, app *models.Application, saved models.Section) error {
	if t := saved.Task(); t != models.TaskTypeOfChildcare && t != models.TaskPersonalDetails {
		return nil
	}
	childcare, err := s.typeOfChildcare(ctx, app.ID)
	if err != nil {
		return err
	}
	personal, err := s.personalDetails(ctx, app.ID)
	if err != nil {
		return err
	}
	var hidden []models.Task
	if childcare.EightAndOverOnly() {
		hidden = append(hidden, models.TaskEarlyYearsTraining)
	}
	if !personal.CaresAtHome() {
		hidden = append(hidden, models.TaskPeopleInHome)
	}
	app.HiddenTasks = hidden
	return nil
}
