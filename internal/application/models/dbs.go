package models

import (
	"time"

	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
)

// certificateMaxAge is how recent a certificate must be to be accepted without the update service.
const certificateMaxAge = 3

// DBSCertificate is the snapshot of a DBS lookup.
type DBSCertificate struct {
	Found       bool `json:"found"`
	Enhanced    bool `json:"enhanced"`
	BarredLists bool `json:"barred_lists"`
	IssuedOn    Date `json:"issued_on,omitempty"`
}

// Acceptable reports whether the certificate is enhanced with barred list checks
// and issued within the last three months.
func (c *DBSCertificate) Acceptable(now time.Time) bool {
	if c == nil || !c.Found || !c.Enhanced || !c.BarredLists {
		return false
	}
	issued, ok := c.IssuedOn.Time()
	if !ok {
		return false
	}
	return !issued.Before(truncateDay(now).AddDate(0, -certificateMaxAge, 0))
}

type CriminalRecordCheck struct {
	DBSNumber       id.DBSNumber    `json:"dbs_number,omitempty"`
	Certificate     *DBSCertificate `json:"certificate,omitempty"`
	Recent          bool            `json:"recent,omitempty"`
	OnUpdateService *bool           `json:"on_update_service,omitempty"`
}

func (s *CriminalRecordCheck) Task() Task { return TaskCriminalRecordCheck }

func (s *CriminalRecordCheck) Normalize() {
	if n, err := id.ParseDBSNumber(string(s.DBSNumber)); err == nil {
		s.DBSNumber = n
	}
}

// Derive refreshes Recent from the stored lookup.
func (s *CriminalRecordCheck) Derive(now time.Time) {
	s.Recent = s.Certificate.Acceptable(now)
}

func (s *CriminalRecordCheck) ValidatePage(page string, _ time.Time) error {
	errs := fieldErrors{}
	switch page {
	case PageDBSNumber:
		s.validateNumber(errs)
	case PageDBSUpdateService:
		if s.OnUpdateService == nil {
			errs.add("on_update_service", "Please say whether you are on the DBS update service")
		}
	}
	return dErrors.Validation(errs)
}

func (s *CriminalRecordCheck) Validate(time.Time) error {
	errs := fieldErrors{}
	s.validateNumber(errs)
	if !s.Recent && s.OnUpdateService == nil {
		errs.add("on_update_service", "Please say whether you are on the DBS update service")
	}
	return dErrors.Validation(errs)
}

func (s *CriminalRecordCheck) validateNumber(errs fieldErrors) {
	if _, err := id.ParseDBSNumber(string(s.DBSNumber)); err != nil {
		errs.add("dbs_number", "Please enter the 12 digit number from your DBS certificate")
	}
}

// Status is the task status for a fully answered check.
func (s *CriminalRecordCheck) Status() TaskStatus {
	switch {
	case s.Recent:
		return TaskCompleted
	case s.OnUpdateService == nil:
		return TaskInProgress
	case *s.OnUpdateService:
		return TaskCompleted
	default:
		return TaskWaiting
	}
}
