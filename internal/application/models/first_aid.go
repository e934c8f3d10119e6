package models

import (
	"strings"
	"time"

	dErrors "childminder/pkg/domain-errors"
)

// FirstAidOutcome classifies a certificate against today's date.
type FirstAidOutcome string

const (
	FirstAidValid        FirstAidOutcome = "VALID"
	FirstAidExpiringSoon FirstAidOutcome = "EXPIRING_SOON"
	FirstAidRenew        FirstAidOutcome = "RENEW"
)

const (
	firstAidValidYears    = 3
	firstAidWarningMonths = 6
)

type FirstAid struct {
	TrainingOrganisation string `json:"training_organisation,omitempty"`
	CourseTitle          string `json:"course_title,omitempty"`
	CourseDate           Date   `json:"course_date,omitempty"`

	ExpiryDate Date            `json:"expiry_date,omitempty"`
	Outcome    FirstAidOutcome `json:"outcome,omitempty"`
}

func (s *FirstAid) Task() Task { return TaskFirstAid }

func (s *FirstAid) Normalize() {
	s.TrainingOrganisation = strings.TrimSpace(s.TrainingOrganisation)
	s.CourseTitle = strings.TrimSpace(s.CourseTitle)
}

// Derive computes the certificate expiry and how it compares with now.
func (s *FirstAid) Derive(now time.Time) {
	course, ok := s.CourseDate.Time()
	if !ok {
		s.ExpiryDate, s.Outcome = "", ""
		return
	}
	expiry := course.AddDate(firstAidValidYears, 0, 0)
	s.ExpiryDate = DateOf(expiry)
	today := truncateDay(now)
	switch {
	case !today.Before(expiry):
		s.Outcome = FirstAidRenew
	case expiry.Before(today.AddDate(0, firstAidWarningMonths, 0)):
		s.Outcome = FirstAidExpiringSoon
	default:
		s.Outcome = FirstAidValid
	}
}

func (s *FirstAid) ValidatePage(page string, now time.Time) error {
	if page != PageFirstAidTraining {
		return nil
	}
	return s.Validate(now)
}

func (s *FirstAid) Validate(now time.Time) error {
	errs := fieldErrors{}
	if s.TrainingOrganisation == "" {
		errs.add("training_organisation", "Please enter the training organisation")
	} else if len(s.TrainingOrganisation) > maxNameLength {
		errs.add("training_organisation", "Must be 100 characters or fewer")
	}
	if s.CourseTitle == "" {
		errs.add("course_title", "Please enter the title of your course")
	} else if len(s.CourseTitle) > maxNameLength {
		errs.add("course_title", "Must be 100 characters or fewer")
	}
	validatePastDate("course_date", "the date you completed the course", s.CourseDate, now, errs)
	return dErrors.Validation(errs)
}

func validatePastDate(field, label string, d Date, now time.Time, errs fieldErrors) {
	t, ok := d.Time()
	switch {
	case !ok:
		errs.add(field, "Please enter "+label)
	case t.After(truncateDay(now)):
		errs.add(field, "Date must not be in the future")
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
