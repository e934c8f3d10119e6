package models

import (
	"strconv"
	"strings"
	"time"

	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/email"
)

const adultAge = 16

// HealthCheckStatus tracks the health questionnaire sent to an adult in the home.
type HealthCheckStatus string

const (
	HealthCheckNotSent   HealthCheckStatus = "NOT_SENT"
	HealthCheckSent      HealthCheckStatus = "SENT"
	HealthCheckCompleted HealthCheckStatus = "COMPLETED"
)

type Adult struct {
	ID           id.AdultID        `json:"id"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	DateOfBirth  Date              `json:"date_of_birth"`
	Relationship string            `json:"relationship"`
	Email        string            `json:"email"`
	DBSNumber    id.DBSNumber      `json:"dbs_number"`
	HealthCheck  HealthCheckStatus `json:"health_check"`
}

type Child struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth Date   `json:"date_of_birth"`
}

type PeopleInHome struct {
	AdultsInHome   *bool   `json:"adults_in_home,omitempty"`
	Adults         []Adult `json:"adults,omitempty"`
	ChildrenInHome *bool   `json:"children_in_home,omitempty"`
	Children       []Child `json:"children,omitempty"`
}

func (s *PeopleInHome) Task() Task { return TaskPeopleInHome }

func (s *PeopleInHome) Normalize() {
	if s.AdultsInHome != nil && !*s.AdultsInHome {
		s.Adults = nil
	}
	if s.ChildrenInHome != nil && !*s.ChildrenInHome {
		s.Children = nil
	}
	for i := range s.Adults {
		a := &s.Adults[i]
		a.FirstName = cleanName(a.FirstName)
		a.LastName = cleanName(a.LastName)
		a.Relationship = strings.TrimSpace(a.Relationship)
		a.Email = email.Normalize(a.Email)
		if n, err := id.ParseDBSNumber(string(a.DBSNumber)); err == nil {
			a.DBSNumber = n
		}
	}
	for i := range s.Children {
		c := &s.Children[i]
		c.FirstName = cleanName(c.FirstName)
		c.LastName = cleanName(c.LastName)
	}
}

// CarryOver keeps ids and health check progress for adults that were already
// on the previous document, matched by email and DBS number. New adults get fresh ids.
func (s *PeopleInHome) CarryOver(prev *PeopleInHome) {
	for i := range s.Adults {
		a := &s.Adults[i]
		a.ID, a.HealthCheck = id.AdultID{}, HealthCheckNotSent
		if prev != nil {
			for _, old := range prev.Adults {
				if old.Email == a.Email && old.DBSNumber == a.DBSNumber && !old.ID.IsNil() {
					a.ID, a.HealthCheck = old.ID, old.HealthCheck
					break
				}
			}
		}
		if a.ID.IsNil() {
			a.ID = id.NewAdultID()
		}
	}
}

// PendingHealthChecks lists adults who have not completed their questionnaire.
func (s *PeopleInHome) PendingHealthChecks() []Adult {
	var out []Adult
	for _, a := range s.Adults {
		if a.HealthCheck != HealthCheckCompleted {
			out = append(out, a)
		}
	}
	return out
}

// DBSNumbers returns the adults' certificate numbers.
func (s *PeopleInHome) DBSNumbers() []id.DBSNumber {
	out := make([]id.DBSNumber, 0, len(s.Adults))
	for _, a := range s.Adults {
		if !a.DBSNumber.IsZero() {
			out = append(out, a.DBSNumber)
		}
	}
	return out
}

func (s *PeopleInHome) ValidatePage(page string, now time.Time) error {
	errs := fieldErrors{}
	switch page {
	case PagePeopleAdults:
		s.validateAdults(now, errs)
	case PagePeopleChildren:
		s.validateChildren(now, errs)
	}
	return dErrors.Validation(errs)
}

func (s *PeopleInHome) Validate(now time.Time) error {
	errs := fieldErrors{}
	s.validateAdults(now, errs)
	s.validateChildren(now, errs)
	return dErrors.Validation(errs)
}

func (s *PeopleInHome) validateAdults(now time.Time, errs fieldErrors) {
	if s.AdultsInHome == nil {
		errs.add("adults_in_home", "Please say whether anyone aged 16 or over lives or works in your home")
		return
	}
	if *s.AdultsInHome && len(s.Adults) == 0 {
		errs.add("adults", "Please give details of the adults in your home")
		return
	}
	seen := map[id.DBSNumber]bool{}
	for i, a := range s.Adults {
		prefix := "adults." + strconv.Itoa(i)
		validateName(prefix+".first_name", "their first name", a.FirstName, true, errs)
		validateName(prefix+".last_name", "their last name", a.LastName, true, errs)
		dob, ok := a.DateOfBirth.Time()
		switch {
		case !ok:
			errs.add(prefix+".date_of_birth", "Please enter a valid date of birth")
		case AgeOn(dob, now) < adultAge:
			errs.add(prefix+".date_of_birth", "Adults must be 16 or older, add younger people as children")
		case AgeOn(dob, now) > maxAge:
			errs.add(prefix+".date_of_birth", "Please check the year of their date of birth")
		}
		if a.Relationship == "" {
			errs.add(prefix+".relationship", "Please say how they are related to you")
		}
		if !email.Valid(a.Email) {
			errs.add(prefix+".email", "Please enter a valid email address")
		}
		if _, err := id.ParseDBSNumber(string(a.DBSNumber)); err != nil {
			errs.add(prefix+".dbs_number", "Please enter the 12 digit number from their DBS certificate")
		} else if seen[a.DBSNumber] {
			errs.add(prefix+".dbs_number", "Each adult must have a different DBS certificate number")
		}
		seen[a.DBSNumber] = true
	}
}

func (s *PeopleInHome) validateChildren(now time.Time, errs fieldErrors) {
	if s.ChildrenInHome == nil {
		errs.add("children_in_home", "Please say whether any children under 16 live in your home")
		return
	}
	if *s.ChildrenInHome && len(s.Children) == 0 {
		errs.add("children", "Please give details of the children in your home")
		return
	}
	for i, c := range s.Children {
		prefix := "children." + strconv.Itoa(i)
		validateName(prefix+".first_name", "their first name", c.FirstName, true, errs)
		validateName(prefix+".last_name", "their last name", c.LastName, true, errs)
		dob, ok := c.DateOfBirth.Time()
		switch {
		case !ok:
			errs.add(prefix+".date_of_birth", "Please enter a valid date of birth")
		case dob.After(now):
			errs.add(prefix+".date_of_birth", "Date of birth must be in the past")
		case AgeOn(dob, now) >= adultAge:
			errs.add(prefix+".date_of_birth", "Children must be under 16, add older people as adults")
		}
	}
}
