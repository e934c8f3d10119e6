package models

import (
	"strings"
	"time"

	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/email"
	"childminder/pkg/phone"
)

const (
	minMonthsKnown = 12
	maxYearsKnown  = 100
)

type Referee struct {
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Relationship string   `json:"relationship"`
	YearsKnown   int      `json:"years_known"`
	MonthsKnown  int      `json:"months_known"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Address      *Address `json:"address,omitempty"`
}

func (r *Referee) normalize() {
	r.FirstName = cleanName(r.FirstName)
	r.LastName = cleanName(r.LastName)
	r.Relationship = strings.TrimSpace(r.Relationship)
	r.Email = email.Normalize(r.Email)
	r.Phone = phone.Normalize(r.Phone)
	if r.Address != nil {
		r.Address.Normalize()
	}
}

func (r *Referee) validate(prefix string, errs fieldErrors) {
	validateName(prefix+".first_name", "their first name", r.FirstName, true, errs)
	validateName(prefix+".last_name", "their last name", r.LastName, true, errs)
	if r.Relationship == "" {
		errs.add(prefix+".relationship", "Please say how you know this person")
	}
	switch {
	case r.YearsKnown < 0 || r.YearsKnown > maxYearsKnown || r.MonthsKnown < 0 || r.MonthsKnown > 11:
		errs.add(prefix+".years_known", "Please enter a valid length of time")
	case r.YearsKnown*12+r.MonthsKnown < minMonthsKnown:
		errs.add(prefix+".years_known", "You must have known your referee for at least 1 year")
	}
	if !email.Valid(r.Email) {
		errs.add(prefix+".email", "Please enter a valid email address")
	}
	if !phone.Valid(r.Phone) {
		errs.add(prefix+".phone", "Please enter a valid phone number")
	}
	if r.Address == nil {
		errs.add(prefix+".address", "Please enter their address")
	} else {
		r.Address.validate(prefix+".address", errs)
	}
}

// References holds the applicant's two referees.
type References struct {
	First  *Referee `json:"first,omitempty"`
	Second *Referee `json:"second,omitempty"`
}

func (s *References) Task() Task { return TaskReferences }

func (s *References) Normalize() {
	if s.First != nil {
		s.First.normalize()
	}
	if s.Second != nil {
		s.Second.normalize()
	}
}

func (s *References) ValidatePage(page string, _ time.Time) error {
	errs := fieldErrors{}
	switch page {
	case PageReferencesFirst:
		s.validateFirst(errs)
	case PageReferencesSecond:
		s.validateSecond(errs)
	}
	return dErrors.Validation(errs)
}

func (s *References) Validate(time.Time) error {
	errs := fieldErrors{}
	s.validateFirst(errs)
	s.validateSecond(errs)
	return dErrors.Validation(errs)
}

func (s *References) validateFirst(errs fieldErrors) {
	if s.First == nil {
		errs.add("first", "Please give details of your first referee")
		return
	}
	s.First.validate("first", errs)
}

func (s *References) validateSecond(errs fieldErrors) {
	if s.Second == nil {
		errs.add("second", "Please give details of your second referee")
		return
	}
	s.Second.validate("second", errs)
	if s.First != nil && s.First.Email != "" && s.First.Email == s.Second.Email {
		errs.add("second.email", "Your referees must be two different people")
	}
}
