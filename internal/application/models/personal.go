package models

import (
	"time"

	dErrors "childminder/pkg/domain-errors"
)

const (
	minApplicantAge = 18
	maxAge          = 120
)

type PersonalDetails struct {
	FirstName   string `json:"first_name,omitempty"`
	MiddleNames string `json:"middle_names,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DateOfBirth Date   `json:"date_of_birth,omitempty"`

	HomeAddress      *Address `json:"home_address,omitempty"`
	ChildcareAtHome  *bool    `json:"childcare_address_same_as_home,omitempty"`
	ChildcareAddress *Address `json:"childcare_address,omitempty"`

	WorkingInOtherHomes *bool `json:"working_in_other_childminder_homes,omitempty"`
	LivedAbroad         *bool `json:"lived_abroad,omitempty"`
	MilitaryBase        *bool `json:"lived_on_military_base,omitempty"`
}

func (s *PersonalDetails) Task() Task { return TaskPersonalDetails }

func (s *PersonalDetails) Normalize() {
	s.FirstName = cleanName(s.FirstName)
	s.MiddleNames = cleanName(s.MiddleNames)
	s.LastName = cleanName(s.LastName)
	if s.HomeAddress != nil {
		s.HomeAddress.Normalize()
	}
	if s.ChildcareAtHome != nil && *s.ChildcareAtHome {
		s.ChildcareAddress = nil
	}
	if s.ChildcareAddress != nil {
		s.ChildcareAddress.Normalize()
	}
}

// CaresAtHome reports whether childcare happens at the applicant's home.
// Unanswered counts as home.
func (s *PersonalDetails) CaresAtHome() bool {
	return s.ChildcareAtHome == nil || *s.ChildcareAtHome
}

func (s *PersonalDetails) ValidatePage(page string, now time.Time) error {
	errs := fieldErrors{}
	switch page {
	case PagePersonalName:
		s.validateName(errs)
	case PagePersonalDOB:
		s.validateDOB(now, errs)
	case PagePersonalHomeAddress:
		s.validateHome(errs)
	case PagePersonalChildcareLoc:
		if s.ChildcareAtHome == nil {
			errs.add("childcare_address_same_as_home", "Please say whether you will work from home")
		}
	case PagePersonalChildcareAddress:
		s.validateChildcareAddress(errs)
	case PagePersonalCircumstances:
		s.validateCircumstances(errs)
	}
	return dErrors.Validation(errs)
}

func (s *PersonalDetails) Validate(now time.Time) error {
	errs := fieldErrors{}
	s.validateName(errs)
	s.validateDOB(now, errs)
	s.validateHome(errs)
	if s.ChildcareAtHome == nil {
		errs.add("childcare_address_same_as_home", "Please say whether you will work from home")
	} else if !*s.ChildcareAtHome {
		s.validateChildcareAddress(errs)
	}
	s.validateCircumstances(errs)
	return dErrors.Validation(errs)
}

func (s *PersonalDetails) validateName(errs fieldErrors) {
	validateName("first_name", "your first name", s.FirstName, true, errs)
	validateName("middle_names", "your middle names", s.MiddleNames, false, errs)
	validateName("last_name", "your last name", s.LastName, true, errs)
}

func (s *PersonalDetails) validateDOB(now time.Time, errs fieldErrors) {
	dob, ok := s.DateOfBirth.Time()
	switch {
	case !ok:
		errs.add("date_of_birth", "Please enter a valid date of birth")
	case dob.After(now):
		errs.add("date_of_birth", "Date of birth must be in the past")
	case AgeOn(dob, now) < minApplicantAge:
		errs.add("date_of_birth", "You must be 18 or older to be a childminder")
	case AgeOn(dob, now) > maxAge:
		errs.add("date_of_birth", "Please check the year of your date of birth")
	}
}

func (s *PersonalDetails) validateHome(errs fieldErrors) {
	if s.HomeAddress == nil {
		errs.add("home_address", "Please enter your home address")
		return
	}
	s.HomeAddress.validate("home_address", errs)
}

func (s *PersonalDetails) validateChildcareAddress(errs fieldErrors) {
	if s.ChildcareAddress == nil {
		errs.add("childcare_address", "Please enter the childcare address")
		return
	}
	s.ChildcareAddress.validate("childcare_address", errs)
}

func (s *PersonalDetails) validateCircumstances(errs fieldErrors) {
	if s.WorkingInOtherHomes == nil {
		errs.add("working_in_other_childminder_homes", "Please say whether you work in another childminder's home")
	}
	if s.LivedAbroad == nil {
		errs.add("lived_abroad", "Please say whether you have lived abroad in the last 5 years")
	}
	if s.MilitaryBase == nil {
		errs.add("lived_on_military_base", "Please say whether you have lived or worked on a British military base abroad")
	}
}
