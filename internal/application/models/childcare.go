package models

import (
	"slices"
	"time"

	dErrors "childminder/pkg/domain-errors"
)

// AgeGroup is an age band of children the applicant will care for.
type AgeGroup string

const (
	AgeZeroToFive   AgeGroup = "0-5"
	AgeFiveToEight  AgeGroup = "5-8"
	AgeEightAndOver AgeGroup = "8+"
)

var ageGroups = []AgeGroup{AgeZeroToFive, AgeFiveToEight, AgeEightAndOver}

// Register is an Ofsted register the applicant will join.
type Register string

const (
	RegisterEarlyYears          Register = "EARLY_YEARS_REGISTER"
	RegisterChildcareCompulsory Register = "CHILDCARE_REGISTER_COMPULSORY"
	RegisterChildcareVoluntary  Register = "CHILDCARE_REGISTER_VOLUNTARY"
)

// Registration fees in pence.
const (
	FeeEarlyYearsPence = 3500
	FeeChildcarePence  = 10300
)

type TypeOfChildcare struct {
	AgeGroups     []AgeGroup `json:"age_groups"`
	OvernightCare *bool      `json:"overnight_care,omitempty"`

	Registers []Register `json:"registers,omitempty"`
	FeePence  int        `json:"fee_pence,omitempty"`
}

func (s *TypeOfChildcare) Task() Task { return TaskTypeOfChildcare }

// Normalize drops duplicates and keeps age groups in band order.
func (s *TypeOfChildcare) Normalize() {
	var out []AgeGroup
	for _, g := range ageGroups {
		if slices.Contains(s.AgeGroups, g) {
			out = append(out, g)
		}
	}
	for _, g := range s.AgeGroups {
		// unknown values are kept for validation to report
		if !slices.Contains(ageGroups, g) && !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	s.AgeGroups = out
}

// Derive works out the registers and fee from the age groups.
func (s *TypeOfChildcare) Derive(time.Time) {
	s.Registers = nil
	for _, g := range s.AgeGroups {
		switch g {
		case AgeZeroToFive:
			s.Registers = append(s.Registers, RegisterEarlyYears)
		case AgeFiveToEight:
			s.Registers = append(s.Registers, RegisterChildcareCompulsory)
		case AgeEightAndOver:
			s.Registers = append(s.Registers, RegisterChildcareVoluntary)
		}
	}
	switch {
	case len(s.Registers) == 0:
		s.FeePence = 0
	case slices.Contains(s.Registers, RegisterEarlyYears):
		s.FeePence = FeeEarlyYearsPence
	default:
		s.FeePence = FeeChildcarePence
	}
}

// EightAndOverOnly reports whether the applicant only cares for children aged 8 and over.
func (s *TypeOfChildcare) EightAndOverOnly() bool {
	return len(s.AgeGroups) == 1 && s.AgeGroups[0] == AgeEightAndOver
}

func (s *TypeOfChildcare) ValidatePage(page string, _ time.Time) error {
	errs := fieldErrors{}
	switch page {
	case PageTypeOfChildcare:
		s.validateAgeGroups(errs)
	case PageOvernightCare:
		if s.OvernightCare == nil {
			errs.add("overnight_care", "Please say whether you will look after children overnight")
		}
	}
	return dErrors.Validation(errs)
}

func (s *TypeOfChildcare) Validate(time.Time) error {
	errs := fieldErrors{}
	s.validateAgeGroups(errs)
	if s.OvernightCare == nil {
		errs.add("overnight_care", "Please say whether you will look after children overnight")
	}
	return dErrors.Validation(errs)
}

func (s *TypeOfChildcare) validateAgeGroups(errs fieldErrors) {
	if len(s.AgeGroups) == 0 {
		errs.add("age_groups", "Please select at least one age group")
		return
	}
	for _, g := range s.AgeGroups {
		if !slices.Contains(ageGroups, g) {
			errs.add("age_groups", "Please select a valid age group")
		}
	}
}
