package models

import (
	"time"

	dErrors "childminder/pkg/domain-errors"
)

type Declaration struct {
	AccurateInformation   bool `json:"accurate_information"`
	NotifyChanges         bool `json:"notify_changes"`
	AllowInspection       bool `json:"allow_inspection"`
	SuitabilityChecks     bool `json:"suitability_checks"`
	NotDisqualified       bool `json:"not_disqualified"`
	ConsentToShareDetails bool `json:"consent_to_share_details"`
}

func (s *Declaration) Task() Task { return TaskDeclaration }

func (s *Declaration) Normalize() {}

func (s *Declaration) ValidatePage(_ string, now time.Time) error {
	return s.Validate(now)
}

func (s *Declaration) Validate(time.Time) error {
	errs := fieldErrors{}
	confirm := func(field string, ok bool) {
		if !ok {
			errs.add(field, "You must confirm this statement")
		}
	}
	confirm("accurate_information", s.AccurateInformation)
	confirm("notify_changes", s.NotifyChanges)
	confirm("allow_inspection", s.AllowInspection)
	confirm("suitability_checks", s.SuitabilityChecks)
	confirm("not_disqualified", s.NotDisqualified)
	if !s.ConsentToShareDetails {
		errs.add("consent_to_share_details", "You must agree to share your information")
	}
	return dErrors.Validation(errs)
}
