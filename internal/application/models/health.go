package models

import (
	"strings"
	"time"
	"unicode/utf8"

	dErrors "childminder/pkg/domain-errors"
)

const maxHealthDetails = 1000

type Health struct {
	HasConditions *bool  `json:"has_conditions,omitempty"`
	Details       string `json:"details,omitempty"`
}

func (s *Health) Task() Task { return TaskHealth }

func (s *Health) Normalize() {
	s.Details = strings.TrimSpace(s.Details)
	if s.HasConditions != nil && !*s.HasConditions {
		s.Details = ""
	}
}

func (s *Health) ValidatePage(_ string, now time.Time) error {
	return s.Validate(now)
}

func (s *Health) Validate(time.Time) error {
	errs := fieldErrors{}
	switch {
	case s.HasConditions == nil:
		errs.add("has_conditions", "Please say whether you have any health conditions that could affect your childminding")
	case *s.HasConditions && s.Details == "":
		errs.add("details", "Please give details of your health conditions")
	case utf8.RuneCountInString(s.Details) > maxHealthDetails:
		errs.add("details", "Must be 1000 characters or fewer")
	}
	return dErrors.Validation(errs)
}
