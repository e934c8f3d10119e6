package models

import (
	"strings"
	"time"

	dErrors "childminder/pkg/domain-errors"
)

// TrainingRoute is how the applicant meets the early years training requirement.
type TrainingRoute string

const (
	TrainingCourse    TrainingRoute = "course"
	TrainingIntention TrainingRoute = "intention"
)

type EarlyYearsTraining struct {
	Route      TrainingRoute `json:"route,omitempty"`
	CourseName string        `json:"course_name,omitempty"`
	CourseDate Date          `json:"course_date,omitempty"`
	// IntendToComplete confirms training will be done before registration.
	IntendToComplete *bool `json:"intend_to_complete,omitempty"`
}

func (s *EarlyYearsTraining) Task() Task { return TaskEarlyYearsTraining }

func (s *EarlyYearsTraining) Normalize() {
	s.CourseName = strings.TrimSpace(s.CourseName)
	if s.Route == TrainingIntention {
		s.CourseName, s.CourseDate = "", ""
	}
}

func (s *EarlyYearsTraining) ValidatePage(_ string, now time.Time) error {
	return s.Validate(now)
}

func (s *EarlyYearsTraining) Validate(now time.Time) error {
	errs := fieldErrors{}
	switch s.Route {
	case TrainingCourse:
		if s.CourseName == "" {
			errs.add("course_name", "Please enter the name of your course")
		} else if len(s.CourseName) > maxNameLength {
			errs.add("course_name", "Must be 100 characters or fewer")
		}
		validatePastDate("course_date", "the date you completed the course", s.CourseDate, now, errs)
	case TrainingIntention:
		if s.IntendToComplete == nil || !*s.IntendToComplete {
			errs.add("intend_to_complete", "You must complete training before you can register")
		}
	default:
		errs.add("route", "Please say whether you have done an early years course")
	}
	return dErrors.Validation(errs)
}
