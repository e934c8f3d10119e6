package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	id "childminder/pkg/domain"
)

// Wizard pages.
const (
	PageTaskList     = "task-list"
	PageLoginDetails = "your-login-details"

	PageTypeOfChildcare = "type-of-childcare"
	PageOvernightCare   = "overnight-care"

	PagePersonalName             = "personal-details-name"
	PagePersonalDOB              = "personal-details-dob"
	PagePersonalHomeAddress      = "personal-details-home-address"
	PagePersonalChildcareLoc     = "personal-details-childcare-location"
	PagePersonalChildcareAddress = "personal-details-childcare-address"
	PagePersonalCircumstances    = "personal-details-circumstances"

	PageFirstAidTraining = "first-aid-training"
	PageFirstAidRenew    = "first-aid-renew"

	PageEarlyYearsTraining = "early-years-training"

	PageDBSNumber        = "dbs-number"
	PageDBSUpdateService = "dbs-update-service"
	PageDBSGetNew        = "dbs-get-new"

	PageHealth = "health"

	PageReferencesFirst  = "references-first"
	PageReferencesSecond = "references-second"

	PagePeopleAdults   = "people-in-home-adults"
	PagePeopleChildren = "people-in-home-children"

	PageDeclaration = "declaration"
	PagePayment     = "payment"
	PageSubmitted   = "application-submitted"
)

// Section is the persisted document behind one task. Pages decode their
// fields onto the stored document, so each page only validates its own fields.
type Section interface {
	Task() Task
	Normalize()
	ValidatePage(page string, now time.Time) error
	// Validate checks the whole section before it can be completed.
	Validate(now time.Time) error
}

// Deriver is implemented by sections with values computed from their fields.
type Deriver interface {
	Derive(now time.Time)
}

// NewSection returns an empty document for t. Login details and payment are
// owned by other services and have no document.
func NewSection(t Task) (Section, bool) {
	switch t {
	case TaskTypeOfChildcare:
		return &TypeOfChildcare{}, true
	case TaskPersonalDetails:
		return &PersonalDetails{}, true
	case TaskFirstAid:
		return &FirstAid{}, true
	case TaskEarlyYearsTraining:
		return &EarlyYearsTraining{}, true
	case TaskCriminalRecordCheck:
		return &CriminalRecordCheck{}, true
	case TaskHealth:
		return &Health{}, true
	case TaskReferences:
		return &References{}, true
	case TaskPeopleInHome:
		return &PeopleInHome{}, true
	case TaskDeclaration:
		return &Declaration{}, true
	default:
		return nil, false
	}
}

// Date is a calendar date in ISO form (2006-01-02).
type Date string

const dateLayout = "2006-01-02"

func (d Date) Time() (time.Time, bool) {
	if d == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, string(d))
	return t, err == nil
}

func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// AgeOn returns whole years between birth and now.
func AgeOn(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// Address is a UK postal address.
type Address struct {
	Line1    string      `json:"line1"`
	Line2    string      `json:"line2,omitempty"`
	Town     string      `json:"town"`
	County   string      `json:"county,omitempty"`
	Postcode id.Postcode `json:"postcode"`
}

func (a *Address) Normalize() {
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.Town = strings.TrimSpace(a.Town)
	a.County = strings.TrimSpace(a.County)
	if pc, err := id.ParsePostcode(string(a.Postcode)); err == nil {
		a.Postcode = pc
	}
}

func (a *Address) validate(prefix string, errs fieldErrors) {
	if a.Line1 == "" {
		errs.add(prefix+".line1", "Please enter the first line of the address")
	}
	if a.Town == "" {
		errs.add(prefix+".town", "Please enter the town or city")
	}
	if _, err := id.ParsePostcode(string(a.Postcode)); err != nil {
		errs.add(prefix+".postcode", "Please enter a valid postcode")
	}
}

// fieldErrors collects per-field messages; the first message for a field wins.
type fieldErrors map[string]string

func (e fieldErrors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

var namePattern = regexp.MustCompile(`^\p{L}[\p{L} '\-]*$`)

const maxNameLength = 100

func validateName(field, label, value string, required bool, errs fieldErrors) {
	switch {
	case value == "":
		if required {
			errs.add(field, "Please enter "+label)
		}
	case utf8.RuneCountInString(value) > maxNameLength:
		errs.add(field, "Must be 100 characters or fewer")
	case !namePattern.MatchString(value):
		errs.add(field, "Can only contain letters, spaces, hyphens and apostrophes")
	}
}

func cleanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
