package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestTypeOfChildcare_Derive(t *testing.T) {
	tests := []struct {
		name      string
		groups    []AgeGroup
		registers []Register
		fee       int
	}{
		{"early years", []AgeGroup{AgeZeroToFive}, []Register{RegisterEarlyYears}, FeeEarlyYearsPence},
		{"early years and compulsory", []AgeGroup{AgeFiveToEight, AgeZeroToFive},
			[]Register{RegisterEarlyYears, RegisterChildcareCompulsory}, FeeEarlyYearsPence},
		{"compulsory only", []AgeGroup{AgeFiveToEight}, []Register{RegisterChildcareCompulsory}, FeeChildcarePence},
		{"voluntary only", []AgeGroup{AgeEightAndOver}, []Register{RegisterChildcareVoluntary}, FeeChildcarePence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &TypeOfChildcare{AgeGroups: tt.groups}
			s.Normalize()
			s.Derive(now)
			assert.Equal(t, tt.registers, s.Registers)
			assert.Equal(t, tt.fee, s.FeePence)
		})
	}

	s := &TypeOfChildcare{AgeGroups: []AgeGroup{AgeEightAndOver, AgeEightAndOver}}
	s.Normalize()
	assert.True(t, s.EightAndOverOnly())
}

func TestTypeOfChildcare_Validate(t *testing.T) {
	s := &TypeOfChildcare{}
	err := s.ValidatePage(PageTypeOfChildcare, now)
	assert.Contains(t, dErrors.FieldsOf(err), "age_groups")

	s.AgeGroups = []AgeGroup{"teenagers"}
	assert.Contains(t, dErrors.FieldsOf(s.ValidatePage(PageTypeOfChildcare, now)), "age_groups")

	s.AgeGroups = []AgeGroup{AgeZeroToFive}
	require.NoError(t, s.ValidatePage(PageTypeOfChildcare, now))
	assert.Contains(t, dErrors.FieldsOf(s.Validate(now)), "overnight_care", "section is not complete yet")

	s.OvernightCare = ptr(false)
	assert.NoError(t, s.Validate(now))
}

func TestFirstAid_Derive(t *testing.T) {
	tests := []struct {
		course  string
		expiry  Date
		outcome FirstAidOutcome
	}{
		{"2025-01-10", "2028-01-10", FirstAidValid},
		{"2023-12-01", "2026-12-01", FirstAidExpiringSoon},
		{"2023-10-16", "2026-10-16", FirstAidRenew},
		{"2020-05-01", "2023-05-01", FirstAidRenew},
	}
	for _, tt := range tests {
		t.Run(tt.course, func(t *testing.T) {
			s := &FirstAid{CourseDate: Date(tt.course)}
			s.Derive(now)
			assert.Equal(t, tt.expiry, s.ExpiryDate)
			assert.Equal(t, tt.outcome, s.Outcome)
		})
	}
}

func TestFirstAid_CourseDateNotInFuture(t *testing.T) {
	s := &FirstAid{TrainingOrganisation: "Red Cross", CourseTitle: "Paediatric first aid", CourseDate: "2026-10-17"}
	assert.Contains(t, dErrors.FieldsOf(s.Validate(now)), "course_date")
	s.CourseDate = "2026-10-16"
	assert.NoError(t, s.Validate(now))
}

func TestPersonalDetails_Validate(t *testing.T) {
	s := &PersonalDetails{
		FirstName:           "  Mary-Jane ",
		LastName:            "O'Brien",
		DateOfBirth:         "1990-02-01",
		HomeAddress:         &Address{Line1: "1 High St", Town: "Leeds", Postcode: "ls11aa"},
		ChildcareAtHome:     ptr(true),
		WorkingInOtherHomes: ptr(false),
		LivedAbroad:         ptr(false),
		MilitaryBase:        ptr(false),
	}
	s.Normalize()
	assert.Equal(t, "Mary-Jane", s.FirstName)
	assert.Equal(t, id.Postcode("LS1 1AA"), s.HomeAddress.Postcode)
	require.NoError(t, s.Validate(now))

	s.FirstName = "M4ry"
	assert.Contains(t, dErrors.FieldsOf(s.ValidatePage(PagePersonalName, now)), "first_name")

	s.DateOfBirth = "2010-01-01"
	assert.Contains(t, dErrors.FieldsOf(s.ValidatePage(PagePersonalDOB, now)), "date_of_birth", "under 18")
	s.DateOfBirth = "1890-01-01"
	assert.Contains(t, dErrors.FieldsOf(s.ValidatePage(PagePersonalDOB, now)), "date_of_birth", "over 120")

	s.ChildcareAtHome = ptr(false)
	assert.Contains(t, dErrors.FieldsOf(s.Validate(now)), "childcare_address")
}

func TestAgeOn(t *testing.T) {
	birth := time.Date(2008, 10, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 17, AgeOn(birth, now), "birthday is tomorrow")
	assert.Equal(t, 18, AgeOn(birth, now.AddDate(0, 0, 1)))
}

func TestDBSCertificate_Acceptable(t *testing.T) {
	good := &DBSCertificate{Found: true, Enhanced: true, BarredLists: true, IssuedOn: "2026-08-01"}
	assert.True(t, good.Acceptable(now))

	old := *good
	old.IssuedOn = "2026-07-15"
	assert.False(t, old.Acceptable(now), "older than three months")

	basic := *good
	basic.Enhanced = false
	assert.False(t, basic.Acceptable(now))

	var missing *DBSCertificate
	assert.False(t, missing.Acceptable(now))
}

func TestCriminalRecordCheck_Status(t *testing.T) {
	c := &CriminalRecordCheck{DBSNumber: "0012 3456 7890"}
	c.Normalize()
	assert.Equal(t, id.DBSNumber("001234567890"), c.DBSNumber)
	assert.Equal(t, TaskInProgress, c.Status())

	c.OnUpdateService = ptr(false)
	assert.Equal(t, TaskWaiting, c.Status())
	c.OnUpdateService = ptr(true)
	assert.Equal(t, TaskCompleted, c.Status())

	c.OnUpdateService = nil
	c.Certificate = &DBSCertificate{Found: true, Enhanced: true, BarredLists: true, IssuedOn: "2026-10-01"}
	c.Derive(now)
	assert.Equal(t, TaskCompleted, c.Status())
	assert.NoError(t, c.Validate(now))
}

func TestHealth_DetailsRequiredWhenDeclared(t *testing.T) {
	s := &Health{HasConditions: ptr(true)}
	assert.Contains(t, dErrors.FieldsOf(s.Validate(now)), "details")
	s.Details = "Asthma, well controlled"
	assert.NoError(t, s.Validate(now))

	s = &Health{HasConditions: ptr(false), Details: "ignored"}
	s.Normalize()
	assert.Empty(t, s.Details)
}

func validReferee(email string) *Referee {
	return &Referee{
		FirstName: "Sam", LastName: "Jones", Relationship: "Neighbour",
		YearsKnown: 1, Email: email, Phone: "07700 900111",
		Address: &Address{Line1: "2 High St", Town: "Leeds", Postcode: "LS1 1AA"},
	}
}

func TestReferences_Validate(t *testing.T) {
	s := &References{First: validReferee("a@example.com"), Second: validReferee("A@example.com ")}
	s.Normalize()
	assert.Contains(t, dErrors.FieldsOf(s.Validate(now)), "second.email", "referees must differ")

	s.Second.Email = "b@example.com"
	assert.NoError(t, s.Validate(now))

	s.First.YearsKnown, s.First.MonthsKnown = 0, 11
	assert.Contains(t, dErrors.FieldsOf(s.ValidatePage(PageReferencesFirst, now)), "first.years_known")
	s.First.YearsKnown, s.First.MonthsKnown = 0, 12
	assert.Contains(t, dErrors.FieldsOf(s.ValidatePage(PageReferencesFirst, now)), "first.years_known", "months run 0 to 11")
}

func TestPeopleInHome(t *testing.T) {
	adult := func(email, dbs string) Adult {
		return Adult{FirstName: "Alex", LastName: "Smith", DateOfBirth: "1980-01-01",
			Relationship: "Partner", Email: email, DBSNumber: id.DBSNumber(dbs)}
	}

	t.Run("duplicate DBS numbers", func(t *testing.T) {
		s := &PeopleInHome{AdultsInHome: ptr(true), Adults: []Adult{
			adult("a@example.com", "111111111111"), adult("b@example.com", "1111-1111-1111"),
		}}
		s.Normalize()
		assert.Contains(t, dErrors.FieldsOf(s.ValidatePage(PagePeopleAdults, now)), "adults.1.dbs_number")
	})

	t.Run("children must be under 16", func(t *testing.T) {
		s := &PeopleInHome{ChildrenInHome: ptr(true), Children: []Child{{FirstName: "Kit", LastName: "Smith", DateOfBirth: "2008-01-01"}}}
		assert.Contains(t, dErrors.FieldsOf(s.ValidatePage(PagePeopleChildren, now)), "children.0.date_of_birth")
	})

	t.Run("carry over keeps health check progress", func(t *testing.T) {
		prev := &PeopleInHome{Adults: []Adult{adult("a@example.com", "111111111111")}}
		prev.CarryOver(nil)
		prev.Adults[0].HealthCheck = HealthCheckCompleted

		next := &PeopleInHome{Adults: []Adult{adult("a@example.com", "111111111111"), adult("b@example.com", "222222222222")}}
		next.CarryOver(prev)
		assert.Equal(t, prev.Adults[0].ID, next.Adults[0].ID)
		assert.Equal(t, HealthCheckCompleted, next.Adults[0].HealthCheck)
		assert.False(t, next.Adults[1].ID.IsNil())
		assert.Len(t, next.PendingHealthChecks(), 1)
	})
}

func TestDeclaration_AllStatementsRequired(t *testing.T) {
	s := &Declaration{AccurateInformation: true, NotifyChanges: true, AllowInspection: true, SuitabilityChecks: true}
	fields := dErrors.FieldsOf(s.Validate(now))
	assert.Contains(t, fields, "not_disqualified")
	assert.Contains(t, fields, "consent_to_share_details")
}

func TestApplication_Lifecycle(t *testing.T) {
	app := NewApplication(id.NewApplicationID(), id.NewUserID(), now)
	assert.Equal(t, StatusDrafting, app.Status)
	assert.NoError(t, app.Editable())

	err := app.Submit(now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation), "declaration not done")

	for _, task := range Tasks {
		if task != TaskPayment {
			app.RecordSave(task, TaskCompleted, now)
		}
	}
	require.NoError(t, app.Submit(now))
	assert.Equal(t, TaskCompleted, app.TaskStatus(TaskPayment))
	assert.Error(t, app.Editable())

	require.NoError(t, app.StartReview(now))
	require.NoError(t, app.Flag(TaskHealth, "Please add more detail", now))
	assert.Equal(t, StatusFurtherInformation, app.Status)
	assert.Equal(t, []Task{TaskHealth}, app.FlaggedTasks())
	assert.NoError(t, app.Editable())

	err = app.Resubmit(now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation), "flag outstanding")

	app.RecordSave(TaskHealth, TaskCompleted, now)
	assert.Empty(t, app.Flags)
	require.NoError(t, app.Resubmit(now))
	assert.Equal(t, StatusARCReview, app.Status)

	require.NoError(t, app.Accept(now))
	assert.Equal(t, StatusAccepted, app.Status)
}

func TestApplication_SubmitNeedsEveryEarlierTask(t *testing.T) {
	app := NewApplication(id.NewApplicationID(), id.NewUserID(), now)
	for _, task := range Tasks {
		if task != TaskPayment {
			app.RecordSave(task, TaskCompleted, now)
		}
	}
	app.RecordSave(TaskFirstAid, TaskInProgress, now)

	err := app.Submit(now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Equal(t, StatusDrafting, app.Status)

	app.RecordSave(TaskFirstAid, TaskCompleted, now)
	require.NoError(t, app.Submit(now))
}

func TestApplication_TaskList(t *testing.T) {
	app := NewApplication(id.NewApplicationID(), id.NewUserID(), now)
	app.HiddenTasks = []Task{TaskEarlyYearsTraining}

	items := app.TaskList(nil)
	assert.Len(t, items, len(Tasks)-1)
	for _, item := range items {
		assert.NotEqual(t, TaskEarlyYearsTraining, item.Task)
		switch item.Task {
		case TaskDeclaration, TaskPayment:
			assert.False(t, item.Available, item.Task)
		default:
			assert.True(t, item.Available, item.Task)
		}
	}
}

func TestParseTask(t *testing.T) {
	task, ok := ParseTask("people-in-home")
	assert.True(t, ok)
	assert.Equal(t, TaskPeopleInHome, task)
	_, ok = ParseTask("unknown")
	assert.False(t, ok)
}
