package audit

import (
	"context"
	"time"

	id "childminder/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose and decides
// how strictly they must be persisted.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: account
	// creation, submission, payment, reviewer decisions. Persistence is fail-closed.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers login failures, lockouts and revocations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine progress such as saved sections.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Category      EventCategory
	Timestamp     time.Time
	UserID        id.UserID
	ApplicationID id.ApplicationID
	Subject       string
	Action        string
	Reason        string
	// Email is masked before it reaches an event.
	Email     string
	RequestID string
	// ActorID is set when a reviewer acts on an applicant's application.
	ActorID string
}

type AuditEvent string

const (
	// Login events
	EventUserCreated            AuditEvent = "user_created"
	EventLoginLinkSent          AuditEvent = "login_link_sent"
	EventLoginLinkRejected      AuditEvent = "login_link_rejected"
	EventSMSCodeSent            AuditEvent = "sms_code_sent"
	EventSMSCodeFailed          AuditEvent = "sms_code_failed"
	EventSMSResendsExhausted    AuditEvent = "sms_resends_exhausted"
	EventSecurityQuestionFailed AuditEvent = "security_question_failed"
	EventLoginLockoutTriggered  AuditEvent = "login_lockout_triggered"
	EventSessionCreated         AuditEvent = "session_created"
	EventSessionRevoked         AuditEvent = "session_revoked"

	// Application events
	EventSectionSaved           AuditEvent = "section_saved"
	EventDBSCheckWaiting        AuditEvent = "dbs_check_waiting"
	EventAdultHealthCheckSent   AuditEvent = "adult_health_check_sent"
	EventAdultHealthCheckDone   AuditEvent = "adult_health_check_completed"
	EventApplicationSubmitted   AuditEvent = "application_submitted"
	EventApplicationResubmitted AuditEvent = "application_resubmitted"
	EventApplicationRegistered  AuditEvent = "application_registered"

	// Payment events
	EventPaymentSucceeded AuditEvent = "payment_succeeded"
	EventPaymentFailed    AuditEvent = "payment_failed"

	// Review events
	EventTaskFlagged         AuditEvent = "task_flagged"
	EventApplicationAccepted AuditEvent = "application_accepted"

	// Reminder events
	EventReminderSent       AuditEvent = "inactivity_reminder_sent"
	EventApplicationExpired AuditEvent = "application_expired"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:            CategoryCompliance,
	EventApplicationSubmitted:   CategoryCompliance,
	EventApplicationResubmitted: CategoryCompliance,
	EventApplicationRegistered:  CategoryCompliance,
	EventPaymentSucceeded:       CategoryCompliance,
	EventTaskFlagged:            CategoryCompliance,
	EventApplicationAccepted:    CategoryCompliance,
	EventApplicationExpired:     CategoryCompliance,

	EventLoginLinkRejected:      CategorySecurity,
	EventSMSCodeFailed:          CategorySecurity,
	EventSMSResendsExhausted:    CategorySecurity,
	EventSecurityQuestionFailed: CategorySecurity,
	EventLoginLockoutTriggered:  CategorySecurity,
	EventSessionRevoked:         CategorySecurity,
	EventPaymentFailed:          CategorySecurity,

	EventLoginLinkSent:        CategoryOperations,
	EventSMSCodeSent:          CategoryOperations,
	EventSessionCreated:       CategoryOperations,
	EventSectionSaved:         CategoryOperations,
	EventDBSCheckWaiting:      CategoryOperations,
	EventAdultHealthCheckSent: CategoryOperations,
	EventAdultHealthCheckDone: CategoryOperations,
	EventReminderSent:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}

// Emitter is what services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
