package models

import (
	"strings"
	"time"

	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/email"
	"childminder/pkg/phone"
	cmstrings "childminder/pkg/platform/strings"
)

// Stage is carried in login JWTs. A pending token only allows the second
// factor endpoints; a full token is a signed-in session.
type Stage string

const (
	StageSMS  Stage = "sms"
	StageFull Stage = "full"
)

// User is an applicant account. Login secrets are stored hashed.
type User struct {
	ID              id.UserID
	Email           string
	Mobile          string
	AdditionalPhone string

	LinkHash      string
	LinkExpiresAt *time.Time
	// LinkRequests counts magic link emails sent since LinkWindowStart.
	LinkRequests    int
	LinkWindowStart *time.Time

	SMSCodeHash          string
	SMSCodeExpiresAt     *time.Time
	SMSResendAttempts    int
	SMSResendWindowStart *time.Time

	LastDevice        string
	DeviceFingerprint string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LinkExpired reports whether the current magic link is unusable at now.
func (u *User) LinkExpired(now time.Time) bool {
	return u.LinkExpiresAt == nil || !now.Before(*u.LinkExpiresAt)
}

// ConsumeLink clears the magic link so it cannot be replayed.
func (u *User) ConsumeLink() {
	u.LinkHash = ""
	u.LinkExpiresAt = nil
}

// CodeExpired reports whether the current SMS code is unusable at now.
func (u *User) CodeExpired(now time.Time) bool {
	return u.SMSCodeHash == "" || u.SMSCodeExpiresAt == nil || !now.Before(*u.SMSCodeExpiresAt)
}

// ClearCode drops the SMS code and resets the resend counter after a successful sign in.
func (u *User) ClearCode() {
	u.SMSCodeHash = ""
	u.SMSCodeExpiresAt = nil
	u.SMSResendAttempts = 0
	u.SMSResendWindowStart = nil
}

// RollResendWindow starts a fresh resend window once the previous one has elapsed.
func (u *User) RollResendWindow(now time.Time, window time.Duration) {
	if u.SMSResendWindowStart == nil || now.Sub(*u.SMSResendWindowStart) >= window {
		start := now
		u.SMSResendWindowStart = &start
		u.SMSResendAttempts = 0
	}
}

// RollLinkWindow does the same for magic link requests.
func (u *User) RollLinkWindow(now time.Time, window time.Duration) {
	if u.LinkWindowStart == nil || now.Sub(*u.LinkWindowStart) >= window {
		start := now
		u.LinkWindowStart = &start
		u.LinkRequests = 0
	}
}

// Failures is the lockout state for a user's second factor attempts.
type Failures struct {
	Count       int
	WindowStart time.Time
	LockedUntil *time.Time
}

// IsLockedAt reports whether a hard lock is in force.
func (f *Failures) IsLockedAt(now time.Time) bool {
	return f != nil && f.LockedUntil != nil && now.Before(*f.LockedUntil)
}

// QuestionKind names the fact the applicant is asked to confirm.
type QuestionKind string

const (
	QuestionMobile      QuestionKind = "mobile_number"
	QuestionDateOfBirth QuestionKind = "date_of_birth"
	QuestionPostcode    QuestionKind = "postcode"
)

// SecurityFacts are the details a security question can be asked about.
type SecurityFacts struct {
	DateOfBirth *time.Time
	Postcode    id.Postcode
}

// -----------------------------------------------------------------------------
// Requests
// -----------------------------------------------------------------------------

type RequestLinkRequest struct {
	Email string `json:"email"`
}

func (r *RequestLinkRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
}

func (r *RequestLinkRequest) Validate() error {
	if r.Email == "" {
		return dErrors.Validation(map[string]string{"email": "Please enter an email address"})
	}
	if !email.Valid(r.Email) {
		return dErrors.Validation(map[string]string{"email": "Please enter a valid email address"})
	}
	return nil
}

type VerifyCodeRequest struct {
	Code string `json:"code"`
}

func (r *VerifyCodeRequest) Normalize() {
	r.Code = cmstrings.DigitsOnly(strings.TrimSpace(r.Code))
}

func (r *VerifyCodeRequest) Validate() error {
	if len(r.Code) != CodeLength || strings.Trim(r.Code, "0123456789") != "" {
		return dErrors.Validation(map[string]string{"code": "The code must be 5 digits"})
	}
	return nil
}

// CodeLength is the number of digits in an SMS code.
const CodeLength = 5

type AnswerRequest struct {
	Answer string `json:"answer"`
}

func (r *AnswerRequest) Normalize() {
	r.Answer = strings.TrimSpace(r.Answer)
}

func (r *AnswerRequest) Validate() error {
	if r.Answer == "" {
		return dErrors.Validation(map[string]string{"answer": "Please give an answer"})
	}
	return nil
}

// LoginDetailsRequest is the "your login details" page.
type LoginDetailsRequest struct {
	Email           string `json:"email"`
	Mobile          string `json:"mobile_number"`
	AdditionalPhone string `json:"additional_phone,omitempty"`
}

func (r *LoginDetailsRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
	r.Mobile = NormalizePhone(r.Mobile)
	r.AdditionalPhone = NormalizePhone(r.AdditionalPhone)
}

func (r *LoginDetailsRequest) Validate() error {
	fields := map[string]string{}
	if r.Email == "" {
		fields["email"] = "Please enter an email address"
	} else if !email.Valid(r.Email) {
		fields["email"] = "Please enter a valid email address"
	}
	if r.Mobile == "" {
		fields["mobile_number"] = "Please enter a mobile number"
	} else if !phone.ValidMobile(r.Mobile) {
		fields["mobile_number"] = "Please enter a UK mobile number, like 07700 900 982"
	}
	if r.AdditionalPhone != "" && !phone.Valid(r.AdditionalPhone) {
		fields["additional_phone"] = "Please enter a valid phone number"
	}
	return dErrors.Validation(fields)
}

// NormalizePhone is the form used for stored and compared phone numbers.
func NormalizePhone(s string) string {
	return phone.Normalize(s)
}

// -----------------------------------------------------------------------------
// Results
// -----------------------------------------------------------------------------

// LinkResult is returned after a valid magic link.
type LinkResult struct {
	Stage        Stage     `json:"stage"`
	PendingToken string    `json:"pending_token,omitempty"`
	SessionToken string    `json:"session_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Next         string    `json:"next"`
}

type ResendResult struct {
	RemainingResends int    `json:"remaining_resends"`
	Next             string `json:"next"`
}

type SessionResult struct {
	SessionToken  string           `json:"session_token"`
	SessionID     id.SessionID     `json:"-"`
	ApplicationID id.ApplicationID `json:"application_id"`
	ExpiresAt     time.Time        `json:"expires_at"`
	Next          string           `json:"next"`
}

type Question struct {
	Kind   QuestionKind `json:"kind"`
	Prompt string       `json:"prompt"`
}

type LoginDetails struct {
	Email           string `json:"email"`
	Mobile          string `json:"mobile_number"`
	AdditionalPhone string `json:"additional_phone,omitempty"`
}

type SaveResult struct {
	Next string `json:"next"`
}
