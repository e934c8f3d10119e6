package models

import (
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

// Payment is the single payment record of an application. A failed payment
// is retried on the same record under a new order code.
type Payment struct {
	ID               id.PaymentID
	ApplicationID    id.ApplicationID
	OrderCode        string
	AmountPence      int
	Status           Status
	Attempts         int
	GatewayReference string
	FailureReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderCode is the gateway idempotency key for an attempt. The first attempt
// uses CM-<application id>.
func OrderCode(appID id.ApplicationID, attempt int) string {
	code := "CM-" + appID.String()
	if attempt > 1 {
		code += "-" + strconv.Itoa(attempt)
	}
	return code
}

func NewPayment(appID id.ApplicationID, amountPence int, now time.Time) *Payment {
	return &Payment{
		ID:            id.NewPaymentID(),
		ApplicationID: appID,
		OrderCode:     OrderCode(appID, 1),
		AmountPence:   amountPence,
		Status:        StatusPending,
		Attempts:      1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Retry starts a new attempt after a failure.
func (p *Payment) Retry(amountPence int, now time.Time) error {
	if p.Status != StatusFailed {
		return dErrors.New(dErrors.CodeConflict, "only failed payments can be retried")
	}
	p.Attempts++
	p.OrderCode = OrderCode(p.ApplicationID, p.Attempts)
	p.AmountPence = amountPence
	p.Status = StatusPending
	p.FailureReason = ""
	p.UpdatedAt = now
	return nil
}

func (p *Payment) MarkPaid(reference string, now time.Time) {
	p.Status = StatusPaid
	p.GatewayReference = reference
	p.FailureReason = ""
	p.UpdatedAt = now
}

func (p *Payment) MarkFailed(reason string, now time.Time) {
	p.Status = StatusFailed
	p.FailureReason = reason
	p.UpdatedAt = now
}

type CardType string

const (
	CardVisa       CardType = "visa"
	CardMastercard CardType = "mastercard"
	CardAmex       CardType = "american_express"
	CardMaestro    CardType = "maestro"
)

// cardLengths lists the valid primary account number lengths per card type.
var cardLengths = map[CardType][]int{
	CardVisa:       {13, 16, 19},
	CardMastercard: {16},
	CardAmex:       {15},
	CardMaestro:    {12, 13, 14, 15, 16, 17, 18, 19},
}

const maxCardholderName = 100

// CardDetails is the payment page.
type CardDetails struct {
	CardType       CardType `json:"card_type"`
	CardNumber     string   `json:"card_number"`
	ExpiryMonth    int      `json:"expiry_month"`
	ExpiryYear     int      `json:"expiry_year"`
	CardholderName string   `json:"cardholder_name"`
	SecurityCode   string   `json:"security_code"`
}

func (c *CardDetails) Normalize() {
	c.CardType = CardType(strings.ToLower(strings.TrimSpace(string(c.CardType))))
	c.CardNumber = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, c.CardNumber)
	c.CardholderName = strings.Join(strings.Fields(c.CardholderName), " ")
	c.SecurityCode = strings.TrimSpace(c.SecurityCode)
	if c.ExpiryYear > 0 && c.ExpiryYear < 100 {
		c.ExpiryYear += 2000
	}
}

func (c *CardDetails) Validate(now time.Time) error {
	errs := map[string]string{}
	lengths, known := cardLengths[c.CardType]
	if !known {
		errs["card_type"] = "Please select a card type"
	}
	switch {
	case !digitsOnly(c.CardNumber) || !luhn(c.CardNumber):
		errs["card_number"] = "Please check the number on your card"
	case known && !slices.Contains(lengths, len(c.CardNumber)):
		errs["card_number"] = "The card number is the wrong length for this card type"
	}
	switch {
	case c.ExpiryMonth < 1 || c.ExpiryMonth > 12:
		errs["expiry_month"] = "Please enter a valid expiry month"
	case c.ExpiryYear < now.Year() || (c.ExpiryYear == now.Year() && c.ExpiryMonth < int(now.Month())):
		errs["expiry_year"] = "Check the expiry date or use a different card"
	}
	if strings.TrimSpace(c.CardholderName) == "" {
		errs["cardholder_name"] = "Please enter the name on your card"
	} else if utf8.RuneCountInString(c.CardholderName) > maxCardholderName {
		errs["cardholder_name"] = "Must be 100 characters or fewer"
	}
	if n := len(c.SecurityCode); n < 3 || n > 4 || !digitsOnly(c.SecurityCode) {
		errs["security_code"] = "Please enter the 3 or 4 digit security code"
	}
	return dErrors.Validation(errs)
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// luhn reports whether a digit string passes the mod 10 checksum.
func luhn(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Result is returned to the applicant after a payment attempt.
type Result struct {
	Status      Status    `json:"status"`
	OrderCode   string    `json:"order_code"`
	AmountPence int       `json:"amount_pence"`
	Reference   string    `json:"reference,omitempty"`
	Next        string    `json:"next"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Payment) Result(next string) *Result {
	return &Result{
		Status:      p.Status,
		OrderCode:   p.OrderCode,
		AmountPence: p.AmountPence,
		Reference:   p.GatewayReference,
		Next:        next,
		UpdatedAt:   p.UpdatedAt,
	}
}
