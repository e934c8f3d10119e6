package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
)

func TestCardDetailsValidate(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	valid := func() CardDetails {
		return CardDetails{
			CardType:       "VISA",
			CardNumber:     "4111-1111-1111-1111",
			ExpiryMonth:    10,
			ExpiryYear:     26,
			CardholderName: "  Ada   Lovelace ",
			SecurityCode:   "123",
		}
	}

	t.Run("normalises and accepts a valid card", func(t *testing.T) {
		c := valid()
		c.Normalize()
		require.NoError(t, c.Validate(now))
		assert.Equal(t, CardVisa, c.CardType)
		assert.Equal(t, "4111111111111111", c.CardNumber)
		assert.Equal(t, 2026, c.ExpiryYear)
		assert.Equal(t, "Ada Lovelace", c.CardholderName)
	})

	cases := map[string]struct {
		mutate func(*CardDetails)
		field  string
	}{
		"luhn failure":         {func(c *CardDetails) { c.CardNumber = "4111111111111112" }, "card_number"},
		"letters in number":    {func(c *CardDetails) { c.CardNumber = "4111abcd11111111" }, "card_number"},
		"amex length for visa": {func(c *CardDetails) { c.CardNumber = "378282246310005" }, "card_number"},
		"unknown card type":    {func(c *CardDetails) { c.CardType = "diners" }, "card_type"},
		"month out of range":   {func(c *CardDetails) { c.ExpiryMonth = 13 }, "expiry_month"},
		"expired last month":   {func(c *CardDetails) { c.ExpiryMonth = 9 }, "expiry_year"},
		"expired last year":    {func(c *CardDetails) { c.ExpiryYear = 2025 }, "expiry_year"},
		"missing name":         {func(c *CardDetails) { c.CardholderName = " " }, "cardholder_name"},
		"tabs for a name":      {func(c *CardDetails) { c.CardholderName = "\t\t" }, "cardholder_name"},
		"short security code":  {func(c *CardDetails) { c.SecurityCode = "12" }, "security_code"},
		"letter security code": {func(c *CardDetails) { c.SecurityCode = "12a" }, "security_code"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			c.Normalize()
			tc.mutate(&c)
			err := c.Validate(now)
			require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Contains(t, dErrors.FieldsOf(err), tc.field)
		})
	}

	t.Run("amex with four digit code", func(t *testing.T) {
		c := CardDetails{CardType: CardAmex, CardNumber: "378282246310005", ExpiryMonth: 1, ExpiryYear: 2030, CardholderName: "A B", SecurityCode: "1234"}
		assert.NoError(t, c.Validate(now))
	})
}

func TestPaymentLifecycle(t *testing.T) {
	now := time.Now()
	appID := id.NewApplicationID()
	p := NewPayment(appID, 3500, now)
	assert.Equal(t, "CM-"+appID.String(), p.OrderCode)
	assert.Equal(t, StatusPending, p.Status)

	assert.True(t, dErrors.HasCode(p.Retry(3500, now), dErrors.CodeConflict))

	p.MarkFailed("REFUSED", now)
	require.NoError(t, p.Retry(10300, now))
	assert.Equal(t, 2, p.Attempts)
	assert.Equal(t, "CM-"+appID.String()+"-2", p.OrderCode)
	assert.Equal(t, 10300, p.AmountPence)
	assert.Empty(t, p.FailureReason)

	p.MarkPaid("ref", now)
	res := p.Result("application-submitted")
	assert.Equal(t, StatusPaid, res.Status)
	assert.Equal(t, "ref", res.Reference)
}
