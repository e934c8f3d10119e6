// Package worldpay talks to the card payment gateway.
package worldpay

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"childminder/internal/integrations/providers"
)

const ProviderID = "worldpay"

// Outcome is the gateway's view of an order.
type Outcome string

const (
	OutcomeAuthorised Outcome = "AUTHORISED"
	OutcomeRefused    Outcome = "REFUSED"
	OutcomePending    Outcome = "SENT_FOR_AUTHORISATION"
	OutcomeError      Outcome = "ERROR"
)

type Card struct {
	Type        string `json:"paymentMethod"`
	Number      string `json:"cardNumber"`
	HolderName  string `json:"cardHolderName"`
	ExpiryMonth int    `json:"expiryMonth"`
	ExpiryYear  int    `json:"expiryYear"`
	CVC         string `json:"cvc"`
}

// Order is a single authorisation request. OrderCode is the idempotency key on the gateway side.
type Order struct {
	OrderCode   string `json:"orderCode"`
	AmountPence int    `json:"amount"`
	Currency    string `json:"currencyCode"`
	Description string `json:"orderDescription"`
	Card        Card   `json:"paymentDetails"`
}

// Result is what the gateway reports for an order.
type Result struct {
	OrderCode string  `json:"orderCode"`
	Outcome   Outcome `json:"lastEvent"`
	Reference string  `json:"paymentReference"`
	Reason    string  `json:"refusalReason,omitempty"`
}

type Client struct {
	http     *providers.Client
	merchant string
}

func New(baseURL, merchantCode, apiKey string, timeout time.Duration, opts ...providers.ClientOption) *Client {
	opts = append([]providers.ClientOption{providers.WithAuthorizer(providers.BearerKey(apiKey))}, opts...)
	return &Client{http: providers.NewClient(ProviderID, baseURL, timeout, opts...), merchant: merchantCode}
}

// Authorise charges the card for the order.
func (c *Client) Authorise(ctx context.Context, order Order) (*Result, error) {
	if order.Currency == "" {
		order.Currency = "GBP"
	}
	var res Result
	path := "/merchants/" + url.PathEscape(c.merchant) + "/orders"
	if err := c.http.Do(ctx, "authorise", http.MethodPost, path, order, &res); err != nil {
		return nil, err
	}
	return normalise(order.OrderCode, res)
}

// Query fetches the current state of an earlier order. Unknown orders are
// a ProviderError with category not_found.
func (c *Client) Query(ctx context.Context, orderCode string) (*Result, error) {
	var res Result
	path := "/merchants/" + url.PathEscape(c.merchant) + "/orders/" + url.PathEscape(orderCode)
	if err := c.http.Do(ctx, "query", http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return normalise(orderCode, res)
}

func normalise(orderCode string, res Result) (*Result, error) {
	if res.OrderCode == "" {
		res.OrderCode = orderCode
	}
	if res.OrderCode != orderCode {
		return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "order code mismatch", nil)
	}
	switch res.Outcome {
	case OutcomeAuthorised, OutcomeRefused, OutcomePending, OutcomeError:
		return &res, nil
	default:
		return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "unknown lastEvent "+string(res.Outcome), nil)
	}
}
