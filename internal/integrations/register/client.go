// Package register submits paid applications to the national childcare register.
package register

import (
	"context"
	"net/http"
	"time"

	"childminder/internal/integrations/providers"
	id "childminder/pkg/domain"
)

const ProviderID = "register"

// Submission is the summary the register needs to open a case.
type Submission struct {
	ApplicationID id.ApplicationID `json:"application_reference"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	DateOfBirth   string           `json:"date_of_birth"`
	Postcode      string           `json:"postcode"`
	Email         string           `json:"email"`
	Registers     []string         `json:"registers"`
	SubmittedAt   time.Time        `json:"submitted_at"`
}

type submitResponse struct {
	URN string `json:"urn"`
}

type Client struct {
	http *providers.Client
}

func New(baseURL, apiKey string, timeout time.Duration, opts ...providers.ClientOption) *Client {
	opts = append([]providers.ClientOption{providers.WithAuthorizer(providers.BearerKey(apiKey))}, opts...)
	return &Client{http: providers.NewClient(ProviderID, baseURL, timeout, opts...)}
}

// Submit registers the application and returns its unique reference number.
// The register treats a repeated application reference as the same case.
func (c *Client) Submit(ctx context.Context, s Submission) (string, error) {
	var resp submitResponse
	if err := c.http.Do(ctx, "submit", http.MethodPost, "/api/v1/applications", s, &resp); err != nil {
		return "", err
	}
	if resp.URN == "" {
		return "", providers.NewProviderError(providers.ErrorBadData, ProviderID, "response missing urn", nil)
	}
	return resp.URN, nil
}
