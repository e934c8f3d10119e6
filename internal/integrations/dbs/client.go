// Package dbs looks up criminal record certificates held by the Disclosure and Barring Service.
package dbs

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"childminder/internal/integrations/providers"
	id "childminder/pkg/domain"
)

const ProviderID = "dbs"

// Certificate is what the DBS service knows about a certificate number.
type Certificate struct {
	Number          id.DBSNumber
	IssuedOn        time.Time
	Enhanced        bool
	BarredLists     bool
	OnUpdateService bool
}

type certificateResponse struct {
	CertificateNumber string `json:"certificate_number"`
	DateOfIssue       string `json:"date_of_issue"`
	CertificateType   string `json:"certificate_type"`
	ChildrensBarred   bool   `json:"childrens_barred_list_checked"`
	UpdateService     bool   `json:"update_service_subscribed"`
}

// Client queries the DBS lookup API.
type Client struct {
	http *providers.Client
}

func New(baseURL, apiKey string, timeout time.Duration, opts ...providers.ClientOption) *Client {
	opts = append([]providers.ClientOption{providers.WithAuthorizer(providers.BearerKey(apiKey))}, opts...)
	return &Client{http: providers.NewClient(ProviderID, baseURL, timeout, opts...)}
}

// Lookup returns the certificate record. An unknown number is a ProviderError
// with category not_found.
func (c *Client) Lookup(ctx context.Context, number id.DBSNumber) (*Certificate, error) {
	var resp certificateResponse
	path := "/api/v1/certificates/" + url.PathEscape(number.String())
	if err := c.http.Do(ctx, "lookup", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return parseCertificate(number, resp)
}

func parseCertificate(number id.DBSNumber, resp certificateResponse) (*Certificate, error) {
	issued, err := time.Parse("2006-01-02", resp.DateOfIssue)
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "invalid date_of_issue", err)
	}
	if resp.CertificateNumber != "" && resp.CertificateNumber != number.String() {
		return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "certificate number mismatch", nil)
	}
	return &Certificate{
		Number:          number,
		IssuedOn:        issued,
		Enhanced:        resp.CertificateType == "enhanced",
		BarredLists:     resp.ChildrensBarred,
		OnUpdateService: resp.UpdateService,
	}, nil
}
