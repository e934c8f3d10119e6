// Package postcode resolves UK postcodes to address lists.
package postcode

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"childminder/internal/integrations/providers"
	id "childminder/pkg/domain"
)

const ProviderID = "postcode"

// Address is a single delivery point.
type Address struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	Town     string `json:"town"`
	County   string `json:"county,omitempty"`
	Postcode string `json:"postcode"`
}

type lookupResponse struct {
	Results []struct {
		DPA struct {
			BuildingNumber string `json:"BUILDING_NUMBER"`
			BuildingName   string `json:"BUILDING_NAME"`
			Thoroughfare   string `json:"THOROUGHFARE_NAME"`
			Locality       string `json:"DEPENDENT_LOCALITY"`
			PostTown       string `json:"POST_TOWN"`
			Postcode       string `json:"POSTCODE"`
		} `json:"DPA"`
	} `json:"results"`
}

type Client struct {
	http   *providers.Client
	apiKey string
}

func New(baseURL, apiKey string, timeout time.Duration, opts ...providers.ClientOption) *Client {
	return &Client{http: providers.NewClient(ProviderID, baseURL, timeout, opts...), apiKey: apiKey}
}

// Lookup returns the addresses at a postcode. No matches is an empty slice, not an error.
func (c *Client) Lookup(ctx context.Context, pc id.Postcode) ([]Address, error) {
	q := url.Values{"postcode": {pc.String()}, "key": {c.apiKey}}
	var resp lookupResponse
	err := c.http.Do(ctx, "lookup", http.MethodGet, "/search/places/v1/postcode?"+q.Encode(), nil, &resp)
	if providers.GetCategory(err) == providers.ErrorNotFound {
		return []Address{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]Address, 0, len(resp.Results))
	for _, r := range resp.Results {
		d := r.DPA
		line1 := d.BuildingName
		street := d.Thoroughfare
		if d.BuildingNumber != "" {
			street = d.BuildingNumber + " " + d.Thoroughfare
		}
		line2 := ""
		if line1 == "" {
			line1 = street
		} else {
			line2 = street
		}
		out = append(out, Address{
			Line1:    line1,
			Line2:    line2,
			Town:     d.PostTown,
			County:   d.Locality,
			Postcode: d.Postcode,
		})
	}
	return out, nil
}
