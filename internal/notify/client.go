// Package notify sends email and SMS through GOV.UK Notify.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"childminder/internal/integrations/providers"
	"childminder/pkg/email"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_sender.go -package=mocks Sender

const ProviderID = "notify"

// Sender is the notification gateway used by every service.
type Sender interface {
	SendEmail(ctx context.Context, msg Message) (string, error)
	SendSMS(ctx context.Context, msg Message) (string, error)
}

// Message addresses one template to one recipient.
type Message struct {
	TemplateID      string
	To              string
	Personalisation map[string]string
	// Reference is echoed back by Notify and shows up in its delivery reports.
	Reference string
}

type emailRequest struct {
	EmailAddress    string            `json:"email_address"`
	TemplateID      string            `json:"template_id"`
	Personalisation map[string]string `json:"personalisation,omitempty"`
	Reference       string            `json:"reference,omitempty"`
}

type smsRequest struct {
	PhoneNumber     string            `json:"phone_number"`
	TemplateID      string            `json:"template_id"`
	Personalisation map[string]string `json:"personalisation,omitempty"`
	Reference       string            `json:"reference,omitempty"`
}

type notificationResponse struct {
	ID string `json:"id"`
}

// Client is the HTTP Sender.
type Client struct {
	http *providers.Client
}

// ErrInvalidAPIKey is returned for keys not in Notify's "name-serviceid-secret" shape.
var ErrInvalidAPIKey = errors.New("notify api key must end with <service id>-<secret key>")

// New builds a Notify client from a full API key.
func New(baseURL, apiKey string, timeout time.Duration, opts ...providers.ClientOption) (*Client, error) {
	serviceID, secret, err := splitKey(apiKey)
	if err != nil {
		return nil, err
	}
	opts = append([]providers.ClientOption{providers.WithAuthorizer(jwtAuthorizer(serviceID, secret, time.Now))}, opts...)
	return &Client{http: providers.NewClient(ProviderID, baseURL, timeout, opts...)}, nil
}

// splitKey extracts the two trailing UUIDs of a Notify API key.
func splitKey(key string) (serviceID, secret string, err error) {
	const uuidLen = 36
	if len(key) < 2*uuidLen+1 {
		return "", "", ErrInvalidAPIKey
	}
	secret = key[len(key)-uuidLen:]
	serviceID = key[len(key)-2*uuidLen-1 : len(key)-uuidLen-1]
	if key[len(key)-uuidLen-1] != '-' {
		return "", "", ErrInvalidAPIKey
	}
	return serviceID, secret, nil
}

// jwtAuthorizer signs a fresh token per request. Notify rejects tokens with
// an iat more than 30 seconds old.
func jwtAuthorizer(serviceID, secret string, now func() time.Time) providers.Authorizer {
	return func(req *http.Request) error {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": serviceID,
			"iat": now().Unix(),
		})
		signed, err := token.SignedString([]byte(secret))
		if err != nil {
			return fmt.Errorf("sign notify token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+signed)
		return nil
	}
}

func (c *Client) SendEmail(ctx context.Context, msg Message) (string, error) {
	var resp notificationResponse
	err := c.http.Do(ctx, "email", http.MethodPost, "/v2/notifications/email", emailRequest{
		EmailAddress:    msg.To,
		TemplateID:      msg.TemplateID,
		Personalisation: msg.Personalisation,
		Reference:       msg.Reference,
	}, &resp)
	return resp.ID, err
}

func (c *Client) SendSMS(ctx context.Context, msg Message) (string, error) {
	var resp notificationResponse
	err := c.http.Do(ctx, "sms", http.MethodPost, "/v2/notifications/sms", smsRequest{
		PhoneNumber:     msg.To,
		TemplateID:      msg.TemplateID,
		Personalisation: msg.Personalisation,
		Reference:       msg.Reference,
	}, &resp)
	return resp.ID, err
}

// LogSender writes notifications to the log instead of sending them. Used
// when no Notify key is configured so magic links and codes are visible locally.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) SendEmail(ctx context.Context, msg Message) (string, error) {
	s.Logger.InfoContext(ctx, "email not sent (notify disabled)",
		"to", email.Mask(msg.To), "template_id", msg.TemplateID, "personalisation", msg.Personalisation)
	return "", nil
}

func (s LogSender) SendSMS(ctx context.Context, msg Message) (string, error) {
	s.Logger.InfoContext(ctx, "sms not sent (notify disabled)",
		"template_id", msg.TemplateID, "personalisation", msg.Personalisation)
	return "", nil
}
