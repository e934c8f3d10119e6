package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"childminder/pkg/platform/circuit"
)

const tracerName = "childminder/internal/integrations"

// maxBody caps how much of a provider response is read.
const maxBody = 1 << 20

// Authorizer decorates outbound requests with credentials.
type Authorizer func(req *http.Request) error

// BearerKey sends the API key as a bearer token.
func BearerKey(key string) Authorizer {
	return func(req *http.Request) error {
		if key != "" {
			req.Header.Set("Authorization", "Bearer "+key)
		}
		return nil
	}
}

// Client is the shared JSON-over-HTTP caller used by every integration. It
// records a span, metrics and breaker state for each call and normalises
// failures into ProviderError.
type Client struct {
	providerID string
	baseURL    string
	http       *http.Client
	auth       Authorizer
	breaker    *circuit.Breaker
	metrics    *Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithAuthorizer(a Authorizer) ClientOption {
	return func(cl *Client) {
		cl.auth = a
	}
}

func WithBreaker(b *circuit.Breaker) ClientOption {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func WithMetrics(m *Metrics) ClientOption {
	return func(cl *Client) {
		cl.metrics = m
	}
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient builds a provider client. The timeout applies per request.
func NewClient(providerID, baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		providerID: providerID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		auth:       func(*http.Request) error { return nil },
		breaker:    circuit.New(providerID),
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the provider id used in errors, spans and metrics.
func (c *Client) ID() string {
	return c.providerID
}

// Do sends in as JSON (when non-nil) and decodes a 2xx body into out (when non-nil).
func (c *Client) Do(ctx context.Context, operation, method, path string, in, out any) error {
	ctx, span := c.tracer.Start(ctx, c.providerID+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.id", c.providerID),
			attribute.String("http.method", method),
		))
	defer span.End()

	start := time.Now()
	err := c.do(ctx, method, path, in, out)
	c.observe(operation, start, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(GetCategory(err)))
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if !c.breaker.Allow() {
		return NewProviderError(ErrorCircuitOpen, c.providerID, "circuit open", nil)
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return NewProviderError(ErrorInternal, c.providerID, "encode request", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return NewProviderError(ErrorInternal, c.providerID, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.auth(req); err != nil {
		return NewProviderError(ErrorAuthentication, c.providerID, "authorize request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure()
		return NewProviderError(CategoryForTransport(err), c.providerID, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		c.recordFailure()
		return NewProviderError(CategoryForTransport(err), c.providerID, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		category := CategoryForStatus(resp.StatusCode)
		if category == ErrorProviderOutage || category == ErrorTimeout {
			c.recordFailure()
		} else {
			c.recordSuccess()
		}
		return NewProviderError(category, c.providerID,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), &StatusError{Status: resp.StatusCode, Body: raw})
	}
	c.recordSuccess()

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return NewProviderError(ErrorBadData, c.providerID, "decode response", err)
	}
	return nil
}

func (c *Client) recordFailure() {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.Warn("provider circuit opened", "provider", c.providerID)
		c.setBreakerGauge(1)
	}
}

func (c *Client) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("provider circuit closed", "provider", c.providerID)
		c.setBreakerGauge(0)
	}
}

func (c *Client) setBreakerGauge(v float64) {
	if c.metrics != nil {
		c.metrics.Breakers.WithLabelValues(c.providerID).Set(v)
	}
}

func (c *Client) observe(operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(GetCategory(err))
	}
	c.metrics.Calls.WithLabelValues(c.providerID, operation, outcome).Inc()
	c.metrics.Latency.WithLabelValues(c.providerID, operation).Observe(time.Since(start).Seconds())
}

// StatusError carries a non-2xx response for callers that need the body.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d", e.Status)
}
