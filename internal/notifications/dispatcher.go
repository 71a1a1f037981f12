// Package notifications delivers loan approval emails through the mail
// collaborator and streams moderation events to connected operators.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"sangrachna/internal/observability"

	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrDispatcherDisabled is returned when no notification endpoint is configured.
var ErrDispatcherDisabled = errors.New("notification dispatcher is not configured")

// LoanApproval is the payload the mail collaborator renders into an approval email.
type LoanApproval struct {
	UserEmail  string `json:"userEmail"`
	UserName   string `json:"userName"`
	BookTitle  string `json:"bookTitle"`
	BookAuthor string `json:"bookAuthor"`
	DueDate    string `json:"dueDate,omitempty"`
}

// Dispatcher sends loan notifications. Implementations do not retry.
type Dispatcher interface {
	SendLoanApproval(ctx context.Context, msg LoanApproval) error
}

// NoopDispatcher is used when NOTIFY_ENDPOINT is empty.
type NoopDispatcher struct{}

func (NoopDispatcher) SendLoanApproval(_ context.Context, _ LoanApproval) error {
	return ErrDispatcherDisabled
}

// StatusError is returned when the collaborator answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("notification endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("notification endpoint returned %d: %s", e.StatusCode, e.Body)
}

// HTTPDispatcher posts LoanApproval payloads as JSON to the mail collaborator.
type HTTPDispatcher struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// maxErrorBody bounds how much of a failed response body is kept for logs.
const maxErrorBody = 512

// NewHTTPDispatcher builds a dispatcher on a pooled transport instrumented with OpenTelemetry.
func NewHTTPDispatcher(endpoint, apiKey string, timeout time.Duration) *HTTPDispatcher {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout
	client.Transport = otelhttp.NewTransport(client.Transport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "notify " + r.Method
		}),
	)
	return &HTTPDispatcher{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   client,
	}
}

// New picks the HTTP dispatcher when an endpoint is configured, the no-op one otherwise.
func New(endpoint, apiKey string, timeout time.Duration) Dispatcher {
	if endpoint == "" {
		return NoopDispatcher{}
	}
	return NewHTTPDispatcher(endpoint, apiKey, timeout)
}

func (d *HTTPDispatcher) SendLoanApproval(ctx context.Context, msg LoanApproval) error {
	start := time.Now()
	defer func() {
		observability.NotificationLatency.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
