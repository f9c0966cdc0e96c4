// Package resend provides a client for the Resend transactional email API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/justjjosh/Hermes-backend/internal/resilience"
)

const defaultBaseURL = "https://api.resend.com"

// EmailRequest is the payload for sending one email.
type EmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo []string `json:"reply_to,omitempty"`
}

// EmailResponse is the parsed Resend API response.
type EmailResponse struct {
	ID string `json:"id"`
}

// Option configures the Resend client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit overrides the default send rate limit (2 req/s).
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// Client sends email through the Resend HTTP API. Safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a new Resend client. By default, sends are throttled to
// 2 req/s (Resend's default account rate limit) and transient failures are
// retried with backoff.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(2, 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendEmail delivers one email. Rate limit errors and server errors are
// retried; 4xx responses other than 429 fail immediately.
func (c *Client) SendEmail(ctx context.Context, req EmailRequest) (*EmailResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "resend: marshal request")
	}

	var result EmailResponse
	err = resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		if c.limiter != nil {
			if waitErr := c.limiter.Wait(ctx); waitErr != nil {
				return eris.Wrap(waitErr, "resend: rate limit")
			}
		}
		return c.doSend(ctx, payload, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) doSend(ctx context.Context, payload []byte, out *EmailResponse) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "resend: create request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return resilience.NewTransientError(eris.Wrap(err, "resend: send request"), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "resend: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		sendErr := eris.Errorf("resend: status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(sendErr, resp.StatusCode)
		}
		return sendErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "resend: unmarshal response")
	}
	return nil
}
