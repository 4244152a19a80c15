// Package remedy adapts the HTTP remediation collaborator to the
// RemediationClient port. Transport failures are retried with exponential
// backoff; once the collaborator answers, its verdict is final.
package remedy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"

	"github.com/example/warden/internal/ports/secondary"
)

const maxRetryInterval = 5 * time.Second

// Client posts remediation requests to the collaborator endpoint.
type Client struct {
	url        string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a Client for the given endpoint. An empty url disables
// remediation: every handoff reports unavailable.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		apiKey:  apiKey,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Remediate hands the escalated workflow to the collaborator. Transport
// errors are retried until the per-call timeout; any HTTP response ends the
// retry loop because the collaborator has seen the request by then.
func (c *Client) Remediate(ctx context.Context, req secondary.RemediationRequest) (secondary.RemediationOutcome, error) {
	if c.url == "" {
		return secondary.RemediationUnavailable, errors.New("remediation endpoint not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return secondary.RemediationUnavailable, fmt.Errorf("failed to encode remediation request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxInterval(maxRetryInterval),
	), callCtx)

	outcome, err := backoff.RetryWithData(func() (secondary.RemediationOutcome, error) {
		return c.post(callCtx, body)
	}, policy)
	if err != nil {
		return secondary.RemediationUnavailable, err
	}
	return outcome, nil
}

func (c *Client) post(ctx context.Context, body []byte) (secondary.RemediationOutcome, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return secondary.RemediationUnavailable, backoff.Permanent(fmt.Errorf("failed to build remediation request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return secondary.RemediationUnavailable, fmt.Errorf("remediation request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused across retries.
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return secondary.RemediationAccepted, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return secondary.RemediationRejected, nil
	default:
		return secondary.RemediationUnavailable,
			backoff.Permanent(fmt.Errorf("remediation endpoint returned %d", resp.StatusCode))
	}
}

// Ensure Client implements the interface.
var _ secondary.RemediationClient = (*Client)(nil)
