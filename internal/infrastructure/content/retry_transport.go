package content

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds the retries performed by RetryTransport.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// RetryTransport retries idempotent requests on transport errors, 429 and 5xx
// responses with exponential backoff. The repository above it stays single-attempt.
type RetryTransport struct {
	next   http.RoundTripper
	policy RetryPolicy
	logger *slog.Logger
	sleep  func(*http.Request, time.Duration) error
}

// NewRetryTransport wraps next (http.DefaultTransport when nil).
func NewRetryTransport(next http.RoundTripper, policy RetryPolicy, log *slog.Logger) *RetryTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetryTransport{next: next, policy: policy, logger: log, sleep: sleepContext}
}

func (t *RetryTransport) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	if t.policy.InitialInterval > 0 {
		bo.InitialInterval = t.policy.InitialInterval
	}
	if t.policy.MaxInterval > 0 {
		bo.MaxInterval = t.policy.MaxInterval
	}
	bo.Multiplier = 2
	return bo
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !idempotent(req) || t.policy.MaxAttempts == 1 {
		return t.next.RoundTrip(req)
	}

	bo := t.newBackOff()
	for attempt := 1; ; attempt++ {
		resp, err := t.next.RoundTrip(req)
		if !retryable(resp, err) || attempt >= t.policy.MaxAttempts || req.Context().Err() != nil {
			return resp, err
		}

		delay := bo.NextBackOff()
		if delay == backoff.Stop {
			return resp, err
		}
		if resp != nil {
			_ = resp.Body.Close()
		}

		t.warn("retrying content request", "url", req.URL.Redacted(), "attempt", attempt, "retry_in", delay, "error", err)
		if sleepErr := t.sleep(req, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}
}

func idempotent(req *http.Request) bool {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return false
	}
	return req.Body == nil || req.Body == http.NoBody
}

func retryable(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}

func sleepContext(req *http.Request, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-req.Context().Done():
		return req.Context().Err()
	}
}

func (t *RetryTransport) warn(msg string, args ...interface{}) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}

// NewHTTPClient builds the client used by HTTPRepository: a request timeout
// around a retrying transport.
func NewHTTPClient(timeout time.Duration, policy RetryPolicy, log *slog.Logger) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewRetryTransport(nil, policy, log),
	}
}
