package subtitle

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"time"
)

type retryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

var defaultRetryConfig = retryConfig{
	MaxRetries:  2,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     5 * time.Second,
	Multiplier:  2.0,
}

// statusError carries a non-200 HTTP status.
type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return "unexpected status " + http.StatusText(e.StatusCode)
}

// doWithRetry sends the request built by build, retrying transient failures with
// exponential backoff. The returned response always has status 200.
func (f *implFetcher) doWithRetry(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retry.MaxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err == nil && resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			err = &statusError{StatusCode: resp.StatusCode}
		}
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == f.retry.MaxRetries {
			break
		}

		wait := time.Duration(float64(f.retry.InitialWait) * math.Pow(f.retry.Multiplier, float64(attempt)))
		if wait > f.retry.MaxWait {
			wait = f.retry.MaxWait
		}
		f.logger.Debug(ctx, "Retrying %s in %s (attempt %d): %v", req.URL.Path, wait, attempt+1, err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// isRetryable returns true for transient errors worth retrying.
func isRetryable(err error) bool {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
