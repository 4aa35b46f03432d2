package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RetryStep is the linear backoff unit between delivery attempts.
const RetryStep = 200 * time.Millisecond

// Deliver calls send up to retries+1 times, waiting RetryStep*n before the
// n-th retry. It returns the last error or ctx.Err() if ctx ends while waiting.
func Deliver(ctx context.Context, retries int, send func(context.Context) error) error {
	attempts := max(retries, 0) + 1
	var lastErr error
	for attempt := range attempts {
		lastErr = send(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * RetryStep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

// CheckResponse drains and closes resp.Body, turning a non-2xx status into an
// error that names service and carries the response body.
func CheckResponse(service string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, drainErr := io.Copy(io.Discard, resp.Body)
		closeErr := resp.Body.Close()
		if drainErr != nil {
			drainErr = fmt.Errorf("drain %s response body: %w", service, drainErr)
		}
		if closeErr != nil {
			closeErr = fmt.Errorf("close response body: %w", closeErr)
		}
		return errors.Join(drainErr, closeErr)
	}

	body, readErr := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if readErr != nil {
		readErr = fmt.Errorf("read %s error response: %w", service, readErr)
		if closeErr != nil {
			return errors.Join(readErr, fmt.Errorf("close response body: %w", closeErr))
		}
		return readErr
	}
	return fmt.Errorf("%s %s: %s", service, resp.Status, strings.TrimSpace(string(body)))
}
