package iocache

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry settings for archive reads.
const (
	maxReadRetries     = 3
	initialReadBackoff = 50 * time.Millisecond
	maxReadBackoff     = time.Second
)

// transientPatterns are driver messages that usually clear up on their own.
var transientPatterns = []string{
	"database is locked",
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"too many connections",
	"server closed the connection",
}

// isTransient reports whether a database error is worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// retryRead runs fn with exponential backoff while it fails with transient errors.
func retryRead[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialReadBackoff
	policy.MaxInterval = maxReadBackoff

	return backoff.RetryWithData(func() (T, error) {
		result, err := fn()
		if err != nil && !isTransient(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxReadRetries), ctx))
}
