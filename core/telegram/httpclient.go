package telegram

import (
	"net/http"
	"time"

	"github.com/jeanzhou31/slackattack/core/netutil"
)

const (
	defaultResponseTimeout = 5 * time.Second
	defaultClientTimeout   = 30 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryBackoff    = 2 * time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// The client timeout must exceed the long poll timeout.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	timeout := defaultClientTimeout
	if floor := pollTimeout + 10*time.Second; floor > timeout {
		timeout = floor
	}
	return netutil.NewClient(netutil.ClientOptions{
		Name:            "telegram",
		Timeout:         timeout,
		ResponseTimeout: defaultResponseTimeout + pollTimeout,
		Retries:         defaultRetryAttempts,
		Backoff:         defaultRetryBackoff,
	})
}
