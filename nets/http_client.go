package nets

import (
	"net/http"
	"time"
)

// HTTPClient talks to remote peers. Requests are short queries, so the
// whole exchange is bounded.
type HTTPClient = *http.Client

const (
	requestTimeout  = 10 * time.Second
	idleConnTimeout = 90 * time.Second
)

func (Module) HTTPClient(
	dialer Dialer,
) HTTPClient {
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     idleConnTimeout,
		},
	}
}
