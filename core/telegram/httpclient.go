package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/citybot/core/telegram/netutil"
)

// HTTPClientOptions tunes the Bot API client. Zero values use the defaults.
type HTTPClientOptions struct {
	// Timeout bounds a whole request; long polling adds its own timeout on top.
	Timeout time.Duration
	// Retries is the number of extra attempts for failed requests.
	Retries int
	// Backoff is the first retry delay; it doubles on every attempt.
	Backoff time.Duration
}

const (
	defaultClientTimeout = 30 * time.Second
	defaultRetries       = 2
	defaultRetryBackoff  = 500 * time.Millisecond
)

// BuildHTTPClient returns a client for Bot API calls. Requests are retried only
// when the failure happened before the request left the process, so a message
// is never delivered twice by the transport.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultClientTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	} else if opts.Retries == 0 {
		opts.Retries = defaultRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultRetryBackoff
	}

	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: &retryTransport{base: base, retries: opts.Retries, backoff: opts.Backoff},
	}
}

type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	delay := t.backoff
	for attempt := 0; ; attempt++ {
		out := req
		if attempt > 0 {
			if req.Body != nil && req.GetBody == nil {
				return nil, errNoRewind
			}
			out = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				out.Body = body
			}
		}

		resp, err := t.base.RoundTrip(out)
		if err == nil || attempt >= t.retries || !netutil.BeforeSend(err) {
			return resp, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

var errNoRewind = &net.OpError{Op: "retry", Err: http.ErrBodyNotAllowed}
