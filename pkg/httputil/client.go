// Package httputil provides shared HTTP plumbing for outbound model
// provider calls: a pooled transport, bounded body reads, and a small
// semaphore for batch fan-out.
package httputil

import (
	"io"
	"net"
	"net/http"
	"time"
)

// MaxResponseSize caps how much of a provider response body is read.
// Chat-completion replies are small; anything past this is either a
// misconfigured provider or an attempt to exhaust memory.
const MaxResponseSize = 2 * 1024 * 1024 // 2MB

// sharedTransport pools connections across all clients. Model providers
// sit behind TLS with nontrivial handshake cost, so reuse matters.
var sharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// NewClient returns an HTTP client on the shared transport with the given
// total request timeout. Use one client per logical consumer instead of
// constructing clients per request.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout, Transport: sharedTransport}
}

// ReadResponseBody reads a response body with a size limit, defaulting to
// MaxResponseSize when maxSize is not positive.
func ReadResponseBody(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxResponseSize
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// DrainAndClose drains and closes a response body so the underlying
// connection returns to the pool.
func DrainAndClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxResponseSize))
		_ = body.Close()
	}
}
