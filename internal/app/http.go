package app

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns a client tuned for many concurrent requests against
// a handful of hosts. Per-request deadlines come from the caller's context;
// timeout is only the outer bound.
func newHTTPClient(timeout time.Duration, perHost int) *http.Client {
	if perHost <= 0 {
		perHost = DefaultMaxConcurrent
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          0,
		MaxIdleConnsPerHost:   perHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
