// Package httpclient configures the HTTP clients used to call the job,
// details and export endpoints.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   128,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// NewOutbound creates the client for API calls: job submission, status
// polls and details fetches.
func NewOutbound() *http.Client {
	return &http.Client{
		Transport: newTransport(),
		Timeout:   30 * time.Second,
	}
}

// NewTransfer creates the client for export file retrieval. No overall
// timeout; large exports can take minutes and cancellation comes from the
// request context.
func NewTransfer() *http.Client {
	return &http.Client{
		Transport: newTransport(),
	}
}
