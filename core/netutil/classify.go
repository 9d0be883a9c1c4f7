package netutil

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Error kinds reported by Classify.
const (
	KindTimeout = "timeout"
	KindDNS     = "dns"
	KindDial    = "dial"
	KindTLS     = "tls"
	KindHTTP5xx = "http_5xx"
	KindHTTP4xx = "http_4xx"
	KindUnknown = "unknown"
)

// StatusError reports an unexpected HTTP status from a remote endpoint.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("unexpected status: %s", e.Status)
	}
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// Classify maps an error to a short kind suitable for the error_kind log field.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return KindTimeout
		}
		if opErr.Op == "dial" {
			return KindDial
		}
		if opErr.Op == "read" || opErr.Op == "write" {
			if kind := Classify(opErr.Err); kind != "" && kind != KindUnknown {
				return kind
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return KindTimeout
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			if kind := Classify(urlErr.Err); kind != "" && kind != KindUnknown {
				return kind
			}
		}
	}

	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return KindTLS
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return KindForStatus(statusErr.Code)
	}

	return KindUnknown
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(code int) string {
	switch {
	case code >= 500:
		return KindHTTP5xx
	case code >= 400:
		return KindHTTP4xx
	}
	return KindUnknown
}
