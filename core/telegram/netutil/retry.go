// Package netutil classifies network failures seen while talking to the
// Telegram Bot API.
package netutil

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// Transient reports whether err is a network failure that may succeed on a
// later attempt: timeouts, refused or reset connections, and DNS hiccups.
// Context cancellation is never transient.
func Transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if BeforeSend(err) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// BeforeSend reports whether err happened before the request reached the
// server, so even a non-idempotent call such as sendMessage can be repeated
// without risking a duplicate.
func BeforeSend(err error) bool {
	if err == nil {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout || dnsErr.IsNotFound
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
