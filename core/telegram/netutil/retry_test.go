package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestTransient(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), true},
		{"dial refused", &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dial}, true},
		{"reset", &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, true},
		{"timeout", &url.Error{Op: "Post", URL: "x", Err: timeoutErr{}}, true},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.telegram.org", IsNotFound: true}, true},
		{"plain", errors.New("telegram: bad request: chat not found (400)"), false},
	}
	for _, tc := range cases {
		if got := Transient(tc.err); got != tc.want {
			t.Fatalf("%s: Transient = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBeforeSend(t *testing.T) {
	if !BeforeSend(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: network is unreachable")}) {
		t.Fatalf("dial errors happen before the request is sent")
	}
	if BeforeSend(&net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}) {
		t.Fatalf("a reset while reading may follow a delivered request")
	}
	if BeforeSend(timeoutErr{}) {
		t.Fatalf("timeouts are ambiguous")
	}
}
