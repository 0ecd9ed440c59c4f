package resilience

import (
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: eris.New("boom"), want: false},
		{name: "explicit transient", err: NewTransientError(eris.New("503"), 503), want: true},
		{name: "wrapped transient", err: eris.Wrap(NewTransientError(eris.New("503"), 503), "outer"), want: true},
		{name: "connection refused", err: syscall.ECONNREFUSED, want: true},
		{name: "connection reset", err: syscall.ECONNRESET, want: true},
		{name: "message pattern", err: eris.New("read tcp: connection reset by peer"), want: true},
		{name: "dns pattern", err: eris.New("lookup example.nl: no such host"), want: true},
		{name: "io timeout pattern", err: eris.New("dial tcp: i/o timeout"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}
