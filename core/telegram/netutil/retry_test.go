package netutil

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"flood", tele.FloodError{RetryAfter: 3}, true},
		{"bad request", &tele.Error{Code: 400, Description: "chat not found"}, false},
		{"server", &tele.Error{Code: 502, Description: "bad gateway"}, true},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldRetry(tc.err))
		})
	}
}

func TestKindAndRetryAfter(t *testing.T) {
	assert.Equal(t, "flood", Kind(tele.FloodError{RetryAfter: 2}))
	assert.Equal(t, 2*time.Second, RetryAfter(tele.FloodError{RetryAfter: 2}))
	assert.Equal(t, "http_4xx", Kind(&tele.Error{Code: 403}))
	assert.Equal(t, "dial", Kind(&net.OpError{Op: "dial", Err: errors.New("x")}))
	assert.Equal(t, "timeout", Kind(context.DeadlineExceeded))
	assert.Equal(t, "unknown", Kind(errors.New("x")))
	assert.Zero(t, RetryAfter(errors.New("x")))
}
