package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var knownStatus = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"skip":         {},
	"retry":        {},
	"rate_limited": {},
	"cancelled":    {},
	"expired":      {},
	"duplicate":    {},
}

// normalizeStatus lowercases known status values and leaves unknown ones untouched.
func normalizeStatus(fields map[string]any) {
	s, ok := fields["status"].(string)
	if !ok || s == "" {
		return
	}
	lower := strings.ToLower(strings.TrimSpace(s))
	if _, known := knownStatus[lower]; known {
		fields["status"] = lower
	}
}

var keyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"step",
	"action",
	"cb_key",
	"vacancy_id",
	"applicant_id",
	"admin_id",
	"workers_left",
	"vacancy_status",
	"duration_ms",
	"count",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"backend",
	"db",
	"host",
	"port",
	"err",
	"err_kind",
	"attempts",
}

func defaultKeyOrder() []string {
	return append([]string(nil), keyOrder...)
}

// Status is the status attribute for an operation that returned err.
// Cancellation is reported apart from failures.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "fail"
	}
}

// Took is the time since start at millisecond precision.
func Took(start time.Time) time.Duration {
	return roundMS(time.Since(start))
}

func roundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Preview lists up to limit values for a log line and counts the rest.
func Preview(values []string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	if len(values) <= limit {
		return strings.Join(values, ", ")
	}
	head := strings.Join(values[:limit], ", ")
	more := fmt.Sprintf("+%d more", len(values)-limit)
	if head == "" {
		return more
	}
	return head + " " + more
}
