// Package callbacks reads and writes telebot's inline button data encoding,
// "\f<unique>|<field>|<field>...".
package callbacks

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// MaxDataLen is the Bot API limit for callback_data, in bytes.
const MaxDataLen = 64

const (
	marker = "\f"
	sep    = "|"
)

// Encode returns the wire form of a button with the given unique key and fields.
func Encode(unique string, fields ...string) (string, error) {
	if unique == "" || strings.Contains(unique, sep) {
		return "", fmt.Errorf("callbacks: bad unique %q", unique)
	}
	for _, f := range fields {
		if strings.Contains(f, sep) {
			return "", fmt.Errorf("callbacks: field %q contains %q", f, sep)
		}
	}
	data := marker + unique
	if len(fields) > 0 {
		data += sep + strings.Join(fields, sep)
	}
	if len(data) > MaxDataLen {
		return "", fmt.Errorf("callbacks: %q is %d bytes, limit %d", unique, len(data), MaxDataLen)
	}
	return data, nil
}

// Parse splits callback data into its unique key and fields. It handles both
// raw data (only an OnCallback handler registered) and data telebot already
// split because a handler for the unique key matched.
func Parse(cb *tele.Callback) (string, []string) {
	if cb == nil {
		return "", nil
	}
	if cb.Unique != "" {
		return cb.Unique, splitFields(cb.Data)
	}
	raw := strings.TrimPrefix(cb.Data, marker)
	unique, rest, found := strings.Cut(raw, sep)
	if !found {
		return strings.TrimSpace(unique), nil
	}
	return strings.TrimSpace(unique), splitFields(rest)
}

// Key returns only the unique key of the update's callback.
func Key(c tele.Context) string {
	k, _ := Parse(c.Callback())
	return k
}

func splitFields(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}
