// Package format holds helpers for Telegram HTML parse mode.
package format

import (
	"html"
	"strings"
)

// Escape makes user-supplied text safe inside an HTML-mode message.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Bold wraps escaped s in <b>.
func Bold(s string) string {
	return "<b>" + Escape(s) + "</b>"
}

// Or returns s, or fallback when s is blank.
func Or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
