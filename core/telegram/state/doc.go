// Package state keeps short-lived per-chat conversation sessions.
// Values expire after a TTL; a session that has expired reads as absent.
package state
