package api

import "time"

// SessionCookieName is the cookie carrying the interactive session id.
const SessionCookieName = "reelmatch_session"

// Inbound POST limits per client IP.
const (
	DefaultPostRate  = 1.0 // requests per second
	DefaultPostBurst = 10
)

// MaxFormSize bounds the body of the HTML form submit.
const MaxFormSize = 64 << 10

// DefaultSessionTTL is used when Options.SessionTTL is unset.
const DefaultSessionTTL = 24 * time.Hour

// Cache-Control header values.
const (
	CacheNoStore = "no-store"
)
