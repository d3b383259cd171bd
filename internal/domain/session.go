package domain

import "time"

// Session describes a verified bearer token. It is never persisted.
type Session struct {
	Subject   string
	AccountID int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}
