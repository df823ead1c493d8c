package model

import "time"

// Session is one active authenticated login. The token is the bearer
// credential presented via cookie or Authorization header.
type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
