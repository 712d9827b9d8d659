package types

import (
	"time"

	"github.com/google/uuid"
)

// Token is an opaque bearer credential issued on successful login.
// It carries no embedded claims; its meaning lives entirely in the tokens table.
type Token struct {
	// ID is the server-generated unique identifier of the token row.
	ID uuid.UUID `json:"id" db:"id"`

	// Value is the random string presented by clients in the Authorization header.
	Value string `json:"value" db:"value"`

	// UserID references the user the token was issued to.
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	// CreatedAt is the issue time of the token.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ExpiredAt reports whether the token is older than ttl at time now.
// A non-positive ttl means tokens never expire.
func (t Token) ExpiredAt(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return !now.Before(t.CreatedAt.Add(ttl))
}
