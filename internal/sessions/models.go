package sessions

import "time"

// Token is a server-side bearer token record. Only the sha256 digest of
// the secret is stored; the secret itself is returned to the client once
// at issuance and never persisted.
type Token struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"index;not null"`
	Digest    string    `gorm:"not null"`
	Abilities string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
