// Package sessions issues and verifies opaque bearer tokens. Tokens are
// random values bound server-side to a user id and expiry, so they can be
// revoked or expired independently of anything the client holds.
package sessions

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"account/infrastructure"
)

const secretLength = 32

// AllAbilities is the unrestricted token scope.
const AllAbilities = "*"

type Manager struct {
	repo     Repository
	shortTTL time.Duration
	longTTL  time.Duration
	now      func() time.Time
}

func NewManager(repo Repository, shortTTL, longTTL time.Duration) *Manager {
	return &Manager{
		repo:     repo,
		shortTTL: shortTTL,
		longTTL:  longTTL,
		now:      time.Now,
	}
}

// Issue mints a token for userID. The wire form is "<id>.<secret>"; the
// stored record keeps only the digest of the secret.
func (m *Manager) Issue(ctx context.Context, userID string, remember bool) (string, error) {
	secret := make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("failed to generate token secret: %w", err)
	}
	raw := hex.EncodeToString(secret)

	ttl := m.shortTTL
	if remember {
		ttl = m.longTTL
	}

	token := &Token{
		ID:        uuid.NewString(),
		UserID:    userID,
		Digest:    digest(raw),
		Abilities: AllAbilities,
		ExpiresAt: m.now().Add(ttl),
	}

	if err := m.repo.Store(ctx, token); err != nil {
		return "", infrastructure.Unavailable(err)
	}

	return token.ID + "." + raw, nil
}

// Verify resolves a wire-form token to its record, rejecting unknown,
// malformed, tampered and expired tokens.
func (m *Manager) Verify(ctx context.Context, raw string) (*Token, error) {
	id, secret, ok := strings.Cut(raw, ".")
	if !ok || id == "" || secret == "" {
		return nil, infrastructure.ErrInvalidToken
	}

	token, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, infrastructure.ErrInvalidToken
	}

	if subtle.ConstantTimeCompare([]byte(digest(secret)), []byte(token.Digest)) != 1 {
		return nil, infrastructure.ErrInvalidToken
	}

	if token.Expired(m.now()) {
		return nil, infrastructure.ErrTokenExpired
	}

	return token, nil
}

// Revoke deletes the token record; the wire token becomes useless.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	return m.repo.Delete(ctx, id)
}

func digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
