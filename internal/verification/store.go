// Package verification stores one-time email verification codes in redis.
package verification

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"account/infrastructure"
)

const (
	keyPrefix = "user.email.code:"

	// Codes are 6-digit integers, inclusive on both ends.
	codeMin = 100000
	codeMax = 999999
)

// CodeStore issues, looks up and consumes per-email verification codes.
// At most one live code exists per email: Issue overwrites any prior code,
// and expiry is enforced by redis TTL rather than by the application.
// Emails are canonicalized (trimmed, lower-cased) before keying, so the
// casing a caller submits never splits one address across two keys.
type CodeStore struct {
	client *redis.Client
	ttl    time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCodeStore returns a store keeping codes alive for ttl. Codes are
// single-use, short-lived and rate-limited upstream, so a non-cryptographic
// RNG is sufficient here.
func NewCodeStore(client *redis.Client, ttl time.Duration) *CodeStore {
	return &CodeStore{
		client: client,
		ttl:    ttl,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Issue generates a fresh code for email and stores it with the configured
// TTL, replacing any unexpired code for the same address.
func (s *CodeStore) Issue(ctx context.Context, email string) (int, error) {
	s.mu.Lock()
	code := codeMin + s.rng.Intn(codeMax-codeMin+1)
	s.mu.Unlock()

	if err := s.client.Set(ctx, key(email), code, s.ttl).Err(); err != nil {
		return 0, infrastructure.Unavailable(err)
	}
	return code, nil
}

// Lookup returns the live code for email, or ok=false if none is stored or
// it has expired. A redis transport failure is reported as unavailable, not
// as a missing code.
func (s *CodeStore) Lookup(ctx context.Context, email string) (code int, ok bool, err error) {
	val, err := s.client.Get(ctx, key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, infrastructure.Unavailable(err)
	}

	code, err = strconv.Atoi(val)
	if err != nil {
		// Corrupt entry; treat as absent so the user can re-request.
		return 0, false, nil
	}
	return code, true, nil
}

// Consume deletes the stored code for email. Call only after the code has
// been matched and the registration persisted; failed attempts keep the
// code so the user can retry until it expires.
func (s *CodeStore) Consume(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, key(email)).Err(); err != nil {
		return infrastructure.Unavailable(err)
	}
	return nil
}

func key(email string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(email))
}
