package sessions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account/infrastructure"
)

type fakeRepository struct {
	tokens    map[string]*Token
	failStore bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{tokens: make(map[string]*Token)}
}

func (r *fakeRepository) Store(_ context.Context, token *Token) error {
	if r.failStore {
		return errors.New("store down")
	}
	r.tokens[token.ID] = token
	return nil
}

func (r *fakeRepository) Get(_ context.Context, id string) (*Token, error) {
	t, ok := r.tokens[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return t, nil
}

func (r *fakeRepository) Delete(_ context.Context, id string) error {
	delete(r.tokens, id)
	return nil
}

func newTestManager(repo Repository) *Manager {
	return NewManager(repo, 2*time.Hour, 7*24*time.Hour)
}

func TestIssueAndVerify(t *testing.T) {
	repo := newFakeRepository()
	m := newTestManager(repo)
	ctx := context.Background()

	raw, err := m.Issue(ctx, "user-1", false)
	require.NoError(t, err)

	id, secret, ok := strings.Cut(raw, ".")
	require.True(t, ok)
	assert.Len(t, secret, 64, "32 random bytes hex encoded")

	stored := repo.tokens[id]
	require.NotNil(t, stored)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, AllAbilities, stored.Abilities)
	assert.NotContains(t, stored.Digest, secret, "secret must not be stored in the clear")

	token, err := m.Verify(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, token.ID)
}

func TestIssueExpiry(t *testing.T) {
	repo := newFakeRepository()
	m := newTestManager(repo)
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	short, err := m.Issue(ctx, "user-1", false)
	require.NoError(t, err)
	long, err := m.Issue(ctx, "user-1", true)
	require.NoError(t, err)

	shortID, _, _ := strings.Cut(short, ".")
	longID, _, _ := strings.Cut(long, ".")

	assert.Equal(t, now.Add(2*time.Hour), repo.tokens[shortID].ExpiresAt)
	assert.Equal(t, now.Add(7*24*time.Hour), repo.tokens[longID].ExpiresAt)
}

func TestVerifyRejectsExpired(t *testing.T) {
	repo := newFakeRepository()
	m := newTestManager(repo)
	ctx := context.Background()

	raw, err := m.Issue(ctx, "user-1", false)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(3 * time.Hour) }

	_, err = m.Verify(ctx, raw)
	assert.ErrorIs(t, err, infrastructure.ErrTokenExpired)
}

func TestVerifyRejectsTampering(t *testing.T) {
	repo := newFakeRepository()
	m := newTestManager(repo)
	ctx := context.Background()

	raw, err := m.Issue(ctx, "user-1", false)
	require.NoError(t, err)
	id, _, _ := strings.Cut(raw, ".")

	for _, candidate := range []string{
		"",
		"garbage",
		id,
		id + ".",
		id + ".deadbeef",
		"unknown-id.deadbeef",
	} {
		_, err := m.Verify(ctx, candidate)
		assert.ErrorIs(t, err, infrastructure.ErrInvalidToken, "token %q", candidate)
	}
}

func TestRevoke(t *testing.T) {
	repo := newFakeRepository()
	m := newTestManager(repo)
	ctx := context.Background()

	raw, err := m.Issue(ctx, "user-1", false)
	require.NoError(t, err)
	id, _, _ := strings.Cut(raw, ".")

	require.NoError(t, m.Revoke(ctx, id))

	_, err = m.Verify(ctx, raw)
	assert.ErrorIs(t, err, infrastructure.ErrInvalidToken)
}

func TestIssueUnavailableStore(t *testing.T) {
	repo := newFakeRepository()
	repo.failStore = true
	m := newTestManager(repo)

	_, err := m.Issue(context.Background(), "user-1", false)
	assert.ErrorIs(t, err, infrastructure.ErrUnavailable)
}

func TestTokensAreUnique(t *testing.T) {
	repo := newFakeRepository()
	m := newTestManager(repo)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		raw, err := m.Issue(ctx, "user-1", false)
		require.NoError(t, err)
		require.False(t, seen[raw])
		seen[raw] = true
	}
}
