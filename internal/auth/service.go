package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"account/infrastructure"
	"account/internal/user"
)

// TokenIssuer mints a bearer token for a user. remember selects the long
// (7 day) expiry instead of the default 2 hours.
type TokenIssuer interface {
	Issue(ctx context.Context, userID string, remember bool) (string, error)
}

type LoginInput struct {
	Email    string
	Username string
	Password string
	Remember bool
}

// Service authenticates credentials and issues session tokens.
type Service struct {
	users  user.Repository
	tokens TokenIssuer
	hasher *Hasher
	logger *zap.Logger

	// dummyHash is verified against when the identifier is unknown, so the
	// response time does not reveal whether the account exists.
	dummyHash string
}

func NewService(users user.Repository, tokens TokenIssuer, hasher *Hasher, logger *zap.Logger) (*Service, error) {
	dummyHash, err := hasher.Hash("decoy-password-for-timing")
	if err != nil {
		return nil, err
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		logger:    logger,
		dummyHash: dummyHash,
	}, nil
}

// Login verifies the submitted credentials and returns the user together
// with a fresh bearer token. Exactly one of email or username must be set.
// All credential failures collapse into ErrInvalidCredentials so callers
// cannot enumerate identifiers.
func (s *Service) Login(ctx context.Context, in LoginInput) (*user.Public, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))

	if email == "" && username == "" {
		return nil, "", infrastructure.ErrMissingIdentifier
	}
	if email != "" && username != "" {
		return nil, "", infrastructure.ErrMultipleIdentifiers
	}

	account, err := s.find(ctx, email, username)
	if err != nil {
		if user.IsNotFound(err) {
			s.hasher.Verify(in.Password, s.dummyHash)
			return nil, "", infrastructure.ErrInvalidCredentials
		}
		return nil, "", infrastructure.Unavailable(err)
	}

	if !s.hasher.Verify(in.Password, account.Password) {
		return nil, "", infrastructure.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, account.ID, in.Remember)
	if err != nil {
		s.logger.Error("failed to issue session token", zap.String("user_id", account.ID), zap.Error(err))
		return nil, "", infrastructure.ErrInternal
	}

	return account.Public(), token, nil
}

func (s *Service) find(ctx context.Context, email, username string) (*user.User, error) {
	if email != "" {
		return s.users.FindByEmail(ctx, email)
	}
	return s.users.FindByUsername(ctx, username)
}
