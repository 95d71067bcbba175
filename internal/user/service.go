package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"account/infrastructure"
	"account/internal/banned"
)

// CodeStore is the slice of the verification-code store the registration
// workflow needs.
type CodeStore interface {
	Lookup(ctx context.Context, email string) (code int, ok bool, err error)
	Consume(ctx context.Context, email string) error
}

// PasswordHasher hashes a plaintext password for storage.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type RegisterInput struct {
	Username  string
	Nickname  string
	Email     string
	Password  string
	EmailCode int
}

// Service runs the registration workflow.
type Service struct {
	repo   Repository
	codes  CodeStore
	filter *banned.Filter
	hasher PasswordHasher
	logger *zap.Logger
}

func NewService(repo Repository, codes CodeStore, filter *banned.Filter, hasher PasswordHasher, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		codes:  codes,
		filter: filter,
		hasher: hasher,
		logger: logger,
	}
}

// Register validates and persists a new account. Checks run in a fixed
// order: input shape, banned-word filter, verification code, identifier
// uniqueness. The code check deliberately precedes the uniqueness check,
// so a caller with both a wrong code and a taken name learns about the
// code first.
//
// The verification code is consumed only after a successful insert; a
// failed insert leaves it in place so the user can retry without
// requesting a new one.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Public, error) {
	if err := ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if in.Nickname != "" {
		if err := ValidateNickname(in.Nickname); err != nil {
			return nil, err
		}
	}
	if err := ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := ValidateEmailCode(in.EmailCode); err != nil {
		return nil, err
	}

	if s.filter.Username(in.Username) {
		return nil, infrastructure.ErrBadUsername
	}
	if in.Nickname != "" && s.filter.Nickname(in.Nickname) {
		return nil, infrastructure.ErrBadNickname
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	code, ok, err := s.codes.Lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if !ok || code != in.EmailCode {
		return nil, infrastructure.ErrWrongEmailCode
	}

	// Both lookups run concurrently and both must finish before deciding.
	// This pre-check gives the friendly error; the unique indexes in
	// Create catch the race two concurrent registrations can win.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.repo.FindByEmail(gctx, email)
		return existenceResult(err)
	})
	g.Go(func() error {
		_, err := s.repo.FindByUsername(gctx, in.Username)
		return existenceResult(err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, infrastructure.ErrInternal
	}

	u := &User{
		Username: strings.ToLower(in.Username),
		Email:    email,
		Password: hash,
	}
	if in.Nickname != "" {
		nickname := in.Nickname
		u.Nickname = &nickname
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, infrastructure.ErrIdentifierTaken) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			zap.String("username", u.Username),
			zap.String("email", u.Email),
			zap.Error(err))
		return nil, infrastructure.ErrInternal
	}

	// Best effort: a leftover code expires on its own and cannot be
	// replayed against an already-registered email.
	if err := s.codes.Consume(ctx, email); err != nil {
		s.logger.Warn("failed to delete verification code", zap.String("email", email), zap.Error(err))
	}

	return u.Public(), nil
}

// EmailRegistered reports whether email already belongs to an account.
func (s *Service) EmailRegistered(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, infrastructure.Unavailable(err)
}

func existenceResult(err error) error {
	switch {
	case err == nil:
		return infrastructure.ErrIdentifierTaken
	case IsNotFound(err):
		return nil
	default:
		return infrastructure.Unavailable(err)
	}
}
