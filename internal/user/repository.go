package user

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"account/infrastructure"
)

// Repository is the capability set the workflows need from user storage.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// FindByEmail returns the user or gorm.ErrRecordNotFound.
func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUsername matches case-insensitively: stored usernames are already
// lower-cased, so lower-casing the argument is sufficient.
func (r *gormRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts the user. The unique indexes on email and username are the
// sole arbiter for concurrent registrations with the same identifier; a
// duplicate-key failure surfaces as ErrIdentifierTaken.
func (r *gormRepository) Create(ctx context.Context, user *User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return infrastructure.ErrIdentifierTaken
	}
	return err
}

// IsNotFound reports whether err means "no such user" rather than a
// storage failure.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
