package sessions

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Store(ctx context.Context, token *Token) error
	Get(ctx context.Context, id string) (*Token, error)
	Delete(ctx context.Context, id string) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Store(ctx context.Context, token *Token) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *gormRepository) Get(ctx context.Context, id string) (*Token, error) {
	var t Token
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Token{}).Error
}
