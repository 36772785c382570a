package repositories

import (
	"context"

	"erpcore/internal/models"

	"github.com/google/uuid"
)

type TokenRepository interface {
	Create(ctx context.Context, token *models.AuthToken) error
	GetByKey(ctx context.Context, key string) (*models.AuthToken, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type tokenRepo struct {
	db DB
}

func NewTokenRepo(db DB) TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) Create(ctx context.Context, token *models.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (key, user_id, created_at)
		VALUES ($1, $2, NOW())
	`
	_, err := r.db.Exec(ctx, query, token.Key, token.UserID)
	return err
}

func (r *tokenRepo) GetByKey(ctx context.Context, key string) (*models.AuthToken, error) {
	token := &models.AuthToken{}
	query := `
		SELECT key, user_id, created_at
		FROM auth_tokens
		WHERE key = $1
	`
	err := r.db.QueryRow(ctx, query, key).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (r *tokenRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM auth_tokens WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
