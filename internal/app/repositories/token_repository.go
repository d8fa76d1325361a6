package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/logger"
)

// TokenRepository handles refresh token database operations
type TokenRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db DBTX) *TokenRepository {
	return &TokenRepository{db: db, sb: psql}
}

// Create stores a new refresh token
func (r *TokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	sql, args, err := r.sb.Insert("refresh_tokens").
		Columns("token", "account_id", "expires_at", "revoked").
		Values(token.Token, token.AccountID, token.ExpiresAt, token.Revoked).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create token SQL")
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return mapWriteError(err, "create refresh token")
	}
	return nil
}

// Get looks up a refresh token by value
func (r *TokenRepository) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	sql, args, err := r.sb.Select("token", "account_id", "expires_at", "revoked").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get token query: %w", err)
	}

	t := &models.RefreshToken{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.Token, &t.AccountID, &t.ExpiresAt, &t.Revoked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error scanning token row")
		return nil, fmt.Errorf("error getting token: %w", err)
	}
	return t, nil
}

// Revoke marks one token unusable
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	return r.revoke(ctx, squirrel.Eq{"token": token})
}

// RevokeAllForAccount marks every token of the account unusable
func (r *TokenRepository) RevokeAllForAccount(ctx context.Context, accountID int64) error {
	return r.revoke(ctx, squirrel.Eq{"account_id": accountID, "revoked": false})
}

func (r *TokenRepository) revoke(ctx context.Context, where squirrel.Eq) error {
	sql, args, err := r.sb.Update("refresh_tokens").Set("revoked", true).Where(where).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Msg("Error revoking refresh token")
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}
