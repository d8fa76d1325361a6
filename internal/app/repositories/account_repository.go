package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/logger"
)

var accountColumns = []string{
	"id", "username", "email", "password_hash", "role", "is_superuser",
	"is_active", "last_login_at", "created_at", "updated_at",
}

// AccountRepository handles account database operations
type AccountRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db, sb: psql}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	a := &models.Account{}
	var role string
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role, &a.IsSuperuser,
		&a.IsActive, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	return a, nil
}

// Create inserts account and fills in its ID and timestamps.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.Role == "" {
		account.Role = models.RoleUnassigned
	}
	sql, args, err := r.sb.Insert("accounts").
		Columns("username", "email", "password_hash", "role", "is_superuser", "is_active").
		Values(account.Username, account.Email, account.PasswordHash, string(account.Role), account.IsSuperuser, account.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create account SQL")
		return fmt.Errorf("failed to build create account query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return mapWriteError(err, "create account")
	}
	return nil
}

func (r *AccountRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Account, error) {
	sql, args, err := r.sb.Select(accountColumns...).From("accounts").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get account query: %w", err)
	}

	account, err := scanAccount(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Msg("Error scanning account row")
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	return account, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves an account by its login name
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

func (r *AccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.db, r.sb.Select("1").From("accounts").Where(squirrel.Eq{"username": username}))
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, r.sb.Select("1").From("accounts").Where("LOWER(email) = LOWER(?)", email))
}

func (r *AccountRepository) update(ctx context.Context, id int64, op string, set map[string]interface{}) error {
	set["updated_at"] = time.Now()
	sql, args, err := r.sb.Update("accounts").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", op, err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, op)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// UpdateRole switches the account's role
func (r *AccountRepository) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	return r.update(ctx, id, "update account role", map[string]interface{}{"role": string(role)})
}

// UpdateEmail keeps the login email in step with the role record
func (r *AccountRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	return r.update(ctx, id, "update account email", map[string]interface{}{"email": email})
}

func (r *AccountRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.update(ctx, id, "update last login", map[string]interface{}{"last_login_at": at})
}

// Delete removes the account; role records, profile and tokens cascade.
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("accounts").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete account query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, "delete account")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
