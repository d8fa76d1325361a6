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
)

var profileColumns = []string{
	"id", "account_id", "first_name", "last_name", "picture_ref", "date_of_birth", "gender",
	"blood_group", "contact_number", "address", "created_at", "updated_at",
}

// ProfileRepository handles profile database operations
type ProfileRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db, sb: psql}
}

func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	sql, args, err := r.sb.Insert("profiles").
		Columns("account_id", "first_name", "last_name", "picture_ref", "date_of_birth", "gender",
			"blood_group", "contact_number", "address").
		Values(p.AccountID, p.FirstName, p.LastName, p.PictureRef, p.DateOfBirth, p.Gender,
			p.BloodGroup, p.ContactNumber, p.Address).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create profile query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return mapWriteError(err, "create profile")
	}
	return nil
}

func (r *ProfileRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Profile, error) {
	sql, args, err := r.sb.Select(profileColumns...).From("profiles").
		Where(squirrel.Eq{"account_id": accountID}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	p := &models.Profile{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.AccountID, &p.FirstName, &p.LastName, &p.PictureRef,
		&p.DateOfBirth, &p.Gender, &p.BloodGroup, &p.ContactNumber, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("error getting profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("profiles").
		SetMap(map[string]interface{}{
			"first_name":     p.FirstName,
			"last_name":      p.LastName,
			"picture_ref":    p.PictureRef,
			"date_of_birth":  p.DateOfBirth,
			"gender":         p.Gender,
			"blood_group":    p.BloodGroup,
			"contact_number": p.ContactNumber,
			"address":        p.Address,
			"updated_at":     p.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, "update profile")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) DeleteByAccountID(ctx context.Context, accountID int64) error {
	sql, args, err := r.sb.Delete("profiles").Where(squirrel.Eq{"account_id": accountID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete profile query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return mapWriteError(err, "delete profile")
	}
	return nil
}
