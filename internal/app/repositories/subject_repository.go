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

var subjectColumns = []string{"id", "code", "name", "description", "credits", "created_at", "updated_at"}

// SubjectRepository handles subject catalog database operations
type SubjectRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db DBTX) *SubjectRepository {
	return &SubjectRepository{db: db, sb: psql}
}

func scanSubject(row pgx.Row) (*models.Subject, error) {
	s := &models.Subject{}
	if err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.Credits, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	sql, args, err := r.sb.Insert("subjects").
		Columns("code", "name", "description", "credits").
		Values(subject.Code, subject.Name, subject.Description, subject.Credits).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create subject SQL")
		return fmt.Errorf("failed to build create subject query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt); err != nil {
		return mapWriteError(err, "create subject")
	}
	return nil
}

func (r *SubjectRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Subject, error) {
	sql, args, err := r.sb.Select(subjectColumns...).From("subjects").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get subject query: %w", err)
	}
	subject, err := scanSubject(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		logger.Error().Err(err).Msg("Error scanning subject row")
		return nil, fmt.Errorf("error getting subject: %w", err)
	}
	return subject, nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *SubjectRepository) GetByCode(ctx context.Context, code string) (*models.Subject, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code})
}

func (r *SubjectRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Subject, error) {
	sql, args, err := query.OrderBy("code ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list subjects query")
		return nil, fmt.Errorf("error querying subjects: %w", err)
	}
	defer rows.Close()

	subjects := []*models.Subject{}
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning subject row: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subject rows: %w", err)
	}
	return subjects, nil
}

func (r *SubjectRepository) ListByCodes(ctx context.Context, codes []string) ([]*models.Subject, error) {
	if len(codes) == 0 {
		return []*models.Subject{}, nil
	}
	return r.list(ctx, r.sb.Select(subjectColumns...).From("subjects").Where(squirrel.Eq{"code": codes}))
}

func (r *SubjectRepository) List(ctx context.Context) ([]*models.Subject, error) {
	return r.list(ctx, r.sb.Select(subjectColumns...).From("subjects"))
}

func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("subjects").
		SetMap(map[string]interface{}{
			"name":        subject.Name,
			"description": subject.Description,
			"credits":     subject.Credits,
			"updated_at":  subject.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": subject.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update subject query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, "update subject")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}
	return nil
}

// Delete removes the subject. Enrollments cascade; an assigned faculty is left without a subject.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("subjects").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete subject query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, "delete subject")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}
	return nil
}

func (r *SubjectRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("subjects").Where("LOWER(name) = LOWER(?)", name)
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.db, q)
}

func (r *SubjectRepository) MaxCodeNumber(ctx context.Context) (int, error) {
	sql, args, err := r.sb.Select("COALESCE(MAX(CAST(SUBSTRING(code FROM 3) AS INTEGER)), 0)").
		From("subjects").
		Where("code ~ ?", `^CS[0-9]{3}$`).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build max subject code query: %w", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error reading max subject code: %w", err)
	}
	return n, nil
}

func (r *SubjectRepository) LockCodeSequence(ctx context.Context) error {
	return advisoryLock(ctx, r.db, "subjects.code")
}

// advisoryLock takes a transaction-scoped advisory lock named key.
func advisoryLock(ctx context.Context, db DBTX, key string) error {
	if _, err := db.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return nil
}
