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

var facultyColumns = []string{
	"f.id", "f.account_id", "f.first_name", "f.last_name", "f.email", "f.department", "f.subject_id",
	"f.created_at", "f.updated_at",
	"s.code", "s.name", "s.description", "s.credits",
}

// FacultyRepository handles faculty database operations
type FacultyRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewFacultyRepository creates a new FacultyRepository
func NewFacultyRepository(db DBTX) *FacultyRepository {
	return &FacultyRepository{db: db, sb: psql}
}

// scanFaculty reads a faculty row joined with its (optional) subject.
func scanFaculty(row pgx.Row) (*models.Faculty, error) {
	f := &models.Faculty{}
	var (
		code, name, description *string
		credits                 *int
	)
	err := row.Scan(&f.ID, &f.AccountID, &f.FirstName, &f.LastName, &f.Email, &f.Department, &f.SubjectID,
		&f.CreatedAt, &f.UpdatedAt, &code, &name, &description, &credits)
	if err != nil {
		return nil, err
	}
	if f.SubjectID != nil && code != nil {
		f.Subject = &models.Subject{ID: *f.SubjectID, Code: *code, Name: *name, Description: *description, Credits: *credits}
	}
	return f, nil
}

func (r *FacultyRepository) selectFaculties() squirrel.SelectBuilder {
	return r.sb.Select(facultyColumns...).
		From("faculties f").
		LeftJoin("subjects s ON s.id = f.subject_id")
}

func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	sql, args, err := r.sb.Insert("faculties").
		Columns("account_id", "first_name", "last_name", "email", "department", "subject_id").
		Values(faculty.AccountID, faculty.FirstName, faculty.LastName, faculty.Email, faculty.Department, faculty.SubjectID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create faculty SQL")
		return fmt.Errorf("failed to build create faculty query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&faculty.ID, &faculty.CreatedAt, &faculty.UpdatedAt); err != nil {
		return mapWriteError(err, "create faculty")
	}
	return nil
}

func (r *FacultyRepository) getOne(ctx context.Context, query squirrel.SelectBuilder) (*models.Faculty, error) {
	sql, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get faculty query: %w", err)
	}
	faculty, err := scanFaculty(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFacultyNotFound
		}
		logger.Error().Err(err).Msg("Error scanning faculty row")
		return nil, fmt.Errorf("error getting faculty: %w", err)
	}
	return faculty, nil
}

func (r *FacultyRepository) GetByID(ctx context.Context, id int64) (*models.Faculty, error) {
	return r.getOne(ctx, r.selectFaculties().Where(squirrel.Eq{"f.id": id}))
}

func (r *FacultyRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Faculty, error) {
	return r.getOne(ctx, r.selectFaculties().Where(squirrel.Eq{"f.id": id}).Suffix("FOR UPDATE OF f"))
}

func (r *FacultyRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Faculty, error) {
	return r.getOne(ctx, r.selectFaculties().Where(squirrel.Eq{"f.account_id": accountID}))
}

func (r *FacultyRepository) GetBySubjectID(ctx context.Context, subjectID int64) (*models.Faculty, error) {
	return r.getOne(ctx, r.selectFaculties().Where(squirrel.Eq{"f.subject_id": subjectID}))
}

func (r *FacultyRepository) List(ctx context.Context, offset uint64, limit int) ([]*models.Faculty, int64, error) {
	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("faculties").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count faculties query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting faculties: %w", err)
	}

	query := r.selectFaculties().OrderBy("f.last_name ASC", "f.first_name ASC").Offset(offset)
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list faculties query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list faculties query")
		return nil, 0, fmt.Errorf("error querying faculties: %w", err)
	}
	defer rows.Close()

	faculties := []*models.Faculty{}
	for rows.Next() {
		f, err := scanFaculty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning faculty row: %w", err)
		}
		faculties = append(faculties, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating faculty rows: %w", err)
	}
	return faculties, total, nil
}

func (r *FacultyRepository) exec(ctx context.Context, op string, query squirrel.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", op, err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, op)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFacultyNotFound
	}
	return nil
}

func (r *FacultyRepository) Update(ctx context.Context, faculty *models.Faculty) error {
	faculty.UpdatedAt = time.Now()
	return r.exec(ctx, "update faculty", r.sb.Update("faculties").
		SetMap(map[string]interface{}{
			"first_name": faculty.FirstName,
			"last_name":  faculty.LastName,
			"email":      faculty.Email,
			"department": faculty.Department,
			"updated_at": faculty.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": faculty.ID}))
}

func (r *FacultyRepository) SetSubject(ctx context.Context, facultyID int64, subjectID *int64) error {
	return r.exec(ctx, "assign faculty subject", r.sb.Update("faculties").
		Set("subject_id", subjectID).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": facultyID}))
}

// Delete removes the faculty row. Its subject stays in the catalog.
func (r *FacultyRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete faculty", r.sb.Delete("faculties").Where(squirrel.Eq{"id": id}))
}

func (r *FacultyRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("faculties").Where("LOWER(email) = LOWER(?)", email)
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.db, q)
}
