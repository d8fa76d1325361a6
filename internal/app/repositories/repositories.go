package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/campusrecords/internal/db"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/dberrors"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PostgresStore is the Store backed by PostgreSQL.
type PostgresStore struct {
	database *db.PostgresDB
	q        DBTX
	inTx     bool

	accounts  *AccountRepository
	subjects  *SubjectRepository
	students  *StudentRepository
	faculties *FacultyRepository
	profiles  *ProfileRepository
	tokens    *TokenRepository
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore builds a pool-bound store.
func NewPostgresStore(database *db.PostgresDB) *PostgresStore {
	return newPostgresStore(database, database.Pool, false)
}

func newPostgresStore(database *db.PostgresDB, q DBTX, inTx bool) *PostgresStore {
	return &PostgresStore{
		database:  database,
		q:         q,
		inTx:      inTx,
		accounts:  NewAccountRepository(q),
		subjects:  NewSubjectRepository(q),
		students:  NewStudentRepository(q),
		faculties: NewFacultyRepository(q),
		profiles:  NewProfileRepository(q),
		tokens:    NewTokenRepository(q),
	}
}

func (s *PostgresStore) Accounts() IAccountRepository  { return s.accounts }
func (s *PostgresStore) Subjects() ISubjectRepository  { return s.subjects }
func (s *PostgresStore) Students() IStudentRepository  { return s.students }
func (s *PostgresStore) Faculties() IFacultyRepository { return s.faculties }
func (s *PostgresStore) Profiles() IProfileRepository  { return s.profiles }
func (s *PostgresStore) Tokens() ITokenRepository      { return s.tokens }

// WithinTx implements Store.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, newPostgresStore(s.database, tx, true))
	})
}

// Ping implements Store.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.database.Ping(ctx)
}

var constraintMessages = map[string]string{
	"accounts_username_key":    "username is already taken",
	"accounts_email_key":       "email is already registered",
	"students_email_key":       "a student with this email already exists",
	"students_roll_number_key": "roll number collision, retry the request",
	"students_account_id_key":  "account already has a student record",
	"faculties_email_key":      "a faculty with this email already exists",
	"faculties_account_id_key": "account already has a faculty record",
	"faculties_subject_id_key": "subject is already assigned to another faculty",
	"subjects_code_key":        "subject code collision, retry the request",
	"subjects_name_key":        "a subject with this name already exists",
	"profiles_account_id_key":  "account already has a profile",
}

// mapWriteError turns constraint violations raised at write time into integrity errors.
func mapWriteError(err error, op string) error {
	if name, ok := dberrors.IsUniqueViolation(err); ok {
		if msg, known := constraintMessages[name]; known {
			return apperrors.NewIntegrityError(msg, err)
		}
		return apperrors.NewIntegrityError(fmt.Sprintf("%s violates unique constraint %s", op, name), err)
	}
	if name, ok := dberrors.IsForeignKeyViolation(err); ok {
		return apperrors.NewIntegrityError(fmt.Sprintf("%s references a missing record (%s)", op, name), err)
	}
	return fmt.Errorf("error executing %s: %w", op, err)
}

// exists runs query (selecting a constant) and reports whether it yields a row.
func exists(ctx context.Context, q DBTX, query squirrel.SelectBuilder) (bool, error) {
	sql, args, err := query.Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}
	var one int
	if err := q.QueryRow(ctx, sql, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error executing exists query: %w", err)
	}
	return true, nil
}

// ConstraintError builds the integrity error reported for a named unique constraint.
func ConstraintError(constraint string) error {
	msg, ok := constraintMessages[constraint]
	if !ok {
		msg = "unique constraint " + constraint + " violated"
	}
	return apperrors.NewIntegrityError(msg, nil)
}
