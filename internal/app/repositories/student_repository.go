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

var studentColumns = []string{
	"id", "account_id", "first_name", "last_name", "email", "department", "roll_number",
	"gender", "blood_group", "date_of_birth", "contact_number", "address", "picture_ref",
	"created_at", "updated_at",
}

// StudentRepository handles student and enrollment database operations
type StudentRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db, sb: psql}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{}
	var department string
	err := row.Scan(&s.ID, &s.AccountID, &s.FirstName, &s.LastName, &s.Email, &department, &s.RollNumber,
		&s.Gender, &s.BloodGroup, &s.DateOfBirth, &s.ContactNumber, &s.Address, &s.PictureRef,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Department = models.Department(department)
	return s, nil
}

// Create inserts student; the roll number must already be set.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns("account_id", "first_name", "last_name", "email", "department", "roll_number",
			"gender", "blood_group", "date_of_birth", "contact_number", "address", "picture_ref").
		Values(student.AccountID, student.FirstName, student.LastName, student.Email, string(student.Department),
			student.RollNumber, student.Gender, student.BloodGroup, student.DateOfBirth, student.ContactNumber,
			student.Address, student.PictureRef).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
		return mapWriteError(err, "create student")
	}
	return nil
}

func (r *StudentRepository) getOne(ctx context.Context, query squirrel.SelectBuilder) (*models.Student, error) {
	sql, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}
	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	return student, nil
}

func (r *StudentRepository) selectStudents() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).From("students")
}

func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, r.selectStudents().Where(squirrel.Eq{"id": id}))
}

func (r *StudentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, r.selectStudents().Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (r *StudentRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Student, error) {
	return r.getOne(ctx, r.selectStudents().Where(squirrel.Eq{"account_id": accountID}))
}

func studentFilterWhere(filter StudentFilter) squirrel.And {
	where := squirrel.And{}
	if filter.Department != "" {
		where = append(where, squirrel.Eq{"department": string(filter.Department)})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"roll_number": pattern},
		})
	}
	return where
}

// List returns one page of students ordered by roll number, plus the total match count.
func (r *StudentRepository) List(ctx context.Context, filter StudentFilter) ([]*models.Student, int64, error) {
	where := studentFilterWhere(filter)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("students").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting students")
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	query := r.selectStudents().Where(where).OrderBy("roll_number ASC").Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, total, nil
}

func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"first_name":     student.FirstName,
			"last_name":      student.LastName,
			"email":          student.Email,
			"department":     string(student.Department),
			"gender":         student.Gender,
			"blood_group":    student.BloodGroup,
			"date_of_birth":  student.DateOfBirth,
			"contact_number": student.ContactNumber,
			"address":        student.Address,
			"picture_ref":    student.PictureRef,
			"updated_at":     student.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": student.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, "update student")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Delete removes the student row; enrollments cascade.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError(err, "delete student")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("students").Where("LOWER(email) = LOWER(?)", email)
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.db, q)
}

func (r *StudentRepository) MaxRollSequence(ctx context.Context, yearPrefix string) (int, error) {
	sql, args, err := r.sb.Select("COALESCE(MAX(CAST(SUBSTRING(roll_number FROM 5 FOR 3) AS INTEGER)), 0)").
		From("students").
		Where(squirrel.Like{"roll_number": yearPrefix + "%"}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build roll sequence query: %w", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error reading roll sequence: %w", err)
	}
	return n, nil
}

func (r *StudentRepository) LockRollSequence(ctx context.Context, yearPrefix string) error {
	return advisoryLock(ctx, r.db, "students.roll_number:"+yearPrefix)
}

func (r *StudentRepository) ReplaceSubjects(ctx context.Context, studentID int64, subjectIDs []int64) error {
	if err := r.ClearSubjects(ctx, studentID); err != nil {
		return err
	}
	if len(subjectIDs) == 0 {
		return nil
	}

	insert := r.sb.Insert("student_subjects").Columns("student_id", "subject_id")
	for _, id := range subjectIDs {
		insert = insert.Values(studentID, id)
	}
	sql, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build enroll query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return mapWriteError(err, "enroll student")
	}
	return nil
}

func (r *StudentRepository) AddSubject(ctx context.Context, studentID, subjectID int64) error {
	sql, args, err := r.sb.Insert("student_subjects").
		Columns("student_id", "subject_id").
		Values(studentID, subjectID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build enroll query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return mapWriteError(err, "enroll student")
	}
	return nil
}

func (r *StudentRepository) ClearSubjects(ctx context.Context, studentID int64) error {
	sql, args, err := r.sb.Delete("student_subjects").Where(squirrel.Eq{"student_id": studentID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear enrollments query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error clearing enrollments")
		return fmt.Errorf("error clearing enrollments: %w", err)
	}
	return nil
}

func (r *StudentRepository) ListSubjects(ctx context.Context, studentID int64) ([]*models.Subject, error) {
	sql, args, err := r.sb.Select("s.id", "s.code", "s.name", "s.description", "s.credits", "s.created_at", "s.updated_at").
		From("subjects s").
		Join("student_subjects ss ON ss.subject_id = s.id").
		Where(squirrel.Eq{"ss.student_id": studentID}).
		OrderBy("s.code ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying student subjects: %w", err)
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
	return subjects, rows.Err()
}
