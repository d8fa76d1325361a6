package repositories

import (
	"context"
	"time"

	"github.com/yigit/campusrecords/internal/app/models"
)

// Store gives access to every repository and runs work atomically.
type Store interface {
	Accounts() IAccountRepository
	Subjects() ISubjectRepository
	Students() IStudentRepository
	Faculties() IFacultyRepository
	Profiles() IProfileRepository
	Tokens() ITokenRepository

	// WithinTx runs fn against a Store bound to one transaction. A non-nil
	// error from fn rolls back every write made through tx. Calling
	// WithinTx on a transaction-bound Store joins the running transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Ping(ctx context.Context) error
}

// IAccountRepository persists identities.
type IAccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateRole(ctx context.Context, id int64, role models.Role) error
	UpdateEmail(ctx context.Context, id int64, email string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

// ISubjectRepository persists the subject catalog.
type ISubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	GetByCode(ctx context.Context, code string) (*models.Subject, error)
	// ListByCodes returns the subjects that exist among codes, ordered by code.
	ListByCodes(ctx context.Context, codes []string) ([]*models.Subject, error)
	List(ctx context.Context) ([]*models.Subject, error)
	// Update writes name, description and credits. The code never changes.
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	// MaxCodeNumber is the numeric part of the highest CS### code, or 0.
	MaxCodeNumber(ctx context.Context) (int, error)
	// LockCodeSequence serialises code generation until the transaction ends.
	LockCodeSequence(ctx context.Context) error
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	Department models.Department
	Search     string
	Offset     uint64
	Limit      int
}

// IStudentRepository persists students and their enrollments.
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	// GetByIDForUpdate also locks the row until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error)
	GetByAccountID(ctx context.Context, accountID int64) (*models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]*models.Student, int64, error)
	// Update writes every mutable column. Roll number is never rewritten.
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)

	// MaxRollSequence is the highest sequence among roll numbers starting with yearPrefix, or 0.
	MaxRollSequence(ctx context.Context, yearPrefix string) (int, error)
	// LockRollSequence serialises roll number generation for yearPrefix until the transaction ends.
	LockRollSequence(ctx context.Context, yearPrefix string) error

	ReplaceSubjects(ctx context.Context, studentID int64, subjectIDs []int64) error
	// AddSubject enrolls the student; enrolling twice is a no-op.
	AddSubject(ctx context.Context, studentID, subjectID int64) error
	ClearSubjects(ctx context.Context, studentID int64) error
	ListSubjects(ctx context.Context, studentID int64) ([]*models.Subject, error)
}

// IFacultyRepository persists faculty records.
type IFacultyRepository interface {
	Create(ctx context.Context, faculty *models.Faculty) error
	GetByID(ctx context.Context, id int64) (*models.Faculty, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Faculty, error)
	GetByAccountID(ctx context.Context, accountID int64) (*models.Faculty, error)
	GetBySubjectID(ctx context.Context, subjectID int64) (*models.Faculty, error)
	List(ctx context.Context, offset uint64, limit int) ([]*models.Faculty, int64, error)
	// Update writes names, email and department.
	Update(ctx context.Context, faculty *models.Faculty) error
	SetSubject(ctx context.Context, facultyID int64, subjectID *int64) error
	Delete(ctx context.Context, id int64) error
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
}

// IProfileRepository persists personal profiles.
type IProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByAccountID(ctx context.Context, accountID int64) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	DeleteByAccountID(ctx context.Context, accountID int64) error
}

// ITokenRepository persists refresh tokens.
type ITokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	Get(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForAccount(ctx context.Context, accountID int64) error
}
