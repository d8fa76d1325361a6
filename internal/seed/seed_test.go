package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/repositories/memory"
	"github.com/yigit/campusrecords/internal/pkg/auth"
)

func newTestSeeder() (*Seeder, *memory.Store) {
	store := memory.New()
	return NewSeeder(store, auth.NewPasswordHasher(bcrypt.MinCost), zerolog.Nop()), store
}

func TestEnsureSubjectCatalogIsIdempotent(t *testing.T) {
	ctx := context.Background()
	seeder, store := newTestSeeder()

	created, err := seeder.EnsureSubjectCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(SubjectCatalog), created)

	created, err = seeder.EnsureSubjectCatalog(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	subjects, err := store.Subjects().List(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 10)
	assert.Equal(t, "CS101", subjects[0].Code)
	assert.Equal(t, "CS406", subjects[9].Code)
}

func TestEnsureFaculties(t *testing.T) {
	ctx := context.Background()
	seeder, store := newTestSeeder()

	t.Run("requires password", func(t *testing.T) {
		assert.Error(t, seeder.EnsureFaculties(ctx, " "))
	})

	t.Run("missing catalog is reported per faculty", func(t *testing.T) {
		err := seeder.EnsureFaculties(ctx, "faculty123")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "subject CS101 does not exist")

		exists, err := store.Accounts().ExistsByUsername(ctx, "prof_wolverine")
		require.NoError(t, err)
		assert.False(t, exists, "failed entry must not leave an account behind")
	})

	_, err := seeder.EnsureSubjectCatalog(ctx)
	require.NoError(t, err)

	t.Run("creates and binds every faculty", func(t *testing.T) {
		require.NoError(t, seeder.EnsureFaculties(ctx, "faculty123"))
		require.NoError(t, seeder.EnsureFaculties(ctx, "faculty123"))

		faculties, total, err := store.Faculties().List(ctx, 0, 50)
		require.NoError(t, err)
		assert.EqualValues(t, 10, total)
		assert.Len(t, faculties, 10)

		account, err := store.Accounts().GetByUsername(ctx, "prof_storm")
		require.NoError(t, err)
		assert.Equal(t, appModels.RoleFaculty, account.Role)
		assert.True(t, auth.NewPasswordHasher(bcrypt.MinCost).Verify(account.PasswordHash, "faculty123"))

		storm, err := store.Faculties().GetByAccountID(ctx, account.ID)
		require.NoError(t, err)
		subject, err := store.Subjects().GetByCode(ctx, "CS301")
		require.NoError(t, err)
		require.NotNil(t, storm.SubjectID)
		assert.Equal(t, subject.ID, *storm.SubjectID)
		assert.Equal(t, string(appModels.DepartmentComputerScience), storm.Department)

		profile, err := store.Profiles().GetByAccountID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ororo", profile.FirstName)
	})
}

func TestEnsureSuperuser(t *testing.T) {
	ctx := context.Background()
	seeder, store := newTestSeeder()

	assert.Error(t, seeder.EnsureSuperuser(ctx, "admin", "admin@example.com", ""))

	require.NoError(t, seeder.EnsureSuperuser(ctx, "admin", "Admin@Example.com", "s3cret-pass"))
	// a second run with no password is fine once the account exists
	require.NoError(t, seeder.EnsureSuperuser(ctx, "admin", "admin@example.com", ""))

	account, err := store.Accounts().GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, account.IsSuperuser)
	assert.Equal(t, appModels.RoleUnassigned, account.Role)
	assert.Equal(t, "admin@example.com", account.Email)
}
