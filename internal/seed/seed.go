// Package seed creates the reference data a fresh installation needs. Every
// procedure is idempotent: running it twice leaves the store unchanged.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/campusrecords/internal/app/models"
	appRepos "github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/auth"
)

// Seeder runs the setup procedures against a store.
type Seeder struct {
	store  appRepos.Store
	hasher *auth.PasswordHasher
	logger zerolog.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(store appRepos.Store, hasher *auth.PasswordHasher, logger zerolog.Logger) *Seeder {
	return &Seeder{
		store:  store,
		hasher: hasher,
		logger: logger.With().Str("component", "seed").Logger(),
	}
}

// EnsureSubjectCatalog creates every catalog subject that does not exist yet.
// Existing subjects are left untouched. It returns the number created.
func (s *Seeder) EnsureSubjectCatalog(ctx context.Context) (int, error) {
	created := 0
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx appRepos.Store) error {
		for _, entry := range SubjectCatalog {
			_, err := tx.Subjects().GetByCode(ctx, entry.Code)
			if err == nil {
				s.logger.Debug().Str("code", entry.Code).Msg("Subject already exists")
				continue
			}
			if !errors.Is(err, apperrors.ErrSubjectNotFound) {
				return fmt.Errorf("error looking up subject %s: %w", entry.Code, err)
			}

			subject := &appModels.Subject{
				Code:        entry.Code,
				Name:        entry.Name,
				Description: entry.Description,
				Credits:     entry.Credits,
			}
			if err := tx.Subjects().Create(ctx, subject); err != nil {
				return fmt.Errorf("error creating subject %s: %w", entry.Code, err)
			}
			s.logger.Info().Str("code", subject.Code).Str("name", subject.Name).Msg("Created subject")
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// EnsureFaculties creates the seeded faculty accounts and binds each to its
// catalog subject. Accounts are created with password; existing accounts keep
// theirs. A missing subject or one held by someone else is reported and the
// remaining entries are still processed.
func (s *Seeder) EnsureFaculties(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("seed faculty password is not configured")
	}

	var finalErr error
	for _, entry := range SeedFaculties {
		if err := s.ensureFaculty(ctx, entry, password); err != nil {
			s.logger.Error().Err(err).Str("username", entry.Username).Msg("Error setting up faculty")
			finalErr = errors.Join(finalErr, fmt.Errorf("%s: %w", entry.Username, err))
		}
	}
	return finalErr
}

func (s *Seeder) ensureFaculty(ctx context.Context, entry FacultySeed, password string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx appRepos.Store) error {
		subject, err := tx.Subjects().GetByCode(ctx, entry.SubjectCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrSubjectNotFound) {
				return fmt.Errorf("subject %s does not exist", entry.SubjectCode)
			}
			return fmt.Errorf("error looking up subject %s: %w", entry.SubjectCode, err)
		}

		account, err := tx.Accounts().GetByUsername(ctx, entry.Username)
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound):
			account, err = s.createAccount(ctx, tx, entry.Username, entry.Email, password, appModels.RoleFaculty, false)
			if err != nil {
				return err
			}
			if err := tx.Profiles().Create(ctx, &appModels.Profile{
				AccountID: account.ID,
				FirstName: entry.FirstName,
				LastName:  entry.LastName,
			}); err != nil {
				return fmt.Errorf("error creating profile: %w", err)
			}
			s.logger.Info().Str("username", account.Username).Msg("Created faculty account")
		case err != nil:
			return fmt.Errorf("error looking up account: %w", err)
		case account.Role != appModels.RoleFaculty:
			return fmt.Errorf("account %s exists with role %s", account.Username, account.Role)
		}

		faculty, err := tx.Faculties().GetByAccountID(ctx, account.ID)
		if errors.Is(err, apperrors.ErrFacultyNotFound) {
			faculty = &appModels.Faculty{
				AccountID:  account.ID,
				FirstName:  entry.FirstName,
				LastName:   entry.LastName,
				Email:      entry.Email,
				Department: string(appModels.DepartmentComputerScience),
			}
			if err := tx.Faculties().Create(ctx, faculty); err != nil {
				return fmt.Errorf("error creating faculty: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("error looking up faculty: %w", err)
		}

		if faculty.SubjectID != nil && *faculty.SubjectID == subject.ID {
			return nil
		}

		holder, err := tx.Faculties().GetBySubjectID(ctx, subject.ID)
		if err == nil && holder.ID != faculty.ID {
			return fmt.Errorf("subject %s is already taught by faculty %d", subject.Code, holder.ID)
		}
		if err != nil && !errors.Is(err, apperrors.ErrFacultyNotFound) {
			return fmt.Errorf("error looking up subject holder: %w", err)
		}

		if err := tx.Faculties().SetSubject(ctx, faculty.ID, &subject.ID); err != nil {
			return fmt.Errorf("error assigning subject: %w", err)
		}
		s.logger.Info().
			Str("faculty", faculty.FirstName+" "+faculty.LastName).
			Str("subject", subject.Code).
			Msg("Faculty bound to subject")
		return nil
	})
}

// EnsureSuperuser creates the administrative account unless username is taken.
func (s *Seeder) EnsureSuperuser(ctx context.Context, username, email, password string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("superuser username is not configured")
	}

	return s.store.WithinTx(ctx, func(ctx context.Context, tx appRepos.Store) error {
		exists, err := tx.Accounts().ExistsByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("error checking superuser: %w", err)
		}
		if exists {
			s.logger.Info().Str("username", username).Msg("Superuser already exists")
			return nil
		}
		if strings.TrimSpace(password) == "" {
			return errors.New("superuser password is not configured")
		}

		account, err := s.createAccount(ctx, tx, username, email, password, appModels.RoleUnassigned, true)
		if err != nil {
			return err
		}
		if err := tx.Profiles().Create(ctx, &appModels.Profile{AccountID: account.ID}); err != nil {
			return fmt.Errorf("error creating profile: %w", err)
		}
		s.logger.Info().Str("username", username).Msg("Created superuser")
		return nil
	})
}

func (s *Seeder) createAccount(ctx context.Context, tx appRepos.Store, username, email, password string, role appModels.Role, superuser bool) (*appModels.Account, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	account := &appModels.Account{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         role,
		IsSuperuser:  superuser,
		IsActive:     true,
	}
	if err := tx.Accounts().Create(ctx, account); err != nil {
		return nil, fmt.Errorf("error creating account %s: %w", username, err)
	}
	return account, nil
}
