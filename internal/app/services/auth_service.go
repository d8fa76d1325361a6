package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/campusrecords/internal/app/auth"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/auth"
	"github.com/yigit/campusrecords/internal/pkg/events"
	"github.com/yigit/campusrecords/internal/pkg/validation"
)

// AuthService handles authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, accountID int64) (*models.Account, models.RoleBinding, error)
}

type authServiceImpl struct {
	store      repositories.Store
	hasher     *auth.PasswordHasher
	jwtService *auth.JWTService
	authz      *appauth.AuthorizationService
	publisher  events.Publisher
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	store repositories.Store,
	hasher *auth.PasswordHasher,
	jwtService *auth.JWTService,
	authz *appauth.AuthorizationService,
	publisher events.Publisher,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		store:      store,
		hasher:     hasher,
		jwtService: jwtService,
		authz:      authz,
		publisher:  publisher,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

func validateCredentials(username, password string) error {
	if !validation.CompiledPatterns.Username.MatchString(username) || len(username) > validation.UsernameMaxLength {
		return apperrors.NewFieldValidationError("username", "username may only contain letters, digits and @.+-_")
	}
	if len(password) < validation.PasswordMinLength {
		return apperrors.NewFieldValidationError("password", fmt.Sprintf("password must be at least %d characters long", validation.PasswordMinLength))
	}
	return nil
}

// Register creates the account, its role record and an empty profile in one transaction.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	role, err := models.ParseRegistrationRole(req.Role)
	if err != nil {
		return nil, apperrors.NewFieldValidationError("role", err.Error())
	}
	if err := validateCredentials(req.Username, req.Password); err != nil {
		return nil, err
	}
	if err := requireName("first_name", req.FirstName); err != nil {
		return nil, err
	}
	if err := requireName("last_name", req.LastName); err != nil {
		return nil, err
	}

	var department models.Department
	if role == models.RoleStudent {
		department, err = models.ParseDepartment(req.Department)
		if err != nil {
			return nil, apperrors.NewFieldValidationError("department", err.Error())
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account := &models.Account{
		Username:     req.Username,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}

	var student *models.Student
	var faculty *models.Faculty
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if err := ensureIdentityAvailable(ctx, tx, account.Username, account.Email); err != nil {
			return err
		}
		if err := tx.Accounts().Create(ctx, account); err != nil {
			return err
		}

		switch role {
		case models.RoleStudent:
			student = &models.Student{
				AccountID:  account.ID,
				FirstName:  req.FirstName,
				LastName:   req.LastName,
				Email:      account.Email,
				Department: department,
			}
			if err := createStudentRecord(ctx, tx, student); err != nil {
				return err
			}
		case models.RoleFaculty:
			faculty = &models.Faculty{
				AccountID:  account.ID,
				FirstName:  req.FirstName,
				LastName:   req.LastName,
				Email:      account.Email,
				Department: req.Department,
			}
			if strings.TrimSpace(faculty.Department) == "" {
				faculty.Department = models.DefaultFacultyDepartment
			}
			if err := tx.Faculties().Create(ctx, faculty); err != nil {
				return err
			}
		}

		return tx.Profiles().Create(ctx, &models.Profile{
			AccountID: account.ID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("accountID", account.ID).Str("role", string(role)).Msg("Account registered")
	publish(ctx, s.publisher, s.logger, events.New(events.AccountRegistered, account.ID, map[string]interface{}{"role": role}))
	if student != nil {
		publish(ctx, s.publisher, s.logger, events.New(events.StudentCreated, account.ID, map[string]interface{}{
			"studentId": student.ID, "rollNumber": student.RollNumber, "department": student.Department,
		}))
	}

	return s.issueTokens(ctx, account)
}

// Login authenticates by username and password.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	account, err := s.store.Accounts().GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading account: %w", err)
	}
	if !s.hasher.Verify(account.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.store.Accounts().TouchLastLogin(ctx, account.ID, timeNow()); err != nil {
		s.logger.Warn().Err(err).Int64("accountID", account.ID).Msg("Failed to record last login")
	}
	return s.issueTokens(ctx, account)
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair issued.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	stored, err := s.store.Tokens().Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if stored.ExpiresAt.Before(timeNow()) {
		_ = s.store.Tokens().Revoke(ctx, refreshToken)
		return nil, apperrors.ErrTokenExpired
	}

	account, err := s.store.Accounts().GetByID(ctx, stored.AccountID)
	if err != nil {
		return nil, fmt.Errorf("error loading account: %w", err)
	}
	if !account.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.store.Tokens().Revoke(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}
	return s.issueTokens(ctx, account)
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.ErrTokenInvalid
	}
	return s.store.Tokens().Revoke(ctx, refreshToken)
}

// Me loads the account and its role record.
func (s *authServiceImpl) Me(ctx context.Context, accountID int64) (*models.Account, models.RoleBinding, error) {
	account, binding, err := s.authz.ResolveByID(ctx, accountID)
	if err != nil {
		return nil, nil, notFound(err, apperrors.ErrAccountNotFound, "account not found")
	}
	return account, binding, nil
}

func (s *authServiceImpl) issueTokens(ctx context.Context, account *models.Account) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(account)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.store.Tokens().Create(ctx, &models.RefreshToken{
		Token:     pair.RefreshToken,
		AccountID: account.ID,
		ExpiresAt: pair.RefreshExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		Role:             strings.ToLower(string(account.Role)),
		TokenType:        "Bearer",
		ExpiresIn:        int64(pair.ExpiresIn),
		RefreshExpiresAt: pair.RefreshExpiresAt.UTC().Format(time.RFC3339),
	}, nil
}
