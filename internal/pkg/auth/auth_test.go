package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusrecords/internal/app/models"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "campusrecords-test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWT()
	account := &models.Account{ID: 42, Username: "prof_storm", Role: models.RoleFaculty}

	pair, err := svc.GenerateTokenPair(account)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, "FACULTY", claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateToken_Rejections(t *testing.T) {
	svc := newTestJWT()
	pair, err := svc.GenerateTokenPair(&models.Account{ID: 1, Username: "u", Role: models.RoleStudent})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour})
	_, err = other.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("faculty123")
	require.NoError(t, err)

	assert.True(t, h.Verify(hash, "faculty123"))
	assert.False(t, h.Verify(hash, "faculty124"))
}
