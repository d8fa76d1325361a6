package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "middleware-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "test",
	})
}

func token(t *testing.T, jwt *auth.JWTService, role models.Role, superuser bool) string {
	t.Helper()
	pair, err := jwt.GenerateTokenPair(&models.Account{ID: 7, Username: "u", Role: role, IsSuperuser: superuser})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestJWTAuthAndRoles(t *testing.T) {
	jwt := newJWT()
	m := NewAuthMiddleware(jwt)

	r := gin.New()
	r.GET("/any", m.JWTAuth(), func(c *gin.Context) {
		id, _ := AccountID(c)
		role, _ := RoleFrom(c)
		c.String(http.StatusOK, "%d:%s", id, role)
	})
	r.GET("/faculty", m.JWTAuth(), m.RoleRequired(models.RoleFaculty), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/root", m.JWTAuth(), m.SuperuserRequired(), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/any", "", http.StatusUnauthorized},
		{"garbage token", "/any", "Bearer not-a-token", http.StatusUnauthorized},
		{"student token", "/any", "Bearer " + token(t, jwt, models.RoleStudent, false), http.StatusOK},
		{"raw token", "/any", token(t, jwt, models.RoleStudent, false), http.StatusOK},
		{"student on faculty route", "/faculty", "Bearer " + token(t, jwt, models.RoleStudent, false), http.StatusForbidden},
		{"faculty on faculty route", "/faculty", "Bearer " + token(t, jwt, models.RoleFaculty, false), http.StatusOK},
		{"superuser on faculty route", "/faculty", "Bearer " + token(t, jwt, models.RoleUnassigned, true), http.StatusOK},
		{"faculty on superuser route", "/root", "Bearer " + token(t, jwt, models.RoleFaculty, false), http.StatusForbidden},
		{"superuser route", "/root", "Bearer " + token(t, jwt, models.RoleUnassigned, true), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("claims reach the handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/any", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, jwt, models.RoleFaculty, false))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "7:FACULTY", w.Body.String())
	})
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
		field  string
	}{
		{"validation", apperrors.NewFieldValidationError("email", "taken"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "email"},
		{"not found", apperrors.NewNotFoundError(apperrors.ErrStudentNotFound, "student 4 not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
		{"bare sentinel", fmt.Errorf("lookup: %w", apperrors.ErrSubjectNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
		{"state", apperrors.NewStateError("already teaches CS101"), http.StatusConflict, dto.ErrorCodeInvalidState, ""},
		{"integrity", apperrors.NewIntegrityError("duplicate", nil), http.StatusConflict, dto.ErrorCodeIntegrity, ""},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, ""},
		{"revoked", apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, ""},
		{"forbidden", apperrors.NewForbiddenError("students only"), http.StatusForbidden, dto.ErrorCodeForbidden, ""},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.field, body.Error.Field)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Error.Message, "connection reset")
			}
		})
	}
}

func TestValidationErrorDetail(t *testing.T) {
	type payload struct {
		FirstName string `json:"first_name" binding:"required"`
	}

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			AbortWithBindingError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", jsonBody(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "first_name", body.Error.Field)
	assert.Equal(t, "first_name is required", body.Error.Message)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"first_name":`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }
