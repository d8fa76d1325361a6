package bootstrap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/repositories/memory"
	"github.com/yigit/campusrecords/internal/config"
	"github.com/yigit/campusrecords/internal/pkg/events"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
)

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.MaxUploadMB = 5
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpiration = "15m"
	cfg.JWT.RefreshTokenExpiration = "24h"
	cfg.JWT.Issuer = "campusrecords-test"
	cfg.Security.BcryptCost = 4
	cfg.Storage.Driver = "local"
	cfg.Storage.Path = t.TempDir()

	storage, err := filestorage.NewLocalStorage(cfg.Storage.Path, "http://files.test/uploads")
	require.NoError(t, err)
	require.NoError(t, RegisterValidators())

	lgr := zerolog.Nop()
	deps := BuildDependencies(cfg, memory.New(), storage, events.NewLogPublisher(lgr), lgr)
	router := SetupRouter(cfg, deps, lgr)
	gin.SetMode(gin.TestMode)
	return &testAPI{t: t, router: router}
}

func (a *testAPI) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *testAPI) register(username, role, department string) dto.TokenResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username":   username,
		"email":      username + "@university.com",
		"password":   "s3cretpass",
		"role":       role,
		"first_name": "First",
		"last_name":  username,
		"department": department,
	})
	require.Equal(a.t, http.StatusCreated, status, "register %s: %+v", username, env.Error)

	var tokens dto.TokenResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &tokens))
	return tokens
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthAndDepartments(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, w.Body.String())

	status, env := api.do(http.MethodGet, "/departments", "", nil)
	require.Equal(t, http.StatusOK, status)
	departments := decode[[]dto.DepartmentResponse](t, env.Data)
	require.Len(t, departments, 3)
	assert.Equal(t, "CS", departments[0].Code)
}

func TestRegisterLoginAndMe(t *testing.T) {
	api := newTestAPI(t)

	tokens := api.register("kpryde", "student", "Computer Science")
	assert.Equal(t, "student", tokens.Role)
	assert.NotEmpty(t, tokens.AccessToken)

	status, env := api.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "kpryde", "password": "s3cretpass"})
	require.Equal(t, http.StatusOK, status)
	login := decode[dto.TokenResponse](t, env.Data)

	status, env = api.do(http.MethodGet, "/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	me := decode[dto.AccountResponse](t, env.Data)
	assert.Equal(t, "STUDENT", me.Role)
	require.NotNil(t, me.Student)
	assert.Regexp(t, `^\d{2}CS001$`, me.Student.RollNumber)

	status, env = api.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "kpryde", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, env.Error.Code)

	status, _ = api.do(http.MethodPost, "/auth/logout", "", map[string]string{"refresh": login.RefreshToken})
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing fields", map[string]string{"username": "x"}},
		{"bad role", map[string]string{
			"username": "x", "email": "x@university.com", "password": "s3cretpass",
			"role": "admin", "first_name": "X", "last_name": "Y",
		}},
		{"unknown department", map[string]string{
			"username": "x", "email": "x@university.com", "password": "s3cretpass",
			"role": "student", "first_name": "X", "last_name": "Y", "department": "Astrology",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := api.do(http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION", env.Error.Kind)
		})
	}
}

func TestStudentRoutesRequireFaculty(t *testing.T) {
	api := newTestAPI(t)
	student := api.register("kpryde", "student", "Computer Science")

	status, _ := api.do(http.MethodGet, "/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(http.MethodGet, "/students", student.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(http.MethodPost, "/subjects", student.AccessToken, map[string]interface{}{"name": "Topology", "credits": 3})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(http.MethodGet, "/me/faculty", student.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestPromoteStudent(t *testing.T) {
	api := newTestAPI(t)
	faculty := api.register("xavier", "faculty", "")
	student := api.register("kpryde", "student", "Computer Science")

	status, env := api.do(http.MethodGet, "/students?department=Computer%20Science", faculty.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[struct {
		Items      []dto.StudentResponse `json:"items"`
		Pagination dto.PaginationInfo    `json:"pagination"`
	}](t, env.Data)
	require.Len(t, page.Items, 1)
	assert.EqualValues(t, 1, page.Pagination.TotalItems)

	status, env = api.do(http.MethodPost, fmt.Sprintf("/students/%d/promote", page.Items[0].ID), faculty.AccessToken, nil)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	promoted := decode[dto.FacultyResponse](t, env.Data)
	assert.Equal(t, "kpryde@university.com", promoted.Email)
	assert.Equal(t, "Computer Science", promoted.Department)

	// the record is resolved per request, so the old token already sees the new role
	status, _ = api.do(http.MethodGet, "/me/faculty", student.AccessToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodGet, "/me/student", student.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(http.MethodGet, fmt.Sprintf("/students/%d", page.Items[0].ID), faculty.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFacultySubjectAndEnrollment(t *testing.T) {
	api := newTestAPI(t)
	faculty := api.register("xavier", "faculty", "")

	for _, body := range []map[string]interface{}{
		{"code": "CS101", "name": "Introduction to Programming", "credits": 3},
		{"name": "Telepathy", "credits": 2},
	} {
		status, env := api.do(http.MethodPost, "/subjects", faculty.AccessToken, body)
		require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	}

	status, env := api.do(http.MethodPut, "/me/faculty/subject", faculty.AccessToken, map[string]string{"subject_code": "CS101"})
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	me := decode[dto.FacultyResponse](t, env.Data)
	assert.Equal(t, "CS101", me.SubjectCode)

	status, env = api.do(http.MethodPut, "/me/faculty/subject", faculty.AccessToken, map[string]string{"subject_code": "CS102"})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "STATE", env.Error.Kind)

	student := api.register("kpryde", "student", "Software Engineering")
	status, env = api.do(http.MethodGet, "/me/student", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	record := decode[dto.StudentResponse](t, env.Data)

	status, env = api.do(http.MethodPost, fmt.Sprintf("/students/%d/assign", record.ID), faculty.AccessToken, map[string]int64{"faculty_id": me.ID})
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)

	status, env = api.do(http.MethodGet, "/me/student/subjects", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	subjects := decode[[]dto.SubjectResponse](t, env.Data)
	require.Len(t, subjects, 1)
	assert.Equal(t, "CS101", subjects[0].Code)
	assert.NotEmpty(t, subjects[0].FacultyName)
}
