package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/campusrecords/internal/app/auth"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/repositories/memory"
	"github.com/yigit/campusrecords/internal/pkg/auth"
	"github.com/yigit/campusrecords/internal/pkg/events"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
)

// fakeStorage keeps blob references in memory.
type fakeStorage struct {
	mu      sync.Mutex
	next    int
	stored  map[string]bool
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{stored: map[string]bool{}}
}

func (f *fakeStorage) Store(_ context.Context, folder string, upload *filestorage.Upload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := io.Copy(io.Discard, upload.Content); err != nil {
		return "", err
	}
	f.next++
	ref := fmt.Sprintf("%s/%d%s", folder, f.next, upload.Ext())
	f.stored[ref] = true
	return ref, nil
}

func (f *fakeStorage) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, ref)
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeStorage) URLFor(ref string) string {
	if ref == "" {
		return ""
	}
	return "http://files.test/" + ref
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *memory.Store
	storage    *fakeStorage
	publisher  *recordingPublisher
	auth       AuthService
	students   StudentService
	faculties  FacultyService
	subjects   SubjectService
	enrollment EnrollmentService
	profiles   ProfileService
}

var catalog = []struct {
	code    string
	name    string
	credits int
}{
	{"CS101", "Introduction to Programming", 3},
	{"CS201", "Data Structures", 4},
	{"CS301", "Algorithms", 4},
	{"CS302", "Operating Systems", 3},
	{"CS402", "Software Engineering", 3},
	{"CS403", "Computer Networks", 3},
	{"CS404", "Database Systems", 3},
}

// newFixture wires every service on an in-memory store with the clock pinned to 2024.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	restore := timeNow
	timeNow = func() time.Time { return time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = restore })

	store := memory.New()
	for _, c := range catalog {
		require.NoError(t, store.Subjects().Create(context.Background(), &models.Subject{Code: c.code, Name: c.name, Credits: c.credits}))
	}

	log := zerolog.Nop()
	storage := newFakeStorage()
	publisher := &recordingPublisher{}
	hasher := auth.NewPasswordHasher(4)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "campusrecords-test",
	})

	return &fixture{
		store:      store,
		storage:    storage,
		publisher:  publisher,
		auth:       NewAuthService(store, hasher, jwtService, appauth.NewAuthorizationService(store), publisher, log),
		students:   NewStudentService(store, hasher, storage, publisher, log),
		faculties:  NewFacultyService(store, storage, log),
		subjects:   NewSubjectService(store, log),
		enrollment: NewEnrollmentService(store, storage, publisher, log),
		profiles:   NewProfileService(store, storage, log),
	}
}

func (f *fixture) createStudent(t *testing.T, username, email string, dept models.Department) *models.Student {
	t.Helper()
	s, err := f.students.CreateStudent(context.Background(), &dto.CreateStudentRequest{
		Username:   username,
		Password:   "password123",
		Email:      email,
		FirstName:  "First " + username,
		LastName:   "Last",
		Department: string(dept),
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) registerFaculty(t *testing.T, username, email string) *models.Faculty {
	t.Helper()
	_, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		Username:  username,
		Email:     email,
		Password:  "password123",
		Role:      "faculty",
		FirstName: "Prof",
		LastName:  username,
	})
	require.NoError(t, err)
	account, err := f.store.Accounts().GetByUsername(context.Background(), username)
	require.NoError(t, err)
	faculty, err := f.faculties.GetFacultyByAccount(context.Background(), account.ID)
	require.NoError(t, err)
	return faculty
}

func subjectCodes(subjects []*models.Subject) []string {
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, s.Code)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
