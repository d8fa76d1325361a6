// Package memory implements the repositories on in-process maps. Transactions
// are serialised and rolled back by restoring a snapshot. Writes made outside a
// transaction wait for the running one to finish, so a rollback never drops them.
package memory

import (
	"context"
	"sync"

	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/repositories"
)

type state struct {
	accounts    map[int64]models.Account
	subjects    map[int64]models.Subject
	students    map[int64]models.Student
	faculties   map[int64]models.Faculty
	profiles    map[int64]models.Profile
	tokens      map[string]models.RefreshToken
	enrollments map[int64]map[int64]struct{}
	seq         map[string]int64
}

func newState() *state {
	return &state{
		accounts:    map[int64]models.Account{},
		subjects:    map[int64]models.Subject{},
		students:    map[int64]models.Student{},
		faculties:   map[int64]models.Faculty{},
		profiles:    map[int64]models.Profile{},
		tokens:      map[string]models.RefreshToken{},
		enrollments: map[int64]map[int64]struct{}{},
		seq:         map[string]int64{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	c := &state{
		accounts:    cloneMap(s.accounts),
		subjects:    cloneMap(s.subjects),
		students:    cloneMap(s.students),
		faculties:   cloneMap(s.faculties),
		profiles:    cloneMap(s.profiles),
		tokens:      cloneMap(s.tokens),
		enrollments: make(map[int64]map[int64]struct{}, len(s.enrollments)),
		seq:         cloneMap(s.seq),
	}
	for k, v := range s.enrollments {
		c.enrollments[k] = cloneMap(v)
	}
	return c
}

func (s *state) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

type core struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   *state
}

// Store is a repositories.Store kept in memory.
type Store struct {
	c    *core
	inTx bool
}

var _ repositories.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{c: &core{st: newState()}}
}

// read runs fn under the data lock.
func (s *Store) read(fn func(st *state)) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	fn(s.c.st)
}

// write runs fn under the data lock and returns its error. Outside a
// transaction it also holds the transaction lock.
func (s *Store) write(fn func(st *state) error) error {
	if !s.inTx {
		s.c.txMu.Lock()
		defer s.c.txMu.Unlock()
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return fn(s.c.st)
}

func (s *Store) Accounts() repositories.IAccountRepository  { return accountRepo{s} }
func (s *Store) Subjects() repositories.ISubjectRepository  { return subjectRepo{s} }
func (s *Store) Students() repositories.IStudentRepository  { return studentRepo{s} }
func (s *Store) Faculties() repositories.IFacultyRepository { return facultyRepo{s} }
func (s *Store) Profiles() repositories.IProfileRepository  { return profileRepo{s} }
func (s *Store) Tokens() repositories.ITokenRepository      { return tokenRepo{s} }

// WithinTx implements repositories.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Store) error) (err error) {
	if s.inTx {
		return fn(ctx, s)
	}

	s.c.txMu.Lock()
	defer s.c.txMu.Unlock()

	var snapshot *state
	s.read(func(st *state) { snapshot = st.clone() })

	rollback := func() {
		s.c.mu.Lock()
		s.c.st = snapshot
		s.c.mu.Unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(ctx, &Store{c: s.c, inTx: true}); err != nil {
		rollback()
		return err
	}
	return nil
}

// Ping implements repositories.Store.
func (s *Store) Ping(context.Context) error { return nil }
