package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/validation"
)

// ---- accounts

type accountRepo struct{ s *Store }

func (r accountRepo) Create(_ context.Context, a *models.Account) error {
	return r.s.write(func(st *state) error {
		for _, other := range st.accounts {
			if other.Username == a.Username {
				return repositories.ConstraintError("accounts_username_key")
			}
			if strings.EqualFold(other.Email, a.Email) {
				return repositories.ConstraintError("accounts_email_key")
			}
		}
		if a.Role == "" {
			a.Role = models.RoleUnassigned
		}
		now := time.Now()
		a.ID = st.nextID("accounts")
		a.CreatedAt, a.UpdatedAt = now, now
		st.accounts[a.ID] = *a
		return nil
	})
}

func (r accountRepo) find(match func(models.Account) bool) (*models.Account, error) {
	var found *models.Account
	r.s.read(func(st *state) {
		for _, a := range st.accounts {
			if match(a) {
				a := a
				found = &a
				return
			}
		}
	})
	if found == nil {
		return nil, apperrors.ErrAccountNotFound
	}
	return found, nil
}

func (r accountRepo) GetByID(_ context.Context, id int64) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.ID == id })
}

func (r accountRepo) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.Username == username })
}

func (r accountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r accountRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := r.find(func(a models.Account) bool { return strings.EqualFold(a.Email, email) })
	return err == nil, nil
}

func (r accountRepo) mutate(id int64, fn func(st *state, a *models.Account) error) error {
	return r.s.write(func(st *state) error {
		a, ok := st.accounts[id]
		if !ok {
			return apperrors.ErrAccountNotFound
		}
		if err := fn(st, &a); err != nil {
			return err
		}
		a.UpdatedAt = time.Now()
		st.accounts[id] = a
		return nil
	})
}

func (r accountRepo) UpdateRole(_ context.Context, id int64, role models.Role) error {
	return r.mutate(id, func(_ *state, a *models.Account) error {
		a.Role = role
		return nil
	})
}

func (r accountRepo) UpdateEmail(_ context.Context, id int64, email string) error {
	return r.mutate(id, func(st *state, a *models.Account) error {
		for _, other := range st.accounts {
			if other.ID != id && strings.EqualFold(other.Email, email) {
				return repositories.ConstraintError("accounts_email_key")
			}
		}
		a.Email = email
		return nil
	})
}

func (r accountRepo) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	return r.mutate(id, func(_ *state, a *models.Account) error {
		a.LastLoginAt = &at
		return nil
	})
}

// Delete cascades like the foreign keys in the schema.
func (r accountRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.accounts[id]; !ok {
			return apperrors.ErrAccountNotFound
		}
		delete(st.accounts, id)
		for sid, s := range st.students {
			if s.AccountID == id {
				delete(st.students, sid)
				delete(st.enrollments, sid)
			}
		}
		for fid, f := range st.faculties {
			if f.AccountID == id {
				delete(st.faculties, fid)
			}
		}
		for pid, p := range st.profiles {
			if p.AccountID == id {
				delete(st.profiles, pid)
			}
		}
		for tok, t := range st.tokens {
			if t.AccountID == id {
				delete(st.tokens, tok)
			}
		}
		return nil
	})
}

// ---- subjects

type subjectRepo struct{ s *Store }

func sortSubjects(subjects []*models.Subject) {
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Code < subjects[j].Code })
}

func (r subjectRepo) Create(_ context.Context, subject *models.Subject) error {
	return r.s.write(func(st *state) error {
		if !validation.IsSubjectCode(subject.Code) {
			return apperrors.NewIntegrityError("subject code violates subjects_code_check", nil)
		}
		if subject.Credits <= 0 {
			return apperrors.NewIntegrityError("credits violates subjects_credits_check", nil)
		}
		for _, other := range st.subjects {
			if other.Code == subject.Code {
				return repositories.ConstraintError("subjects_code_key")
			}
			if other.Name == subject.Name {
				return repositories.ConstraintError("subjects_name_key")
			}
		}
		now := time.Now()
		subject.ID = st.nextID("subjects")
		subject.CreatedAt, subject.UpdatedAt = now, now
		stored := *subject
		stored.Faculty = nil
		st.subjects[subject.ID] = stored
		return nil
	})
}

func (r subjectRepo) find(match func(models.Subject) bool) (*models.Subject, error) {
	var found *models.Subject
	r.s.read(func(st *state) {
		for _, s := range st.subjects {
			if match(s) {
				s := s
				found = &s
				return
			}
		}
	})
	if found == nil {
		return nil, apperrors.ErrSubjectNotFound
	}
	return found, nil
}

func (r subjectRepo) GetByID(_ context.Context, id int64) (*models.Subject, error) {
	return r.find(func(s models.Subject) bool { return s.ID == id })
}

func (r subjectRepo) GetByCode(_ context.Context, code string) (*models.Subject, error) {
	return r.find(func(s models.Subject) bool { return s.Code == code })
}

func (r subjectRepo) collect(match func(models.Subject) bool) []*models.Subject {
	out := []*models.Subject{}
	r.s.read(func(st *state) {
		for _, s := range st.subjects {
			if match(s) {
				s := s
				out = append(out, &s)
			}
		}
	})
	sortSubjects(out)
	return out
}

func (r subjectRepo) ListByCodes(_ context.Context, codes []string) ([]*models.Subject, error) {
	wanted := map[string]bool{}
	for _, c := range codes {
		wanted[c] = true
	}
	return r.collect(func(s models.Subject) bool { return wanted[s.Code] }), nil
}

func (r subjectRepo) List(context.Context) ([]*models.Subject, error) {
	return r.collect(func(models.Subject) bool { return true }), nil
}

func (r subjectRepo) Update(_ context.Context, subject *models.Subject) error {
	return r.s.write(func(st *state) error {
		current, ok := st.subjects[subject.ID]
		if !ok {
			return apperrors.ErrSubjectNotFound
		}
		for _, other := range st.subjects {
			if other.ID != subject.ID && other.Name == subject.Name {
				return repositories.ConstraintError("subjects_name_key")
			}
		}
		if subject.Credits <= 0 {
			return apperrors.NewIntegrityError("credits violates subjects_credits_check", nil)
		}
		current.Name = subject.Name
		current.Description = subject.Description
		current.Credits = subject.Credits
		current.UpdatedAt = time.Now()
		subject.UpdatedAt = current.UpdatedAt
		st.subjects[subject.ID] = current
		return nil
	})
}

func (r subjectRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.subjects[id]; !ok {
			return apperrors.ErrSubjectNotFound
		}
		delete(st.subjects, id)
		for _, set := range st.enrollments {
			delete(set, id)
		}
		for fid, f := range st.faculties {
			if f.SubjectID != nil && *f.SubjectID == id {
				f.SubjectID = nil
				st.faculties[fid] = f
			}
		}
		return nil
	})
}

func (r subjectRepo) ExistsByName(_ context.Context, name string, excludeID int64) (bool, error) {
	_, err := r.find(func(s models.Subject) bool { return s.ID != excludeID && strings.EqualFold(s.Name, name) })
	return err == nil, nil
}

func (r subjectRepo) MaxCodeNumber(context.Context) (int, error) {
	max := 0
	r.s.read(func(st *state) {
		for _, s := range st.subjects {
			if !validation.IsSubjectCode(s.Code) {
				continue
			}
			if n, err := strconv.Atoi(s.Code[2:]); err == nil && n > max {
				max = n
			}
		}
	})
	return max, nil
}

// LockCodeSequence is a no-op: transactions are already serialised.
func (r subjectRepo) LockCodeSequence(context.Context) error { return nil }

// ---- students

type studentRepo struct{ s *Store }

func checkStudentUnique(st *state, s *models.Student) error {
	for _, other := range st.students {
		if other.ID == s.ID {
			continue
		}
		if other.AccountID == s.AccountID {
			return repositories.ConstraintError("students_account_id_key")
		}
		if strings.EqualFold(other.Email, s.Email) {
			return repositories.ConstraintError("students_email_key")
		}
		if other.RollNumber == s.RollNumber {
			return repositories.ConstraintError("students_roll_number_key")
		}
	}
	return nil
}

func (r studentRepo) Create(_ context.Context, s *models.Student) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.accounts[s.AccountID]; !ok {
			return apperrors.NewIntegrityError("create student references a missing record (students_account_id_fkey)", nil)
		}
		if !validation.IsRollNumber(s.RollNumber) {
			return apperrors.NewIntegrityError("roll number violates students_roll_number_check", nil)
		}
		if !s.Department.Valid() {
			return apperrors.NewIntegrityError("department violates students_department_check", nil)
		}
		if err := checkStudentUnique(st, s); err != nil {
			return err
		}
		now := time.Now()
		s.ID = st.nextID("students")
		s.CreatedAt, s.UpdatedAt = now, now
		stored := *s
		stored.Subjects = nil
		st.students[s.ID] = stored
		return nil
	})
}

func (r studentRepo) find(match func(models.Student) bool) (*models.Student, error) {
	var found *models.Student
	r.s.read(func(st *state) {
		for _, s := range st.students {
			if match(s) {
				s := s
				found = &s
				return
			}
		}
	})
	if found == nil {
		return nil, apperrors.ErrStudentNotFound
	}
	return found, nil
}

func (r studentRepo) GetByID(_ context.Context, id int64) (*models.Student, error) {
	return r.find(func(s models.Student) bool { return s.ID == id })
}

func (r studentRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	return r.GetByID(ctx, id)
}

func (r studentRepo) GetByAccountID(_ context.Context, accountID int64) (*models.Student, error) {
	return r.find(func(s models.Student) bool { return s.AccountID == accountID })
}

func (r studentRepo) List(_ context.Context, filter repositories.StudentFilter) ([]*models.Student, int64, error) {
	search := strings.ToLower(filter.Search)
	matches := []*models.Student{}
	r.s.read(func(st *state) {
		for _, s := range st.students {
			if filter.Department != "" && s.Department != filter.Department {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(s.FirstName+"\x00"+s.LastName+"\x00"+s.Email+"\x00"+s.RollNumber), search) {
				continue
			}
			s := s
			matches = append(matches, &s)
		}
	})
	sort.Slice(matches, func(i, j int) bool { return matches[i].RollNumber < matches[j].RollNumber })

	total := int64(len(matches))
	start := int(filter.Offset)
	if start > len(matches) {
		start = len(matches)
	}
	end := len(matches)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matches[start:end], total, nil
}

func (r studentRepo) Update(_ context.Context, s *models.Student) error {
	return r.s.write(func(st *state) error {
		current, ok := st.students[s.ID]
		if !ok {
			return apperrors.ErrStudentNotFound
		}
		if !s.Department.Valid() {
			return apperrors.NewIntegrityError("department violates students_department_check", nil)
		}
		probe := *s
		probe.AccountID = current.AccountID
		probe.RollNumber = current.RollNumber
		if err := checkStudentUnique(st, &probe); err != nil {
			return err
		}
		current.FirstName = s.FirstName
		current.LastName = s.LastName
		current.Email = s.Email
		current.Department = s.Department
		current.Gender = s.Gender
		current.BloodGroup = s.BloodGroup
		current.DateOfBirth = s.DateOfBirth
		current.ContactNumber = s.ContactNumber
		current.Address = s.Address
		current.PictureRef = s.PictureRef
		current.UpdatedAt = time.Now()
		s.UpdatedAt = current.UpdatedAt
		st.students[s.ID] = current
		return nil
	})
}

func (r studentRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.students[id]; !ok {
			return apperrors.ErrStudentNotFound
		}
		delete(st.students, id)
		delete(st.enrollments, id)
		return nil
	})
}

func (r studentRepo) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	_, err := r.find(func(s models.Student) bool { return s.ID != excludeID && strings.EqualFold(s.Email, email) })
	return err == nil, nil
}

func (r studentRepo) MaxRollSequence(_ context.Context, yearPrefix string) (int, error) {
	max := 0
	r.s.read(func(st *state) {
		for _, s := range st.students {
			if !strings.HasPrefix(s.RollNumber, yearPrefix) || len(s.RollNumber) < 7 {
				continue
			}
			if n, err := strconv.Atoi(s.RollNumber[4:7]); err == nil && n > max {
				max = n
			}
		}
	})
	return max, nil
}

// LockRollSequence is a no-op: transactions are already serialised.
func (r studentRepo) LockRollSequence(context.Context, string) error { return nil }

func (r studentRepo) ReplaceSubjects(_ context.Context, studentID int64, subjectIDs []int64) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.students[studentID]; !ok {
			return apperrors.NewIntegrityError("enroll student references a missing record (student_subjects_student_id_fkey)", nil)
		}
		set := map[int64]struct{}{}
		for _, id := range subjectIDs {
			if _, ok := st.subjects[id]; !ok {
				return apperrors.NewIntegrityError("enroll student references a missing record (student_subjects_subject_id_fkey)", nil)
			}
			set[id] = struct{}{}
		}
		st.enrollments[studentID] = set
		return nil
	})
}

func (r studentRepo) AddSubject(_ context.Context, studentID, subjectID int64) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.students[studentID]; !ok {
			return apperrors.NewIntegrityError("enroll student references a missing record (student_subjects_student_id_fkey)", nil)
		}
		if _, ok := st.subjects[subjectID]; !ok {
			return apperrors.NewIntegrityError("enroll student references a missing record (student_subjects_subject_id_fkey)", nil)
		}
		if st.enrollments[studentID] == nil {
			st.enrollments[studentID] = map[int64]struct{}{}
		}
		st.enrollments[studentID][subjectID] = struct{}{}
		return nil
	})
}

func (r studentRepo) ClearSubjects(_ context.Context, studentID int64) error {
	return r.s.write(func(st *state) error {
		delete(st.enrollments, studentID)
		return nil
	})
}

func (r studentRepo) ListSubjects(_ context.Context, studentID int64) ([]*models.Subject, error) {
	out := []*models.Subject{}
	r.s.read(func(st *state) {
		for id := range st.enrollments[studentID] {
			if s, ok := st.subjects[id]; ok {
				out = append(out, &s)
			}
		}
	})
	sortSubjects(out)
	return out, nil
}

// EnrollmentCount counts enrollment rows referencing studentID.
func (s *Store) EnrollmentCount(studentID int64) int {
	n := 0
	s.read(func(st *state) { n = len(st.enrollments[studentID]) })
	return n
}

// ---- faculties

type facultyRepo struct{ s *Store }

func checkFacultyUnique(st *state, f *models.Faculty) error {
	for _, other := range st.faculties {
		if other.ID == f.ID {
			continue
		}
		if other.AccountID == f.AccountID {
			return repositories.ConstraintError("faculties_account_id_key")
		}
		if strings.EqualFold(other.Email, f.Email) {
			return repositories.ConstraintError("faculties_email_key")
		}
		if f.SubjectID != nil && other.SubjectID != nil && *other.SubjectID == *f.SubjectID {
			return repositories.ConstraintError("faculties_subject_id_key")
		}
	}
	return nil
}

func withSubject(st *state, f models.Faculty) *models.Faculty {
	f.Subject = nil
	if f.SubjectID != nil {
		if s, ok := st.subjects[*f.SubjectID]; ok {
			f.Subject = &s
		}
	}
	return &f
}

func (r facultyRepo) Create(_ context.Context, f *models.Faculty) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.accounts[f.AccountID]; !ok {
			return apperrors.NewIntegrityError("create faculty references a missing record (faculties_account_id_fkey)", nil)
		}
		if f.SubjectID != nil {
			if _, ok := st.subjects[*f.SubjectID]; !ok {
				return apperrors.NewIntegrityError("create faculty references a missing record (faculties_subject_id_fkey)", nil)
			}
		}
		if err := checkFacultyUnique(st, f); err != nil {
			return err
		}
		now := time.Now()
		f.ID = st.nextID("faculties")
		f.CreatedAt, f.UpdatedAt = now, now
		stored := *f
		stored.Subject = nil
		st.faculties[f.ID] = stored
		return nil
	})
}

func (r facultyRepo) find(match func(models.Faculty) bool) (*models.Faculty, error) {
	var found *models.Faculty
	r.s.read(func(st *state) {
		for _, f := range st.faculties {
			if match(f) {
				found = withSubject(st, f)
				return
			}
		}
	})
	if found == nil {
		return nil, apperrors.ErrFacultyNotFound
	}
	return found, nil
}

func (r facultyRepo) GetByID(_ context.Context, id int64) (*models.Faculty, error) {
	return r.find(func(f models.Faculty) bool { return f.ID == id })
}

func (r facultyRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Faculty, error) {
	return r.GetByID(ctx, id)
}

func (r facultyRepo) GetByAccountID(_ context.Context, accountID int64) (*models.Faculty, error) {
	return r.find(func(f models.Faculty) bool { return f.AccountID == accountID })
}

func (r facultyRepo) GetBySubjectID(_ context.Context, subjectID int64) (*models.Faculty, error) {
	return r.find(func(f models.Faculty) bool { return f.SubjectID != nil && *f.SubjectID == subjectID })
}

func (r facultyRepo) List(_ context.Context, offset uint64, limit int) ([]*models.Faculty, int64, error) {
	all := []*models.Faculty{}
	r.s.read(func(st *state) {
		for _, f := range st.faculties {
			all = append(all, withSubject(st, f))
		}
	})
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].FirstName < all[j].FirstName
	})

	total := int64(len(all))
	start := int(offset)
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return all[start:end], total, nil
}

func (r facultyRepo) mutate(id int64, fn func(st *state, f *models.Faculty) error) error {
	return r.s.write(func(st *state) error {
		f, ok := st.faculties[id]
		if !ok {
			return apperrors.ErrFacultyNotFound
		}
		if err := fn(st, &f); err != nil {
			return err
		}
		f.UpdatedAt = time.Now()
		st.faculties[id] = f
		return nil
	})
}

func (r facultyRepo) Update(_ context.Context, faculty *models.Faculty) error {
	return r.mutate(faculty.ID, func(st *state, f *models.Faculty) error {
		probe := *f
		probe.Email = faculty.Email
		if err := checkFacultyUnique(st, &probe); err != nil {
			return err
		}
		f.FirstName = faculty.FirstName
		f.LastName = faculty.LastName
		f.Email = faculty.Email
		f.Department = faculty.Department
		return nil
	})
}

func (r facultyRepo) SetSubject(_ context.Context, facultyID int64, subjectID *int64) error {
	return r.mutate(facultyID, func(st *state, f *models.Faculty) error {
		if subjectID != nil {
			if _, ok := st.subjects[*subjectID]; !ok {
				return apperrors.NewIntegrityError("assign faculty subject references a missing record (faculties_subject_id_fkey)", nil)
			}
		}
		probe := *f
		probe.SubjectID = subjectID
		if err := checkFacultyUnique(st, &probe); err != nil {
			return err
		}
		f.SubjectID = subjectID
		return nil
	})
}

func (r facultyRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.faculties[id]; !ok {
			return apperrors.ErrFacultyNotFound
		}
		delete(st.faculties, id)
		return nil
	})
}

func (r facultyRepo) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	_, err := r.find(func(f models.Faculty) bool { return f.ID != excludeID && strings.EqualFold(f.Email, email) })
	return err == nil, nil
}

// ---- profiles

type profileRepo struct{ s *Store }

func (r profileRepo) Create(_ context.Context, p *models.Profile) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.accounts[p.AccountID]; !ok {
			return apperrors.NewIntegrityError("create profile references a missing record (profiles_account_id_fkey)", nil)
		}
		for _, other := range st.profiles {
			if other.AccountID == p.AccountID {
				return repositories.ConstraintError("profiles_account_id_key")
			}
		}
		now := time.Now()
		p.ID = st.nextID("profiles")
		p.CreatedAt, p.UpdatedAt = now, now
		st.profiles[p.ID] = *p
		return nil
	})
}

func (r profileRepo) GetByAccountID(_ context.Context, accountID int64) (*models.Profile, error) {
	var found *models.Profile
	r.s.read(func(st *state) {
		for _, p := range st.profiles {
			if p.AccountID == accountID {
				p := p
				found = &p
				return
			}
		}
	})
	if found == nil {
		return nil, apperrors.ErrProfileNotFound
	}
	return found, nil
}

func (r profileRepo) Update(_ context.Context, p *models.Profile) error {
	return r.s.write(func(st *state) error {
		current, ok := st.profiles[p.ID]
		if !ok {
			return apperrors.ErrProfileNotFound
		}
		updated := *p
		updated.AccountID = current.AccountID
		updated.CreatedAt = current.CreatedAt
		updated.UpdatedAt = time.Now()
		p.UpdatedAt = updated.UpdatedAt
		st.profiles[p.ID] = updated
		return nil
	})
}

func (r profileRepo) DeleteByAccountID(_ context.Context, accountID int64) error {
	return r.s.write(func(st *state) error {
		for id, p := range st.profiles {
			if p.AccountID == accountID {
				delete(st.profiles, id)
			}
		}
		return nil
	})
}

// ---- refresh tokens

type tokenRepo struct{ s *Store }

func (r tokenRepo) Create(_ context.Context, t *models.RefreshToken) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.accounts[t.AccountID]; !ok {
			return apperrors.NewIntegrityError("create refresh token references a missing record (refresh_tokens_account_id_fkey)", nil)
		}
		if _, dup := st.tokens[t.Token]; dup {
			return repositories.ConstraintError("refresh_tokens_pkey")
		}
		st.tokens[t.Token] = *t
		return nil
	})
}

func (r tokenRepo) Get(_ context.Context, token string) (*models.RefreshToken, error) {
	var found *models.RefreshToken
	r.s.read(func(st *state) {
		if t, ok := st.tokens[token]; ok {
			found = &t
		}
	})
	if found == nil {
		return nil, apperrors.ErrTokenNotFound
	}
	return found, nil
}

func (r tokenRepo) Revoke(_ context.Context, token string) error {
	return r.s.write(func(st *state) error {
		if t, ok := st.tokens[token]; ok {
			t.Revoked = true
			st.tokens[token] = t
		}
		return nil
	})
}

func (r tokenRepo) RevokeAllForAccount(_ context.Context, accountID int64) error {
	return r.s.write(func(st *state) error {
		for k, t := range st.tokens {
			if t.AccountID == accountID {
				t.Revoked = true
				st.tokens[k] = t
			}
		}
		return nil
	})
}
