package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validation rule patterns
var (
	RollNumberPattern  = `^\d{2}[A-Z]{2}\d{3}$`
	SubjectCodePattern = `^CS\d{3}$`
	UsernamePattern    = `^[A-Za-z0-9@.+\-_]+$`

	// DateLayout is the only accepted date-of-birth format.
	DateLayout = "2006-01-02"
	// DateFormatHint names DateLayout for users.
	DateFormatHint = "YYYY-MM-DD"

	PasswordMinLength = 8
	NameMaxLength     = 100
	UsernameMaxLength = 150
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	RollNumber  *regexp.Regexp
	SubjectCode *regexp.Regexp
	Username    *regexp.Regexp
}{
	RollNumber:  regexp.MustCompile(RollNumberPattern),
	SubjectCode: regexp.MustCompile(SubjectCodePattern),
	Username:    regexp.MustCompile(UsernamePattern),
}

// Enumerated optional fields.
var (
	Genders     = []string{"Male", "Female", "Other"}
	BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
)

// IsRollNumber reports whether s is a well-formed roll number.
func IsRollNumber(s string) bool { return CompiledPatterns.RollNumber.MatchString(s) }

// IsSubjectCode reports whether s is a well-formed subject code.
func IsSubjectCode(s string) bool { return CompiledPatterns.SubjectCode.MatchString(s) }

// IsGender reports whether s is an accepted gender value.
func IsGender(s string) bool { return contains(Genders, s) }

// IsBloodGroup reports whether s is an accepted blood group.
func IsBloodGroup(s string) bool { return contains(BloodGroups, s) }

// ParseDate parses a date of birth. The error names the expected format.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected format %s", s, DateFormatHint)
	}
	return t, nil
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
