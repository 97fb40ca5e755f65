package clinic

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

const (
	minDateYear     = 2000
	futureYearSlack = 2
	maxNameLen      = 50
	maxAddressLen   = 100
	maxEmailLen     = 254
	maxDetailsLen   = 200
	maxPurposeLen   = 100
	maxVaccineLen   = 50
	maxPetAge       = 50
	dateLayout      = "2006-01-02"
)

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern     = regexp.MustCompile(`^\d{2}:\d{2}$`)
	addressPattern  = regexp.MustCompile(`^[A-Za-z0-9\s,.\-'/]+$`)
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
)

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, fmt.Sprintf(format, args...))
}

// Validator checks user-supplied field values. Date rules are evaluated
// against Now.
type Validator struct {
	Now func() time.Time
}

func (v Validator) today() time.Time {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ValidateName(name string) error { return checkWords("name", name) }

func ValidateBreed(breed string) error { return checkWords("breed", breed) }

// checkWords accepts up to 50 letters, spaces, apostrophes and hyphens.
func checkWords(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return invalid(field, "must not be empty")
	}
	if len(s) > maxNameLen {
		return invalid(field, "longer than %d characters", maxNameLen)
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' && r != '\'' && r != '-' {
			return invalid(field, "only letters, spaces, apostrophes and hyphens are allowed")
		}
	}
	return nil
}

func ValidateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return invalid("address", "must not be empty")
	}
	if len(address) > maxAddressLen {
		return invalid("address", "longer than %d characters", maxAddressLen)
	}
	if !addressPattern.MatchString(address) {
		return invalid("address", "contains unsupported characters")
	}
	return nil
}

// ValidatePhone accepts an 11-digit number starting with 07.
func ValidatePhone(phone string) error {
	if len(phone) != 11 {
		return invalid("phone", "must be exactly 11 digits")
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return invalid("phone", "must contain digits only")
		}
	}
	if !strings.HasPrefix(phone, "07") {
		return invalid("phone", "must start with 07")
	}
	return nil
}

func ValidateEmail(email string) error {
	if len(email) > maxEmailLen {
		return invalid("email", "too long")
	}
	if !emailPattern.MatchString(email) {
		return invalid("email", "not a valid address")
	}
	return nil
}

func ValidateAge(age int) error {
	if age < 0 || age > maxPetAge {
		return invalid("age", "must be between 0 and %d", maxPetAge)
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD calendar date whose year lies between 2000
// and the current year, or two years past it when allowFuture is set. Without
// allowFuture the date must not be after today.
func (v Validator) ValidateDate(date string, allowFuture bool) error {
	d, err := v.parseDate(date, allowFuture)
	if err != nil {
		return err
	}
	if !allowFuture && d.After(v.today()) {
		return invalid("date", "%s is in the future", date)
	}
	return nil
}

// ValidateAppointmentDate requires a date from today onwards, and not on a
// Saturday or Sunday unless allowWeekends is set.
func (v Validator) ValidateAppointmentDate(date string, allowWeekends bool) error {
	d, err := v.parseDate(date, true)
	if err != nil {
		return err
	}
	if d.Before(v.today()) {
		return invalid("date", "%s is in the past", date)
	}
	if !allowWeekends {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return invalid("date", "%s falls on a %s", date, wd)
		}
	}
	return nil
}

func (v Validator) parseDate(date string, allowFuture bool) (time.Time, error) {
	if !datePattern.MatchString(date) {
		return time.Time{}, invalid("date", "expected YYYY-MM-DD")
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, invalid("date", "%s is not a calendar date", date)
	}
	maxYear := v.today().Year()
	if allowFuture {
		maxYear += futureYearSlack
	}
	if d.Year() < minDateYear || d.Year() > maxYear {
		return time.Time{}, invalid("date", "year must be between %d and %d", minDateYear, maxYear)
	}
	return d, nil
}

func ValidateTime(t string) error {
	if !timePattern.MatchString(t) {
		return invalid("time", "expected HH:MM")
	}
	if _, err := time.Parse("15:04", t); err != nil {
		return invalid("time", "%s is not a valid time of day", t)
	}
	return nil
}

// ValidateDetails allows up to 200 characters and no control characters other than tab.
func ValidateDetails(details string) error {
	if strings.TrimSpace(details) == "" {
		return invalid("details", "must not be empty")
	}
	if len(details) > maxDetailsLen {
		return invalid("details", "longer than %d characters", maxDetailsLen)
	}
	for _, r := range details {
		if unicode.IsControl(r) && r != '\t' {
			return invalid("details", "contains control characters")
		}
	}
	return nil
}

func ValidatePurpose(purpose string) error {
	if strings.TrimSpace(purpose) == "" {
		return invalid("purpose", "must not be empty")
	}
	if len(purpose) > maxPurposeLen {
		return invalid("purpose", "longer than %d characters", maxPurposeLen)
	}
	for _, r := range purpose {
		if unicode.IsControl(r) {
			return invalid("purpose", "contains control characters")
		}
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return invalid("username", "3-20 letters, digits, underscores or hyphens")
	}
	return nil
}

// ValidatePassword requires 8 or more characters including a lower case
// letter, an upper case letter, a digit and a symbol.
func ValidatePassword(password string) error {
	var lower, upper, digit, other bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}
	if len(password) < 8 || !lower || !upper || !digit || !other {
		return invalid("password", "needs 8+ characters with upper and lower case letters, a digit and a symbol")
	}
	return nil
}

func ValidateVaccineName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("vaccine", "must not be empty")
	}
	if len(name) > maxVaccineLen {
		return invalid("vaccine", "longer than %d characters", maxVaccineLen)
	}
	if strings.ContainsAny(name, ",;") {
		return invalid("vaccine", "must not contain commas or semicolons")
	}
	return nil
}

// NormalizeVaccinationStatus lower-cases status and checks it is known.
func NormalizeVaccinationStatus(status string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case VaccinationCompleted, VaccinationPending, VaccinationBoosterRequired:
		return s, nil
	}
	return "", invalid("vaccination status", "must be completed, pending or booster required")
}

// NormalizeAppointmentStatus lower-cases status and checks it is known.
func NormalizeAppointmentStatus(status string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return s, nil
	}
	return "", invalid("status", "must be scheduled, completed or cancelled")
}
