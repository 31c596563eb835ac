package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinAge    = 15
	MaxAge    = 65
	MinWeight = 40
	MaxWeight = 150
)

var (
	fullNameRe = regexp.MustCompile(`^[A-Za-zА-Яа-яЁё\s]+$`)
	uzPhoneRe  = regexp.MustCompile(`^\+998\d{9}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return utf8.RuneCountInString(s) >= 3 && fullNameRe.MatchString(s)
		})
		_ = validate.RegisterValidation("uzphone", func(fl validator.FieldLevel) bool {
			return uzPhoneRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

// NormalizeFullName trims s and reports whether it is an acceptable name:
// Latin or Cyrillic letters and spaces, at least three characters.
func NormalizeFullName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, validatorInstance().Var(s, "fullname") == nil
}

// NormalizePhone strips whitespace and hyphens, adds the leading plus to a bare
// 998 prefix, and reports whether the result is +998 followed by 9 digits.
func NormalizePhone(raw string) (string, bool) {
	s := strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if strings.HasPrefix(s, "998") {
		s = "+" + s
	}
	return s, validatorInstance().Var(s, "uzphone") == nil
}

// ParseAge accepts a whole number of years in [MinAge, MaxAge].
func ParseAge(text string) (int, bool) {
	return parseBounded(text, MinAge, MaxAge)
}

// ParseWeight accepts a whole number of kilograms in [MinWeight, MaxWeight].
func ParseWeight(text string) (int, bool) {
	return parseBounded(text, MinWeight, MaxWeight)
}

// ParsePositive accepts a whole number greater than zero.
func ParsePositive(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	return n, err == nil && n > 0
}

func parseBounded(text string, min, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	tag := fmt.Sprintf("min=%d,max=%d", min, max)
	return n, validatorInstance().Var(n, tag) == nil
}

// ValidateUser checks a complete profile before it is stored.
func ValidateUser(u User) error {
	if err := validatorInstance().Struct(u); err != nil {
		return fmt.Errorf("%w: user: %s", ErrInvalid, err)
	}
	return nil
}

// ValidateVacancy checks a draft before it is stored.
func ValidateVacancy(v Vacancy) error {
	if err := validatorInstance().Struct(v); err != nil {
		return fmt.Errorf("%w: vacancy: %s", ErrInvalid, err)
	}
	return nil
}
