package security

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 8

var ErrWeakPassword = fmt.Errorf("password must be at least %d characters and include an uppercase letter, a lowercase letter and a digit", MinPasswordLength)

// PasswordMeetsComplexity requires MinPasswordLength runes with at least one
// upper case letter, one lower case letter and one digit.
func PasswordMeetsComplexity(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}
	var classes struct{ upper, lower, digit bool }
	for _, r := range password {
		classes.upper = classes.upper || unicode.IsUpper(r)
		classes.lower = classes.lower || unicode.IsLower(r)
		classes.digit = classes.digit || unicode.IsDigit(r)
	}
	return classes.upper && classes.lower && classes.digit
}

func CheckPasswordComplexity(password string) error {
	if !PasswordMeetsComplexity(password) {
		return ErrWeakPassword
	}
	return nil
}
