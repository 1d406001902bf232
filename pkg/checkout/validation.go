package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/omnicart-backend/pkg/security"
)

// Validation tags registered by RegisterValidations.
const (
	TagDigits10           = "digits10"
	TagPincode            = "pincode"
	TagCardNumber         = "card_number"
	TagCardExpiry         = "card_expiry"
	TagCVV                = "cvv"
	TagLooseEmail         = "loose_email"
	TagPasswordComplexity = "password_complexity"
)

var (
	looseEmailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	digits10Pattern   = regexp.MustCompile(`^\d{10}$`)
	pincodePattern    = regexp.MustCompile(`^\d{6}$`)
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3}$`)
)

// IsLooseEmail accepts anything shaped like "a@b.c".
func IsLooseEmail(value string) bool {
	return looseEmailPattern.MatchString(value)
}

// IsPhone requires exactly ten digits.
func IsPhone(value string) bool {
	return digits10Pattern.MatchString(value)
}

// IsPincode requires exactly six digits.
func IsPincode(value string) bool {
	return pincodePattern.MatchString(value)
}

// NormalizeCardNumber strips whitespace from a card number.
func NormalizeCardNumber(value string) string {
	return strings.Join(strings.Fields(value), "")
}

// IsCardNumber requires sixteen digits once whitespace is removed.
func IsCardNumber(value string) bool {
	return cardNumberPattern.MatchString(NormalizeCardNumber(value))
}

// IsCardExpiry requires MM/YY.
func IsCardExpiry(value string) bool {
	return cardExpiryPattern.MatchString(value)
}

// IsCVV requires exactly three digits.
func IsCVV(value string) bool {
	return cvvPattern.MatchString(value)
}

// CardLast4 returns the last four digits of a normalized card number.
func CardLast4(value string) string {
	digits := NormalizeCardNumber(value)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

var stringRules = map[string]func(string) bool{
	TagDigits10:           IsPhone,
	TagPincode:            IsPincode,
	TagCardNumber:         IsCardNumber,
	TagCardExpiry:         IsCardExpiry,
	TagCVV:                IsCVV,
	TagLooseEmail:         IsLooseEmail,
	TagPasswordComplexity: security.PasswordMeetsComplexity,
}

// RegisterValidations installs the storefront form tags on v.
func RegisterValidations(v *validator.Validate) error {
	for tag, rule := range stringRules {
		rule := rule
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return rule(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

// TagMessage renders a user-facing message for a failed tag.
func TagMessage(tag, param string) string {
	switch tag {
	case "required", "required_if":
		return "This field is required"
	case TagLooseEmail, "email":
		return "Email is invalid"
	case TagDigits10:
		return "Phone number must be 10 digits"
	case TagPincode:
		return "Pincode must be 6 digits"
	case TagCardNumber:
		return "Valid card number required"
	case TagCardExpiry:
		return "Valid expiry date required (MM/YY)"
	case TagCVV:
		return "Valid CVV required"
	case TagPasswordComplexity:
		return "Password must be at least 8 characters and include uppercase, lowercase and a number"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", param)
	case "min":
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		return fmt.Sprintf("must be at most %s", param)
	}
	return "is invalid"
}
