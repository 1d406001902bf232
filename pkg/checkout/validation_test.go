package checkout

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestFieldRules(t *testing.T) {
	cases := []struct {
		name string
		rule func(string) bool
		in   string
		want bool
	}{
		{"email ok", IsLooseEmail, "a@b.co", true},
		{"email no dot", IsLooseEmail, "a@b", false},
		{"email spaces", IsLooseEmail, "a @b.c", false},
		{"phone ok", IsPhone, "9876543210", true},
		{"phone short", IsPhone, "987654321", false},
		{"phone letters", IsPhone, "98765abcde", false},
		{"pincode ok", IsPincode, "560001", true},
		{"pincode long", IsPincode, "5600011", false},
		{"card spaced", IsCardNumber, "4111 1111 1111 1111", true},
		{"card short", IsCardNumber, "4111 1111 1111 111", false},
		{"expiry ok", IsCardExpiry, "09/27", true},
		{"expiry month 13", IsCardExpiry, "13/27", false},
		{"expiry format", IsCardExpiry, "0927", false},
		{"cvv ok", IsCVV, "123", true},
		{"cvv four", IsCVV, "1234", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule(tc.in); got != tc.want {
				t.Fatalf("rule(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCardLast4(t *testing.T) {
	if got := CardLast4("4111 1111 1111 1234"); got != "1234" {
		t.Fatalf("expected 1234, got %q", got)
	}
	if got := CardLast4("12"); got != "" {
		t.Fatalf("expected empty last4, got %q", got)
	}
}

func TestRegisterValidations(t *testing.T) {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		t.Fatalf("register: %v", err)
	}

	type form struct {
		Phone    string `validate:"digits10"`
		Pincode  string `validate:"pincode"`
		Password string `validate:"password_complexity"`
	}
	if err := v.Struct(form{Phone: "9876543210", Pincode: "560001", Password: "Secret123"}); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	err := v.Struct(form{Phone: "123", Pincode: "560001", Password: "secret"})
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(errs))
	}
	if msg := TagMessage(errs[0].Tag(), errs[0].Param()); msg != "Phone number must be 10 digits" {
		t.Fatalf("unexpected message %q", msg)
	}
}
