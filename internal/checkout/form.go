package checkout

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgcheckout "github.com/angelmondragon/omnicart-backend/pkg/checkout"
	"github.com/angelmondragon/omnicart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
)

const formErrorMessage = "Please fill in all required fields correctly"

// OrderInput is the checkout form. Card fields are only checked when the
// payment method is card and are never persisted beyond the last four digits.
type OrderInput struct {
	Email         string              `json:"email" validate:"required,loose_email"`
	Phone         string              `json:"phone" validate:"required,digits10"`
	FirstName     string              `json:"first_name" validate:"required"`
	LastName      string              `json:"last_name" validate:"required"`
	Address       string              `json:"address" validate:"required"`
	Apartment     string              `json:"apartment"`
	City          string              `json:"city" validate:"required"`
	State         string              `json:"state" validate:"required"`
	Pincode       string              `json:"pincode" validate:"required,pincode"`
	PaymentMethod enums.PaymentMethod `json:"payment_method" validate:"required,oneof=card upi cod"`
	CardNumber    string              `json:"card_number"`
	CardName      string              `json:"card_name"`
	ExpiryDate    string              `json:"expiry_date"`
	CVV           string              `json:"cvv"`
	PromoCode     string              `json:"promo_code" validate:"max=32"`
}

func (in *OrderInput) normalize() {
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Address = strings.TrimSpace(in.Address)
	in.Apartment = strings.TrimSpace(in.Apartment)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Pincode = strings.TrimSpace(in.Pincode)
	in.PaymentMethod = enums.PaymentMethod(strings.ToLower(strings.TrimSpace(string(in.PaymentMethod))))
	in.CardName = strings.TrimSpace(in.CardName)
	in.ExpiryDate = strings.TrimSpace(in.ExpiryDate)
	in.CVV = strings.TrimSpace(in.CVV)
	in.PromoCode = strings.TrimSpace(in.PromoCode)
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	if err := pkgcheckout.RegisterValidations(v); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(validateCard, OrderInput{})
	return v
}

func validateCard(sl validator.StructLevel) {
	in := sl.Current().Interface().(OrderInput)
	if in.PaymentMethod != enums.PaymentMethodCard {
		return
	}
	if !pkgcheckout.IsCardNumber(in.CardNumber) {
		sl.ReportError(in.CardNumber, "card_number", "CardNumber", pkgcheckout.TagCardNumber, "")
	}
	if in.CardName == "" {
		sl.ReportError(in.CardName, "card_name", "CardName", "required", "")
	}
	if !pkgcheckout.IsCardExpiry(in.ExpiryDate) {
		sl.ReportError(in.ExpiryDate, "expiry_date", "ExpiryDate", pkgcheckout.TagCardExpiry, "")
	}
	if !pkgcheckout.IsCVV(in.CVV) {
		sl.ReportError(in.CVV, "cvv", "CVV", pkgcheckout.TagCVV, "")
	}
}

// fieldMessages overrides the generic tag message for specific fields.
var fieldMessages = map[string]map[string]string{
	"email":     {"required": "Email is required"},
	"phone":     {"required": "Phone number is required"},
	"card_name": {"required": "Cardholder name required"},
}

// ValidateOrderInput checks the form and returns a validation error whose
// details map each failing field to its message.
func ValidateOrderInput(in OrderInput) error {
	err := formValidator.Struct(in)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, formErrorMessage)
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		if _, seen := details[field]; seen {
			continue
		}
		if msg, ok := fieldMessages[field][fe.Tag()]; ok {
			details[field] = msg
			continue
		}
		details[field] = pkgcheckout.TagMessage(fe.Tag(), fe.Param())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, formErrorMessage).WithDetails(details)
}
