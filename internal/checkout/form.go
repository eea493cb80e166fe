package checkout

import (
	"regexp"
	"strings"

	"github.com/kangoro5/leather-walk/internal/domain"
)

var tenDigits = regexp.MustCompile(`^\d{10}$`)

// Form is the shipping and payment input of one checkout.
type Form struct {
	FullName      string               `json:"fullName"`
	Phone         string               `json:"phone"`
	County        string               `json:"county"`
	PickupStation string               `json:"pickupStation"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	MpesaNumber   string               `json:"mpesaNumber"`
	TermsAccepted bool                 `json:"termsAccepted"`
}

// DefaultForm is the blank form, pre-filled from the signed-in identity.
func DefaultForm(identity domain.Identity) Form {
	return Form{
		FullName:      identity.FullName,
		Phone:         identity.Phone,
		PaymentMethod: domain.PaymentCashOnDelivery,
	}
}

func (f Form) ShippingInfo() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName:      strings.TrimSpace(f.FullName),
		Phone:         strings.TrimSpace(f.Phone),
		County:        f.County,
		PickupStation: f.PickupStation,
	}
}

// Validate checks f against cart and reports the first failing rule.
func (f Form) Validate(cart domain.Cart) error {
	switch {
	case strings.TrimSpace(f.FullName) == "":
		return &domain.ValidationError{Field: "fullName", Message: "Please enter your full name."}
	case !tenDigits.MatchString(strings.TrimSpace(f.Phone)):
		return &domain.ValidationError{Field: "phone", Message: "Please enter a valid 10-digit phone number."}
	case f.County == "":
		return &domain.ValidationError{Field: "county", Message: "Please select a county."}
	case f.PickupStation == "":
		return &domain.ValidationError{Field: "pickupStation", Message: "Please select a pickup station."}
	case f.PaymentMethod == "":
		return &domain.ValidationError{Field: "paymentMethod", Message: "Please select a payment method."}
	case !f.PaymentMethod.Valid():
		return &domain.ValidationError{Field: "paymentMethod", Message: "Unsupported payment method."}
	case f.PaymentMethod == domain.PaymentMpesa && !tenDigits.MatchString(strings.TrimSpace(f.MpesaNumber)):
		return &domain.ValidationError{Field: "mpesaNumber", Message: "Please enter a valid 10-digit Mpesa number."}
	case !f.TermsAccepted:
		return &domain.ValidationError{Field: "terms", Message: "Please agree to the terms and conditions."}
	case cart.IsEmpty():
		return domain.ErrEmptyCart
	}
	return nil
}
