package enums

import "fmt"

// PaymentConfigKind identifies the payment-method preset attached to a proposal.
type PaymentConfigKind string

const (
	PaymentConfigKindPix          PaymentConfigKind = "pix"
	PaymentConfigKindBankTransfer PaymentConfigKind = "bank_transfer"
	PaymentConfigKindPaymentLink  PaymentConfigKind = "payment_link"
	PaymentConfigKindCustom       PaymentConfigKind = "custom"
)

var validPaymentConfigKinds = []PaymentConfigKind{
	PaymentConfigKindPix,
	PaymentConfigKindBankTransfer,
	PaymentConfigKindPaymentLink,
	PaymentConfigKindCustom,
}

// String implements fmt.Stringer.
func (p PaymentConfigKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentConfigKind.
func (p PaymentConfigKind) IsValid() bool {
	for _, candidate := range validPaymentConfigKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentConfigKind converts raw input into a PaymentConfigKind.
func ParsePaymentConfigKind(value string) (PaymentConfigKind, error) {
	for _, candidate := range validPaymentConfigKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment config kind %q", value)
}
