package enums

import (
	"fmt"
	"slices"
)

// PaymentMethod is how the buyer settles an order; PaymentStatus is where
// that settlement stands.
type (
	PaymentMethod string
	PaymentStatus string
)

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "Online"

	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

var (
	paymentMethods  = []PaymentMethod{PaymentMethodCOD, PaymentMethodOnline}
	paymentStatuses = []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded}
)

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool { return slices.Contains(paymentMethods, p) }

// InitialPaymentStatus: online orders exist only after a verified capture,
// so they start Paid; cash on delivery starts Pending.
func (p PaymentMethod) InitialPaymentStatus() PaymentStatus {
	if p == PaymentMethodOnline {
		return PaymentStatusPaid
	}
	return PaymentStatusPending
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	if m := PaymentMethod(value); m.IsValid() {
		return m, nil
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

func (p PaymentStatus) String() string { return string(p) }

func (p PaymentStatus) IsValid() bool { return slices.Contains(paymentStatuses, p) }

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	if s := PaymentStatus(value); s.IsValid() {
		return s, nil
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
