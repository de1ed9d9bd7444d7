package enums

import (
	"fmt"
	"slices"
)

// PaymentIntentStatus tracks a gateway order created for online checkout.
type PaymentIntentStatus string

const (
	PaymentIntentStatusCreated  PaymentIntentStatus = "created"
	PaymentIntentStatusConsumed PaymentIntentStatus = "consumed"
	PaymentIntentStatusExpired  PaymentIntentStatus = "expired"
	// Failed intents were paid but could not become an order.
	PaymentIntentStatusFailed PaymentIntentStatus = "failed"
)

var validPaymentIntentStatuses = []PaymentIntentStatus{
	PaymentIntentStatusCreated,
	PaymentIntentStatusConsumed,
	PaymentIntentStatusExpired,
	PaymentIntentStatusFailed,
}

func (p PaymentIntentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentIntentStatus.
func (p PaymentIntentStatus) IsValid() bool {
	return slices.Contains(validPaymentIntentStatuses, p)
}

// ParsePaymentIntentStatus converts raw input into a PaymentIntentStatus.
func ParsePaymentIntentStatus(value string) (PaymentIntentStatus, error) {
	if s := PaymentIntentStatus(value); s.IsValid() {
		return s, nil
	}
	return "", fmt.Errorf("invalid payment intent status %q", value)
}
