package payments

import (
	"github.com/google/uuid"
)

// IntentView is returned to the storefront to open the Razorpay checkout.
type IntentView struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	KeyID    string `json:"key_id,omitempty"`
}

// VerifyInput carries the checkout callback fields.
type VerifyInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
	AddressID      uuid.UUID
}
