package orders

import (
	"github.com/google/uuid"

	internalpayments "github.com/Ramchandran06/E-commerce-backend/internal/payments"
	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
)

type checkoutRequest struct {
	AddressID     string `json:"addressId" validate:"required,uuid"`
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,oneof=COD"`
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	AddressID         string `json:"addressId" validate:"required,uuid"`
}

func (r verifyPaymentRequest) toInput() (internalpayments.VerifyInput, error) {
	addressID, err := uuid.Parse(r.AddressID)
	if err != nil {
		return internalpayments.VerifyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid addressId")
	}
	return internalpayments.VerifyInput{
		GatewayOrderID: r.RazorpayOrderID,
		PaymentID:      r.RazorpayPaymentID,
		Signature:      r.RazorpaySignature,
		AddressID:      addressID,
	}, nil
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
