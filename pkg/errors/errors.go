package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeEmptyCart           Code = "EMPTY_CART"
	CodePaymentVerification Code = "PAYMENT_VERIFICATION_FAILED"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeNotEligible         Code = "NOT_ELIGIBLE"
	CodeNotFound            Code = "NOT_FOUND"
	CodeConflict            Code = "CONFLICT"
	CodeInvalidTransition   Code = "INVALID_STATE_TRANSITION"
	CodeDuplicateReturn     Code = "DUPLICATE_RETURN"
	CodeAlreadyProcessed    Code = "ALREADY_PROCESSED"
	CodeInsufficientStock   Code = "INSUFFICIENT_STOCK"
	CodeIdempotency         Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit           Code = "RATE_LIMITED"
	CodeGateway             Code = "GATEWAY_ERROR"
	CodeInternal            Code = "INTERNAL_ERROR"
	CodeDependency          Code = "DEPENDENCY_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	// ExposeMessage lets the typed message replace PublicMessage in responses.
	ExposeMessage bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
		ExposeMessage:  true,
	},
	CodeEmptyCart: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "your cart is empty",
		ExposeMessage: true,
	},
	CodePaymentVerification: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "payment verification failed",
		ExposeMessage: true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication required",
		ExposeMessage: true,
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "access denied",
		ExposeMessage: true,
	},
	CodeNotEligible: {
		HTTPStatus:     http.StatusForbidden,
		PublicMessage:  "not eligible",
		DetailsAllowed: true,
		ExposeMessage:  true,
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
		ExposeMessage: true,
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "conflict detected",
		ExposeMessage: true,
	},
	CodeInvalidTransition: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "state transition disallowed",
		DetailsAllowed: true,
		ExposeMessage:  true,
	},
	CodeDuplicateReturn: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "a return request for this item already exists",
		ExposeMessage: true,
	},
	CodeAlreadyProcessed: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "request already processed",
		DetailsAllowed: true,
		ExposeMessage:  true,
	},
	CodeInsufficientStock: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "insufficient stock",
		DetailsAllowed: true,
		ExposeMessage:  true,
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
		ExposeMessage:  true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		Retryable:     true,
		PublicMessage: "too many requests",
	},
	CodeGateway: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "payment gateway error",
		ExposeMessage: true,
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given typed code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// InsufficientStock names the product whose requested quantity exceeded stock.
func InsufficientStock(productName string, requested, available int) *Error {
	return New(CodeInsufficientStock, fmt.Sprintf("not enough stock for %s", productName)).
		WithDetails(map[string]any{
			"product":   productName,
			"requested": requested,
			"available": available,
		})
}

// InvalidTransition surfaces the current status of the entity that refused the move.
func InvalidTransition(entity, current, target string) *Error {
	msg := fmt.Sprintf("%s cannot move from %s to %s", entity, current, target)
	return New(CodeInvalidTransition, msg).
		WithDetails(map[string]any{"current_status": current, "requested_status": target})
}

// Gateway wraps a payment provider failure, keeping the provider reason visible.
func Gateway(err error, reason string) *Error {
	return Wrap(CodeGateway, err, fmt.Sprintf("payment gateway error: %s", reason))
}
