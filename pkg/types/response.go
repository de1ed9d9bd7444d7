package types

// SuccessEnvelope wraps every successful JSON body.
type SuccessEnvelope struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// ErrorEnvelope repeats the message at the top level for clients that only
// read "message".
type ErrorEnvelope struct {
	Message string   `json:"message"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func NewErrorEnvelope(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{
		Message: message,
		Error:   APIError{Code: code, Message: message, Details: details},
	}
}
