// Package types holds the JSON envelopes every /api/v1 response is wrapped in.
package types

// DataEnvelope is the {"data": ...} body of a successful response.
type DataEnvelope[T any] struct {
	Data T `json:"data"`
}

// ErrorBody is what a client sees of a failed request. Details carries
// per-field messages for validation failures.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

func NewErrorEnvelope(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{Error: ErrorBody{Code: code, Message: message, Details: details}}
}
