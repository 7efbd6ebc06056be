package dto

// ErrorBody is the failure envelope written by the demo backend.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DataBody wraps a successful payload.
type DataBody struct {
	Data any `json:"data"`
}
