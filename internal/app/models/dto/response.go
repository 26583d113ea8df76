package dto

// APIResponse is the envelope for every endpoint: exactly one of Data or
// Error is set.
type APIResponse struct {
	Data  interface{}  `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// SuccessResponse represents a standard success message payload
type SuccessResponse struct {
	Message string `json:"message"`
}
