package api

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Conflicts []string `json:"conflicts,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
