package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// WebhookAckResponse acknowledges receipt of a provider webhook.
type WebhookAckResponse struct {
	Received bool `json:"received"`
}

// CreateCheckoutSessionResponse returns the created checkout session and its
// hosted redirect URL.
type CreateCheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
