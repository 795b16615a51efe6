package models

// CreateCheckoutSessionRequest represents the request body for starting a
// subscription checkout. Success and cancel URLs are optional; when absent
// the handler derives defaults from the request's Origin header.
type CreateCheckoutSessionRequest struct {
	PriceID    string `json:"priceId" binding:"required"`
	SuccessURL string `json:"successUrl,omitempty"`
	CancelURL  string `json:"cancelUrl,omitempty"`
}

// SnapshotRequest represents the optional request body for the snapshot quote
// endpoint. When Pairs is empty the default major pairs are used.
type SnapshotRequest struct {
	Pairs []string `json:"pairs,omitempty"`
}

// TimeSeriesRequest represents the request body for the time-series endpoint.
// Interval and OutputSize fall back to "15min" and 100 when not provided.
type TimeSeriesRequest struct {
	Pair       string `json:"pair" binding:"required"`
	Interval   string `json:"interval,omitempty"`
	OutputSize int    `json:"outputsize,omitempty"`
}
