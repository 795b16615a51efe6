package models

// Direction values derived from the sign of a quote's percent change.
const (
	DirectionUp      = "up"
	DirectionDown    = "down"
	DirectionNeutral = "neutral"
)

// PairQuote is a normalized snapshot reading for a single currency pair.
type PairQuote struct {
	Pair      string  `json:"pair"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"` // percent change
	Direction string  `json:"direction"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Volume    string  `json:"volume"` // upstream sends volume as a string; "N/A" when absent
}

// SnapshotResponse is the payload returned by the snapshot quote endpoint.
type SnapshotResponse struct {
	Pairs []PairQuote `json:"pairs"`
}

// TimeSeriesPoint is a single normalized candle in a historical series.
type TimeSeriesPoint struct {
	Time   string  `json:"time"`
	Price  float64 `json:"price"` // close
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume int64   `json:"volume"`
}

// TimeSeriesResponse is the payload returned by the time-series endpoint.
// Data is ordered chronologically ascending.
type TimeSeriesResponse struct {
	Pair     string            `json:"pair"`
	Interval string            `json:"interval"`
	Data     []TimeSeriesPoint `json:"data"`
}

// DirectionFromChange maps the sign of a percent change to a direction label.
func DirectionFromChange(change float64) string {
	switch {
	case change > 0:
		return DirectionUp
	case change < 0:
		return DirectionDown
	default:
		return DirectionNeutral
	}
}
