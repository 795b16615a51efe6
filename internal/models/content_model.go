package models

// NewsArticle is one generated forex news item.
type NewsArticle struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Source     string   `json:"source"`
	Time       string   `json:"time"` // relative, e.g. "5 min ago"
	Category   string   `json:"category"` // central-banks, economic-data, commodities, analysis
	Sentiment  string   `json:"sentiment"` // bullish, bearish, neutral
	Currencies []string `json:"currencies"`
	Featured   bool     `json:"featured"`
}

// SignalIndicator is a single technical indicator backing a trading signal.
type SignalIndicator struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "bullish" or "bearish"
}

// TradingSignal is one generated trading signal for a currency pair.
type TradingSignal struct {
	Pair       string            `json:"pair"`
	Signal     string            `json:"signal"` // buy, sell, neutral
	Confidence float64           `json:"confidence"`
	Entry      float64           `json:"entry"`
	StopLoss   float64           `json:"stopLoss"`
	TakeProfit float64           `json:"takeProfit"`
	Timeframe  string            `json:"timeframe"` // 1H, 4H, 1D
	Indicators []SignalIndicator `json:"indicators"`
}

// EconomicEvent is one upcoming high-impact calendar entry.
type EconomicEvent struct {
	Event    string `json:"event"`
	Time     string `json:"time"` // e.g. "Today 14:00", "Wed 10:00"
	Currency string `json:"currency"`
}

// NewsResponse wraps the generated news feed.
type NewsResponse struct {
	Articles []NewsArticle `json:"articles"`
}

// SignalsResponse wraps the generated trading signals.
type SignalsResponse struct {
	Signals []TradingSignal `json:"signals"`
}

// CalendarResponse wraps the upcoming economic events.
type CalendarResponse struct {
	Events []EconomicEvent `json:"events"`
}
