package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"forexpro-backend-go/internal/models"
	"forexpro-backend-go/internal/platform"
)

// ErrInvalidContentShape is returned when a generated payload does not match
// the declared response schema.
var ErrInvalidContentShape = errors.New("generated content does not match expected shape")

const newsPrompt = `Get the latest 8 forex market news articles from today. Include major currency pairs (EUR/USD, GBP/USD, USD/JPY, etc.), central bank decisions, economic data releases, and market-moving events.

For each article, provide:
- title: clear, concise headline
- summary: 2-3 sentence summary
- source: news source (Reuters, Bloomberg, Financial Times, etc.)
- time: how long ago (e.g., "5 min ago", "1 hour ago")
- category: one of [central-banks, economic-data, commodities, analysis]
- sentiment: one of [bullish, bearish, neutral]
- currencies: array of affected currency codes (e.g., ["USD", "EUR"])
- featured: true for top 2 most important stories, false for others`

const signalsPrompt = `Generate 6 current forex trading signals based on real market conditions today. Use technical analysis and current market trends.

For each signal provide:
- pair: currency pair (EUR/USD, GBP/USD, USD/JPY, AUD/USD, USD/CAD, EUR/GBP)
- signal: one of [buy, sell, neutral]
- confidence: number 65-95 (percentage)
- entry: entry price (realistic for current market)
- stopLoss: stop loss price
- takeProfit: take profit price
- timeframe: one of [1H, 4H, 1D]
- indicators: array of 3-4 technical indicators with bullish/bearish status
  each indicator: { name: string, status: "bullish" or "bearish" }`

const calendarPrompt = `Get the next 3 upcoming high-impact economic events from the forex economic calendar for this week. Include major events like: NFP, FOMC meetings, ECB decisions, GDP releases, CPI data, interest rate decisions, etc.

For each event provide:
- event: name of the economic event
- time: when it happens (format like "Today 14:00", "Tomorrow 08:30", "Wed 10:00", etc.)
- currency: the currency code affected (USD, EUR, GBP, etc.)

Make sure these are real upcoming events from reliable economic calendars.`

// Response schemas: sent to the model as generation constraints and enforced
// locally before the payload is decoded.
const newsSchema = `{
  "type": "object",
  "required": ["articles"],
  "properties": {
    "articles": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "summary", "source", "time", "category", "sentiment", "currencies", "featured"],
        "properties": {
          "title": {"type": "string"},
          "summary": {"type": "string"},
          "source": {"type": "string"},
          "time": {"type": "string"},
          "category": {"type": "string"},
          "sentiment": {"type": "string"},
          "currencies": {"type": "array", "items": {"type": "string"}},
          "featured": {"type": "boolean"}
        }
      }
    }
  }
}`

const signalsSchema = `{
  "type": "object",
  "required": ["signals"],
  "properties": {
    "signals": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["pair", "signal", "confidence", "entry", "stopLoss", "takeProfit", "timeframe", "indicators"],
        "properties": {
          "pair": {"type": "string"},
          "signal": {"type": "string"},
          "confidence": {"type": "number"},
          "entry": {"type": "number"},
          "stopLoss": {"type": "number"},
          "takeProfit": {"type": "number"},
          "timeframe": {"type": "string"},
          "indicators": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "status"],
              "properties": {
                "name": {"type": "string"},
                "status": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

const calendarSchema = `{
  "type": "object",
  "required": ["events"],
  "properties": {
    "events": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["event", "time", "currency"],
        "properties": {
          "event": {"type": "string"},
          "time": {"type": "string"},
          "currency": {"type": "string"}
        }
      }
    }
  }
}`

// contentService implements the ContentService interface on top of the
// platform's LLM integration.
type contentService struct {
	llm platform.LLMInvoker
}

// NewContentService creates a ContentService.
func NewContentService(llm platform.LLMInvoker) ContentService {
	return &contentService{llm: llm}
}

// GetNews generates the current news feed.
func (s *contentService) GetNews(ctx context.Context) (*models.NewsResponse, error) {
	var resp models.NewsResponse
	if err := s.generate(ctx, newsPrompt, newsSchema, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSignals generates the current trading signals.
func (s *contentService) GetSignals(ctx context.Context) (*models.SignalsResponse, error) {
	var resp models.SignalsResponse
	if err := s.generate(ctx, signalsPrompt, signalsSchema, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCalendar generates the upcoming economic events.
func (s *contentService) GetCalendar(ctx context.Context) (*models.CalendarResponse, error) {
	var resp models.CalendarResponse
	if err := s.generate(ctx, calendarPrompt, calendarSchema, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// generate invokes the LLM with a prompt and schema, validates the raw
// payload against the same schema, and decodes it into out.
func (s *contentService) generate(ctx context.Context, prompt, schema string, out interface{}) error {
	raw, err := s.llm.InvokeLLM(ctx, platform.InvokeLLMRequest{
		Prompt:                 prompt,
		AddContextFromInternet: true,
		ResponseJSONSchema:     json.RawMessage(schema),
	})
	if err != nil {
		return fmt.Errorf("content generation failed: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContentShape, err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidContentShape, strings.Join(problems, "; "))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContentShape, err)
	}
	return nil
}
