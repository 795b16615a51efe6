package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"forexpro-backend-go/internal/core"
	"forexpro-backend-go/internal/marketdata"
	"forexpro-backend-go/internal/models"
)

// MarketHandler handles the market data relay endpoints.
type MarketHandler struct {
	marketService core.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(ms core.MarketService) *MarketHandler {
	return &MarketHandler{marketService: ms}
}

// GetSnapshot handles POST /market/snapshot. The body is optional; without
// one the default major pairs are fetched. An empty result is a normal 200.
func (h *MarketHandler) GetSnapshot(c *gin.Context) {
	var req models.SnapshotRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
			return
		}
	}

	snapshot, err := h.marketService.GetSnapshot(c.Request.Context(), req.Pairs)
	if err != nil {
		log.Printf("GetSnapshot Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch market snapshot", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetTimeSeries handles POST /market/timeseries.
func (h *MarketHandler) GetTimeSeries(c *gin.Context) {
	var req models.TimeSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Currency pair is required", Details: err.Error()})
		return
	}

	series, err := h.marketService.GetTimeSeries(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrPairRequired):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Currency pair is required"})
		case errors.Is(err, marketdata.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "Rate limit exceeded"})
		case errors.Is(err, marketdata.ErrNoData):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No data available"})
		default:
			log.Printf("GetTimeSeries Error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch time series", Details: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, series)
}
