package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"forexpro-backend-go/internal/core"
)

// ContentHandler handles the generated-content endpoints (news, trading
// signals, economic calendar).
type ContentHandler struct {
	contentService core.ContentService
	userService    core.UserService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(cs core.ContentService, us core.UserService) *ContentHandler {
	return &ContentHandler{contentService: cs, userService: us}
}

// GetNews handles GET /content/news.
func (h *ContentHandler) GetNews(c *gin.Context) {
	news, err := h.contentService.GetNews(c.Request.Context())
	if err != nil {
		h.mapContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, news)
}

// GetSignals handles GET /content/signals. Signals are a paid feature: the
// authenticated user must be on the pro plan.
func (h *ContentHandler) GetSignals(c *gin.Context) {
	rawUserID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}
	userID, ok := rawUserID.(string)
	if !ok || userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID format in context"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}
		log.Printf("GetSignals Error: userService.GetByID failed for userID %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve user profile", Details: err.Error()})
		return
	}
	if !user.IsPro() {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Trading signals require a pro subscription"})
		return
	}

	signals, err := h.contentService.GetSignals(c.Request.Context())
	if err != nil {
		h.mapContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, signals)
}

// GetCalendar handles GET /content/calendar.
func (h *ContentHandler) GetCalendar(c *gin.Context) {
	calendar, err := h.contentService.GetCalendar(c.Request.Context())
	if err != nil {
		h.mapContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, calendar)
}

func (h *ContentHandler) mapContentError(c *gin.Context, err error) {
	if errors.Is(err, core.ErrInvalidContentShape) {
		log.Printf("Content Error: invalid generated payload: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Generated content was malformed", Details: err.Error()})
		return
	}
	log.Printf("Content Error: %v", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate content", Details: err.Error()})
}
