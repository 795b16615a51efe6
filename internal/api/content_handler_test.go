package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forexpro-backend-go/internal/core"
	"forexpro-backend-go/internal/models"
)

type fakeContentService struct {
	news     *models.NewsResponse
	signals  *models.SignalsResponse
	calendar *models.CalendarResponse
	err      error
}

func (f *fakeContentService) GetNews(ctx context.Context) (*models.NewsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.news, nil
}

func (f *fakeContentService) GetSignals(ctx context.Context) (*models.SignalsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.signals, nil
}

func (f *fakeContentService) GetCalendar(ctx context.Context) (*models.CalendarResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.calendar, nil
}

type fakeUserService struct {
	user *models.User
	err  error
}

func (f *fakeUserService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	return f.user, false, f.err
}

func (f *fakeUserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func newContentRouter(cs *fakeContentService, us *fakeUserService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewContentHandler(cs, us)
	withUser := func(next gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			if userID != "" {
				c.Set("userID", userID)
			}
			next(c)
		}
	}
	router.GET("/news", h.GetNews)
	router.GET("/signals", withUser(h.GetSignals))
	router.GET("/calendar", h.GetCalendar)
	return router
}

func TestGetNewsHandler(t *testing.T) {
	cs := &fakeContentService{news: &models.NewsResponse{Articles: []models.NewsArticle{
		{Title: "Fed holds rates", Source: "Reuters", Sentiment: "neutral"},
	}}}
	router := newContentRouter(cs, &fakeUserService{}, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/news", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.NewsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Articles, 1)
	assert.Equal(t, "Fed holds rates", resp.Articles[0].Title)
}

func TestGetSignalsHandler_ProUser(t *testing.T) {
	cs := &fakeContentService{signals: &models.SignalsResponse{Signals: []models.TradingSignal{
		{Pair: "EUR/USD", Signal: "buy", Confidence: 78},
	}}}
	us := &fakeUserService{user: &models.User{ID: "user-1", SubscriptionPlan: models.PlanPro}}
	router := newContentRouter(cs, us, "user-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/signals", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SignalsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Signals, 1)
}

func TestGetSignalsHandler_FreeUserForbidden(t *testing.T) {
	cs := &fakeContentService{}
	us := &fakeUserService{user: &models.User{ID: "user-1", SubscriptionPlan: models.PlanFree}}
	router := newContentRouter(cs, us, "user-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/signals", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Trading signals require a pro subscription", resp.Error)
}

func TestGetSignalsHandler_NoUserInContext(t *testing.T) {
	router := newContentRouter(&fakeContentService{}, &fakeUserService{}, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/signals", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetSignalsHandler_UnknownUser(t *testing.T) {
	us := &fakeUserService{err: core.ErrUserNotFound}
	router := newContentRouter(&fakeContentService{}, us, "user-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/signals", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCalendarHandler_MalformedContent(t *testing.T) {
	cs := &fakeContentService{err: core.ErrInvalidContentShape}
	router := newContentRouter(cs, &fakeUserService{}, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetNewsHandler_GenerationFailure(t *testing.T) {
	cs := &fakeContentService{err: assert.AnError}
	router := newContentRouter(cs, &fakeUserService{}, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/news", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
