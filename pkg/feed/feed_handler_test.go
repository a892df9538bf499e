package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedRouter(handler *FeedHandler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/feed", handler.CreateFeed).Methods("POST")
	router.HandleFunc("/api/feed", handler.GetFeeds).Methods("GET")
	router.HandleFunc("/api/feed/{feedId}", handler.GetFeed).Methods("GET")
	router.HandleFunc("/api/feed/{feedId}", handler.DeleteFeed).Methods("DELETE")
	return router
}

func noopSync(ctx context.Context, feedId int) (int, error) {
	return 0, nil
}

func TestCreateFeedHandler_ImportedFeedTriggersSync(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())
	syncedFeedId := 0
	handler := NewFeedHandler(service, func(ctx context.Context, feedId int) (int, error) {
		syncedFeedId = feedId
		return 7, nil
	})

	body := `{"name": "Holidays", "url": "https://example.com/holidays.ics"}`
	req := httptest.NewRequest("POST", "/api/feed", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newFeedRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createFeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Holidays", resp.Feed.Name)
	assert.False(t, resp.Feed.Owned)
	require.NotNil(t, resp.EventsStored)
	assert.Equal(t, 7, *resp.EventsStored)
	assert.Empty(t, resp.Warning)
	assert.Equal(t, resp.Feed.ID, syncedFeedId)
}

func TestCreateFeedHandler_FailedFirstSyncReportsWarning(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())
	handler := NewFeedHandler(service, func(ctx context.Context, feedId int) (int, error) {
		return 0, errors.New("connection refused")
	})

	body := `{"name": "Holidays", "url": "https://example.com/holidays.ics"}`
	req := httptest.NewRequest("POST", "/api/feed", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newFeedRouter(handler).ServeHTTP(rec, req)

	// Creation still succeeds; the failure shows up as a warning.
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createFeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Feed 'Holidays' couldn't be processed", resp.Warning)
	assert.Nil(t, resp.EventsStored)
}

func TestCreateFeedHandler_OwnedFeedSkipsSync(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())
	synced := false
	handler := NewFeedHandler(service, func(ctx context.Context, feedId int) (int, error) {
		synced = true
		return 0, nil
	})

	body := `{"name": "Personal"}`
	req := httptest.NewRequest("POST", "/api/feed", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newFeedRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createFeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Feed.Owned)
	assert.False(t, synced)
}

func TestCreateFeedHandler_MissingName(t *testing.T) {
	handler := NewFeedHandler(NewFeedService(NewStubFeedRepo()), noopSync)

	req := httptest.NewRequest("POST", "/api/feed", strings.NewReader(`{"url": "https://example.com/a.ics"}`))
	rec := httptest.NewRecorder()
	newFeedRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateFeedHandler_Duplicate(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())
	handler := NewFeedHandler(service, noopSync)
	router := newFeedRouter(handler)

	body := `{"name": "Holidays", "url": "https://example.com/a.ics"}`
	req := httptest.NewRequest("POST", "/api/feed", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest("POST", "/api/feed", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetFeedsHandler(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())
	_, err := service.CreateFeed(context.Background(), "Beta", "https://example.com/b.ics")
	require.NoError(t, err)
	_, err = service.CreateFeed(context.Background(), "Alpha", "")
	require.NoError(t, err)

	handler := NewFeedHandler(service, noopSync)
	req := httptest.NewRequest("GET", "/api/feed", nil)
	rec := httptest.NewRecorder()
	newFeedRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var dtos []FeedDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	require.Len(t, dtos, 2)
	assert.Equal(t, "Alpha", dtos[0].Name)
	assert.Equal(t, "Beta", dtos[1].Name)
}

func TestGetFeedHandler_NotFound(t *testing.T) {
	handler := NewFeedHandler(NewFeedService(NewStubFeedRepo()), noopSync)

	req := httptest.NewRequest("GET", "/api/feed/42", nil)
	rec := httptest.NewRecorder()
	newFeedRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFeedHandler_InvalidId(t *testing.T) {
	handler := NewFeedHandler(NewFeedService(NewStubFeedRepo()), noopSync)

	req := httptest.NewRequest("GET", "/api/feed/abc", nil)
	rec := httptest.NewRecorder()
	newFeedRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteFeedHandler(t *testing.T) {
	repo := NewStubFeedRepo()
	service := NewFeedService(repo)
	created, err := service.CreateFeed(context.Background(), "Holidays", "https://example.com/a.ics")
	require.NoError(t, err)

	handler := NewFeedHandler(service, noopSync)
	req := httptest.NewRequest("DELETE", "/api/feed/1", nil)
	rec := httptest.NewRecorder()
	newFeedRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, repo.DeletedEvents, created.ID)
}

func TestDeleteFeedHandler_NotFound(t *testing.T) {
	handler := NewFeedHandler(NewFeedService(NewStubFeedRepo()), noopSync)

	req := httptest.NewRequest("DELETE", "/api/feed/42", nil)
	rec := httptest.NewRecorder()
	newFeedRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
