package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherlink-poller/internal/store"
	"github.com/i474232898/weatherlink-poller/internal/weather"
)

type stubService struct {
	store  *store.MemoryStore
	engine *weather.Engine
	polls  int
}

func newStubService() *stubService {
	return &stubService{
		store:  store.NewMemoryStore(10, 0),
		engine: weather.NewEngine(weather.EngineConfig{Mappings: "outTemp:A"}),
	}
}

func (s *stubService) Poll(ctx context.Context) (weather.Record, error) {
	s.polls++
	rec := weather.BuildRecord(time.Unix(1700000000, 0), []weather.Resolved{{Name: "outTemp", Value: 61.5}})
	s.store.SaveRecord(rec)
	return rec, nil
}

func (s *stubService) GetLatest() (weather.Record, error) { return s.store.GetLatest() }

func (s *stubService) GetRange(from, to time.Time) ([]weather.Record, error) {
	return s.store.GetRange(from, to)
}

func (s *stubService) Bindings() []weather.TransmitterBinding { return s.engine.Bindings() }

func newTestApp() (*fiber.App, *stubService) {
	app := fiber.New()
	svc := newStubService()
	RegisterRoutes(app, svc)
	return app, svc
}

func TestLatest_NotFoundBeforeFirstPoll(t *testing.T) {
	app, _ := newTestApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/records/latest", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPollThenLatest(t *testing.T) {
	app, svc := newTestApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/poll", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, svc.polls)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/records/latest", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var rec weather.Record
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, 61.5, rec.Values["outTemp"])
	assert.Equal(t, weather.UnitsUS, rec.Units)
}

// TestHistoryValidation verifies that the history endpoint requires a
// well-formed, ordered from/to range.
func TestHistoryValidation(t *testing.T) {
	app, _ := newTestApp()

	for _, target := range []string{
		"/api/v1/records/history",
		"/api/v1/records/history?from=yesterday&to=1700000100",
		"/api/v1/records/history?from=1700000100&to=1700000000",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestHistoryRange(t *testing.T) {
	app, _ := newTestApp()

	_, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/poll", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/records/history?from=1699999990&to=2023-11-14T22:13:30Z", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Records []weather.Record `json:"records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Records, 1)
}

func TestMetricBindings(t *testing.T) {
	app, _ := newTestApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Metrics []struct {
			Name          string `json:"name"`
			TransmitterID string `json:"transmitterId"`
		} `json:"metrics"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Metrics)
	assert.Equal(t, "outTemp", body.Metrics[0].Name)
	assert.Equal(t, "A", body.Metrics[0].TransmitterID)
}

func TestNewApp_Health(t *testing.T) {
	app := NewApp(newStubService())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
