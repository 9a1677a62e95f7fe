package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robopoint/salesops-manager/internal/entity"
)

func TestParseWindow_DefaultsToThisMonth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/kpis", nil)

	cur, prev, err := parseWindow(req)
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), cur.From)
	assert.True(t, prev.To.Equal(cur.From))
}

func TestParseWindow_RejectsUnknownPreset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/kpis?preset=quarter", nil)

	_, _, err := parseWindow(req)
	assert.Error(t, err)
}

func TestParseWindow_CustomRequiresBothBounds(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/kpis?preset=custom&from=2026-03-10", nil)

	_, _, err := parseWindow(req)
	assert.Error(t, err)
}

func TestParseWindow_CustomNormalizesInclusiveDays(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/kpis?preset=custom&from=2026-03-10&to=2026-03-12", nil)

	cur, prev, err := parseWindow(req)
	require.NoError(t, err)

	assert.Equal(t, 3*24*time.Hour, cur.To.Sub(cur.From))
	assert.Equal(t, cur.From, prev.To)
}

func TestParseWindow_CustomInvalidOrder(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/kpis?preset=custom&from=2026-03-12&to=2026-03-10", nil)

	_, _, err := parseWindow(req)
	assert.ErrorIs(t, err, entity.ErrInvalidRange)
}

func TestGetGoalProgress_DirectComputation(t *testing.T) {
	h := newHandlers(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/goals/progress?current=150&target=100", nil)
	rec := httptest.NewRecorder()
	h.getGoalProgress(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 100, body["progress"])
}

func TestGetGoalProgress_DirectComputationBadInput(t *testing.T) {
	h := newHandlers(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/goals/progress?current=abc&target=100", nil)
	rec := httptest.NewRecorder()
	h.getGoalProgress(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLatestKpis_EmptyCache(t *testing.T) {
	h := newHandlers(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/kpis/latest", nil)
	rec := httptest.NewRecorder()
	h.getLatestKpis(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
