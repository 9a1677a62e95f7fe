package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/robopoint/salesops-manager/internal/analytics"
	"github.com/robopoint/salesops-manager/internal/dto"
	"github.com/robopoint/salesops-manager/internal/entity"
)

const dateParamLayout = "2006-01-02"

type handlers struct {
	svc *analytics.Service

	// kpiGen discards stale KPI computations: when overlapping requests
	// race, only the latest one may refresh the cached snapshot.
	kpiGen   analytics.Tracker
	cacheMu  sync.RWMutex
	lastKpis *dto.KpiReport
}

func newHandlers(svc *analytics.Service) *handlers {
	return &handlers{svc: svc}
}

var validPresets = map[entity.PeriodPreset]bool{
	entity.PeriodThisMonth: true,
	entity.PeriodLastMonth: true,
	entity.PeriodYTD:       true,
	entity.PeriodCustom:    true,
}

// parseWindow resolves the preset/from/to query params into the current and
// comparison windows.
func parseWindow(r *http.Request) (cur, prev entity.TimeRange, err error) {
	preset := entity.PeriodPreset(r.URL.Query().Get("preset"))
	if preset == "" {
		preset = entity.PeriodThisMonth
	}
	if !validPresets[preset] {
		return cur, prev, fmt.Errorf("unknown preset %q", preset)
	}

	var from, to time.Time
	if preset == entity.PeriodCustom {
		from, err = time.Parse(dateParamLayout, r.URL.Query().Get("from"))
		if err != nil {
			return cur, prev, fmt.Errorf("from: expected %s date", dateParamLayout)
		}
		to, err = time.Parse(dateParamLayout, r.URL.Query().Get("to"))
		if err != nil {
			return cur, prev, fmt.Errorf("to: expected %s date", dateParamLayout)
		}
	}
	return analytics.PeriodWindow(preset, from, to, time.Now())
}

func (h *handlers) getKpis(w http.ResponseWriter, r *http.Request) {
	cur, prev, err := parseWindow(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	token := h.kpiGen.Issue()
	report, err := h.svc.GetKpis(r.Context(), cur, prev)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := dto.KpiReportFromEntity(report)
	h.kpiGen.Apply(token, func() {
		h.cacheMu.Lock()
		h.lastKpis = &resp
		h.cacheMu.Unlock()
	})
	writeJSON(w, http.StatusOK, resp)
}

// getLatestKpis serves the last successfully computed KPI snapshot without
// touching the store.
func (h *handlers) getLatestKpis(w http.ResponseWriter, r *http.Request) {
	h.cacheMu.RLock()
	snapshot := h.lastKpis
	h.cacheMu.RUnlock()
	if snapshot == nil {
		writeJSON(w, http.StatusNotFound, errResponse{Status: "Resource not found.", Error: "no kpi snapshot computed yet"})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *handlers) getFunnel(w http.ResponseWriter, r *http.Request) {
	cur, _, err := parseWindow(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	report, err := h.svc.GetFunnel(r.Context(), cur)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FunnelReportFromEntity(report))
}

func (h *handlers) getTimeSeries(w http.ResponseWriter, r *http.Request) {
	cur, _, err := parseWindow(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	metrics := []string{entity.MetricNewLeads, entity.MetricOffersCreated, entity.MetricDealsWon}
	if raw := r.URL.Query().Get("metrics"); raw != "" {
		metrics = metrics[:0]
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				metrics = append(metrics, m)
			}
		}
	}

	buckets, err := h.svc.GetTimeSeries(r.Context(), cur, metrics)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TimeBucketsFromEntity(buckets))
}

func (h *handlers) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	cur, _, err := parseWindow(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	sortBy := entity.SortMetric(r.URL.Query().Get("sort"))
	switch sortBy {
	case "":
		sortBy = entity.SortByRevenue
	case entity.SortByRevenue, entity.SortByConversionRate, entity.SortByDealsWon, entity.SortByTasksCompleted:
	default:
		badRequest(w, fmt.Sprintf("unknown sort metric %q", sortBy))
		return
	}

	records, err := h.svc.GetLeaderboard(r.Context(), cur, sortBy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LeaderboardFromEntity(records))
}

func (h *handlers) getOpportunities(w http.ResponseWriter, r *http.Request) {
	cur, _, err := parseWindow(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	openOnly := r.URL.Query().Get("open") == "true"

	opps, err := h.svc.ListOpportunities(r.Context(), cur, openOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.OpportunitiesFromEntity(opps))
}

func (h *handlers) getOpportunityMargins(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if uuid == "" {
		badRequest(w, "missing opportunity uuid")
		return
	}
	report, err := h.svc.ComputeOpportunityMargins(r.Context(), uuid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MarginReportFromEntity(report))
}

func (h *handlers) getGoalProgress(w http.ResponseWriter, r *http.Request) {
	// Direct computation mode: ?current=&target= skips the store entirely.
	q := r.URL.Query()
	if q.Has("current") || q.Has("target") {
		current, err := decimal.NewFromString(q.Get("current"))
		if err != nil {
			badRequest(w, "current: expected a decimal number")
			return
		}
		target, err := decimal.NewFromString(q.Get("target"))
		if err != nil {
			badRequest(w, "target: expected a decimal number")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"progress": analytics.GoalProgress(current, target)})
		return
	}

	goals, err := h.svc.ListGoalProgress(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.GoalProgressFromEntity(goals))
}
