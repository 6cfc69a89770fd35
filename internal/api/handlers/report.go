package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/internal/engine"
	"github.com/wonny/stockbalance/backend/internal/export"
	"github.com/wonny/stockbalance/backend/pkg/logger"
	"github.com/wonny/stockbalance/backend/pkg/redis"
)

// ReportHandler serves rebalancing reports computed on demand
// ⭐ SSOT: 리포트 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	engine     *engine.Orchestrator
	source     contracts.SnapshotSource
	sourceName string
	cache      *redis.Cache
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	eng *engine.Orchestrator,
	source contracts.SnapshotSource,
	sourceName string,
	cache *redis.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *ReportHandler {
	return &ReportHandler{
		engine:     eng,
		source:     source,
		sourceName: sourceName,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     log,
	}
}

// GetReport returns the full report
// GET /api/report?refresh=true
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetTransfers returns the ranked transfer plans
// GET /api/report/transfers
func (h *ReportHandler) GetTransfers(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":          report.RunID,
		"trailing_period": report.TrailingPeriod.String(),
		"count":           len(report.Transfers),
		"transfers":       report.Transfers,
	})
}

// GetPurchases returns the ranked purchase requirements
// GET /api/report/purchases?limit=10
func (h *ReportHandler) GetPurchases(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	report, ok := h.load(w, r)
	if !ok {
		return
	}

	purchases := report.TopPurchases(limit)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":          report.RunID,
		"trailing_period": report.TrailingPeriod.String(),
		"total":           len(report.Purchases),
		"count":           len(purchases),
		"purchases":       purchases,
	})
}

// GetABC returns the ABC classification
// GET /api/report/abc
func (h *ReportHandler) GetABC(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}

	counts := map[contracts.AbcClass]int{contracts.ClassA: 0, contracts.ClassB: 0, contracts.ClassC: 0}
	for _, c := range report.Classes {
		counts[c.Class]++
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   report.RunID,
		"counts":   counts,
		"products": report.Classes,
	})
}

// DownloadCSV streams one report table as CSV
// GET /api/report/{table}.csv
func (h *ReportHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["table"]

	report, ok := h.load(w, r)
	if !ok {
		return
	}

	table, err := export.BuildTable(report, name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, name))
	if err := export.WriteCSV(w, table); err != nil {
		h.logger.WithError(err).Error("Failed to write CSV")
	}
}

// DownloadXLSX streams one report table as a workbook
// GET /api/report/{table}.xlsx
func (h *ReportHandler) DownloadXLSX(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["table"]

	if !knownTable(name) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown table %q", name))
		return
	}

	report, ok := h.load(w, r)
	if !ok {
		return
	}

	f, err := export.NewWorkbook(report, name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build workbook")
		respondError(w, http.StatusInternalServerError, "Failed to build workbook")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, name))
	if err := f.Write(w); err != nil {
		h.logger.WithError(err).Error("Failed to write workbook")
	}
}

// load returns the cached report or computes a new one; on failure the response is already written
func (h *ReportHandler) load(w http.ResponseWriter, r *http.Request) (*contracts.Report, bool) {
	ctx := r.Context()
	key := redis.ReportKey(h.engine.ConfigHash(), h.sourceName)

	if r.URL.Query().Get("refresh") == "true" {
		if err := h.cache.Delete(ctx, key); err != nil {
			h.logger.WithError(err).Warn("Failed to invalidate cached report")
		}
	}

	var report contracts.Report
	hit, err := h.cache.GetOrSet(ctx, key, &report, h.cacheTTL, func() (interface{}, error) {
		return h.compute(ctx)
	})
	if err != nil {
		status, message := errorStatus(err)
		h.logger.WithError(err).Error("Failed to compute report")
		respondError(w, status, message)
		return nil, false
	}

	w.Header().Set("X-Report-Cache", cacheHeader(hit))
	return &report, true
}

func (h *ReportHandler) compute(ctx context.Context) (*contracts.Report, error) {
	return h.engine.Run(ctx, h.source)
}

// errorStatus maps engine failures to HTTP status codes
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Report computation cancelled"
	case !engine.IsPermanent(err):
		return http.StatusBadGateway, "Failed to fetch snapshot"
	default:
		return http.StatusUnprocessableEntity, err.Error()
	}
}

func knownTable(name string) bool {
	for _, t := range export.TableNames() {
		if t == name {
			return true
		}
	}
	return false
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
