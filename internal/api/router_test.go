package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/stockbalance/backend/internal/api/handlers"
	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/internal/engine"
	"github.com/wonny/stockbalance/backend/internal/engineconfig"
	"github.com/wonny/stockbalance/backend/pkg/logger"
	"github.com/wonny/stockbalance/backend/pkg/redis"
)

type stubSource struct {
	table *contracts.SnapshotTable
	err   error
	calls int
}

func (s *stubSource) Fetch(ctx context.Context) (*contracts.SnapshotTable, error) {
	s.calls++
	return s.table, s.err
}

func stubTable() *contracts.SnapshotTable {
	return &contracts.SnapshotTable{
		Columns: []string{"nk_entidade", "nk_produto_grade", "nm_produto", "sk_data", "saldo", "venda"},
		Rows: [][]any{
			{"E1", "P", "Produto P", "20240210", "0", "10"},
			{"E2", "P", "Produto P", "20240210", "0", "20"},
			{"E1", "P", "Produto P", "20240305", "100", "0"},
			{"E2", "P", "Produto P", "20240305", "5", "0"},
			{"E1", "Q", "Produto Q", "20240210", "0", "5"},
			{"E1", "Q", "Produto Q", "20240305", "1", "0"},
			{"E2", "R", "Produto R", "20240210", "0", "30"},
			{"E2", "R", "Produto R", "20240305", "0", "0"},
		},
	}
}

func newTestRouter(t *testing.T, source contracts.SnapshotSource) http.Handler {
	t.Helper()

	eng, err := engine.NewOrchestrator(engineconfig.Default(), func() time.Time {
		return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	}, logger.Nop())
	require.NoError(t, err)

	cache := redis.NewCache(redis.Disabled(), "test")
	h := handlers.NewReportHandler(eng, source, "stub", cache, time.Minute, logger.Nop())
	return NewRouter(h, logger.Nop())
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t, &stubSource{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetReport(t *testing.T) {
	router := newTestRouter(t, &stubSource{table: stubTable()})

	rec := get(t, router, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Report-Cache"))

	var report contracts.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2024, report.TrailingPeriod.Year)
	assert.Equal(t, 2, report.TrailingPeriod.Month)
	require.Len(t, report.Transfers, 1)
	assert.Equal(t, "P", report.Transfers[0].ProductID)
	assert.Equal(t, "35", report.Transfers[0].TransferTotal.String())
}

func TestGetPurchases_Limit(t *testing.T) {
	router := newTestRouter(t, &stubSource{table: stubTable()})

	rec := get(t, router, "/api/report/purchases?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total     int                             `json:"total"`
		Count     int                             `json:"count"`
		Purchases []contracts.PurchaseRequirement `json:"purchases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 1, body.Count)
	// R(-60)이 Q(-9)보다 먼저
	assert.Equal(t, "R", body.Purchases[0].ProductID)
	assert.Equal(t, "60", body.Purchases[0].QuantityNeeded.String())

	rec = get(t, router, "/api/report/purchases?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTransfersAndABC(t *testing.T) {
	router := newTestRouter(t, &stubSource{table: stubTable()})

	rec := get(t, router, "/api/report/transfers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = get(t, router, "/api/report/abc")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Counts   map[string]int              `json:"counts"`
		Products []contracts.ProductAbcClass `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Products, 3)
	assert.Equal(t, "P", body.Products[0].ProductID) // P=30, R=30 → ID 순
	assert.Equal(t, 3, body.Counts["A"]+body.Counts["B"]+body.Counts["C"])
}

func TestDownloads(t *testing.T) {
	router := newTestRouter(t, &stubSource{table: stubTable()})

	rec := get(t, router, "/api/report/purchases.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "purchases.csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	rec = get(t, router, "/api/report/transfers.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"transfers"}, f.GetSheetList())

	rec = get(t, router, "/api/report/orders.csv")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = get(t, router, "/api/report/orders.xlsx")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportErrors(t *testing.T) {
	rec := get(t, newTestRouter(t, &stubSource{err: errors.New("db down")}), "/api/report")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	empty := &contracts.SnapshotTable{Columns: stubTable().Columns}
	rec = get(t, newTestRouter(t, &stubSource{table: empty}), "/api/report")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty snapshot")
}
