package s0_snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/internal/engineconfig"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// Normalizer implements S0: one current-state row per (entity, product) with trailing sales
// ⭐ SSOT: S0 정규화 로직은 여기서만
type Normalizer struct {
	policy string
	now    func() time.Time
	logger *logger.Logger
}

// Result is the output of a normalization pass
type Result struct {
	Rows   []contracts.NormalizedRow
	Period contracts.TrailingPeriod
	Stats  contracts.SnapshotStats
}

// NewNormalizer creates a normalizer; now is only consulted by the wall_clock policy
func NewNormalizer(policy string, now func() time.Time, log *logger.Logger) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{
		policy: policy,
		now:    now,
		logger: log,
	}
}

// Normalize runs the three S0 steps: row-key dedupe, trailing sales, latest row per pair
func (n *Normalizer) Normalize(rows []contracts.StockSnapshotRow) (*Result, error) {
	if len(rows) == 0 {
		return nil, contracts.ErrEmptySnapshot
	}

	// 1. 소스 노이즈 제거 (row key 중복)
	unique, dropped := DeduplicateByKey(rows)

	// 2. 직전 완료 월 판매 집계
	period, err := TrailingMonth(n.policy, unique, n.now())
	if err != nil {
		return nil, err
	}
	trailing := TrailingSales(unique, period)

	// 3. (entity, product)별 최신 행
	latest := LatestPerPair(unique)

	normalized := make([]contracts.NormalizedRow, 0, len(latest))
	entities := make(map[string]struct{})
	products := make(map[string]struct{})
	for _, row := range latest {
		sales, ok := trailing[row.Pair()]
		if !ok {
			sales = decimal.Zero // left join: 판매 없음
		}
		normalized = append(normalized, contracts.NormalizedRow{
			StockSnapshotRow: row,
			TrailingSales:    sales,
		})
		entities[row.EntityID] = struct{}{}
		products[row.ProductID] = struct{}{}
	}

	result := &Result{
		Rows:   normalized,
		Period: period,
		Stats: contracts.SnapshotStats{
			RawRows:            len(rows),
			DuplicateKeys:      dropped,
			NormalizedRows:     len(normalized),
			Entities:           len(entities),
			Products:           len(products),
			MaxObservationDate: maxObservationDate(unique),
		},
	}

	n.logger.WithFields(map[string]interface{}{
		"raw_rows":        result.Stats.RawRows,
		"duplicate_keys":  dropped,
		"normalized_rows": len(normalized),
		"trailing_period": period.String(),
		"policy":          period.Policy,
	}).Info("Snapshot normalized")

	return result, nil
}

// DeduplicateByKey keeps the first occurrence of each non-empty row key
// row key가 없는 행은 이 단계에서 제거하지 않음
func DeduplicateByKey(rows []contracts.StockSnapshotRow) ([]contracts.StockSnapshotRow, int) {
	seen := make(map[string]struct{}, len(rows))
	unique := make([]contracts.StockSnapshotRow, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		if row.RowKey != "" {
			if _, dup := seen[row.RowKey]; dup {
				dropped++
				continue
			}
			seen[row.RowKey] = struct{}{}
		}
		unique = append(unique, row)
	}

	return unique, dropped
}

// TrailingMonth returns the calendar month preceding the reference month of the policy
func TrailingMonth(policy string, rows []contracts.StockSnapshotRow, now time.Time) (contracts.TrailingPeriod, error) {
	var ref time.Time
	switch policy {
	case engineconfig.PolicyDataMax, "":
		policy = engineconfig.PolicyDataMax
		ref = maxObservationDate(rows)
	case engineconfig.PolicyWallClock:
		ref = now
	default:
		return contracts.TrailingPeriod{}, fmt.Errorf("unknown trailing period policy %q", policy)
	}

	// time.Date가 0월을 전년도 12월로 정규화
	prev := time.Date(ref.Year(), ref.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	return contracts.TrailingPeriod{
		Year:   prev.Year(),
		Month:  int(prev.Month()),
		Policy: policy,
	}, nil
}

// TrailingSales sums period sales per pair for rows dated inside the period
func TrailingSales(rows []contracts.StockSnapshotRow, period contracts.TrailingPeriod) map[contracts.PairKey]decimal.Decimal {
	sums := make(map[contracts.PairKey]decimal.Decimal)
	for _, row := range rows {
		if !period.Contains(row.ObservationDate) {
			continue
		}
		key := row.Pair()
		sums[key] = sums[key].Add(row.PeriodSales)
	}
	return sums
}

// LatestPerPair sorts by (entity asc, product asc, date desc) and keeps the first row per pair
// 날짜가 같으면 입력 순서가 앞선 행이 남음 (stable sort)
func LatestPerPair(rows []contracts.StockSnapshotRow) []contracts.StockSnapshotRow {
	sorted := make([]contracts.StockSnapshotRow, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.ObservationDate.After(b.ObservationDate)
	})

	latest := make([]contracts.StockSnapshotRow, 0, len(sorted))
	for i, row := range sorted {
		if i > 0 && sorted[i-1].Pair() == row.Pair() {
			continue
		}
		latest = append(latest, row)
	}

	return latest
}

func maxObservationDate(rows []contracts.StockSnapshotRow) time.Time {
	var max time.Time
	for _, row := range rows {
		if row.ObservationDate.After(max) {
			max = row.ObservationDate
		}
	}
	return max
}
