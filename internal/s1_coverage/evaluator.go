package s1_coverage

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// Evaluator implements S1: coverage requirement and deficit/surplus split
// ⭐ SSOT: S1 커버리지 계산은 여기서만
type Evaluator struct {
	multiplier decimal.Decimal
	logger     *logger.Logger
}

// NewEvaluator creates an evaluator; required coverage = multiplier × trailing sales
func NewEvaluator(multiplier decimal.Decimal, log *logger.Logger) *Evaluator {
	return &Evaluator{
		multiplier: multiplier,
		logger:     log,
	}
}

// Evaluate computes required coverage and balance vs coverage per row, preserving order
func (e *Evaluator) Evaluate(rows []contracts.NormalizedRow) []contracts.CoverageRecord {
	records := make([]contracts.CoverageRecord, len(rows))
	for i, row := range rows {
		required := e.multiplier.Mul(row.TrailingSales)
		records[i] = contracts.CoverageRecord{
			NormalizedRow:     row,
			RequiredCoverage:  required,
			BalanceVsCoverage: row.OnHandBalance.Sub(required),
		}
	}
	return records
}

// Partition splits records into deficit (negative) and surplus (zero or positive), preserving order
func (e *Evaluator) Partition(records []contracts.CoverageRecord) contracts.CoveragePartition {
	partition := contracts.CoveragePartition{
		Deficit: make([]contracts.CoverageRecord, 0),
		Surplus: make([]contracts.CoverageRecord, 0),
	}

	for _, rec := range records {
		switch rec.Side() {
		case contracts.SideDeficit:
			partition.Deficit = append(partition.Deficit, rec)
		default:
			partition.Surplus = append(partition.Surplus, rec)
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"records":    len(records),
		"deficit":    len(partition.Deficit),
		"surplus":    len(partition.Surplus),
		"multiplier": e.multiplier.String(),
	}).Info("Coverage evaluated")

	return partition
}
