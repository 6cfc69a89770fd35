package s4_ranker

import (
	"sort"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// Ranker implements S4: presentation order of transfers and purchases
// ⭐ SSOT: S4 정렬 규칙은 여기서만
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(log *logger.Logger) *Ranker {
	return &Ranker{logger: log}
}

// Rank returns a new plan with transfers ascending by transfer total and
// purchases descending by quantity needed; ties by product id ascending
func (r *Ranker) Rank(plan *contracts.Plan) *contracts.Plan {
	ranked := &contracts.Plan{
		Transfers: make([]contracts.TransferPlan, len(plan.Transfers)),
		Purchases: make([]contracts.PurchaseRequirement, len(plan.Purchases)),
		Warnings:  plan.Warnings,
	}
	copy(ranked.Transfers, plan.Transfers)
	copy(ranked.Purchases, plan.Purchases)

	// 작은 이관부터 (가장 쉬운 재배치)
	sort.SliceStable(ranked.Transfers, func(i, j int) bool {
		a, b := ranked.Transfers[i], ranked.Transfers[j]
		if cmp := a.TransferTotal.Cmp(b.TransferTotal); cmp != 0 {
			return cmp < 0
		}
		return a.ProductID < b.ProductID
	})

	// 큰 부족분부터
	sort.SliceStable(ranked.Purchases, func(i, j int) bool {
		a, b := ranked.Purchases[i], ranked.Purchases[j]
		if cmp := a.QuantityNeeded.Cmp(b.QuantityNeeded); cmp != 0 {
			return cmp > 0
		}
		return a.ProductID < b.ProductID
	})

	fields := map[string]interface{}{
		"transfers": len(ranked.Transfers),
		"purchases": len(ranked.Purchases),
	}
	if len(ranked.Purchases) > 0 {
		fields["top_purchase"] = ranked.Purchases[0].ProductID
		fields["top_quantity"] = ranked.Purchases[0].QuantityNeeded.String()
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return ranked
}
