package s4_ranker

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

func transfer(id string, total int64) contracts.TransferPlan {
	return contracts.TransferPlan{ProductID: id, TransferTotal: decimal.NewFromInt(total)}
}

func purchase(id string, qty int64) contracts.PurchaseRequirement {
	return contracts.PurchaseRequirement{ProductID: id, QuantityNeeded: decimal.NewFromInt(qty)}
}

func transferIDs(ts []contracts.TransferPlan) []string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ProductID
	}
	return ids
}

func purchaseIDs(ps []contracts.PurchaseRequirement) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ProductID
	}
	return ids
}

func TestRanker_Rank(t *testing.T) {
	plan := &contracts.Plan{
		Transfers: []contracts.TransferPlan{
			transfer("P3", 30),
			transfer("P2", 5),
			transfer("P9", 10),
			transfer("P1", 10),
		},
		Purchases: []contracts.PurchaseRequirement{
			purchase("Q1", 7),
			purchase("Q4", 50),
			purchase("Q3", 7),
			purchase("Q2", 100),
		},
		Warnings: []string{"w"},
	}

	ranked := NewRanker(logger.Nop()).Rank(plan)

	assert.Equal(t, []string{"P2", "P1", "P9", "P3"}, transferIDs(ranked.Transfers))
	assert.Equal(t, []string{"Q2", "Q4", "Q1", "Q3"}, purchaseIDs(ranked.Purchases))
	assert.Equal(t, []string{"w"}, ranked.Warnings)

	// 입력은 변경되지 않음
	assert.Equal(t, []string{"P3", "P2", "P9", "P1"}, transferIDs(plan.Transfers))
}

func TestRanker_Deterministic(t *testing.T) {
	a := &contracts.Plan{Purchases: []contracts.PurchaseRequirement{purchase("B", 1), purchase("A", 1), purchase("C", 2)}}
	b := &contracts.Plan{Purchases: []contracts.PurchaseRequirement{purchase("C", 2), purchase("A", 1), purchase("B", 1)}}

	r := NewRanker(logger.Nop())
	assert.Equal(t, purchaseIDs(r.Rank(a).Purchases), purchaseIDs(r.Rank(b).Purchases))
}

func TestRanker_Empty(t *testing.T) {
	ranked := NewRanker(logger.Nop()).Rank(&contracts.Plan{})
	require.NotNil(t, ranked)
	assert.Empty(t, ranked.Transfers)
	assert.Empty(t, ranked.Purchases)
}
