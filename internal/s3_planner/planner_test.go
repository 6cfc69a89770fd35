package s3_planner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

func record(entity, product, name string, balanceVsCoverage int64) contracts.CoverageRecord {
	return contracts.CoverageRecord{
		NormalizedRow: contracts.NormalizedRow{
			StockSnapshotRow: contracts.StockSnapshotRow{
				EntityID:    entity,
				ProductID:   product,
				ProductName: name,
			},
		},
		BalanceVsCoverage: decimal.NewFromInt(balanceVsCoverage),
	}
}

func partitionOf(records ...contracts.CoverageRecord) contracts.CoveragePartition {
	var p contracts.CoveragePartition
	for _, rec := range records {
		if rec.Side() == contracts.SideDeficit {
			p.Deficit = append(p.Deficit, rec)
		} else {
			p.Surplus = append(p.Surplus, rec)
		}
	}
	return p
}

func classesFor(ids ...string) *contracts.Classification {
	products := make([]contracts.ProductAbcClass, len(ids))
	for i, id := range ids {
		products[i] = contracts.ProductAbcClass{ProductID: id, Rank: i + 1, Class: contracts.ClassB}
	}
	return contracts.NewClassification(products, decimal.NewFromInt(1), false)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestPlanner_TransferScenario(t *testing.T) {
	// E1: 잔고 100, 판매 10 → +80 / E2: 잔고 5, 판매 20 → -35
	partition := partitionOf(
		record("E1", "P", "Produto", 80),
		record("E2", "P", "Produto", -35),
	)

	plan, err := NewPlanner(2, logger.Nop()).Plan(context.Background(), partition, classesFor("P"))
	require.NoError(t, err)
	require.Len(t, plan.Transfers, 1)
	assert.Empty(t, plan.Purchases)

	tp := plan.Transfers[0]
	assert.Equal(t, "P", tp.ProductID)
	assert.Equal(t, contracts.ClassB, tp.AbcClass)
	require.Len(t, tp.Donors, 1)
	assert.Equal(t, "E1", tp.Donors[0].EntityID)
	assert.True(t, tp.Donors[0].Amount.Equal(dec(80)))
	require.Len(t, tp.Receptors, 1)
	assert.Equal(t, "E2", tp.Receptors[0].EntityID)
	assert.True(t, tp.Receptors[0].Amount.Equal(dec(-35)), "receptors carry the signed shortfall")
	assert.True(t, tp.TransferTotal.Equal(dec(35)))
	assert.True(t, tp.TotalSurplus.Equal(dec(80)))
	assert.True(t, tp.TotalDeficit.Equal(dec(-35)))
}

func TestPlanner_PurchaseScenario(t *testing.T) {
	partition := partitionOf(
		record("E1", "Q", "Q", -30),
		record("E2", "Q", "Q", -20),
	)

	plan, err := NewPlanner(1, logger.Nop()).Plan(context.Background(), partition, classesFor("Q"))
	require.NoError(t, err)
	assert.Empty(t, plan.Transfers)
	require.Len(t, plan.Purchases, 1)

	pr := plan.Purchases[0]
	assert.True(t, pr.QuantityNeeded.Equal(dec(50)))
	assert.True(t, pr.TotalSurplus.IsZero())
	assert.True(t, pr.TotalDeficit.Equal(dec(-50)))
}

func TestPlanner_PartialSurplusIsPurchase(t *testing.T) {
	partition := partitionOf(
		record("E1", "P", "P", 10),
		record("E2", "P", "P", -25),
	)

	plan, err := NewPlanner(1, logger.Nop()).Plan(context.Background(), partition, classesFor("P"))
	require.NoError(t, err)
	require.Len(t, plan.Purchases, 1)
	assert.True(t, plan.Purchases[0].QuantityNeeded.Equal(dec(15)))
}

func TestPlanner_ExactBalanceIsTransfer(t *testing.T) {
	partition := partitionOf(
		record("E1", "P", "P", 25),
		record("E2", "P", "P", -25),
	)

	plan, err := NewPlanner(1, logger.Nop()).Plan(context.Background(), partition, classesFor("P"))
	require.NoError(t, err)
	require.Len(t, plan.Transfers, 1)
	assert.True(t, plan.Transfers[0].TransferTotal.Equal(dec(25)))
}

func TestPlanner_SurplusOnlyEmitsNothing(t *testing.T) {
	partition := partitionOf(
		record("E1", "P", "P", 10),
		record("E2", "P", "P", 0),
	)

	plan, err := NewPlanner(1, logger.Nop()).Plan(context.Background(), partition, classesFor("P"))
	require.NoError(t, err)
	assert.Empty(t, plan.Transfers)
	assert.Empty(t, plan.Purchases)
}

func TestPlanner_DonorAndReceptorOrder(t *testing.T) {
	partition := partitionOf(
		record("E3", "P", "P", -5),
		record("E1", "P", "P", 7),
		record("E2", "P", "P", -1),
		record("E4", "P", "P", 3),
	)

	plan, err := NewPlanner(1, logger.Nop()).Plan(context.Background(), partition, classesFor("P"))
	require.NoError(t, err)
	require.Len(t, plan.Transfers, 1)

	tp := plan.Transfers[0]
	assert.Equal(t, "E1: 7\nE4: 3", tp.DonorLines())
	assert.Equal(t, "E3: -5\nE2: -1", tp.ReceptorLines())
	assert.True(t, tp.TransferTotal.Equal(dec(6)))
}

func TestPlanner_Unclassified(t *testing.T) {
	partition := partitionOf(
		record("E1", "P", "P", -5),
		record("E1", "X", "X", 5),
	)

	_, err := NewPlanner(1, logger.Nop()).Plan(context.Background(), partition, classesFor("P"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrUnclassifiedProduct))

	var unclassified *contracts.UnclassifiedProductError
	require.True(t, errors.As(err, &unclassified))
	assert.Equal(t, "X", unclassified.ProductID)
}

func TestPlanner_NameMismatchWarns(t *testing.T) {
	partition := partitionOf(
		record("E1", "P", "Camisa Azul", -5),
		record("E2", "P", "CAMISA AZUL", 9),
		record("E3", "P", "CAMISA AZUL", 1),
	)

	plan, err := NewPlanner(1, logger.Nop()).Plan(context.Background(), partition, classesFor("P"))
	require.NoError(t, err)

	require.Len(t, plan.Transfers, 1)
	assert.Equal(t, "Camisa Azul", plan.Transfers[0].ProductName, "first name seen wins")
	assert.Len(t, plan.Transfers[0].Donors, 2, "mismatched rows are kept")
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "CAMISA AZUL")
}

func TestPlanner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	partition := partitionOf(record("E1", "P", "P", -5))
	_, err := NewPlanner(1, logger.Nop()).Plan(ctx, partition, classesFor("P"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlanner_ConservationAndExclusivity(t *testing.T) {
	var records []contracts.CoverageRecord
	var ids []string
	for p := 0; p < 40; p++ {
		id := fmt.Sprintf("P%02d", p)
		ids = append(ids, id)
		for e := 0; e < 5; e++ {
			// 결정적 의사난수 잔고
			v := int64((p*7+e*13)%41) - 20
			records = append(records, record(fmt.Sprintf("E%d", e), id, id, v))
		}
	}

	plan, err := NewPlanner(8, logger.Nop()).Plan(context.Background(), partitionOf(records...), classesFor(ids...))
	require.NoError(t, err)

	seen := make(map[string]string)
	for _, tp := range plan.Transfers {
		assert.True(t, tp.TransferTotal.LessThanOrEqual(tp.TotalSurplus))
		assert.True(t, tp.TransferTotal.LessThanOrEqual(tp.TotalDeficit.Abs()))
		assert.True(t, tp.TransferTotal.Equal(decimal.Min(tp.TotalSurplus, tp.TotalDeficit.Abs())))
		seen[tp.ProductID] = "transfer"
	}
	for _, pr := range plan.Purchases {
		_, dup := seen[pr.ProductID]
		assert.False(t, dup, "product %s in both tables", pr.ProductID)
		assert.True(t, pr.QuantityNeeded.IsPositive())
		seen[pr.ProductID] = "purchase"
	}

	// 병렬 실행 결과가 단일 워커와 동일
	serial, err := NewPlanner(1, logger.Nop()).Plan(context.Background(), partitionOf(records...), classesFor(ids...))
	require.NoError(t, err)
	assert.Equal(t, serial.Transfers, plan.Transfers)
	assert.Equal(t, serial.Purchases, plan.Purchases)
}
