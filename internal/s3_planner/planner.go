package s3_planner

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// Planner implements S3: per-product transfer plan or purchase requirement
// ⭐ SSOT: S3 재배치/구매 판단은 여기서만
type Planner struct {
	workers int
	logger  *logger.Logger
}

// productGroup holds the coverage records of one product in partition order
type productGroup struct {
	productID   string
	productName string // 처음 본 이름
	deficit     []contracts.CoverageRecord
	surplus     []contracts.CoverageRecord
}

// outcome is the result of one product; at most one field is set
type outcome struct {
	transfer *contracts.TransferPlan
	purchase *contracts.PurchaseRequirement
}

// NewPlanner creates a planner fanning out over at most workers goroutines
func NewPlanner(workers int, log *logger.Logger) *Planner {
	if workers < 1 {
		workers = 1
	}
	return &Planner{
		workers: workers,
		logger:  log,
	}
}

// Plan resolves every product of the partition against the ABC classification
func (p *Planner) Plan(ctx context.Context, partition contracts.CoveragePartition, classification *contracts.Classification) (*contracts.Plan, error) {
	groups, warnings := groupByProduct(partition)

	// ABC 조인 실패는 불변식 위반 → 전체 실패
	classes := make([]contracts.AbcClass, len(groups))
	for i, g := range groups {
		class, ok := classification.Lookup(g.productID)
		if !ok {
			return nil, &contracts.UnclassifiedProductError{ProductID: g.productID}
		}
		classes[i] = class.Class
	}

	results := make([]outcome, len(groups))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)

	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = resolve(g, classes[i])
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("plan products: %w", err)
	}

	plan := &contracts.Plan{
		Transfers: make([]contracts.TransferPlan, 0),
		Purchases: make([]contracts.PurchaseRequirement, 0),
		Warnings:  warnings,
	}
	for _, r := range results {
		switch {
		case r.transfer != nil:
			plan.Transfers = append(plan.Transfers, *r.transfer)
		case r.purchase != nil:
			plan.Purchases = append(plan.Purchases, *r.purchase)
		}
	}

	for _, w := range warnings {
		p.logger.Warn(w)
	}

	p.logger.WithFields(map[string]interface{}{
		"products":  len(groups),
		"transfers": len(plan.Transfers),
		"purchases": len(plan.Purchases),
		"warnings":  len(warnings),
		"workers":   p.workers,
	}).Info("Rebalancing plan completed")

	return plan, nil
}

// groupByProduct collects the union of products in first-seen order (deficit first, then surplus)
func groupByProduct(partition contracts.CoveragePartition) ([]*productGroup, []string) {
	index := make(map[string]*productGroup)
	groups := make([]*productGroup, 0)
	warned := make(map[string]struct{})
	var warnings []string

	get := func(rec contracts.CoverageRecord) *productGroup {
		g, ok := index[rec.ProductID]
		if !ok {
			g = &productGroup{productID: rec.ProductID, productName: rec.ProductName}
			index[rec.ProductID] = g
			groups = append(groups, g)
			return g
		}
		// 같은 ID, 다른 이름: 데이터 품질 경고 (행은 유지)
		if rec.ProductName != g.productName {
			key := rec.ProductID + "\x00" + rec.ProductName
			if _, seen := warned[key]; !seen {
				warned[key] = struct{}{}
				warnings = append(warnings, fmt.Sprintf(
					"product %s: name %q at entity %s differs from %q",
					rec.ProductID, rec.ProductName, rec.EntityID, g.productName))
			}
		}
		return g
	}

	for _, rec := range partition.Deficit {
		g := get(rec)
		g.deficit = append(g.deficit, rec)
	}
	for _, rec := range partition.Surplus {
		g := get(rec)
		g.surplus = append(g.surplus, rec)
	}

	return groups, warnings
}

// resolve applies the decision rule to one product
// total_deficit + total_surplus ≥ 0 → 이관, 아니면 구매
func resolve(g *productGroup, class contracts.AbcClass) outcome {
	// 부족 엔티티가 없으면 해결할 것이 없음
	if len(g.deficit) == 0 {
		return outcome{}
	}

	totalDeficit := decimal.Zero
	receptors := make([]contracts.EntityAmount, 0, len(g.deficit))
	for _, rec := range g.deficit {
		totalDeficit = totalDeficit.Add(rec.BalanceVsCoverage)
		receptors = append(receptors, entityAmount(rec))
	}

	totalSurplus := decimal.Zero
	donors := make([]contracts.EntityAmount, 0, len(g.surplus))
	for _, rec := range g.surplus {
		totalSurplus = totalSurplus.Add(rec.BalanceVsCoverage)
		donors = append(donors, entityAmount(rec))
	}

	net := totalDeficit.Add(totalSurplus)
	if net.IsNegative() {
		return outcome{purchase: &contracts.PurchaseRequirement{
			ProductID:      g.productID,
			ProductName:    g.productName,
			TotalSurplus:   totalSurplus,
			TotalDeficit:   totalDeficit,
			QuantityNeeded: net.Abs(),
			AbcClass:       class,
		}}
	}

	return outcome{transfer: &contracts.TransferPlan{
		ProductID:     g.productID,
		ProductName:   g.productName,
		Donors:        donors,
		Receptors:     receptors,
		TotalSurplus:  totalSurplus,
		TotalDeficit:  totalDeficit,
		TransferTotal: decimal.Min(totalDeficit.Abs(), totalSurplus),
		AbcClass:      class,
	}}
}

func entityAmount(rec contracts.CoverageRecord) contracts.EntityAmount {
	return contracts.EntityAmount{
		EntityID:   rec.EntityID,
		EntityName: rec.EntityName,
		Amount:     rec.BalanceVsCoverage,
	}
}
