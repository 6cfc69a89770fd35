package s2_abc

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// Classifier implements S2: ABC classification by cumulative sales share
// ⭐ SSOT: S2 ABC 분류 로직은 여기서만
type Classifier struct {
	aCut   decimal.Decimal
	bCut   decimal.Decimal
	logger *logger.Logger
}

// NewClassifier creates a classifier with the A and B cumulative-share cut points
func NewClassifier(aCut, bCut float64, log *logger.Logger) *Classifier {
	return &Classifier{
		aCut:   decimal.NewFromFloat(aCut),
		bCut:   decimal.NewFromFloat(bCut),
		logger: log,
	}
}

// Classify aggregates trailing sales per product and assigns A/B/C by rank
func (c *Classifier) Classify(rows []contracts.NormalizedRow) (*contracts.Classification, error) {
	if len(rows) == 0 {
		return nil, contracts.ErrEmptySnapshot
	}

	products := aggregate(rows)

	// 판매 합계 내림차순, 동률은 상품 ID 오름차순
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if cmp := a.TotalTrailingSales.Cmp(b.TotalTrailingSales); cmp != 0 {
			return cmp > 0
		}
		return a.ProductID < b.ProductID
	})

	grandTotal := decimal.Zero
	for _, p := range products {
		grandTotal = grandTotal.Add(p.TotalTrailingSales)
	}

	// 합계 0: 누적 비중을 0으로 두고 전부 C
	degenerate := grandTotal.IsZero()

	cumulative := decimal.Zero
	for i := range products {
		products[i].Rank = i + 1
		if degenerate {
			products[i].CumulativeShare = decimal.Zero
			products[i].Class = contracts.ClassC
			continue
		}
		cumulative = cumulative.Add(products[i].TotalTrailingSales)
		share := cumulative.Div(grandTotal)
		products[i].CumulativeShare = share
		products[i].Class = c.classOf(share)
	}

	classification := contracts.NewClassification(products, grandTotal, degenerate)
	counts := classification.CountByClass()

	fields := map[string]interface{}{
		"products":    len(products),
		"grand_total": grandTotal.String(),
		"class_a":     counts[contracts.ClassA],
		"class_b":     counts[contracts.ClassB],
		"class_c":     counts[contracts.ClassC],
	}
	if degenerate {
		c.logger.WithFields(fields).Warn("ABC grand total is zero, every product classified C")
	} else {
		c.logger.WithFields(fields).Info("ABC classification completed")
	}

	return classification, nil
}

func (c *Classifier) classOf(share decimal.Decimal) contracts.AbcClass {
	switch {
	case share.LessThanOrEqual(c.aCut):
		return contracts.ClassA
	case share.LessThanOrEqual(c.bCut):
		return contracts.ClassB
	default:
		return contracts.ClassC
	}
}

// aggregate sums trailing sales per product; the first name seen is kept
func aggregate(rows []contracts.NormalizedRow) []contracts.ProductAbcClass {
	index := make(map[string]int)
	products := make([]contracts.ProductAbcClass, 0)

	for _, row := range rows {
		i, ok := index[row.ProductID]
		if !ok {
			i = len(products)
			index[row.ProductID] = i
			products = append(products, contracts.ProductAbcClass{
				ProductID:          row.ProductID,
				ProductName:        row.ProductName,
				TotalTrailingSales: decimal.Zero,
			})
		}
		products[i].TotalTrailingSales = products[i].TotalTrailingSales.Add(row.TrailingSales)
	}

	return products
}
