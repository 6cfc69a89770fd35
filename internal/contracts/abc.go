package contracts

import "github.com/shopspring/decimal"

// AbcClass is a sales-contribution tier
type AbcClass string

const (
	ClassA AbcClass = "A"
	ClassB AbcClass = "B"
	ClassC AbcClass = "C"
)

// ProductAbcClass is the ABC classification of one product (S2 → S3)
type ProductAbcClass struct {
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	TotalTrailingSales decimal.Decimal `json:"total_trailing_sales"`
	CumulativeShare    decimal.Decimal `json:"cumulative_share"`
	Rank               int             `json:"rank"` // 1-based
	Class              AbcClass        `json:"class"`
}

// Classification holds the ABC classes of every normalized product
type Classification struct {
	Products   []ProductAbcClass `json:"products"` // rank order
	GrandTotal decimal.Decimal   `json:"grand_total"`
	Degenerate bool              `json:"degenerate"` // grand total was zero

	index map[string]int
}

// NewClassification builds a classification with a product index
func NewClassification(products []ProductAbcClass, grandTotal decimal.Decimal, degenerate bool) *Classification {
	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p.ProductID] = i
	}
	return &Classification{
		Products:   products,
		GrandTotal: grandTotal,
		Degenerate: degenerate,
		index:      index,
	}
}

// Lookup returns the class of a product
func (c *Classification) Lookup(productID string) (ProductAbcClass, bool) {
	if c.index == nil {
		for _, p := range c.Products {
			if p.ProductID == productID {
				return p, true
			}
		}
		return ProductAbcClass{}, false
	}
	i, ok := c.index[productID]
	if !ok {
		return ProductAbcClass{}, false
	}
	return c.Products[i], true
}

// CountByClass returns the number of products per class
func (c *Classification) CountByClass() map[AbcClass]int {
	counts := map[AbcClass]int{ClassA: 0, ClassB: 0, ClassC: 0}
	for _, p := range c.Products {
		counts[p.Class]++
	}
	return counts
}
