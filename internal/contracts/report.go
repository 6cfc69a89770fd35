package contracts

import "time"

// Report is the complete output of one engine run
// ⭐ SSOT: 엔진 → 내보내기/API 전달
type Report struct {
	RunID          string                `json:"run_id"`
	GeneratedAt    time.Time             `json:"generated_at"`
	ConfigHash     string                `json:"config_hash,omitempty"`
	TrailingPeriod TrailingPeriod        `json:"trailing_period"`
	Stats          SnapshotStats         `json:"stats"`
	Normalized     []CoverageRecord      `json:"normalized"`
	Deficit        []CoverageRecord      `json:"deficit"`
	Surplus        []CoverageRecord      `json:"surplus"`
	Classes        []ProductAbcClass     `json:"classes"`
	Transfers      []TransferPlan        `json:"transfers"`
	Purchases      []PurchaseRequirement `json:"purchases"`
	Warnings       []string              `json:"warnings,omitempty"`
	Duration       time.Duration         `json:"duration"`
}

// ClassOf returns the ABC class of a product, or "" when unknown
func (r *Report) ClassOf(productID string) AbcClass {
	for _, c := range r.Classes {
		if c.ProductID == productID {
			return c.Class
		}
	}
	return ""
}

// TopPurchases returns at most n purchase requirements in ranked order
func (r *Report) TopPurchases(n int) []PurchaseRequirement {
	if n <= 0 || n >= len(r.Purchases) {
		return r.Purchases
	}
	return r.Purchases[:n]
}
