package contracts

import "github.com/shopspring/decimal"

// Side is the sign class of balance vs coverage
type Side string

const (
	SideDeficit Side = "deficit"
	SideSurplus Side = "surplus"
)

// CoverageRecord is a normalized row with its coverage requirement (S1 → S3)
type CoverageRecord struct {
	NormalizedRow
	RequiredCoverage  decimal.Decimal `json:"required_coverage"`
	BalanceVsCoverage decimal.Decimal `json:"balance_vs_coverage"`
}

// Side returns Deficit for a negative balance vs coverage, Surplus otherwise (zero included)
func (c CoverageRecord) Side() Side {
	if c.BalanceVsCoverage.IsNegative() {
		return SideDeficit
	}
	return SideSurplus
}

// CoveragePartition splits coverage records by sign
type CoveragePartition struct {
	Deficit []CoverageRecord `json:"deficit"`
	Surplus []CoverageRecord `json:"surplus"`
}

// Len returns the total number of records in both sides
func (p *CoveragePartition) Len() int {
	return len(p.Deficit) + len(p.Surplus)
}
