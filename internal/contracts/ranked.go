package contracts

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EntityAmount is one entry of an ordered donor or receptor mapping
type EntityAmount struct {
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

// Label returns the display name of the entity, falling back to its id
func (e EntityAmount) Label() string {
	if e.EntityName != "" {
		return e.EntityName
	}
	return e.EntityID
}

// TransferPlan is a network-internal rebalancing proposal for one product (S3 → S4)
// Donors/Receptors는 엔티티별 가능 수량 요약이며, 실제 경로(어느 donor → 어느 receptor)는 포함하지 않음
type TransferPlan struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Donors        []EntityAmount  `json:"donors"`    // surplus 순서 유지, 양수
	Receptors     []EntityAmount  `json:"receptors"` // deficit 순서 유지, 음수 (balance_vs_coverage 그대로)
	TotalSurplus  decimal.Decimal `json:"total_surplus"`
	TotalDeficit  decimal.Decimal `json:"total_deficit"`
	TransferTotal decimal.Decimal `json:"transfer_total"`
	AbcClass      AbcClass        `json:"abc_class"`
}

// ProductLabel returns "<id> - <name>"
func (t TransferPlan) ProductLabel() string {
	return productLabel(t.ProductID, t.ProductName)
}

// DonorLines renders donors one "entity: amount" per line
func (t TransferPlan) DonorLines() string {
	return entityLines(t.Donors)
}

// ReceptorLines renders receptors one "entity: amount" per line
func (t TransferPlan) ReceptorLines() string {
	return entityLines(t.Receptors)
}

// PurchaseRequirement is a shortfall that internal transfer cannot resolve (S3 → S4)
type PurchaseRequirement struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	TotalSurplus   decimal.Decimal `json:"total_surplus"`
	TotalDeficit   decimal.Decimal `json:"total_deficit"`
	QuantityNeeded decimal.Decimal `json:"quantity_needed"`
	AbcClass       AbcClass        `json:"abc_class"`
}

// ProductLabel returns "<id> - <name>"
func (p PurchaseRequirement) ProductLabel() string {
	return productLabel(p.ProductID, p.ProductName)
}

// Plan is the unordered output of the planner
type Plan struct {
	Transfers []TransferPlan        `json:"transfers"`
	Purchases []PurchaseRequirement `json:"purchases"`
	Warnings  []string              `json:"warnings,omitempty"`
}

func productLabel(id, name string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s - %s", id, name)
}

func entityLines(entries []EntityAmount) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Label(), e.Amount.String()))
	}
	return strings.Join(lines, "\n")
}
