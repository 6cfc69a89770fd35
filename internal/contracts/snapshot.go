package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotTable is the flat table handed over by a data-access collaborator
// ⭐ SSOT: 외부 소스 → S0 입력 경계
type SnapshotTable struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of data rows
func (t *SnapshotTable) Len() int {
	return len(t.Rows)
}

// StockSnapshotRow is a single stock/sales observation for one entity and product
type StockSnapshotRow struct {
	RowKey          string          `json:"row_key,omitempty"` // source row-level unique key
	EntityID        string          `json:"entity_id"`
	EntityName      string          `json:"entity_name,omitempty"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ObservationDate time.Time       `json:"observation_date"`
	OnHandBalance   decimal.Decimal `json:"on_hand_balance"`
	PeriodSales     decimal.Decimal `json:"period_sales"`
}

// PairKey identifies an (entity, product) pair
type PairKey struct {
	EntityID  string
	ProductID string
}

// Pair returns the (entity, product) key of the row
func (r StockSnapshotRow) Pair() PairKey {
	return PairKey{EntityID: r.EntityID, ProductID: r.ProductID}
}

// EntityLabel returns the display name of the entity, falling back to its id
func (r StockSnapshotRow) EntityLabel() string {
	if r.EntityName != "" {
		return r.EntityName
	}
	return r.EntityID
}

// TrailingPeriod is the calendar month whose sales feed the coverage calculation
type TrailingPeriod struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Policy string `json:"policy"`
}

// Contains reports whether t falls inside the period
func (p TrailingPeriod) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// String formats the period as YYYY-MM
func (p TrailingPeriod) String() string {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// NormalizedRow is the current-state row of a pair with trailing sales attached (S0 → S1/S2)
type NormalizedRow struct {
	StockSnapshotRow
	TrailingSales decimal.Decimal `json:"trailing_sales"`
}

// ColumnMap names the source columns holding each logical field
// 기본값은 원본 창고 스키마 (nk_estoque, nk_entidade, ...)
type ColumnMap struct {
	RowKey          string `yaml:"row_key" json:"row_key"`         // optional
	EntityID        string `yaml:"entity_id" json:"entity_id"`
	EntityName      string `yaml:"entity_name" json:"entity_name"` // optional
	ProductID       string `yaml:"product_id" json:"product_id"`
	ProductName     string `yaml:"product_name" json:"product_name"`
	ObservationDate string `yaml:"observation_date" json:"observation_date"`
	OnHandBalance   string `yaml:"on_hand_balance" json:"on_hand_balance"`
	PeriodSales     string `yaml:"period_sales" json:"period_sales"`
}

// DefaultColumnMap returns the column names of the warehouse stock query
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		RowKey:          "nk_estoque",
		EntityID:        "nk_entidade",
		EntityName:      "nm_entidade",
		ProductID:       "nk_produto_grade",
		ProductName:     "nm_produto",
		ObservationDate: "sk_data",
		OnHandBalance:   "saldo",
		PeriodSales:     "venda",
	}
}
