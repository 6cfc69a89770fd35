package export

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockbalance/backend/internal/contracts"
)

// Report tables
const (
	TableTransfers = "transfers" // 이관 요약 (resumo_ajuste)
	TablePurchases = "purchases" // 구매 필요 (compras)
	TableBase      = "base"      // 정규화 전체 (base-geral)
	TableDeficit   = "deficit"
	TableSurplus   = "surplus"
)

// TableNames returns every exportable table in workbook order
func TableNames() []string {
	return []string{TableTransfers, TablePurchases, TableBase, TableDeficit, TableSurplus}
}

// Table is a rendered report table; cells keep their typed values until written
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

var coverageHeader = []string{
	"entity_id", "entity", "product_id", "product", "observation_date",
	"on_hand_balance", "trailing_sales", "required_coverage", "balance_vs_coverage", "abc_class",
}

// BuildTable renders one named table of the report
func BuildTable(report *contracts.Report, name string) (Table, error) {
	switch name {
	case TableTransfers:
		return transfersTable(report), nil
	case TablePurchases:
		return purchasesTable(report), nil
	case TableBase:
		return coverageTable(report, TableBase, report.Normalized), nil
	case TableDeficit:
		return coverageTable(report, TableDeficit, report.Deficit), nil
	case TableSurplus:
		return coverageTable(report, TableSurplus, report.Surplus), nil
	default:
		return Table{}, fmt.Errorf("unknown table %q", name)
	}
}

func transfersTable(report *contracts.Report) Table {
	t := Table{
		Name:   TableTransfers,
		Header: []string{"product", "abc_class", "donors", "receptors", "total_surplus", "total_deficit", "transfer_total"},
		Rows:   make([][]any, 0, len(report.Transfers)),
	}
	for _, tp := range report.Transfers {
		t.Rows = append(t.Rows, []any{
			tp.ProductLabel(), string(tp.AbcClass), tp.DonorLines(), tp.ReceptorLines(),
			tp.TotalSurplus, tp.TotalDeficit, tp.TransferTotal,
		})
	}
	return t
}

func purchasesTable(report *contracts.Report) Table {
	t := Table{
		Name:   TablePurchases,
		Header: []string{"product", "abc_class", "total_surplus", "total_deficit", "quantity_needed"},
		Rows:   make([][]any, 0, len(report.Purchases)),
	}
	for _, pr := range report.Purchases {
		t.Rows = append(t.Rows, []any{
			pr.ProductLabel(), string(pr.AbcClass), pr.TotalSurplus, pr.TotalDeficit, pr.QuantityNeeded,
		})
	}
	return t
}

func coverageTable(report *contracts.Report, name string, records []contracts.CoverageRecord) Table {
	classes := make(map[string]contracts.AbcClass, len(report.Classes))
	for _, c := range report.Classes {
		classes[c.ProductID] = c.Class
	}

	t := Table{
		Name:   name,
		Header: coverageHeader,
		Rows:   make([][]any, 0, len(records)),
	}
	for _, rec := range records {
		t.Rows = append(t.Rows, []any{
			rec.EntityID, rec.EntityLabel(), rec.ProductID, rec.ProductName, rec.ObservationDate,
			rec.OnHandBalance, rec.TrailingSales, rec.RequiredCoverage, rec.BalanceVsCoverage,
			string(classes[rec.ProductID]),
		})
	}
	return t
}

// cellString formats a cell for text output
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}

// cellValue converts a cell for spreadsheet output (numbers stay numeric)
func cellValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return v
	}
}
