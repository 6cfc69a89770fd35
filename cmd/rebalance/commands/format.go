package commands

import (
	"fmt"
	"strings"

	"github.com/wonny/stockbalance/backend/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintReportSummary prints the header block of a report
func PrintReportSummary(report *contracts.Report, source string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Println("  Rebalancing Report")
	PrintSeparator()
	PrintKeyValue("Run ID", report.RunID, 14)
	PrintKeyValue("Source", source, 14)
	PrintKeyValue("Config", report.ConfigHash, 14)
	PrintKeyValue("Trailing", fmt.Sprintf("%s (%s)", report.TrailingPeriod, report.TrailingPeriod.Policy), 14)
	PrintKeyValue("Rows", fmt.Sprintf("%d raw → %d normalized (%d duplicate keys)",
		report.Stats.RawRows, report.Stats.NormalizedRows, report.Stats.DuplicateKeys), 14)
	PrintKeyValue("Network", fmt.Sprintf("%d entities × %d products", report.Stats.Entities, report.Stats.Products), 14)
	PrintKeyValue("Coverage", fmt.Sprintf("%d deficit / %d surplus", len(report.Deficit), len(report.Surplus)), 14)
	PrintKeyValue("Plans", fmt.Sprintf("%d transfers / %d purchases", len(report.Transfers), len(report.Purchases)), 14)
	PrintKeyValue("Duration", report.Duration.String(), 14)
	PrintDoubleSeparator()
}

// PrintTransfers prints ranked transfer plans (smallest first)
func PrintTransfers(transfers []contracts.TransferPlan, limit int) {
	fmt.Println()
	fmt.Printf("📦 Transfers (%d)\n", len(transfers))
	if len(transfers) == 0 {
		PrintInfo("no transfer plans")
		return
	}

	widths := []int{32, 5, 10, 10, 10, 8, 9}
	PrintTableHeader([]string{"Product", "ABC", "Surplus", "Deficit", "Transfer", "Donors", "Receptors"}, widths)
	for i, t := range transfers {
		if limit > 0 && i >= limit {
			fmt.Printf("   ... %d more\n", len(transfers)-limit)
			break
		}
		PrintTableRow([]string{
			truncate(t.ProductLabel(), widths[0]),
			string(t.AbcClass),
			t.TotalSurplus.String(),
			t.TotalDeficit.String(),
			t.TransferTotal.String(),
			fmt.Sprintf("%d", len(t.Donors)),
			fmt.Sprintf("%d", len(t.Receptors)),
		}, widths)
	}
}

// PrintPurchases prints ranked purchase requirements (largest first)
func PrintPurchases(purchases []contracts.PurchaseRequirement, limit int) {
	fmt.Println()
	fmt.Printf("🛒 Purchases (%d)\n", len(purchases))
	if len(purchases) == 0 {
		PrintInfo("no purchase requirements")
		return
	}

	widths := []int{32, 5, 10, 10, 10}
	PrintTableHeader([]string{"Product", "ABC", "Surplus", "Deficit", "Needed"}, widths)
	for i, p := range purchases {
		if limit > 0 && i >= limit {
			fmt.Printf("   ... %d more\n", len(purchases)-limit)
			break
		}
		PrintTableRow([]string{
			truncate(p.ProductLabel(), widths[0]),
			string(p.AbcClass),
			p.TotalSurplus.String(),
			p.TotalDeficit.String(),
			p.QuantityNeeded.String(),
		}, widths)
	}
}

// PrintClassification prints products in rank order, optionally one class only
func PrintClassification(c *contracts.Classification, only string) {
	counts := c.CountByClass()

	fmt.Println()
	PrintDoubleSeparator()
	PrintKeyValue("Products", fmt.Sprintf("%d", len(c.Products)), 10)
	PrintKeyValue("Total", c.GrandTotal.String(), 10)
	PrintKeyValue("Classes", fmt.Sprintf("A=%d B=%d C=%d",
		counts[contracts.ClassA], counts[contracts.ClassB], counts[contracts.ClassC]), 10)
	PrintDoubleSeparator()

	if c.Degenerate {
		PrintWarning("total trailing sales is zero; every product is class C")
	}

	widths := []int{5, 32, 12, 8, 5}
	PrintTableHeader([]string{"Rank", "Product", "Sales", "Cum %", "ABC"}, widths)
	for _, p := range c.Products {
		if only != "" && !strings.EqualFold(only, string(p.Class)) {
			continue
		}
		PrintTableRow([]string{
			fmt.Sprintf("%d", p.Rank),
			truncate(fmt.Sprintf("%s - %s", p.ProductID, p.ProductName), widths[1]),
			p.TotalTrailingSales.String(),
			p.CumulativeShare.Shift(2).StringFixed(1),
			string(p.Class),
		}, widths)
	}
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
