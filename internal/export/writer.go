package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/stockbalance/backend/internal/contracts"
)

// WriteCSV writes a table as CSV with a header row
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write %s header: %w", t.Name, err)
	}

	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = cellString(row[i])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write %s row: %w", t.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// NewWorkbook renders the named tables, one sheet each; all tables when names is empty
func NewWorkbook(report *contracts.Report, names ...string) (*excelize.File, error) {
	if len(names) == 0 {
		names = TableNames()
	}

	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	// donors/receptors 셀은 여러 줄
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create wrap style: %w", err)
	}

	for i, name := range names {
		t, err := BuildTable(report, name)
		if err != nil {
			f.Close()
			return nil, err
		}

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}

		if err := writeSheet(f, t, headerStyle); err != nil {
			f.Close()
			return nil, err
		}

		if name == TableTransfers && len(t.Rows) > 0 {
			last, _ := excelize.CoordinatesToCellName(4, len(t.Rows)+1)
			if err := f.SetCellStyle(name, "C2", last, wrapStyle); err != nil {
				f.Close()
				return nil, fmt.Errorf("style %s: %w", name, err)
			}
		}
	}

	return f, nil
}

func writeSheet(f *excelize.File, t Table, headerStyle int) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", t.Name, err)
	}
	if err := f.SetRowStyle(t.Name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", t.Name, err)
	}

	for i, row := range t.Rows {
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = cellValue(v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", t.Name, i+1, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(t.Header))
	return f.SetColWidth(t.Name, "A", lastCol, 18)
}
