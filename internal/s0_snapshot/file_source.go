package s0_snapshot

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/stockbalance/backend/internal/contracts"
)

// FileSource reads the snapshot from a CSV or XLSX file
type FileSource struct {
	path  string
	sheet string // xlsx 시트 이름 (비어 있으면 첫 시트)
}

// NewFileSource creates a file source; the format follows the file extension
func NewFileSource(path, sheet string) *FileSource {
	return &FileSource{path: path, sheet: sheet}
}

// Fetch reads the whole file into a flat table
func (s *FileSource) Fetch(ctx context.Context) (*contracts.SnapshotTable, error) {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".xlsx", ".xlsm":
		return s.fetchXLSX()
	default:
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot file %s: %w", s.path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	}
}

// ReadCSV reads a header row followed by data rows
func ReadCSV(r io.Reader) (*contracts.SnapshotTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("snapshot CSV has no header")
	}

	return recordsToTable(records), nil
}

func (s *FileSource) fetchXLSX() (*contracts.SnapshotTable, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot workbook %s: %w", s.path, err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %s has no header", sheet)
	}

	return recordsToTable(records), nil
}

// recordsToTable pads short rows (xlsx omits trailing empty cells)
func recordsToTable(records [][]string) *contracts.SnapshotTable {
	header := records[0]
	table := &contracts.SnapshotTable{
		Columns: header,
		Rows:    make([][]any, 0, len(records)-1),
	}

	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make([]any, len(header))
		for i := range header {
			if i < len(record) {
				row[i] = record[i]
			} else {
				row[i] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
