package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// Format selects the files written by the exporter
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatBoth Format = "both"
)

// ParseFormat validates a format flag value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatXLSX, FormatCSV, FormatBoth:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (xlsx, csv, both)", s)
	}
}

// Exporter writes report tables into a directory
// ⭐ SSOT: 파일 내보내기는 여기서만
type Exporter struct {
	dir    string
	format Format
	logger *logger.Logger
}

// NewExporter creates a new exporter
func NewExporter(dir string, format Format, log *logger.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		format: format,
		logger: log,
	}
}

// Export writes the report and returns the created file paths
func (e *Exporter) Export(report *contracts.Report) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	stamp := report.GeneratedAt.Format("20060102_150405")
	var paths []string

	if e.format == FormatXLSX || e.format == FormatBoth {
		path := filepath.Join(e.dir, fmt.Sprintf("rebalance_%s.xlsx", stamp))
		if err := e.writeWorkbook(report, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	if e.format == FormatCSV || e.format == FormatBoth {
		for _, name := range TableNames() {
			path := filepath.Join(e.dir, fmt.Sprintf("%s_%s.csv", name, stamp))
			if err := e.writeCSV(report, name, path); err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"run_id": report.RunID,
		"dir":    e.dir,
		"format": string(e.format),
		"files":  len(paths),
	}).Info("Report exported")

	return paths, nil
}

func (e *Exporter) writeWorkbook(report *contracts.Report, path string) error {
	f, err := NewWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) writeCSV(report *contracts.Report, name, path string) error {
	t, err := BuildTable(report, name)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteCSV(file, t); err != nil {
		return err
	}
	return file.Close()
}
