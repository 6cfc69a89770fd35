package contracts

import (
	"context"
)

// SnapshotSource supplies the raw snapshot table
// ⭐ SSOT: 스냅샷 획득 인터페이스 (DB, CSV)
type SnapshotSource interface {
	Fetch(ctx context.Context) (*SnapshotTable, error)
}

// ReportExporter persists the tables of a report
// ⭐ SSOT: 결과 내보내기 인터페이스 (xlsx, csv)
type ReportExporter interface {
	Export(report *Report) ([]string, error)
}
