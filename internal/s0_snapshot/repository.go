package s0_snapshot

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// Querier is the subset of pgxpool.Pool used by the repository
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads the stock snapshot from PostgreSQL
// ⭐ SSOT: 스냅샷 SQL 조회는 여기서만
type Repository struct {
	db     Querier
	query  string
	logger *logger.Logger
}

// NewRepository creates a snapshot repository running query
func NewRepository(db Querier, query string, log *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		query:  query,
		logger: log,
	}
}

// Fetch runs the snapshot query and streams the result into a flat table
func (r *Repository) Fetch(ctx context.Context) (*contracts.SnapshotTable, error) {
	if r.query == "" {
		return nil, fmt.Errorf("snapshot query is empty")
	}

	rows, err := r.db.Query(ctx, r.query)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	table := &contracts.SnapshotTable{
		Columns: make([]string, len(fields)),
		Rows:    make([][]any, 0),
	}
	for i, fd := range fields {
		table.Columns[i] = fd.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read snapshot row %d: %w", len(table.Rows)+1, err)
		}
		table.Rows = append(table.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"columns": len(table.Columns),
		"rows":    len(table.Rows),
	}).Info("Snapshot fetched from database")

	return table, nil
}
