package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/internal/engine"
	"github.com/wonny/stockbalance/backend/internal/engineconfig"
	"github.com/wonny/stockbalance/backend/internal/export"
	"github.com/wonny/stockbalance/backend/pkg/logger"
	"github.com/wonny/stockbalance/backend/pkg/redis"
)

type staticSource struct {
	table *contracts.SnapshotTable
	err   error
}

func (s *staticSource) Fetch(ctx context.Context) (*contracts.SnapshotTable, error) {
	return s.table, s.err
}

func testTable() *contracts.SnapshotTable {
	return &contracts.SnapshotTable{
		Columns: []string{"nk_entidade", "nk_produto_grade", "nm_produto", "sk_data", "saldo", "venda"},
		Rows: [][]any{
			{"E1", "P", "P", "20240210", "0", "10"},
			{"E1", "P", "P", "20240305", "100", "0"},
			{"E2", "P", "P", "20240305", "0", "0"},
			{"E2", "P", "P", "20240210", "0", "5"},
		},
	}
}

func newTestEngine(t *testing.T) *engine.Orchestrator {
	t.Helper()
	eng, err := engine.NewOrchestrator(engineconfig.Default(), nil, logger.Nop())
	require.NoError(t, err)
	return eng
}

func TestRebalanceJob_Run(t *testing.T) {
	dir := t.TempDir()
	exporter := export.NewExporter(dir, export.FormatCSV, logger.Nop())
	cache := redis.NewCache(redis.Disabled(), "test")

	job := NewRebalanceJob(newTestEngine(t), &staticSource{table: testTable()}, "static",
		exporter, cache, time.Minute, "0 0 6 * * *", logger.Nop())

	assert.Equal(t, "rebalance_report", job.Name())
	assert.Equal(t, "0 0 6 * * *", job.Schedule())
	assert.Nil(t, job.LastReport())

	require.NoError(t, job.Run(context.Background()))

	report := job.LastReport()
	require.NotNil(t, report)
	require.Len(t, report.Transfers, 1)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, len(export.TableNames()))
}

func TestRebalanceJob_ErrorsClassified(t *testing.T) {
	fetchFail := NewRebalanceJob(newTestEngine(t), &staticSource{err: errors.New("db down")}, "static",
		nil, nil, time.Minute, "@daily", logger.Nop())
	err := fetchFail.Run(context.Background())
	require.Error(t, err)
	assert.False(t, engine.IsPermanent(err), "snapshot fetch failures are retried")

	empty := &contracts.SnapshotTable{Columns: testTable().Columns}
	badData := NewRebalanceJob(newTestEngine(t), &staticSource{table: empty}, "static",
		nil, nil, time.Minute, "@daily", logger.Nop())
	err = badData.Run(context.Background())
	require.Error(t, err)
	assert.True(t, engine.IsPermanent(err))
	assert.ErrorIs(t, err, contracts.ErrEmptySnapshot)
}

func TestExportCleanupJob_Run(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-48 * time.Hour)

	write := func(name string, mod time.Time) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		require.NoError(t, os.Chtimes(path, mod, mod))
		return path
	}
	staleXLSX := write("rebalance_old.xlsx", old)
	staleCSV := write("transfers_old.csv", old)
	fresh := write("rebalance_new.xlsx", time.Now())
	other := write("notes.txt", old)

	job := NewExportCleanupJob(dir, 24*time.Hour, logger.Nop())
	require.NoError(t, job.Run(context.Background()))

	for _, p := range []string{staleXLSX, staleCSV} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), p)
	}
	for _, p := range []string{fresh, other} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
}

func TestExportCleanupJob_MissingDir(t *testing.T) {
	job := NewExportCleanupJob(filepath.Join(t.TempDir(), "none"), time.Hour, logger.Nop())
	assert.NoError(t, job.Run(context.Background()))
}
