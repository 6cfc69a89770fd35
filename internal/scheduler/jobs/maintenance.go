package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// ExportCleanupJob removes exported report files older than the retention
type ExportCleanupJob struct {
	dir       string
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewExportCleanupJob creates a new export cleanup job
func NewExportCleanupJob(dir string, retention time.Duration, log *logger.Logger) *ExportCleanupJob {
	return &ExportCleanupJob{
		dir:       dir,
		retention: retention,
		now:       time.Now,
		logger:    log,
	}
}

// Name returns the job name
func (j *ExportCleanupJob) Name() string {
	return "export_cleanup"
}

// Schedule returns the cron schedule (every day at 03:30)
func (j *ExportCleanupJob) Schedule() string {
	return "0 30 3 * * *"
}

// Run deletes stale .xlsx/.csv files in the export directory
func (j *ExportCleanupJob) Run(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read export dir: %w", err)
	}

	cutoff := j.now().Add(-j.retention)
	removed := 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !isExportFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(j.dir, entry.Name())); err != nil {
			j.logger.WithError(err).WithField("file", entry.Name()).Warn("Failed to remove export file")
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Export cleanup completed")
	}

	return nil
}

func isExportFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".xlsx" || ext == ".csv"
}
