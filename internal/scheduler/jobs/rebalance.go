package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/internal/engine"
	"github.com/wonny/stockbalance/backend/pkg/logger"
	"github.com/wonny/stockbalance/backend/pkg/redis"
)

// RebalanceJob computes and exports the rebalancing report on a schedule
// ⭐ SSOT: 정기 재배치 실행은 이 Job에서만
type RebalanceJob struct {
	engine     *engine.Orchestrator
	source     contracts.SnapshotSource
	sourceName string
	exporter   contracts.ReportExporter
	cache      *redis.Cache
	cacheTTL   time.Duration
	schedule   string
	logger     *logger.Logger

	mu   sync.RWMutex
	last *contracts.Report
}

// NewRebalanceJob creates a new rebalance job; exporter and cache may be nil
func NewRebalanceJob(
	eng *engine.Orchestrator,
	source contracts.SnapshotSource,
	sourceName string,
	exporter contracts.ReportExporter,
	cache *redis.Cache,
	cacheTTL time.Duration,
	schedule string,
	log *logger.Logger,
) *RebalanceJob {
	return &RebalanceJob{
		engine:     eng,
		source:     source,
		sourceName: sourceName,
		exporter:   exporter,
		cache:      cache,
		cacheTTL:   cacheTTL,
		schedule:   schedule,
		logger:     log,
	}
}

// Name returns the job name
func (j *RebalanceJob) Name() string {
	return "rebalance_report"
}

// Schedule returns the cron schedule (with seconds)
func (j *RebalanceJob) Schedule() string {
	return j.schedule
}

// LastReport returns the report of the latest successful run
func (j *RebalanceJob) LastReport() *contracts.Report {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}

// Run executes the pipeline, exports the tables and warms the API cache
// 엔진 오류는 engine.IsPermanent → 스케줄러가 재시도하지 않음
func (j *RebalanceJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled rebalancing run")

	report, err := j.engine.Run(ctx, j.source)
	if err != nil {
		return fmt.Errorf("rebalance run: %w", err)
	}

	var files []string
	if j.exporter != nil {
		files, err = j.exporter.Export(report)
		if err != nil {
			return fmt.Errorf("export report: %w", err)
		}
	}

	if j.cache != nil {
		key := redis.ReportKey(j.engine.ConfigHash(), j.sourceName)
		if err := j.cache.Set(ctx, key, report, j.cacheTTL); err != nil {
			j.logger.WithError(err).Warn("Failed to cache report")
		}
	}

	j.mu.Lock()
	j.last = report
	j.mu.Unlock()

	j.logger.WithFields(map[string]interface{}{
		"run_id":    report.RunID,
		"transfers": len(report.Transfers),
		"purchases": len(report.Purchases),
		"files":     len(files),
	}).Info("Scheduled rebalancing run completed")

	return nil
}
