package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/stockbalance/backend/internal/engine"
	"github.com/wonny/stockbalance/backend/internal/export"
	"github.com/wonny/stockbalance/backend/internal/scheduler"
	"github.com/wonny/stockbalance/backend/internal/scheduler/jobs"
	"github.com/wonny/stockbalance/backend/pkg/redis"
)

var (
	schedulerCmd = &cobra.Command{
		Use:   "scheduler",
		Short: "정기 재배치 스케줄러",
		Long: `정기적으로 재배치 리포트를 생성하고 내보내기 파일을 정리합니다.

Jobs:
  rebalance_report  - REBALANCE_SCHEDULE (기본: 매일 06:00)
  export_cleanup    - 매일 03:30, EXPORT_RETENTION 보다 오래된 파일 삭제

Example:
  go run ./cmd/rebalance scheduler start
  go run ./cmd/rebalance scheduler run rebalance_report --input snapshot.csv`,
	}

	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job-name]",
		Short: "작업 즉시 실행 (재시도 포함, 완료까지 대기)",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var schedulerFormat string

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerFormat, "format", "xlsx", "export format (xlsx|csv|both)")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stockbalance Scheduler ===")

	sched, cleanup, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	printJobs(sched)

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, cleanup, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	result, err := sched.RunJob(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	PrintKeyValue("Attempts", fmt.Sprintf("%d", result.Attempts), 10)
	PrintKeyValue("Duration", result.Duration.String(), 10)
	if !result.Success {
		if result.Permanent {
			PrintError("permanent failure (not retried): " + result.Error)
		} else {
			PrintError(result.Error)
		}
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(fmt.Sprintf("Job %s completed", jobName))
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  - %-18s %s\n", name, stats[name].Schedule)
	}
}

// initScheduler wires the engine, exporter and cache into the scheduled jobs
func initScheduler(ctx context.Context) (*scheduler.Scheduler, func(), error) {
	format, err := export.ParseFormat(schedulerFormat)
	if err != nil {
		return nil, nil, err
	}

	// 1. Engine + snapshot source
	rt, err := newRuntime(ctx)
	if err != nil {
		return nil, nil, err
	}
	log := rt.log

	// 2. Report cache (API와 동일한 키 → 정기 실행이 캐시를 갱신)
	redisClient, err := redis.New(ctx, rt.cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, report cache disabled")
		redisClient = redis.Disabled()
	}
	cache := redis.NewCache(redisClient, "stockbalance")

	// 3. Exporter
	exporter := export.NewExporter(rt.cfg.Engine.ExportDir, format, log)

	// 4. Create scheduler (fetch 오류만 재시도)
	schedCfg := scheduler.DefaultConfig()
	schedCfg.IsPermanent = engine.IsPermanent
	sched := scheduler.New(schedCfg, log)

	// 5. Register jobs
	rebalance := jobs.NewRebalanceJob(
		rt.engine, rt.source, rt.sourceName,
		exporter, cache, rt.cfg.Redis.ReportTTL,
		rt.cfg.Engine.Schedule, log,
	)
	cleanupJob := jobs.NewExportCleanupJob(rt.cfg.Engine.ExportDir, rt.cfg.Engine.ExportRetention, log)

	for _, job := range []scheduler.Job{rebalance, cleanupJob} {
		if err := sched.AddJob(job); err != nil {
			_ = redisClient.Close()
			rt.Close()
			return nil, nil, fmt.Errorf("add job %s: %w", job.Name(), err)
		}
	}

	cleanup := func() {
		_ = redisClient.Close()
		rt.Close()
	}
	return sched, cleanup, nil
}
