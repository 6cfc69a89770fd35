package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockbalance/backend/internal/api"
	"github.com/wonny/stockbalance/backend/internal/api/handlers"
	"github.com/wonny/stockbalance/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 재배치 리포트 조회 엔드포인트 제공
- 결과 테이블 다운로드 (csv/xlsx) 제공

Endpoints:
  GET  /health                      - Health check
  GET  /api/report                  - 전체 리포트 (?refresh=true)
  GET  /api/report/transfers        - 이관 계획 (?limit=N)
  GET  /api/report/purchases        - 구매 필요량 (?limit=N)
  GET  /api/report/abc              - ABC 분류
  GET  /api/report/{table}.csv      - 테이블 CSV 다운로드
  GET  /api/report/{table}.xlsx     - 워크북 다운로드

Example:
  go run ./cmd/rebalance api
  go run ./cmd/rebalance api --port 8080 --input snapshot.csv`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stockbalance API Server ===")

	ctx := context.Background()

	// 1. Engine + snapshot source
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Override port if flag is set
	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	log := rt.log
	log.WithFields(map[string]interface{}{
		"port":   rt.cfg.Port,
		"env":    rt.cfg.Env,
		"source": rt.sourceName,
	}).Info("Initializing API server")

	// 2. Connect to Redis (report cache)
	redisClient, err := redis.New(ctx, rt.cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, report cache disabled")
		redisClient = redis.Disabled()
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "stockbalance")

	// 3. Create handler
	reportHandler := handlers.NewReportHandler(rt.engine, rt.source, rt.sourceName, cache, rt.cfg.Redis.ReportTTL, log)

	// 4. Create router
	router := api.NewRouter(reportHandler, log)

	// 5. Create server
	server := api.New(rt.cfg, log, router)

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", rt.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/report")
	fmt.Println("  GET  /api/report/transfers")
	fmt.Println("  GET  /api/report/purchases")
	fmt.Println("  GET  /api/report/abc")
	fmt.Println("  GET  /api/report/{table}.csv")
	fmt.Println("  GET  /api/report/{table}.xlsx")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
