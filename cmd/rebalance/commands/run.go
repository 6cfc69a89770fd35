package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/stockbalance/backend/internal/export"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "재배치 계획 1회 실행",
	Long: `스냅샷을 읽어 전체 파이프라인(S0~S4)을 1회 실행합니다.

이 명령어는:
- 스냅샷 획득 (--input 파일 또는 Postgres)
- 커버리지 부족/과잉 분할, ABC 분류
- 상품별 이관 계획 / 구매 필요량 산출 및 정렬
- 결과 테이블 내보내기 (xlsx/csv)

Example:
  go run ./cmd/rebalance run --input snapshot.csv
  go run ./cmd/rebalance run --input snapshot.xlsx --format both --out ./exports
  go run ./cmd/rebalance run --no-export --top 20`,
	RunE: runRebalance,
}

var (
	runOutDir   string
	runFormat   string
	runNoExport bool
	runTop      int
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runOutDir, "out", "", "export directory (default: EXPORT_DIR)")
	runCmd.Flags().StringVar(&runFormat, "format", "xlsx", "export format (xlsx|csv|both)")
	runCmd.Flags().BoolVar(&runNoExport, "no-export", false, "결과를 화면에만 출력")
	runCmd.Flags().IntVar(&runTop, "top", 10, "화면에 출력할 최대 행 수 (0 = 전체)")
}

func runRebalance(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stockbalance Rebalancing Run ===")

	format, err := export.ParseFormat(runFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.engine.Run(ctx, rt.source)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintReportSummary(report, rt.sourceName)
	PrintTransfers(report.Transfers, runTop)
	PrintPurchases(report.Purchases, runTop)

	for _, w := range report.Warnings {
		PrintWarning(w)
	}

	if runNoExport {
		return nil
	}

	dir := rt.cfg.Engine.ExportDir
	if runOutDir != "" {
		dir = runOutDir
	}

	paths, err := export.NewExporter(dir, format, rt.log).Export(report)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Exported %d file(s)", len(paths)))
	PrintList(paths)
	return nil
}
