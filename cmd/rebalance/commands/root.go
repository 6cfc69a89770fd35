package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	inputFile  string
	sheetName  string
	policyFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Stockbalance - 재고 재배치 및 ABC 분류 엔진",
	Long: `Stockbalance Unified CLI

엔티티(매장/창고)별 재고 스냅샷을 읽어
커버리지 부족/과잉을 계산하고, 상품별 이관 계획과 구매 필요량을 산출합니다.
5단계 파이프라인: S0 Snapshot → S1 Coverage / S2 ABC → S3 Planner → S4 Ranker

Usage:
  go run ./cmd/rebalance [command]

Examples:
  go run ./cmd/rebalance run --input snapshot.csv
  go run ./cmd/rebalance abc --input snapshot.xlsx --sheet Base
  go run ./cmd/rebalance api
  go run ./cmd/rebalance scheduler start
  go run ./cmd/rebalance test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&inputFile, "input", "i", "", "snapshot file (.csv/.xlsx); 비어 있으면 Postgres에서 조회")
	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet", "", "xlsx sheet name (default: first sheet)")
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "engine policy YAML (default: ENGINE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
