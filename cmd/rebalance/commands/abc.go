package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// abcCmd represents the abc command
var abcCmd = &cobra.Command{
	Use:   "abc",
	Short: "상품 ABC 분류만 실행",
	Long: `직전 완료 월 판매량으로 상품을 A/B/C 등급으로 분류합니다.
재배치 계획은 계산하지 않습니다.

Example:
  go run ./cmd/rebalance abc --input snapshot.csv
  go run ./cmd/rebalance abc --class A`,
	RunE: runABC,
}

var abcClass string

func init() {
	rootCmd.AddCommand(abcCmd)

	abcCmd.Flags().StringVar(&abcClass, "class", "", "특정 등급만 출력 (A|B|C)")
}

func runABC(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stockbalance ABC Classification ===")

	ctx := context.Background()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	classification, err := rt.engine.Classify(ctx, rt.source)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintClassification(classification, abcClass)
	return nil
}
