package main

import (
	"os"

	"github.com/wonny/stockbalance/backend/cmd/rebalance/commands"
)

// main is the entry point for the stockbalance CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/rebalance [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
