package engineconfig

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/stockbalance/backend/internal/contracts"
)

// Trailing period policies
const (
	// PolicyDataMax: 데이터의 최대 관측일이 속한 달의 직전 달 (기본값, 재현 가능)
	PolicyDataMax = "data_max"
	// PolicyWallClock: 실행 시점(오늘)이 속한 달의 직전 달
	PolicyWallClock = "wall_clock"
)

// Config는 재배치 엔진의 전체 정책 설정
type Config struct {
	TrailingPeriod TrailingPeriod      `yaml:"trailing_period" json:"trailing_period"`
	Coverage       Coverage            `yaml:"coverage" json:"coverage"`
	ABC            ABC                 `yaml:"abc" json:"abc"`
	Planner        Planner             `yaml:"planner" json:"planner"`
	Columns        contracts.ColumnMap `yaml:"columns" json:"columns"`
}

// TrailingPeriod S0: 판매 집계 기간 정책
type TrailingPeriod struct {
	Policy string `yaml:"policy" json:"policy"` // data_max | wall_clock
}

// Coverage S1: 커버리지 = multiplier × 직전 월 판매
type Coverage struct {
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
}

// MultiplierDecimal returns the multiplier as a decimal
func (c Coverage) MultiplierDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Multiplier)
}

// ABC S2: 누적 비중 구간
type ABC struct {
	ACut float64 `yaml:"a_cut" json:"a_cut"` // 누적 비중 ≤ a_cut → A
	BCut float64 `yaml:"b_cut" json:"b_cut"` // 누적 비중 ≤ b_cut → B, 그 외 C
}

// Planner S3: 상품별 병렬 처리
type Planner struct {
	Workers int `yaml:"workers" json:"workers"`
}

// Default returns the policy used when no YAML file is configured
func Default() *Config {
	return &Config{
		TrailingPeriod: TrailingPeriod{Policy: PolicyDataMax},
		Coverage:       Coverage{Multiplier: 2},
		ABC:            ABC{ACut: 0.70, BCut: 0.90},
		Planner:        Planner{Workers: 4},
		Columns:        contracts.DefaultColumnMap(),
	}
}
