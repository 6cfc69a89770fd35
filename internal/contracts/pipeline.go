package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그와 리포트에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 ┐
//   S0 → S2 ┴→ S3 → S4
//   Snapshot  Coverage/ABC  Planner  Ranker

// Stage represents a pipeline stage
type Stage string

const (
	// StageSnapshot S0: 스냅샷 정규화
	// 책임: row key 중복 제거, 직전 완료 월 판매 집계, (entity, product)별 최신 행 선택
	// 위치: internal/s0_snapshot/
	StageSnapshot Stage = "S0_SNAPSHOT"

	// StageCoverage S1: 커버리지 평가
	// 책임: required_coverage, balance_vs_coverage 계산 및 Deficit/Surplus 분할
	// 위치: internal/s1_coverage/
	StageCoverage Stage = "S1_COVERAGE"

	// StageABC S2: ABC 분류
	// 책임: 상품별 판매 합계, 누적 비중, A/B/C 등급
	// 위치: internal/s2_abc/
	StageABC Stage = "S2_ABC"

	// StagePlanner S3: 재배치 계획
	// 책임: 상품별 이관 계획 또는 구매 필요량 산출
	// 위치: internal/s3_planner/
	StagePlanner Stage = "S3_PLANNER"

	// StageRanker S4: 결과 정렬
	// 책임: 이관은 수량 오름차순, 구매는 수량 내림차순
	// 위치: internal/s4_ranker/
	StageRanker Stage = "S4_RANKER"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	if len(s) < 2 {
		return string(s)
	}
	return string(s[:2])
}

// AllStages returns every stage in execution order
func AllStages() []Stage {
	return []Stage{StageSnapshot, StageCoverage, StageABC, StagePlanner, StageRanker}
}
