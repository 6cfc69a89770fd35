package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/internal/engineconfig"
	"github.com/wonny/stockbalance/backend/internal/s0_snapshot"
	"github.com/wonny/stockbalance/backend/internal/s1_coverage"
	"github.com/wonny/stockbalance/backend/internal/s2_abc"
	"github.com/wonny/stockbalance/backend/internal/s3_planner"
	"github.com/wonny/stockbalance/backend/internal/s4_ranker"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// Orchestrator coordinates the S0 → S4 pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	config     *engineconfig.Config
	configHash string

	// Stage components
	normalizer *s0_snapshot.Normalizer
	evaluator  *s1_coverage.Evaluator
	classifier *s2_abc.Classifier
	planner    *s3_planner.Planner
	ranker     *s4_ranker.Ranker

	now    func() time.Time
	logger *logger.Logger
}

// FetchError wraps a snapshot acquisition failure (the only retryable failure)
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch snapshot: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether a run error is deterministic and must not be retried
// 엔진 오류는 같은 입력이면 같은 결과 → 재시도 무의미
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var fetchErr *FetchError
	return !errors.As(err, &fetchErr)
}

// NewOrchestrator validates the policy and wires the stage components
// now는 wall_clock 정책과 리포트 시각에 사용 (nil이면 time.Now)
func NewOrchestrator(cfg *engineconfig.Config, now func() time.Time, log *logger.Logger) (*Orchestrator, error) {
	if err := engineconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	hash, err := engineconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash engine config: %w", err)
	}

	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		config:     cfg,
		configHash: hash,
		normalizer: s0_snapshot.NewNormalizer(cfg.TrailingPeriod.Policy, now, log.WithStage(contracts.StageSnapshot.String())),
		evaluator:  s1_coverage.NewEvaluator(cfg.Coverage.MultiplierDecimal(), log.WithStage(contracts.StageCoverage.String())),
		classifier: s2_abc.NewClassifier(cfg.ABC.ACut, cfg.ABC.BCut, log.WithStage(contracts.StageABC.String())),
		planner:    s3_planner.NewPlanner(cfg.Planner.Workers, log.WithStage(contracts.StagePlanner.String())),
		ranker:     s4_ranker.NewRanker(log.WithStage(contracts.StageRanker.String())),
		now:        now,
		logger:     log,
	}, nil
}

// ConfigHash returns the hash of the engine policy (report cache key)
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// Run fetches the snapshot from source and runs the full pipeline
func (o *Orchestrator) Run(ctx context.Context, source contracts.SnapshotSource) (*contracts.Report, error) {
	table, err := source.Fetch(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	return o.RunTable(ctx, table)
}

// RunTable decodes a flat table and runs the full pipeline
func (o *Orchestrator) RunTable(ctx context.Context, table *contracts.SnapshotTable) (*contracts.Report, error) {
	rows, err := s0_snapshot.DecodeTable(table, o.config.Columns)
	if err != nil {
		return nil, fmt.Errorf("S0 failed: %w", err)
	}
	return o.RunRows(ctx, rows)
}

// RunRows executes S0 → S4 over decoded snapshot rows
// 실패 시 부분 결과 없이 nil 리포트 반환
func (o *Orchestrator) RunRows(ctx context.Context, rows []contracts.StockSnapshotRow) (*contracts.Report, error) {
	startTime := o.now()
	runID := uuid.NewString()

	o.logger.WithFields(map[string]interface{}{
		"run_id":  runID,
		"rows":    len(rows),
		"policy":  o.config.TrailingPeriod.Policy,
		"config":  shortHash(o.configHash),
		"workers": o.config.Planner.Workers,
	}).Info("Starting rebalancing run")

	// S0: Snapshot normalization
	normalized, err := o.normalizer.Normalize(rows)
	if err != nil {
		return nil, fmt.Errorf("S0 failed: %w", err)
	}

	// S1: Coverage
	records := o.evaluator.Evaluate(normalized.Rows)
	partition := o.evaluator.Partition(records)

	// S2: ABC
	classification, err := o.classifier.Classify(normalized.Rows)
	if err != nil {
		return nil, fmt.Errorf("S2 failed: %w", err)
	}

	var warnings []string
	if classification.Degenerate {
		warnings = append(warnings, fmt.Sprintf("%s: every product classified C", contracts.ErrDegenerateSalesTotal))
	}

	// S3: Planner
	plan, err := o.planner.Plan(ctx, partition, classification)
	if err != nil {
		return nil, fmt.Errorf("S3 failed: %w", err)
	}
	warnings = append(warnings, plan.Warnings...)

	// S4: Ranker
	ranked := o.ranker.Rank(plan)

	report := &contracts.Report{
		RunID:          runID,
		GeneratedAt:    o.now(),
		ConfigHash:     o.configHash,
		TrailingPeriod: normalized.Period,
		Stats:          normalized.Stats,
		Normalized:     records,
		Deficit:        partition.Deficit,
		Surplus:        partition.Surplus,
		Classes:        classification.Products,
		Transfers:      ranked.Transfers,
		Purchases:      ranked.Purchases,
		Warnings:       warnings,
	}
	report.Duration = report.GeneratedAt.Sub(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":    runID,
		"transfers": len(report.Transfers),
		"purchases": len(report.Purchases),
		"warnings":  len(report.Warnings),
		"duration":  report.Duration.Seconds(),
	}).Info("Rebalancing run completed")

	return report, nil
}

// Classify runs S0 and S2 only (ABC listing)
func (o *Orchestrator) Classify(ctx context.Context, source contracts.SnapshotSource) (*contracts.Classification, error) {
	table, err := source.Fetch(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	rows, err := s0_snapshot.DecodeTable(table, o.config.Columns)
	if err != nil {
		return nil, fmt.Errorf("S0 failed: %w", err)
	}

	normalized, err := o.normalizer.Normalize(rows)
	if err != nil {
		return nil, fmt.Errorf("S0 failed: %w", err)
	}

	classification, err := o.classifier.Classify(normalized.Rows)
	if err != nil {
		return nil, fmt.Errorf("S2 failed: %w", err)
	}

	return classification, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
