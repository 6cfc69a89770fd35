package engineconfig

import "fmt"

// ValidationError 검증 실패 (실행 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Trailing period ===
	switch cfg.TrailingPeriod.Policy {
	case PolicyDataMax, PolicyWallClock:
	default:
		return ValidationError{"trailing_period.policy", fmt.Sprintf("must be %s or %s", PolicyDataMax, PolicyWallClock)}
	}

	// === Coverage ===
	if cfg.Coverage.Multiplier < 0 {
		return ValidationError{"coverage.multiplier", "must be >= 0"}
	}

	// === ABC ===
	if cfg.ABC.ACut <= 0 || cfg.ABC.ACut > 1 {
		return ValidationError{"abc.a_cut", "must be in (0, 1]"}
	}
	if cfg.ABC.BCut <= 0 || cfg.ABC.BCut > 1 {
		return ValidationError{"abc.b_cut", "must be in (0, 1]"}
	}
	if cfg.ABC.ACut >= cfg.ABC.BCut {
		return ValidationError{"abc", "a_cut must be < b_cut"}
	}

	// === Planner ===
	if cfg.Planner.Workers < 1 {
		return ValidationError{"planner.workers", "must be >= 1"}
	}

	// === Columns ===
	required := []struct {
		field string
		value string
	}{
		{"columns.entity_id", cfg.Columns.EntityID},
		{"columns.product_id", cfg.Columns.ProductID},
		{"columns.product_name", cfg.Columns.ProductName},
		{"columns.observation_date", cfg.Columns.ObservationDate},
		{"columns.on_hand_balance", cfg.Columns.OnHandBalance},
		{"columns.period_sales", cfg.Columns.PeriodSales},
	}
	for _, col := range required {
		if col.value == "" {
			return ValidationError{col.field, "required"}
		}
	}

	return nil
}
