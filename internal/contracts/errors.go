package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// Engine error taxonomy
// 모두 결정적 계산 오류이므로 재시도하지 않음
var (
	ErrMissingRequiredColumn = errors.New("missing required column")
	ErrEmptySnapshot         = errors.New("empty snapshot")
	ErrUnclassifiedProduct   = errors.New("unclassified product")
	ErrDegenerateSalesTotal  = errors.New("degenerate sales total") // 경고용, 치명적이지 않음
)

// MissingRequiredColumnError lists the required columns absent from a source table
type MissingRequiredColumnError struct {
	Columns []string
}

func (e *MissingRequiredColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredColumn, strings.Join(e.Columns, ", "))
}

// Is makes errors.Is(err, ErrMissingRequiredColumn) succeed
func (e *MissingRequiredColumnError) Is(target error) bool {
	return target == ErrMissingRequiredColumn
}

// UnclassifiedProductError signals a product present in the partition but not in the ABC output
type UnclassifiedProductError struct {
	ProductID string
}

func (e *UnclassifiedProductError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnclassifiedProduct, e.ProductID)
}

// Is makes errors.Is(err, ErrUnclassifiedProduct) succeed
func (e *UnclassifiedProductError) Is(target error) bool {
	return target == ErrUnclassifiedProduct
}
