package s2_abc

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

func row(entity, product string, trailing int64) contracts.NormalizedRow {
	return contracts.NormalizedRow{
		StockSnapshotRow: contracts.StockSnapshotRow{
			EntityID:    entity,
			ProductID:   product,
			ProductName: "name-" + product,
		},
		TrailingSales: decimal.NewFromInt(trailing),
	}
}

func newTestClassifier() *Classifier {
	return NewClassifier(0.70, 0.90, logger.Nop())
}

func TestClassifier_Classify(t *testing.T) {
	rows := []contracts.NormalizedRow{
		row("S1", "P1", 40),
		row("S2", "P1", 20), // P1 = 60
		row("S1", "P2", 25),
		row("S1", "P3", 10),
		row("S2", "P4", 5),
	}

	c, err := newTestClassifier().Classify(rows)
	require.NoError(t, err)
	require.Len(t, c.Products, 4)
	assert.False(t, c.Degenerate)
	assert.True(t, c.GrandTotal.Equal(decimal.NewFromInt(100)))

	tests := []struct {
		product string
		rank    int
		share   string
		class   contracts.AbcClass
	}{
		{"P1", 1, "0.6", contracts.ClassA},
		{"P2", 2, "0.85", contracts.ClassB},
		{"P3", 3, "0.95", contracts.ClassC},
		{"P4", 4, "1", contracts.ClassC},
	}

	for i, tt := range tests {
		p := c.Products[i]
		assert.Equal(t, tt.product, p.ProductID)
		assert.Equal(t, tt.rank, p.Rank)
		assert.True(t, p.CumulativeShare.Equal(decimal.RequireFromString(tt.share)), "%s share %s", tt.product, p.CumulativeShare)
		assert.Equal(t, tt.class, p.Class)
	}

	p1, ok := c.Lookup("P1")
	require.True(t, ok)
	assert.True(t, p1.TotalTrailingSales.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, "name-P1", p1.ProductName)

	_, ok = c.Lookup("P9")
	assert.False(t, ok)
}

func TestClassifier_BoundaryIsInclusive(t *testing.T) {
	c, err := newTestClassifier().Classify([]contracts.NormalizedRow{
		row("S1", "P1", 70),
		row("S1", "P2", 20),
		row("S1", "P3", 10),
	})
	require.NoError(t, err)

	assert.Equal(t, contracts.ClassA, c.Products[0].Class) // 0.70
	assert.Equal(t, contracts.ClassB, c.Products[1].Class) // 0.90
	assert.Equal(t, contracts.ClassC, c.Products[2].Class) // 1.00
}

func TestClassifier_TiesByProductID(t *testing.T) {
	c, err := newTestClassifier().Classify([]contracts.NormalizedRow{
		row("S1", "P3", 10),
		row("S1", "P1", 10),
		row("S1", "P2", 10),
	})
	require.NoError(t, err)

	ids := []string{c.Products[0].ProductID, c.Products[1].ProductID, c.Products[2].ProductID}
	assert.Equal(t, []string{"P1", "P2", "P3"}, ids)
}

func TestClassifier_Monotonic(t *testing.T) {
	rows := []contracts.NormalizedRow{
		row("S1", "P1", 3), row("S2", "P2", 17), row("S1", "P3", 8),
		row("S3", "P4", 1), row("S2", "P5", 30), row("S1", "P6", 0),
		row("S3", "P2", 4), row("S1", "P7", 12),
	}

	c, err := newTestClassifier().Classify(rows)
	require.NoError(t, err)

	order := map[contracts.AbcClass]int{contracts.ClassA: 0, contracts.ClassB: 1, contracts.ClassC: 2}
	for i := 1; i < len(c.Products); i++ {
		prev, cur := c.Products[i-1], c.Products[i]
		assert.True(t, prev.TotalTrailingSales.GreaterThanOrEqual(cur.TotalTrailingSales))
		assert.True(t, prev.CumulativeShare.LessThanOrEqual(cur.CumulativeShare))
		assert.LessOrEqual(t, order[prev.Class], order[cur.Class])
		assert.Equal(t, prev.Rank+1, cur.Rank)
	}
}

func TestClassifier_ZeroGrandTotal(t *testing.T) {
	c, err := newTestClassifier().Classify([]contracts.NormalizedRow{
		row("S1", "P1", 0),
		row("S2", "P2", 0),
	})
	require.NoError(t, err)

	assert.True(t, c.Degenerate)
	for _, p := range c.Products {
		assert.Equal(t, contracts.ClassC, p.Class)
		assert.True(t, p.CumulativeShare.IsZero())
	}
	assert.Equal(t, 2, c.CountByClass()[contracts.ClassC])
}

func TestClassifier_Empty(t *testing.T) {
	_, err := newTestClassifier().Classify(nil)
	assert.True(t, errors.Is(err, contracts.ErrEmptySnapshot))
}
