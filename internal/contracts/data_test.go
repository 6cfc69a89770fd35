package contracts

import (
	"testing"
	"time"
)

func TestSnapshotStats_DuplicateRate(t *testing.T) {
	tests := []struct {
		name  string
		stats SnapshotStats
		want  float64
	}{
		{
			name:  "no rows",
			stats: SnapshotStats{},
			want:  0.0,
		},
		{
			name:  "quarter duplicated",
			stats: SnapshotStats{RawRows: 100, DuplicateKeys: 25},
			want:  0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.DuplicateRate(); got != tt.want {
				t.Errorf("DuplicateRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotStats_PairsPerEntity(t *testing.T) {
	stats := SnapshotStats{
		NormalizedRows:     12,
		Entities:           4,
		MaxObservationDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	if got := stats.PairsPerEntity(); got != 3.0 {
		t.Errorf("PairsPerEntity() = %v, want 3", got)
	}

	empty := SnapshotStats{}
	if got := empty.PairsPerEntity(); got != 0.0 {
		t.Errorf("PairsPerEntity() on empty = %v, want 0", got)
	}
}
