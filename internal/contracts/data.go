package contracts

import "time"

// SnapshotStats summarizes the S0 normalization of a snapshot
// ⭐ SSOT: S0 → 리포트 통계 전달
type SnapshotStats struct {
	RawRows            int       `json:"raw_rows"`
	DuplicateKeys      int       `json:"duplicate_keys"` // row key 중복으로 제거된 행
	NormalizedRows     int       `json:"normalized_rows"`
	Entities           int       `json:"entities"`
	Products           int       `json:"products"`
	MaxObservationDate time.Time `json:"max_observation_date"`
}

// DuplicateRate returns the share of raw rows dropped as row-key duplicates
func (s *SnapshotStats) DuplicateRate() float64 {
	if s.RawRows == 0 {
		return 0.0
	}
	return float64(s.DuplicateKeys) / float64(s.RawRows)
}

// PairsPerEntity returns the average number of products held per entity
func (s *SnapshotStats) PairsPerEntity() float64 {
	if s.Entities == 0 {
		return 0.0
	}
	return float64(s.NormalizedRows) / float64(s.Entities)
}
