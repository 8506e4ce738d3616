package compliance

import (
	"math"

	"github.com/ppiankov/dispatcher/internal/model"
)

// RecordClassifier is anything that can produce a verdict for a commodity.
// Both *Classifier and *CachedClassifier satisfy it.
type RecordClassifier interface {
	ClassifyRecord(rec model.CommodityRecord) model.ComplianceVerdict
}

// Partition buckets loads by the verdict on their commodity
type Partition struct {
	Allowed   []model.LoadRecord
	Forbidden []model.LoadRecord
	Review    []model.LoadRecord
}

// Stats summarizes compliance outcomes for a batch of loads
type Stats struct {
	Total         int     `json:"total"`
	Allowed       int     `json:"allowed"`
	Forbidden     int     `json:"forbidden"`
	ReviewNeeded  int     `json:"review_needed"`
	AllowedRate   float64 `json:"allowed_rate"`
	RejectionRate float64 `json:"rejection_rate"`
}

// PartitionLoads classifies each load, preserving input order inside buckets
func PartitionLoads(c RecordClassifier, loads []model.LoadRecord) Partition {
	var p Partition
	for _, load := range loads {
		switch c.ClassifyRecord(load.Commodity).Status {
		case model.StatusAllowed:
			p.Allowed = append(p.Allowed, load)
		case model.StatusForbidden:
			p.Forbidden = append(p.Forbidden, load)
		default:
			p.Review = append(p.Review, load)
		}
	}
	return p
}

// LoadStats returns counts and rates for a batch of loads
func LoadStats(c RecordClassifier, loads []model.LoadRecord) Stats {
	total := len(loads)
	if total == 0 {
		return Stats{}
	}

	p := PartitionLoads(c, loads)
	return Stats{
		Total:         total,
		Allowed:       len(p.Allowed),
		Forbidden:     len(p.Forbidden),
		ReviewNeeded:  len(p.Review),
		AllowedRate:   round3(float64(len(p.Allowed)) / float64(total)),
		RejectionRate: round3(float64(len(p.Forbidden)) / float64(total)),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
