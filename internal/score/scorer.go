package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/dispatcher/internal/model"
)

// FactorFunc scores one aspect of a lead in [0,1]
type FactorFunc func(q *Qualifier, lead model.LeadRecord) float64

// Factor is one row of the scoring table
type Factor struct {
	Name   string
	Score  FactorFunc
	Weight func(w model.ScoringWeights) float64
}

// Factors is the ordered scoring table. The total is a fold over it.
var Factors = []Factor{
	{model.FactorAuthorityAge, scoreAuthorityAge, func(w model.ScoringWeights) float64 { return w.AuthorityAge }},
	{model.FactorFleetSize, scoreFleetSize, func(w model.ScoringWeights) float64 { return w.FleetSize }},
	{model.FactorInsurance, scoreInsurance, func(w model.ScoringWeights) float64 { return w.Insurance }},
	{model.FactorSafety, scoreSafety, func(w model.ScoringWeights) float64 { return w.Safety }},
	{model.FactorEquipmentMatch, scoreEquipmentMatch, func(w model.ScoringWeights) float64 { return w.EquipmentMatch }},
	{model.FactorLocation, scoreLocation, func(w model.ScoringWeights) float64 { return w.Location }},
	{model.FactorContactQuality, scoreContactQuality, func(w model.ScoringWeights) float64 { return w.ContactQuality }},
}

// Qualifier scores carrier leads against a fixed qualification config
type Qualifier struct {
	cfg             model.QualificationConfig
	targetEquipment map[string]bool
	targetStates    map[string]bool
}

// NewQualifier creates a qualifier. The weight table is validated here so
// that Score with the configured weights can never fail on configuration.
func NewQualifier(cfg model.QualificationConfig) (*Qualifier, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}

	q := &Qualifier{
		cfg:             cfg,
		targetEquipment: make(map[string]bool, len(cfg.TargetEquipment)),
		targetStates:    make(map[string]bool, len(cfg.TargetStates)),
	}
	for _, e := range cfg.TargetEquipment {
		q.targetEquipment[model.NormalizeEquipment(e)] = true
	}
	for _, s := range cfg.TargetStates {
		q.targetStates[model.NormalizeCode(s)] = true
	}
	return q, nil
}

// Weights returns the configured weight table
func (q *Qualifier) Weights() model.ScoringWeights {
	return q.cfg.Weights
}

// Score computes the weighted score and the qualification decision
func (q *Qualifier) Score(lead model.LeadRecord, weights model.ScoringWeights) (model.LeadScore, error) {
	if err := lead.Validate(); err != nil {
		return model.LeadScore{}, fmt.Errorf("score lead %s: %w", lead.ID, err)
	}
	if err := checkWeights(weights); err != nil {
		return model.LeadScore{}, fmt.Errorf("score lead %s: %w", lead.ID, err)
	}

	factors := make(map[string]float64, len(Factors))
	var total float64
	for _, f := range Factors {
		v := clamp(f.Score(q, lead))
		factors[f.Name] = v
		total += v * f.Weight(weights)
	}
	total = math.Round(clamp(total)*1000) / 1000

	result := model.LeadScore{
		LeadID:    lead.ID,
		Total:     total,
		Factors:   factors,
		Qualified: true,
	}

	switch {
	case factors[model.FactorInsurance] == 0:
		result.Qualified = false
		result.DisqualificationReason = fmt.Sprintf(
			"Insurance does not meet minimum requirements (liability $%d/$%d, cargo $%d/$%d)",
			lead.Insurance.Liability, q.cfg.MinLiability, lead.Insurance.Cargo, q.cfg.MinCargo)
	case factors[model.FactorEquipmentMatch] == 0:
		result.Qualified = false
		result.DisqualificationReason = "No matching equipment types for dispatch"
	case total < q.cfg.Threshold:
		result.Qualified = false
		result.DisqualificationReason = fmt.Sprintf("Lead score %.3f below threshold %.2f", total, q.cfg.Threshold)
	}

	return result, nil
}

// Rank scores every lead and sorts by total descending. Ties keep input
// order. The first invalid lead aborts the ranking.
func (q *Qualifier) Rank(leads []model.LeadRecord, weights model.ScoringWeights) ([]model.RankedLead, error) {
	ranked := make([]model.RankedLead, 0, len(leads))
	for i, lead := range leads {
		s, err := q.Score(lead, weights)
		if err != nil {
			return nil, fmt.Errorf("rank lead %d: %w", i, err)
		}
		ranked = append(ranked, model.RankedLead{Lead: lead, Score: s})
	}

	SortRanked(ranked)
	return ranked, nil
}

// SortRanked orders ranked leads by total descending, stable on ties
func SortRanked(ranked []model.RankedLead) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Total > ranked[j].Score.Total
	})
}

// Summarize aggregates a batch of scores
func Summarize(scores []model.LeadScore) model.QualificationSummary {
	summary := model.QualificationSummary{
		Total: len(scores),
		Distribution: map[string]int{
			"excellent": 0,
			"good":      0,
			"fair":      0,
			"poor":      0,
		},
	}
	if len(scores) == 0 {
		return summary
	}

	var sum float64
	for _, s := range scores {
		if s.Qualified {
			summary.Qualified++
		}
		sum += s.Total
		if s.Total > summary.TopScore {
			summary.TopScore = s.Total
		}

		switch {
		case s.Total >= 0.8:
			summary.Distribution["excellent"]++
		case s.Total >= 0.6:
			summary.Distribution["good"]++
		case s.Total >= 0.4:
			summary.Distribution["fair"]++
		default:
			summary.Distribution["poor"]++
		}
	}

	summary.Disqualified = summary.Total - summary.Qualified
	summary.QualificationRate = round3(float64(summary.Qualified) / float64(summary.Total))
	summary.AverageScore = round3(sum / float64(summary.Total))
	return summary
}

// checkWeights rejects negative or NaN weights. The sum is only checked at
// configuration load; caller-supplied tables are expected, not required,
// to sum to 1.0 and the total is clamped.
func checkWeights(w model.ScoringWeights) error {
	for _, f := range Factors {
		if v := f.Weight(w); v < 0 || math.IsNaN(v) {
			return &model.ValidationError{Field: "weights." + f.Name, Msg: fmt.Sprintf("must be non-negative, got %v", v)}
		}
	}
	return nil
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
