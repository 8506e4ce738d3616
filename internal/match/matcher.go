package match

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/dispatcher/internal/model"
)

// Classifier produces the compliance verdict that gates every match
type Classifier interface {
	ClassifyRecord(rec model.CommodityRecord) model.ComplianceVerdict
}

// Matcher scores (load, carrier) pairs and ranks carriers for a load
type Matcher struct {
	cfg        model.MatchConfig
	commission model.CommissionConfig
	classifier Classifier
	rules      *Rules
}

// NewMatcher validates the match config and compiles its eligibility rules
func NewMatcher(cfg model.MatchConfig, commission model.CommissionConfig, classifier Classifier) (*Matcher, error) {
	if classifier == nil {
		return nil, fmt.Errorf("create matcher: classifier is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules, err := CompileRules(cfg.Rules)
	if err != nil {
		return nil, err
	}
	return &Matcher{
		cfg:        cfg,
		commission: commission,
		classifier: classifier,
		rules:      rules,
	}, nil
}

// gate is the per-load decision made before any carrier is considered
type gate struct {
	verdict  model.ComplianceVerdict
	rejected bool
	reason   string
}

func (m *Matcher) gate(load model.LoadRecord) gate {
	g := gate{verdict: m.classifier.ClassifyRecord(load.Commodity)}
	switch {
	case g.verdict.IsForbidden():
		g.rejected = true
		g.reason = g.verdict.Reason
	case load.RatePerMile() < m.cfg.MinRatePerMile:
		g.rejected = true
		g.reason = fmt.Sprintf("Rate $%.2f/mile below minimum $%.2f/mile", load.RatePerMile(), m.cfg.MinRatePerMile)
	}
	return g
}

// Match scores one carrier for one load. Forbidden commodities and loads
// under the rate floor come back rejected with a zero score.
func (m *Matcher) Match(load model.LoadRecord, carrier model.CarrierRecord) (model.MatchScore, error) {
	if err := load.Validate(); err != nil {
		return model.MatchScore{}, fmt.Errorf("match load %s: %w", load.ID, err)
	}
	if err := carrier.Validate(); err != nil {
		return model.MatchScore{}, fmt.Errorf("match carrier %s: %w", carrier.ID, err)
	}
	return m.score(load, carrier, m.gate(load)), nil
}

func (m *Matcher) score(load model.LoadRecord, carrier model.CarrierRecord, g gate) model.MatchScore {
	s := model.MatchScore{
		LoadID:         load.ID,
		CarrierID:      carrier.ID,
		Verdict:        g.verdict,
		RequiresReview: g.verdict.NeedsReview(),
		RatePerMile:    load.RatePerMile(),
		Factors: map[string]float64{
			model.FactorDistance: 0,
			model.FactorRate:     0,
			model.FactorLane:     0,
			model.FactorSchedule: 0,
		},
	}
	if g.rejected {
		s.Rejected = true
		s.RejectionReason = g.reason
		return s
	}

	s.Factors[model.FactorDistance] = m.distanceEfficiency(load)
	s.Factors[model.FactorRate] = m.rateQuality(load)
	s.Factors[model.FactorLane] = m.laneFamiliarity(load, carrier)
	s.Factors[model.FactorSchedule] = scheduleFit(load, carrier)

	w := m.cfg.Weights
	total := s.Factors[model.FactorDistance]*w.Distance +
		s.Factors[model.FactorRate]*w.Rate +
		s.Factors[model.FactorLane]*w.Lane +
		s.Factors[model.FactorSchedule]*w.Schedule
	s.Total = math.Round(math.Min(math.Max(total, 0), 1)*1000) / 1000
	s.Commission = m.Commission(load)
	return s
}

// Commission computes the dispatch fee and its charity share, in cents
func (m *Matcher) Commission(load model.LoadRecord) model.Commission {
	amount := math.Round(load.Rate*m.commission.Rate*100) / 100
	return model.Commission{
		Amount:  amount,
		Charity: math.Round(amount*m.commission.CharityShare*100) / 100,
	}
}

// Deadhead buckets are ascending; the first limit the ratio is under wins.
func (m *Matcher) distanceEfficiency(load model.LoadRecord) float64 {
	ratio := load.DeadheadRatio()
	for _, b := range m.cfg.DeadheadBuckets {
		if ratio < b.Limit {
			return b.Credit
		}
	}
	return 0
}

// Rate buckets are descending and inclusive.
func (m *Matcher) rateQuality(load model.LoadRecord) float64 {
	rpm := load.RatePerMile()
	for _, b := range m.cfg.RateBuckets {
		if rpm >= b.Limit {
			return b.Credit
		}
	}
	return 0
}

func (m *Matcher) laneFamiliarity(load model.LoadRecord, carrier model.CarrierRecord) float64 {
	lane := load.Lane()
	for _, l := range carrier.PreferredLanes {
		if model.NormalizeCode(l) == lane {
			return 1.0
		}
	}
	origin := model.NormalizeCode(load.Origin)
	for _, s := range carrier.HomeBaseStates {
		if model.NormalizeCode(s) == origin {
			return m.cfg.HomeBaseCredit
		}
	}
	return 0
}

func scheduleFit(load model.LoadRecord, carrier model.CarrierRecord) float64 {
	if carrier.Availability.Overlaps(load.Pickup) {
		return 1.0
	}
	return 0
}

// RankCarriers returns the eligible carriers for a load, best first. Ties
// keep input order. A rejected load has no candidates.
func (m *Matcher) RankCarriers(load model.LoadRecord, carriers []model.CarrierRecord) ([]model.MatchScore, error) {
	scores, _, err := m.rank(load, carriers)
	return scores, err
}

func (m *Matcher) rank(load model.LoadRecord, carriers []model.CarrierRecord) ([]model.MatchScore, gate, error) {
	if err := load.Validate(); err != nil {
		return nil, gate{}, fmt.Errorf("rank carriers for load %s: %w", load.ID, err)
	}

	g := m.gate(load)
	scores := []model.MatchScore{}
	if g.rejected {
		return scores, g, nil
	}

	for i, c := range carriers {
		if err := c.Validate(); err != nil {
			return nil, g, fmt.Errorf("rank carrier %d: %w", i, err)
		}
		if load.Equipment != "" && !c.HasEquipment(load.Equipment) {
			continue
		}
		ok, _, err := m.rules.Eligible(load, c)
		if err != nil {
			return nil, g, fmt.Errorf("rank carrier %s: %w", c.ID, err)
		}
		if !ok {
			continue
		}

		s := m.score(load, c, g)
		if s.Total < m.cfg.MinScore {
			continue
		}
		scores = append(scores, s)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Total > scores[j].Total
	})
	return scores, g, nil
}
