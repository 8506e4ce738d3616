package model

import (
	"math"
	"time"
)

// Config is the process-wide rule base plus collaborator settings.
// It is read-only once validated.
type Config struct {
	Compliance    ComplianceConfig    `json:"compliance" yaml:"compliance" mapstructure:"compliance"`
	Qualification QualificationConfig `json:"qualification" yaml:"qualification" mapstructure:"qualification"`
	Match         MatchConfig         `json:"match" yaml:"match" mapstructure:"match"`
	Negotiation   NegotiationParams   `json:"negotiation" yaml:"negotiation" mapstructure:"negotiation"`
	Commission    CommissionConfig    `json:"commission" yaml:"commission" mapstructure:"commission"`
	Cache         CacheConfig         `json:"cache" yaml:"cache" mapstructure:"cache"`
	Concurrency   ConcurrencyConfig   `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
	Store         StoreConfig         `json:"store" yaml:"store" mapstructure:"store"`
	Log           LogConfig           `json:"log" yaml:"log" mapstructure:"log"`
}

// ComplianceConfig holds the three commodity term tables. Order matters:
// the first matching term of a table is the one cited in the verdict.
type ComplianceConfig struct {
	Forbidden []string `json:"forbidden" yaml:"forbidden" mapstructure:"forbidden"`
	Review    []string `json:"review" yaml:"review" mapstructure:"review"`
	Allowed   []string `json:"allowed" yaml:"allowed" mapstructure:"allowed"`
}

// ScoringWeights weights the seven lead factors; expected to sum to 1.0
type ScoringWeights struct {
	AuthorityAge   float64 `json:"authority_age" yaml:"authority_age" mapstructure:"authority_age"`
	FleetSize      float64 `json:"fleet_size" yaml:"fleet_size" mapstructure:"fleet_size"`
	Insurance      float64 `json:"insurance" yaml:"insurance" mapstructure:"insurance"`
	Safety         float64 `json:"safety" yaml:"safety" mapstructure:"safety"`
	EquipmentMatch float64 `json:"equipment_match" yaml:"equipment_match" mapstructure:"equipment_match"`
	Location       float64 `json:"location" yaml:"location" mapstructure:"location"`
	ContactQuality float64 `json:"contact_quality" yaml:"contact_quality" mapstructure:"contact_quality"`
}

// Sum returns the total of all weights
func (w ScoringWeights) Sum() float64 {
	return w.AuthorityAge + w.FleetSize + w.Insurance + w.Safety + w.EquipmentMatch + w.Location + w.ContactQuality
}

// Validate checks that weights are non-negative and sum to 1.0 within tolerance
func (w ScoringWeights) Validate() error {
	for name, v := range map[string]float64{
		FactorAuthorityAge:   w.AuthorityAge,
		FactorFleetSize:      w.FleetSize,
		FactorInsurance:      w.Insurance,
		FactorSafety:         w.Safety,
		FactorEquipmentMatch: w.EquipmentMatch,
		FactorLocation:       w.Location,
		FactorContactQuality: w.ContactQuality,
	} {
		if v < 0 || math.IsNaN(v) {
			return misconfiguredf("qualification.weights."+name, "must be non-negative, got %v", v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > WeightTolerance {
		return misconfiguredf("qualification.weights", "must sum to 1.0, got %.3f", sum)
	}
	return nil
}

// WeightTolerance is the allowed deviation of a weight table from 1.0
const WeightTolerance = 0.01

// QualificationConfig configures the lead qualifier
type QualificationConfig struct {
	Weights         ScoringWeights `json:"weights" yaml:"weights" mapstructure:"weights"`
	Threshold       float64        `json:"threshold" yaml:"threshold" mapstructure:"threshold"`
	MinLiability    int64          `json:"min_liability" yaml:"min_liability" mapstructure:"min_liability"`
	MinCargo        int64          `json:"min_cargo" yaml:"min_cargo" mapstructure:"min_cargo"`
	TargetEquipment []string       `json:"target_equipment" yaml:"target_equipment" mapstructure:"target_equipment"`
	TargetStates    []string       `json:"target_states" yaml:"target_states" mapstructure:"target_states"`
}

// MatchWeights weights the four match factors
type MatchWeights struct {
	Distance float64 `json:"distance" yaml:"distance" mapstructure:"distance"`
	Rate     float64 `json:"rate" yaml:"rate" mapstructure:"rate"`
	Lane     float64 `json:"lane" yaml:"lane" mapstructure:"lane"`
	Schedule float64 `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
}

// Bucket awards Credit when a value clears Limit. Deadhead buckets match
// ratio < Limit; rate buckets match rate >= Limit.
type Bucket struct {
	Limit  float64 `json:"limit" yaml:"limit" mapstructure:"limit"`
	Credit float64 `json:"credit" yaml:"credit" mapstructure:"credit"`
}

// MatchConfig configures load-to-carrier matching
type MatchConfig struct {
	Weights         MatchWeights `json:"weights" yaml:"weights" mapstructure:"weights"`
	DeadheadBuckets []Bucket     `json:"deadhead_buckets" yaml:"deadhead_buckets" mapstructure:"deadhead_buckets"` // ascending limits
	RateBuckets     []Bucket     `json:"rate_buckets" yaml:"rate_buckets" mapstructure:"rate_buckets"`             // descending limits
	HomeBaseCredit  float64      `json:"home_base_credit" yaml:"home_base_credit" mapstructure:"home_base_credit"`
	MinRatePerMile  float64      `json:"min_rate_per_mile" yaml:"min_rate_per_mile" mapstructure:"min_rate_per_mile"` // Absolute floor, rejected before scoring
	MinScore        float64      `json:"min_score" yaml:"min_score" mapstructure:"min_score"`
	Rules           []string     `json:"rules,omitempty" yaml:"rules,omitempty" mapstructure:"rules"` // CEL eligibility expressions
	MaxConcurrent   int          `json:"max_concurrent" yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// NegotiationParams bound the counter-offer state machine. Rates are per mile.
type NegotiationParams struct {
	InitialCounterPct float64 `json:"initial_counter_pct" yaml:"initial_counter_pct" mapstructure:"initial_counter_pct"`
	MaxConcessionPct  float64 `json:"max_concession_pct" yaml:"max_concession_pct" mapstructure:"max_concession_pct"`
	AbsoluteFloor     float64 `json:"absolute_floor" yaml:"absolute_floor" mapstructure:"absolute_floor"`
	SoftFloor         float64 `json:"soft_floor" yaml:"soft_floor" mapstructure:"soft_floor"`
	Target            float64 `json:"target" yaml:"target" mapstructure:"target"`
	MaxRounds         int     `json:"max_rounds" yaml:"max_rounds" mapstructure:"max_rounds"`
}

// Validate checks floor <= soft floor <= target and the percentage bounds
func (p NegotiationParams) Validate() error {
	if p.AbsoluteFloor <= 0 {
		return invalidf("absolute_floor", "must be positive, got %.2f", p.AbsoluteFloor)
	}
	if p.SoftFloor < p.AbsoluteFloor {
		return invalidf("soft_floor", "%.2f is below absolute floor %.2f", p.SoftFloor, p.AbsoluteFloor)
	}
	if p.Target < p.SoftFloor {
		return invalidf("target", "%.2f is below soft floor %.2f", p.Target, p.SoftFloor)
	}
	if p.InitialCounterPct < 0 {
		return invalidf("initial_counter_pct", "must not be negative")
	}
	if p.MaxConcessionPct < 0 || p.MaxConcessionPct >= 1 {
		return invalidf("max_concession_pct", "must be within [0,1), got %.2f", p.MaxConcessionPct)
	}
	if p.MaxRounds < 0 {
		return invalidf("max_rounds", "must not be negative")
	}
	return nil
}

// CommissionConfig sets the dispatch fee and the charity share of that fee
type CommissionConfig struct {
	Rate         float64 `json:"rate" yaml:"rate" mapstructure:"rate"`
	CharityShare float64 `json:"charity_share" yaml:"charity_share" mapstructure:"charity_share"`
}

// CacheConfig controls compliance verdict memoization
type CacheConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// ConcurrencyConfig sizes the batch scoring pool
type ConcurrencyConfig struct {
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Backend   string        `json:"backend" yaml:"backend" mapstructure:"backend"` // memory, redis
	RedisAddr string        `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB   int           `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`
	KeyPrefix string        `json:"key_prefix" yaml:"key_prefix" mapstructure:"key_prefix"`
	TTL       time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`    // debug, info, warn, error
	Format string `json:"format" yaml:"format" mapstructure:"format"` // text, json
}

// DefaultConfig returns the built-in rule base
func DefaultConfig() *Config {
	return &Config{
		Compliance: ComplianceConfig{
			Forbidden: append([]string(nil), DefaultForbiddenTerms...),
			Review:    append([]string(nil), DefaultReviewTerms...),
			Allowed:   append([]string(nil), DefaultAllowedTerms...),
		},
		Qualification: QualificationConfig{
			Weights: ScoringWeights{
				AuthorityAge:   0.15,
				FleetSize:      0.20,
				Insurance:      0.15,
				Safety:         0.15,
				EquipmentMatch: 0.15,
				Location:       0.10,
				ContactQuality: 0.10,
			},
			Threshold:       0.6,
			MinLiability:    1_000_000,
			MinCargo:        100_000,
			TargetEquipment: []string{"dry_van", "reefer", "flatbed", "step_deck"},
			TargetStates: []string{
				"TX", "CA", "FL", "IL", "GA", "OH", "PA", "NY", "NC", "TN",
				"AZ", "NJ", "MI", "IN", "MO", "WI", "MN", "CO", "AL", "LA",
				"SC", "KY", "OK", "WA", "OR", "NV", "VA", "MD", "MA", "CT",
			},
		},
		Match: MatchConfig{
			Weights: MatchWeights{Distance: 0.40, Rate: 0.35, Lane: 0.15, Schedule: 0.10},
			DeadheadBuckets: []Bucket{
				{Limit: 0.10, Credit: 1.0},
				{Limit: 0.20, Credit: 0.6},
				{Limit: 0.30, Credit: 0.3},
			},
			RateBuckets: []Bucket{
				{Limit: 3.00, Credit: 1.0},
				{Limit: 2.50, Credit: 0.6},
				{Limit: 2.00, Credit: 0.3},
			},
			HomeBaseCredit: 0.5,
			MinRatePerMile: 2.00,
			MaxConcurrent:  4,
		},
		Negotiation: NegotiationParams{
			InitialCounterPct: 0.15,
			MaxConcessionPct:  0.10,
			AbsoluteFloor:     2.00,
			SoftFloor:         2.25,
			Target:            2.75,
			MaxRounds:         3,
		},
		Commission: CommissionConfig{
			Rate:         0.07,
			CharityShare: 0.05,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Store: StoreConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			KeyPrefix: "dispatcher:v1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the rule base once at load time. Any failure is fatal:
// the engine must not run with an inconsistent configuration.
func (c *Config) Validate() error {
	if err := c.Compliance.Validate(); err != nil {
		return err
	}
	if err := c.Qualification.Weights.Validate(); err != nil {
		return err
	}
	if c.Qualification.Threshold < 0 || c.Qualification.Threshold > 1 {
		return misconfiguredf("qualification.threshold", "must be within 0-1, got %.2f", c.Qualification.Threshold)
	}
	if len(c.Qualification.TargetEquipment) == 0 {
		return misconfiguredf("qualification.target_equipment", "must not be empty")
	}
	if err := c.Match.Validate(); err != nil {
		return err
	}
	if err := c.Negotiation.Validate(); err != nil {
		return misconfiguredf("negotiation", "%v", err)
	}
	if c.Commission.Rate < 0 || c.Commission.Rate > 1 || c.Commission.CharityShare < 0 || c.Commission.CharityShare > 1 {
		return misconfiguredf("commission", "rates must be within 0-1")
	}
	switch c.Store.Backend {
	case "memory", "redis":
	default:
		return misconfiguredf("store.backend", "unknown backend %q", c.Store.Backend)
	}
	return nil
}

// Validate enforces non-empty tables and pairwise disjoint term tables
func (c ComplianceConfig) Validate() error {
	tables := []struct {
		name  string
		terms []string
	}{
		{"compliance.forbidden", c.Forbidden},
		{"compliance.review", c.Review},
		{"compliance.allowed", c.Allowed},
	}
	for _, t := range tables {
		if len(t.terms) == 0 {
			return misconfiguredf(t.name, "term table is empty")
		}
		for i, term := range t.terms {
			if NormalizeText(term) == "" {
				return misconfiguredf(t.name, "term %d is empty after normalization", i)
			}
		}
	}

	// The tables are disjoint: a shared term would make the lower-priority
	// entry unreachable or contradict the higher one.
	seen := make(map[string]string)
	for _, t := range tables {
		for _, term := range t.terms {
			n := NormalizeText(term)
			if prev, ok := seen[n]; ok && prev != t.name {
				return misconfiguredf("compliance", "term %q is in both %s and %s", term, prev, t.name)
			}
			seen[n] = t.name
		}
	}
	return nil
}

// Validate checks weights, bucket ordering and credit ranges
func (m MatchConfig) Validate() error {
	w := m.Weights
	for name, v := range map[string]float64{"distance": w.Distance, "rate": w.Rate, "lane": w.Lane, "schedule": w.Schedule} {
		if v < 0 || math.IsNaN(v) {
			return misconfiguredf("match.weights."+name, "must be non-negative, got %v", v)
		}
	}
	if sum := w.Distance + w.Rate + w.Lane + w.Schedule; math.Abs(sum-1.0) > WeightTolerance {
		return misconfiguredf("match.weights", "must sum to 1.0, got %.3f", sum)
	}
	if err := validateBuckets("match.deadhead_buckets", m.DeadheadBuckets, true); err != nil {
		return err
	}
	if err := validateBuckets("match.rate_buckets", m.RateBuckets, false); err != nil {
		return err
	}
	if m.HomeBaseCredit < 0 || m.HomeBaseCredit > 1 {
		return misconfiguredf("match.home_base_credit", "must be within 0-1")
	}
	if m.MinRatePerMile < 0 {
		return misconfiguredf("match.min_rate_per_mile", "must not be negative")
	}
	if m.MinScore < 0 || m.MinScore > 1 {
		return misconfiguredf("match.min_score", "must be within 0-1")
	}
	return nil
}

func validateBuckets(field string, buckets []Bucket, ascending bool) error {
	if len(buckets) == 0 {
		return misconfiguredf(field, "must define at least one bucket")
	}
	for i, b := range buckets {
		if b.Credit < 0 || b.Credit > 1 {
			return misconfiguredf(field, "bucket %d credit must be within 0-1", i)
		}
		if i == 0 {
			continue
		}
		prev := buckets[i-1].Limit
		if ascending && b.Limit <= prev {
			return misconfiguredf(field, "limits must be strictly ascending")
		}
		if !ascending && b.Limit >= prev {
			return misconfiguredf(field, "limits must be strictly descending")
		}
	}
	return nil
}
