package model

import (
	"errors"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestDefaultTermTables_Disjoint(t *testing.T) {
	owner := make(map[string]string)
	for name, terms := range map[string][]string{
		"forbidden": DefaultForbiddenTerms,
		"review":    DefaultReviewTerms,
		"allowed":   DefaultAllowedTerms,
	} {
		for _, term := range terms {
			n := NormalizeText(term)
			if prev, ok := owner[n]; ok && prev != name {
				t.Errorf("term %q is in both %s and %s", term, prev, name)
			}
			owner[n] = name
		}
	}
}

func TestDefaultConfig_ReturnsCopies(t *testing.T) {
	a := DefaultConfig()
	a.Compliance.Forbidden[0] = "changed"
	if DefaultConfig().Compliance.Forbidden[0] == "changed" {
		t.Error("DefaultConfig shares term tables between calls")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"overlapping terms", func(c *Config) { c.Compliance.Allowed = append(c.Compliance.Allowed, " WINE ") }, "compliance"},
		{"forbidden and review overlap", func(c *Config) { c.Compliance.Review = append(c.Compliance.Review, "Sausage") }, "compliance"},
		{"review and allowed overlap", func(c *Config) { c.Compliance.Allowed = append(c.Compliance.Allowed, "gelatin") }, "compliance"},
		{"empty table", func(c *Config) { c.Compliance.Review = nil }, "compliance.review"},
		{"blank term", func(c *Config) { c.Compliance.Forbidden = []string{"--"} }, "compliance.forbidden"},
		{"weights sum", func(c *Config) { c.Qualification.Weights.FleetSize = 0.5 }, "qualification.weights"},
		{"negative weight", func(c *Config) {
			c.Qualification.Weights.FleetSize = -0.1
			c.Qualification.Weights.Location = 0.4
		}, "qualification.weights.fleet_size"},
		{"threshold", func(c *Config) { c.Qualification.Threshold = 1.5 }, "qualification.threshold"},
		{"no target equipment", func(c *Config) { c.Qualification.TargetEquipment = nil }, "qualification.target_equipment"},
		{"match weights", func(c *Config) { c.Match.Weights.Rate = 0.9 }, "match.weights"},
		{"deadhead order", func(c *Config) {
			c.Match.DeadheadBuckets = []Bucket{{Limit: 0.2, Credit: 1}, {Limit: 0.1, Credit: 0.5}}
		}, "match.deadhead_buckets"},
		{"rate order", func(c *Config) {
			c.Match.RateBuckets = []Bucket{{Limit: 2.0, Credit: 1}, {Limit: 3.0, Credit: 0.5}}
		}, "match.rate_buckets"},
		{"bucket credit", func(c *Config) { c.Match.RateBuckets[0].Credit = 2 }, "match.rate_buckets"},
		{"min score", func(c *Config) { c.Match.MinScore = -1 }, "match.min_score"},
		{"negotiation", func(c *Config) { c.Negotiation.SoftFloor = 1.0 }, "negotiation"},
		{"commission", func(c *Config) { c.Commission.Rate = 1.2 }, "commission"},
		{"store backend", func(c *Config) { c.Store.Backend = "etcd" }, "store.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestNegotiationParams_Validate(t *testing.T) {
	valid := NegotiationParams{
		InitialCounterPct: 0.15,
		MaxConcessionPct:  0.10,
		AbsoluteFloor:     1.50,
		SoftFloor:         2.00,
		Target:            2.50,
		MaxRounds:         3,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid params, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*NegotiationParams)
	}{
		{"zero floor", func(p *NegotiationParams) { p.AbsoluteFloor = 0 }},
		{"soft below floor", func(p *NegotiationParams) { p.SoftFloor = 1.0 }},
		{"target below soft", func(p *NegotiationParams) { p.Target = 1.9 }},
		{"negative counter", func(p *NegotiationParams) { p.InitialCounterPct = -0.1 }},
		{"full concession", func(p *NegotiationParams) { p.MaxConcessionPct = 1 }},
		{"negative rounds", func(p *NegotiationParams) { p.MaxRounds = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := &ValidationError{Field: "fleet_size", Msg: "must be at least 1"}
	if got := err.Error(); got != "invalid record: fleet_size: must be at least 1" {
		t.Errorf("unexpected message %q", got)
	}
	if !IsValidation(err) || IsConfiguration(err) {
		t.Error("ValidationError classified incorrectly")
	}

	cfgErr := &ConfigurationError{Msg: "broken"}
	if got := cfgErr.Error(); got != "invalid configuration: broken" {
		t.Errorf("unexpected message %q", got)
	}
}
