package model

import (
	"errors"
	"testing"
	"time"
)

func TestLoadRecord_Derived(t *testing.T) {
	l := LoadRecord{Origin: " tx", Destination: "ca ", LoadedMiles: 1400, DeadheadMiles: 140, Rate: 4186}

	if got := l.RatePerMile(); got != 2.99 {
		t.Errorf("RatePerMile = %v, want 2.99", got)
	}
	if got := l.RatePerTotalMile(); got != 2.72 {
		t.Errorf("RatePerTotalMile = %v, want 2.72", got)
	}
	if got := l.DeadheadRatio(); got != 0.1 {
		t.Errorf("DeadheadRatio = %v, want 0.1", got)
	}
	if got := l.Lane(); got != "TX-CA" {
		t.Errorf("Lane = %q, want TX-CA", got)
	}

	var zero LoadRecord
	if zero.RatePerMile() != 0 || zero.DeadheadRatio() != 0 || zero.RatePerTotalMile() != 0 {
		t.Error("expected zero derived values for a zero-mile load")
	}
}

func TestLoadRecord_Validate(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	valid := LoadRecord{Origin: "TX", Destination: "CA", LoadedMiles: 100, Rate: 300}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid load, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*LoadRecord)
	}{
		{"missing origin", func(l *LoadRecord) { l.Origin = " " }},
		{"zero miles", func(l *LoadRecord) { l.LoadedMiles = 0 }},
		{"negative deadhead", func(l *LoadRecord) { l.DeadheadMiles = -1 }},
		{"zero rate", func(l *LoadRecord) { l.Rate = 0 }},
		{"inverted window", func(l *LoadRecord) { l.Pickup = TimeWindow{Earliest: now, Latest: now.Add(-time.Hour)} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid
			tt.mutate(&l)
			if err := l.Validate(); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestTimeWindow_Overlaps(t *testing.T) {
	base := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	w := TimeWindow{Earliest: base, Latest: base.Add(4 * time.Hour)}

	tests := []struct {
		name  string
		other TimeWindow
		want  bool
	}{
		{"inside", TimeWindow{Earliest: base.Add(time.Hour), Latest: base.Add(2 * time.Hour)}, true},
		{"touching end", TimeWindow{Earliest: base.Add(4 * time.Hour), Latest: base.Add(6 * time.Hour)}, true},
		{"after", TimeWindow{Earliest: base.Add(5 * time.Hour), Latest: base.Add(6 * time.Hour)}, false},
		{"before", TimeWindow{Earliest: base.Add(-3 * time.Hour), Latest: base.Add(-time.Hour)}, false},
		{"unset", TimeWindow{}, false},
	}
	for _, tt := range tests {
		if got := w.Overlaps(tt.other); got != tt.want {
			t.Errorf("%s: Overlaps = %v, want %v", tt.name, got, tt.want)
		}
		if got := tt.other.Overlaps(w); got != tt.want {
			t.Errorf("%s: Overlaps is not symmetric", tt.name)
		}
	}
}

func TestCarrierRecord(t *testing.T) {
	c := CarrierRecord{Equipment: []string{"Dry Van", "reefer"}, PreferredLanes: []string{"TX-CA"}}
	if !c.HasEquipment("dry_van") || !c.HasEquipment("REEFER") || c.HasEquipment("flatbed") {
		t.Errorf("HasEquipment mismatch for %v", c.Equipment)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("expected valid carrier, got %v", err)
	}

	c.PreferredLanes = []string{"TXCA"}
	if err := c.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for malformed lane, got %v", err)
	}
}

func TestLeadRecord_Validate(t *testing.T) {
	bad := 120.0
	tests := []struct {
		name string
		lead LeadRecord
		ok   bool
	}{
		{"valid", LeadRecord{FleetSize: 1}, true},
		{"no trucks", LeadRecord{FleetSize: 0}, false},
		{"negative age", LeadRecord{FleetSize: 1, AuthorityAgeDays: -1}, false},
		{"negative insurance", LeadRecord{FleetSize: 1, Insurance: Insurance{Cargo: -5}}, false},
		{"safety out of range", LeadRecord{FleetSize: 1, SafetyIndex: &bad}, false},
		{"blank state", LeadRecord{FleetSize: 1, OperatingStates: []string{"TX", " "}}, false},
	}
	for _, tt := range tests {
		err := tt.lead.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tt.name, err)
		}
	}
}
