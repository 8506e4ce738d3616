package model

import "strings"

// CarrierRecord is an active dispatch partner available for loads
type CarrierRecord struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Equipment      []string   `json:"equipment" yaml:"equipment"`
	PreferredLanes []string   `json:"preferred_lanes" yaml:"preferred_lanes"` // e.g. "TX-CA"
	HomeBaseStates []string   `json:"home_base_states" yaml:"home_base_states"`
	Availability   TimeWindow `json:"availability" yaml:"availability"`
}

// Validate checks the record invariants
func (c CarrierRecord) Validate() error {
	for _, lane := range c.PreferredLanes {
		if parts := strings.Split(lane, "-"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return invalidf("preferred_lanes", "malformed lane %q", lane)
		}
	}
	return c.Availability.validate("availability")
}

// HasEquipment reports whether the carrier runs the given equipment type.
// "Dry Van" and "dry_van" name the same type.
func (c CarrierRecord) HasEquipment(equipment string) bool {
	want := NormalizeEquipment(equipment)
	for _, e := range c.Equipment {
		if NormalizeEquipment(e) == want {
			return true
		}
	}
	return false
}

// Factor names used in MatchScore.Factors
const (
	FactorDistance = "distance_efficiency"
	FactorRate     = "rate_quality"
	FactorLane     = "lane_familiarity"
	FactorSchedule = "schedule_fit"
)

// Commission is the transparent dispatch fee on a load
type Commission struct {
	Amount  float64 `json:"amount"`
	Charity float64 `json:"charity"` // Share of the commission set aside
}

// MatchScore scores one (load, carrier) pair
type MatchScore struct {
	LoadID          string             `json:"load_id"`
	CarrierID       string             `json:"carrier_id"`
	Total           float64            `json:"total"` // 0-1
	Factors         map[string]float64 `json:"factors"`
	Verdict         ComplianceVerdict  `json:"verdict"`
	RequiresReview  bool               `json:"requires_review"` // Never auto-booked
	Rejected        bool               `json:"rejected"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	RatePerMile     float64            `json:"rate_per_mile"`
	Commission      Commission         `json:"commission"`
}

// Recommendation is the ranked candidate list for one load
type Recommendation struct {
	Load       LoadRecord        `json:"load"`
	Verdict    ComplianceVerdict `json:"verdict"`
	Rejected   bool              `json:"rejected"`
	Reason     string            `json:"reason,omitempty"`
	Candidates []MatchScore      `json:"candidates"`
}
