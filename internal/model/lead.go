package model

import "strings"

// LeadRecord is an immutable snapshot of a prospective carrier at scoring time
type LeadRecord struct {
	ID               string    `json:"id" yaml:"id"`
	CompanyName      string    `json:"company_name" yaml:"company_name"`
	MCNumber         string    `json:"mc_number,omitempty" yaml:"mc_number,omitempty"`
	DOTNumber        string    `json:"dot_number,omitempty" yaml:"dot_number,omitempty"`
	AuthorityAgeDays int       `json:"authority_age_days" yaml:"authority_age_days"` // Days since operating authority was granted
	FleetSize        int       `json:"fleet_size" yaml:"fleet_size"`                 // Truck count, >= 1
	Insurance        Insurance `json:"insurance" yaml:"insurance"`
	SafetyIndex      *float64  `json:"safety_index,omitempty" yaml:"safety_index,omitempty"` // 0-100, lower is better; nil when unknown
	Equipment        []string  `json:"equipment" yaml:"equipment"`
	OperatingStates  []string  `json:"operating_states" yaml:"operating_states"`
	HomeBaseState    string    `json:"home_base_state,omitempty" yaml:"home_base_state,omitempty"`
	Contact          Contact   `json:"contact" yaml:"contact"`
}

// Insurance holds coverage amounts in whole dollars
type Insurance struct {
	Liability int64 `json:"liability" yaml:"liability"`
	Cargo     int64 `json:"cargo" yaml:"cargo"`
	Verified  bool  `json:"verified" yaml:"verified"`
}

// Contact captures contact completeness signals, not the contact data itself
type Contact struct {
	HasPhone          bool `json:"has_phone" yaml:"has_phone"`
	HasSecondaryPhone bool `json:"has_secondary_phone" yaml:"has_secondary_phone"`
	HasEmail          bool `json:"has_email" yaml:"has_email"`
	HasOwnerName      bool `json:"has_owner_name" yaml:"has_owner_name"`
}

// Validate checks the record invariants
func (l LeadRecord) Validate() error {
	if l.FleetSize < 1 {
		return invalidf("fleet_size", "must be at least 1, got %d", l.FleetSize)
	}
	if l.AuthorityAgeDays < 0 {
		return invalidf("authority_age_days", "must not be negative, got %d", l.AuthorityAgeDays)
	}
	if l.Insurance.Liability < 0 || l.Insurance.Cargo < 0 {
		return invalidf("insurance", "coverage must not be negative")
	}
	if l.SafetyIndex != nil && (*l.SafetyIndex < 0 || *l.SafetyIndex > 100) {
		return invalidf("safety_index", "must be within 0-100, got %.1f", *l.SafetyIndex)
	}
	for _, s := range l.OperatingStates {
		if strings.TrimSpace(s) == "" {
			return invalidf("operating_states", "empty state code")
		}
	}
	return nil
}

// Factor names used in LeadScore.Factors
const (
	FactorAuthorityAge   = "authority_age"
	FactorFleetSize      = "fleet_size"
	FactorInsurance      = "insurance"
	FactorSafety         = "safety"
	FactorEquipmentMatch = "equipment_match"
	FactorLocation       = "location"
	FactorContactQuality = "contact_quality"
)

// LeadScore is recomputed on every scoring call and never mutated in place
type LeadScore struct {
	LeadID                 string             `json:"lead_id"`
	Total                  float64            `json:"total"`   // 0-1
	Factors                map[string]float64 `json:"factors"` // Factor name -> sub-score in 0-1
	Qualified              bool               `json:"qualified"`
	DisqualificationReason string             `json:"disqualification_reason,omitempty"`
}

// RankedLead pairs a lead with its score in ranking output
type RankedLead struct {
	Lead  LeadRecord `json:"lead"`
	Score LeadScore  `json:"score"`
}

// QualificationSummary aggregates a batch of lead scores
type QualificationSummary struct {
	Total             int            `json:"total"`
	Qualified         int            `json:"qualified"`
	Disqualified      int            `json:"disqualified"`
	QualificationRate float64        `json:"qualification_rate"`
	AverageScore      float64        `json:"avg_score"`
	TopScore          float64        `json:"top_score"`
	Distribution      map[string]int `json:"score_distribution"` // excellent, good, fair, poor
}
