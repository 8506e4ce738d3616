package score

import "github.com/ppiankov/dispatcher/internal/model"

// New authorities are the most receptive to dispatch services.
func scoreAuthorityAge(_ *Qualifier, lead model.LeadRecord) float64 {
	switch days := lead.AuthorityAgeDays; {
	case days < 30:
		return 1.0
	case days < 90:
		return 0.9
	case days < 180:
		return 0.8
	case days < 365:
		return 0.6
	case days < 730:
		return 0.4
	default:
		return 0.2
	}
}

// Owner-operators and small fleets are the target segment.
func scoreFleetSize(_ *Qualifier, lead model.LeadRecord) float64 {
	switch n := lead.FleetSize; {
	case n <= 3:
		return 1.0
	case n <= 5:
		return 0.9
	case n <= 10:
		return 0.7
	case n <= 20:
		return 0.5
	default:
		return 0.3
	}
}

// Below-minimum coverage is a hard disqualifier.
func scoreInsurance(q *Qualifier, lead model.LeadRecord) float64 {
	ins := lead.Insurance
	if ins.Liability < q.cfg.MinLiability || ins.Cargo < q.cfg.MinCargo {
		return 0
	}
	if ins.Verified {
		return 1.0
	}
	return 0.8
}

// Lower safety index is better. Unknown is neutral.
func scoreSafety(_ *Qualifier, lead model.LeadRecord) float64 {
	if lead.SafetyIndex == nil {
		return 0.5
	}
	switch idx := *lead.SafetyIndex; {
	case idx < 30:
		return 1.0
	case idx < 50:
		return 0.85
	case idx < 70:
		return 0.6
	case idx < 85:
		return 0.3
	default:
		return 0.1
	}
}

func scoreEquipmentMatch(q *Qualifier, lead model.LeadRecord) float64 {
	owned := make(map[string]bool, len(lead.Equipment))
	for _, e := range lead.Equipment {
		if n := model.NormalizeEquipment(e); n != "" {
			owned[n] = true
		}
	}
	if len(owned) == 0 {
		return 0
	}

	matching := 0
	for e := range owned {
		if q.targetEquipment[e] {
			matching++
		}
	}
	return float64(matching) / float64(len(owned))
}

func scoreLocation(q *Qualifier, lead model.LeadRecord) float64 {
	covered := make(map[string]bool)
	for _, s := range lead.OperatingStates {
		if code := model.NormalizeCode(s); q.targetStates[code] {
			covered[code] = true
		}
	}

	switch n := len(covered); {
	case n >= 5:
		return 1.0
	case n >= 3:
		return 0.85
	case n >= 1:
		return 0.7
	}
	if q.targetStates[model.NormalizeCode(lead.HomeBaseState)] {
		return 0.5
	}
	return 0.2
}

func scoreContactQuality(_ *Qualifier, lead model.LeadRecord) float64 {
	var s float64
	if lead.Contact.HasPhone {
		s += 0.5
	}
	if lead.Contact.HasEmail {
		s += 0.3
	}
	if lead.Contact.HasSecondaryPhone {
		s += 0.15
	}
	if lead.Contact.HasOwnerName {
		s += 0.05
	}
	if s > 1 {
		return 1
	}
	return s
}
