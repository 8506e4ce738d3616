package model

// NegotiationStatus is the closed set of negotiation states
type NegotiationStatus string

const (
	NegotiationInProgress NegotiationStatus = "IN_PROGRESS"
	NegotiationAccepted   NegotiationStatus = "ACCEPTED"
	NegotiationWalkedAway NegotiationStatus = "WALKED_AWAY"
)

// IsTerminal reports whether no transition can leave the status
func (s NegotiationStatus) IsTerminal() bool {
	switch s {
	case NegotiationAccepted, NegotiationWalkedAway:
		return true
	default:
		return false
	}
}

// NegotiationState is one inspectable point of a rate negotiation
type NegotiationState struct {
	Round        int               `json:"round"`
	CurrentOffer float64           `json:"current_offer"` // Rate per mile on the table
	Floor        float64           `json:"floor"`
	SoftFloor    float64           `json:"soft_floor"`
	Target       float64           `json:"target"`
	Status       NegotiationStatus `json:"status"`
	Note         string            `json:"note,omitempty"`
}
