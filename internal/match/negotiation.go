package match

import (
	"fmt"
	"math"

	"github.com/ppiankov/dispatcher/internal/model"
)

// NewNegotiation opens a negotiation by countering the broker's offer.
// The opening counter is never below the absolute floor.
func NewNegotiation(counterpartyOffer float64, p model.NegotiationParams) (model.NegotiationState, error) {
	if err := p.Validate(); err != nil {
		return model.NegotiationState{}, fmt.Errorf("open negotiation: %w", err)
	}
	if counterpartyOffer <= 0 || math.IsNaN(counterpartyOffer) || math.IsInf(counterpartyOffer, 0) {
		return model.NegotiationState{}, fmt.Errorf("open negotiation: %w", &model.ValidationError{
			Field: "offer",
			Msg:   fmt.Sprintf("must be a positive rate, got %v", counterpartyOffer),
		})
	}

	return model.NegotiationState{
		Round:        0,
		CurrentOffer: math.Max(counterpartyOffer*(1+p.InitialCounterPct), p.AbsoluteFloor),
		Floor:        p.AbsoluteFloor,
		SoftFloor:    p.SoftFloor,
		Target:       p.Target,
		Status:       model.NegotiationInProgress,
		Note:         fmt.Sprintf("Countered $%.2f/mile at +%.0f%%", counterpartyOffer, p.InitialCounterPct*100),
	}, nil
}

// Step is the pure transition function. Terminal states map to themselves.
func Step(s model.NegotiationState, p model.NegotiationParams) model.NegotiationState {
	if s.Status.IsTerminal() {
		return s
	}

	next := s
	switch {
	case s.CurrentOffer >= s.Target:
		next.Status = model.NegotiationAccepted
		next.Note = fmt.Sprintf("Offer $%.2f/mile meets target $%.2f", s.CurrentOffer, s.Target)
	case s.Round >= p.MaxRounds:
		if s.CurrentOffer >= s.SoftFloor {
			next.Status = model.NegotiationAccepted
			next.Note = fmt.Sprintf("Rounds exhausted; $%.2f/mile clears soft floor $%.2f", s.CurrentOffer, s.SoftFloor)
		} else {
			next.Status = model.NegotiationWalkedAway
			next.Note = fmt.Sprintf("Rounds exhausted; best offer $%.2f/mile under soft floor $%.2f", s.CurrentOffer, s.SoftFloor)
		}
	default:
		next.Round = s.Round + 1
		next.CurrentOffer = math.Max(s.CurrentOffer*(1-p.MaxConcessionPct), s.Floor)
		next.Note = fmt.Sprintf("Round %d: conceded to $%.2f/mile", next.Round, next.CurrentOffer)
	}
	return next
}

// Negotiate runs the state machine to a terminal state and returns every
// state visited, opening counter first.
func Negotiate(counterpartyOffer float64, p model.NegotiationParams) ([]model.NegotiationState, error) {
	s, err := NewNegotiation(counterpartyOffer, p)
	if err != nil {
		return nil, err
	}

	trace := []model.NegotiationState{s}
	for steps := 0; !s.Status.IsTerminal(); steps++ {
		if steps > p.MaxRounds {
			return trace, fmt.Errorf("negotiate: no terminal state after %d steps", steps)
		}
		s = Step(s, p)
		trace = append(trace, s)
	}
	return trace, nil
}
