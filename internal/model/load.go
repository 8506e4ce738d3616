package model

import (
	"math"
	"strings"
	"time"
)

// TimeWindow is an inclusive [Earliest, Latest] interval
type TimeWindow struct {
	Earliest time.Time `json:"earliest" yaml:"earliest"`
	Latest   time.Time `json:"latest" yaml:"latest"`
}

// IsZero reports whether the window is unset
func (w TimeWindow) IsZero() bool {
	return w.Earliest.IsZero() && w.Latest.IsZero()
}

// Overlaps reports whether the two windows share at least one instant
func (w TimeWindow) Overlaps(o TimeWindow) bool {
	if w.IsZero() || o.IsZero() {
		return false
	}
	return !w.Earliest.After(o.Latest) && !o.Earliest.After(w.Latest)
}

func (w TimeWindow) validate(field string) error {
	if w.IsZero() {
		return nil
	}
	if w.Latest.Before(w.Earliest) {
		return invalidf(field, "window ends before it starts")
	}
	return nil
}

// LoadRecord is a freight shipment opportunity
type LoadRecord struct {
	ID            string          `json:"id" yaml:"id"`
	Origin        string          `json:"origin" yaml:"origin"`           // 2-letter state
	Destination   string          `json:"destination" yaml:"destination"` // 2-letter state
	LoadedMiles   int             `json:"loaded_miles" yaml:"loaded_miles"`
	DeadheadMiles int             `json:"deadhead_miles" yaml:"deadhead_miles"`
	Rate          float64         `json:"rate" yaml:"rate"` // Gross amount in dollars
	Commodity     CommodityRecord `json:"commodity" yaml:"commodity"`
	Equipment     string          `json:"equipment,omitempty" yaml:"equipment,omitempty"` // Required trailer type, optional
	Pickup        TimeWindow      `json:"pickup" yaml:"pickup"`
}

// Validate checks the record invariants
func (l LoadRecord) Validate() error {
	if strings.TrimSpace(l.Origin) == "" || strings.TrimSpace(l.Destination) == "" {
		return invalidf("route", "origin and destination states are required")
	}
	if l.LoadedMiles <= 0 {
		return invalidf("loaded_miles", "must be positive, got %d", l.LoadedMiles)
	}
	if l.DeadheadMiles < 0 {
		return invalidf("deadhead_miles", "must not be negative, got %d", l.DeadheadMiles)
	}
	if l.Rate <= 0 {
		return invalidf("rate", "must be positive, got %.2f", l.Rate)
	}
	return l.Pickup.validate("pickup")
}

// RatePerMile is the gross rate per loaded mile, rounded to cents
func (l LoadRecord) RatePerMile() float64 {
	if l.LoadedMiles <= 0 {
		return 0
	}
	return roundCents(l.Rate / float64(l.LoadedMiles))
}

// RatePerTotalMile includes deadhead miles in the denominator
func (l LoadRecord) RatePerTotalMile() float64 {
	total := l.LoadedMiles + l.DeadheadMiles
	if total <= 0 {
		return 0
	}
	return roundCents(l.Rate / float64(total))
}

// DeadheadRatio is deadhead miles as a fraction of loaded miles
func (l LoadRecord) DeadheadRatio() float64 {
	if l.LoadedMiles <= 0 {
		return 0
	}
	return float64(l.DeadheadMiles) / float64(l.LoadedMiles)
}

// Lane identifies the route, e.g. "TX-CA"
func (l LoadRecord) Lane() string {
	return Lane(l.Origin, l.Destination)
}

// Lane builds a lane identifier from two state codes
func Lane(origin, destination string) string {
	return strings.ToUpper(strings.TrimSpace(origin)) + "-" + strings.ToUpper(strings.TrimSpace(destination))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
