package model

// ComplianceStatus is the closed set of commodity classifications
type ComplianceStatus string

const (
	StatusAllowed     ComplianceStatus = "ALLOWED"      // Known safe commodity
	StatusForbidden   ComplianceStatus = "FORBIDDEN"    // Policy rejection, never booked
	StatusNeedsReview ComplianceStatus = "NEEDS_REVIEW" // Human sign-off required
)

func (s ComplianceStatus) String() string { return string(s) }

// CommodityRecord is the free-text commodity descriptor attached to a load
type CommodityRecord struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ComplianceVerdict is the result of classifying a commodity
type ComplianceVerdict struct {
	Status      ComplianceStatus `json:"status"`
	Reason      string           `json:"reason"`
	MatchedTerm string           `json:"matched_term,omitempty"` // Table term that decided the verdict
	Confidence  float64          `json:"confidence"`             // 0-1, lower for review outcomes
}

// IsForbidden reports whether the verdict is a policy rejection
func (v ComplianceVerdict) IsForbidden() bool { return v.Status == StatusForbidden }

// NeedsReview reports whether the verdict requires human sign-off
func (v ComplianceVerdict) NeedsReview() bool { return v.Status == StatusNeedsReview }
