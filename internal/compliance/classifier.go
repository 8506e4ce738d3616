package compliance

import (
	"fmt"
	"strings"

	"github.com/ppiankov/dispatcher/internal/model"
)

// Classifier classifies freight commodities against three term tables
type Classifier struct {
	forbidden []term
	review    []term
	allowed   []term
}

type term struct {
	raw        string // As configured, cited in reasons
	normalized string
}

// NewClassifier compiles the term tables. The tables are validated here,
// once, and never again at call time.
func NewClassifier(cfg *model.ComplianceConfig) (*Classifier, error) {
	if cfg == nil {
		cfg = &model.DefaultConfig().Compliance
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Classifier{
		forbidden: compileTerms(cfg.Forbidden),
		review:    compileTerms(cfg.Review),
		allowed:   compileTerms(cfg.Allowed),
	}, nil
}

func compileTerms(raw []string) []term {
	terms := make([]term, 0, len(raw))
	for _, r := range raw {
		terms = append(terms, term{raw: strings.TrimSpace(r), normalized: model.NormalizeText(r)})
	}
	return terms
}

// Classify classifies a commodity name plus optional description
func (c *Classifier) Classify(name, description string) model.ComplianceVerdict {
	return c.ClassifyText(name + " " + description)
}

// ClassifyRecord classifies a commodity record
func (c *Classifier) ClassifyRecord(rec model.CommodityRecord) model.ComplianceVerdict {
	return c.Classify(rec.Name, rec.Description)
}

// ClassifyText applies the tables in fixed priority order: forbidden, review,
// allowed. Unknown commodities are never silently allowed.
func (c *Classifier) ClassifyText(text string) model.ComplianceVerdict {
	normalized := model.NormalizeText(text)
	if normalized == "" {
		return model.ComplianceVerdict{
			Status:     model.StatusNeedsReview,
			Reason:     "Empty commodity description - manual verification required",
			Confidence: 0.3,
		}
	}

	if t, ok := firstMatch(c.forbidden, normalized); ok {
		return model.ComplianceVerdict{
			Status:      model.StatusForbidden,
			Reason:      fmt.Sprintf("Forbidden commodity: %q found in %q", t.raw, strings.TrimSpace(text)),
			MatchedTerm: t.raw,
			Confidence:  1.0,
		}
	}

	if t, ok := firstMatch(c.review, normalized); ok {
		return model.ComplianceVerdict{
			Status:      model.StatusNeedsReview,
			Reason:      fmt.Sprintf("Manual review required: %q found - verify compliance", t.raw),
			MatchedTerm: t.raw,
			Confidence:  0.5,
		}
	}

	if t, ok := firstMatch(c.allowed, normalized); ok {
		return model.ComplianceVerdict{
			Status:      model.StatusAllowed,
			Reason:      fmt.Sprintf("Commodity allowed: matches %q", t.raw),
			MatchedTerm: t.raw,
			Confidence:  0.95,
		}
	}

	return model.ComplianceVerdict{
		Status:     model.StatusNeedsReview,
		Reason:     fmt.Sprintf("Unrecognized commodity: %q - manual verification recommended", strings.TrimSpace(text)),
		Confidence: 0.3,
	}
}

// Substring match: a term may be a fragment of a longer phrase.
func firstMatch(terms []term, text string) (term, bool) {
	for _, t := range terms {
		if strings.Contains(text, t.normalized) {
			return t, true
		}
	}
	return term{}, false
}
