package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/dispatcher/internal/model"
)

// ErrNotFound is returned when a key has no stored value
var ErrNotFound = errors.New("not found")

// Store persists engine decisions. The engine itself never touches a
// store; callers save what they want to keep.
type Store interface {
	SaveVerdict(ctx context.Context, commodity model.CommodityRecord, v model.ComplianceVerdict) error
	Verdict(ctx context.Context, commodity model.CommodityRecord) (model.ComplianceVerdict, error)
	SaveLeadScore(ctx context.Context, s model.LeadScore) error
	LeadScore(ctx context.Context, leadID string) (model.LeadScore, error)
	// TopLeads returns up to n stored scores, highest total first
	TopLeads(ctx context.Context, n int) ([]model.LeadScore, error)
	SaveMatches(ctx context.Context, rec model.Recommendation) error
	Matches(ctx context.Context, loadID string) (model.Recommendation, error)
	Close() error
}

// New opens the backend selected by cfg
func New(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		s, err := NewRedisStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// verdictKey identifies a commodity by its normalized text so that
// "WINE" and "wine" share a stored verdict
func verdictKey(c model.CommodityRecord) string {
	key := model.NormalizeText(c.Name)
	if d := model.NormalizeText(c.Description); d != "" {
		key += "|" + d
	}
	return strings.ReplaceAll(key, " ", "_")
}
