package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/dispatcher/internal/cache"
	"github.com/ppiankov/dispatcher/internal/compliance"
	"github.com/ppiankov/dispatcher/internal/match"
	"github.com/ppiankov/dispatcher/internal/model"
	"github.com/ppiankov/dispatcher/internal/score"
)

// Classifier is the verdict source shared by every entry point
type Classifier interface {
	Classify(name, description string) model.ComplianceVerdict
	ClassifyRecord(rec model.CommodityRecord) model.ComplianceVerdict
}

// Engine is the decision engine. It holds only immutable configuration and
// is safe for concurrent use once constructed.
type Engine struct {
	cfg        *model.Config
	classifier Classifier
	qualifier  *score.Qualifier
	matcher    *match.Matcher
	logger     *slog.Logger
}

// Option customizes engine construction
type Option func(*options)

type options struct {
	cache  cache.Cache
	logger *slog.Logger
}

// WithCache memoizes compliance verdicts in c regardless of cache.enabled
func WithCache(c cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithLogger sets the logger for decision traces
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New validates the configuration and builds every component. An invalid
// rule base never produces an engine.
func New(cfg *model.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	base, err := compliance.NewClassifier(&cfg.Compliance)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	var classifier Classifier = base
	if o.cache == nil && cfg.Cache.Enabled {
		o.cache = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
	}
	if o.cache != nil {
		classifier = compliance.NewCachedClassifier(base, o.cache, cfg.Cache.TTL)
	}

	qualifier, err := score.NewQualifier(cfg.Qualification)
	if err != nil {
		return nil, fmt.Errorf("create qualifier: %w", err)
	}

	matcher, err := match.NewMatcher(cfg.Match, cfg.Commission, classifier)
	if err != nil {
		return nil, fmt.Errorf("create matcher: %w", err)
	}

	return &Engine{
		cfg:        cfg,
		classifier: classifier,
		qualifier:  qualifier,
		matcher:    matcher,
		logger:     o.logger,
	}, nil
}

// Config returns the validated configuration
func (e *Engine) Config() *model.Config {
	return e.cfg
}

// Classify returns the compliance verdict for a commodity
func (e *Engine) Classify(commodity model.CommodityRecord) model.ComplianceVerdict {
	v := e.classifier.ClassifyRecord(commodity)
	e.logger.Debug("classified commodity",
		"commodity", commodity.Name,
		"status", v.Status,
		"term", v.MatchedTerm)
	return v
}

// PartitionLoads buckets loads by compliance verdict
func (e *Engine) PartitionLoads(loads []model.LoadRecord) compliance.Partition {
	return compliance.PartitionLoads(e.classifier, loads)
}

// LoadStats summarizes compliance outcomes for loads
func (e *Engine) LoadStats(loads []model.LoadRecord) compliance.Stats {
	return compliance.LoadStats(e.classifier, loads)
}

// ScoreLead scores a lead with the configured weights
func (e *Engine) ScoreLead(lead model.LeadRecord) (model.LeadScore, error) {
	s, err := e.qualifier.Score(lead, e.cfg.Qualification.Weights)
	if err != nil {
		return model.LeadScore{}, err
	}
	e.logger.Debug("scored lead",
		"lead", lead.ID,
		"total", s.Total,
		"qualified", s.Qualified)
	return s, nil
}

// RankLeads scores and orders leads, best first
func (e *Engine) RankLeads(leads []model.LeadRecord) ([]model.RankedLead, error) {
	return e.qualifier.Rank(leads, e.cfg.Qualification.Weights)
}

// Summarize aggregates lead scores
func (e *Engine) Summarize(scores []model.LeadScore) model.QualificationSummary {
	return score.Summarize(scores)
}

// Match scores one carrier for one load
func (e *Engine) Match(load model.LoadRecord, carrier model.CarrierRecord) (model.MatchScore, error) {
	s, err := e.matcher.Match(load, carrier)
	if err != nil {
		return model.MatchScore{}, err
	}
	if s.Rejected {
		e.logger.Debug("load rejected", "load", load.ID, "reason", s.RejectionReason)
	}
	return s, nil
}

// RankCarriers returns eligible carriers for a load, best first
func (e *Engine) RankCarriers(load model.LoadRecord, carriers []model.CarrierRecord) ([]model.MatchScore, error) {
	return e.matcher.RankCarriers(load, carriers)
}

// Recommend ranks carriers for every load in parallel
func (e *Engine) Recommend(ctx context.Context, loads []model.LoadRecord, carriers []model.CarrierRecord) ([]model.Recommendation, error) {
	recs, err := e.matcher.Recommend(ctx, loads, carriers)
	if err != nil {
		return nil, err
	}

	rejected := 0
	for _, r := range recs {
		if r.Rejected {
			rejected++
		}
	}
	e.logger.Debug("recommendations ready",
		"loads", len(loads),
		"carriers", len(carriers),
		"rejected", rejected)
	return recs, nil
}

// Negotiate runs the negotiation state machine with the configured bounds
func (e *Engine) Negotiate(counterpartyOffer float64) ([]model.NegotiationState, error) {
	return e.NegotiateWith(counterpartyOffer, e.cfg.Negotiation)
}

// NegotiateWith runs the negotiation state machine with explicit bounds
func (e *Engine) NegotiateWith(counterpartyOffer float64, p model.NegotiationParams) ([]model.NegotiationState, error) {
	trace, err := match.Negotiate(counterpartyOffer, p)
	if err != nil {
		return nil, err
	}
	last := trace[len(trace)-1]
	e.logger.Debug("negotiation finished",
		"status", last.Status,
		"offer", last.CurrentOffer,
		"rounds", last.Round)
	return trace, nil
}
