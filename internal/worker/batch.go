package worker

import (
	"context"
	"fmt"

	"github.com/ppiankov/dispatcher/internal/model"
	"github.com/ppiankov/dispatcher/internal/score"
)

// LeadScorer defines the interface for scoring one lead
type LeadScorer interface {
	ScoreLead(lead model.LeadRecord) (model.LeadScore, error)
}

// ScoreJob scores the lead at Index of a batch
type ScoreJob struct {
	Index  int
	Lead   model.LeadRecord
	Scorer LeadScorer
}

// Execute executes the score job
func (j *ScoreJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ScoreResult{Index: j.Index, LeadID: j.Lead.ID, Error: err}
	}
	s, err := j.Scorer.ScoreLead(j.Lead)
	return &ScoreResult{
		Index:  j.Index,
		LeadID: j.Lead.ID,
		Score:  s,
		Error:  err,
	}
}

// ScoreResult represents the result of a score job
type ScoreResult struct {
	Index  int
	LeadID string
	Score  model.LeadScore
	Error  error
}

// GetError returns the error from the score result
func (r *ScoreResult) GetError() error {
	return r.Error
}

// BatchScorer scores many leads concurrently
type BatchScorer struct {
	scorer      LeadScorer
	concurrency int
}

// NewBatchScorer creates a new batch scorer
func NewBatchScorer(scorer LeadScorer, concurrency int) *BatchScorer {
	return &BatchScorer{
		scorer:      scorer,
		concurrency: concurrency,
	}
}

// ScoreLeads scores every lead and returns one result per lead, in input
// order. Leads never reached because ctx ended carry ctx's error.
func (b *BatchScorer) ScoreLeads(ctx context.Context, leads []model.LeadRecord) []*ScoreResult {
	out := make([]*ScoreResult, len(leads))
	if len(leads) == 0 {
		return out
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	jobs := make([]Job, len(leads))
	for i, lead := range leads {
		jobs[i] = &ScoreJob{Index: i, Lead: lead, Scorer: b.scorer}
	}

	for _, r := range pool.Run(jobs) {
		sr := r.(*ScoreResult)
		out[sr.Index] = sr
	}

	for i := range out {
		if out[i] != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		out[i] = &ScoreResult{Index: i, LeadID: leads[i].ID, Error: err}
	}
	return out
}

// RankLeads scores leads concurrently and orders them best first, ties in
// input order. The lowest-index failure is returned.
func (b *BatchScorer) RankLeads(ctx context.Context, leads []model.LeadRecord) ([]model.RankedLead, error) {
	results := b.ScoreLeads(ctx, leads)

	ranked := make([]model.RankedLead, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			return nil, fmt.Errorf("rank lead %d: %w", r.Index, r.Error)
		}
		ranked = append(ranked, model.RankedLead{Lead: leads[r.Index], Score: r.Score})
	}

	score.SortRanked(ranked)
	return ranked, nil
}

// Failed returns the results that carry an error, in input order
func Failed(results []*ScoreResult) []*ScoreResult {
	var failed []*ScoreResult
	for _, r := range results {
		if r.Error != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
