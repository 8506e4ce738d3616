package match

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/dispatcher/internal/model"
)

// Recommend ranks carriers for every load concurrently. Results keep the
// input order of loads. The first error cancels the remaining work.
func (m *Matcher) Recommend(ctx context.Context, loads []model.LoadRecord, carriers []model.CarrierRecord) ([]model.Recommendation, error) {
	recs := make([]model.Recommendation, len(loads))
	if len(loads) == 0 {
		return recs, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)

	limit := max(m.cfg.MaxConcurrent, 0)
	sem := make(chan struct{}, limit)

	for i := range loads {
		eg.Go(func() error {
			if limit > 0 {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-egCtx.Done():
					return egCtx.Err()
				}
			}
			if err := egCtx.Err(); err != nil {
				return err
			}

			scores, g, err := m.rank(loads[i], carriers)
			if err != nil {
				return err
			}
			recs[i] = model.Recommendation{
				Load:       loads[i],
				Verdict:    g.verdict,
				Rejected:   g.rejected,
				Reason:     g.reason,
				Candidates: scores,
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return recs, nil
}
