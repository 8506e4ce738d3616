package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/dispatcher/internal/model"
)

// funcScorer adapts a function to LeadScorer
type funcScorer func(lead model.LeadRecord) (model.LeadScore, error)

func (f funcScorer) ScoreLead(lead model.LeadRecord) (model.LeadScore, error) {
	return f(lead)
}

func scoreJobs(scorer LeadScorer, in []model.LeadRecord) []Job {
	jobs := make([]Job, len(in))
	for i, lead := range in {
		jobs[i] = &ScoreJob{Index: i, Lead: lead, Scorer: scorer}
	}
	return jobs
}

func numberedLeads(n int) []model.LeadRecord {
	out := make([]model.LeadRecord, n)
	for i := range out {
		out[i] = model.LeadRecord{ID: fmt.Sprintf("lead-%03d", i), FleetSize: 1 + i%20}
	}
	return out
}

func TestNewPool(t *testing.T) {
	ctx := context.Background()

	if p := NewPool(ctx, 5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(ctx, 0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(ctx, -1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_RunTagsResultsWithIndex(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()
	defer pool.Shutdown()

	in := numberedLeads(300)
	results := pool.Run(scoreJobs(&mockScorer{}, in))

	if len(results) != len(in) {
		t.Fatalf("expected %d results, got %d", len(in), len(results))
	}
	seen := make([]bool, len(in))
	for _, r := range results {
		sr, ok := r.(*ScoreResult)
		if !ok {
			t.Fatalf("expected *ScoreResult, got %T", r)
		}
		if seen[sr.Index] {
			t.Errorf("index %d reported twice", sr.Index)
		}
		seen[sr.Index] = true
		if sr.LeadID != in[sr.Index].ID || sr.Score.LeadID != in[sr.Index].ID {
			t.Errorf("index %d carries lead %s, want %s", sr.Index, sr.LeadID, in[sr.Index].ID)
		}
	}
}

func TestPool_RunReportsLeadErrors(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	defer pool.Shutdown()

	results := pool.Run(scoreJobs(&mockScorer{}, leads("a", "bad", "c")))

	var failed []*ScoreResult
	for _, r := range results {
		if r.GetError() != nil {
			failed = append(failed, r.(*ScoreResult))
		}
	}
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed lead, got %d", len(failed))
	}
	if failed[0].Index != 1 || !errors.Is(failed[0].Error, model.ErrValidation) {
		t.Errorf("unexpected failure %+v", failed[0])
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	const workers = 3
	var current, peak int32

	scorer := funcScorer(func(lead model.LeadRecord) (model.LeadScore, error) {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return model.LeadScore{LeadID: lead.ID}, nil
	})

	pool := NewPool(context.Background(), workers)
	pool.Start()
	defer pool.Shutdown()

	results := pool.Run(scoreJobs(scorer, numberedLeads(30)))

	if len(results) != 30 {
		t.Errorf("expected 30 results, got %d", len(results))
	}
	if p := atomic.LoadInt32(&peak); p > workers {
		t.Errorf("peak concurrency %d exceeded %d workers", p, workers)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	for i := 0; i < 200; i++ {
		pool := NewPool(context.Background(), 2)
		pool.Start()
		pool.Shutdown()

		if pool.Submit(&ScoreJob{Lead: model.LeadRecord{ID: "late", FleetSize: 1}, Scorer: &mockScorer{}}) {
			t.Fatalf("attempt %d: Submit accepted a job after Shutdown", i)
		}
	}
}

func TestPool_SubmitAfterRun(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	defer pool.Shutdown()

	pool.Run(scoreJobs(&mockScorer{}, leads("a", "b")))

	if pool.Submit(&ScoreJob{Lead: model.LeadRecord{ID: "late", FleetSize: 1}, Scorer: &mockScorer{}}) {
		t.Error("expected Submit to refuse jobs once Run closed the queue")
	}
}

func TestPool_CancelMidBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	scorer := funcScorer(func(lead model.LeadRecord) (model.LeadScore, error) {
		if atomic.AddInt32(&calls, 1) == 5 {
			cancel()
		}
		return model.LeadScore{LeadID: lead.ID}, nil
	})

	pool := NewPool(ctx, 2)
	pool.Start()
	defer pool.Shutdown()

	in := numberedLeads(200)
	done := make(chan []Result)
	go func() { done <- pool.Run(scoreJobs(scorer, in)) }()

	var results []Result
	select {
	case results = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the batch context was cancelled")
	}

	scored := 0
	for _, r := range results {
		if err := r.GetError(); err != nil {
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
			continue
		}
		scored++
	}
	if scored >= len(in) {
		t.Errorf("expected cancellation to stop the batch early, scored %d of %d", scored, len(in))
	}
}
