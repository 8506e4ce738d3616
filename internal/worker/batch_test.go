package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/dispatcher/internal/model"
)

// mockScorer implements LeadScorer. Leads with ID "bad" fail.
type mockScorer struct{}

func (m *mockScorer) ScoreLead(lead model.LeadRecord) (model.LeadScore, error) {
	time.Sleep(time.Millisecond) // Simulate work
	if lead.ID == "bad" {
		return model.LeadScore{}, &model.ValidationError{Field: "fleet_size", Msg: "must be at least 1"}
	}
	return model.LeadScore{LeadID: lead.ID, Total: float64(lead.FleetSize) / 100}, nil
}

func leads(ids ...string) []model.LeadRecord {
	out := make([]model.LeadRecord, len(ids))
	for i, id := range ids {
		out[i] = model.LeadRecord{ID: id, FleetSize: 10}
	}
	return out
}

func TestBatchScorer_ScoreLeads_Order(t *testing.T) {
	b := NewBatchScorer(&mockScorer{}, 3)

	in := make([]model.LeadRecord, 40)
	for i := range in {
		in[i] = model.LeadRecord{ID: string(rune('A' + i)), FleetSize: i + 1}
	}

	results := b.ScoreLeads(context.Background(), in)

	if len(results) != len(in) {
		t.Fatalf("expected %d results, got %d", len(in), len(results))
	}
	for i, r := range results {
		if r.Index != i || r.LeadID != in[i].ID {
			t.Errorf("position %d: got index %d lead %s", i, r.Index, r.LeadID)
		}
		if r.Error != nil {
			t.Errorf("unexpected error for %s: %v", r.LeadID, r.Error)
		}
	}
}

func TestBatchScorer_ScoreLeads_Error(t *testing.T) {
	b := NewBatchScorer(&mockScorer{}, 2)

	results := b.ScoreLeads(context.Background(), leads("a", "bad", "c"))

	if results[1].Error == nil {
		t.Fatal("expected error for bad lead")
	}
	if !errors.Is(results[1].Error, model.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", results[1].Error)
	}
	if failed := Failed(results); len(failed) != 1 || failed[0].LeadID != "bad" {
		t.Errorf("unexpected failures: %+v", failed)
	}
}

func TestBatchScorer_ScoreLeads_Empty(t *testing.T) {
	b := NewBatchScorer(&mockScorer{}, 2)

	results := b.ScoreLeads(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchScorer_ScoreLeads_Cancelled(t *testing.T) {
	b := NewBatchScorer(&mockScorer{}, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := b.ScoreLeads(ctx, leads("a", "b", "c", "d"))

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("lead %s: expected context.Canceled, got %v", r.LeadID, r.Error)
		}
	}
}

func TestBatchScorer_RankLeads(t *testing.T) {
	b := NewBatchScorer(&mockScorer{}, 4)

	in := []model.LeadRecord{
		{ID: "low", FleetSize: 10},
		{ID: "high", FleetSize: 90},
		{ID: "tie-1", FleetSize: 50},
		{ID: "tie-2", FleetSize: 50},
	}

	ranked, err := b.RankLeads(context.Background(), in)
	if err != nil {
		t.Fatalf("RankLeads: %v", err)
	}

	want := []string{"high", "tie-1", "tie-2", "low"}
	for i, id := range want {
		if ranked[i].Lead.ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, ranked[i].Lead.ID)
		}
	}

	if _, err := b.RankLeads(context.Background(), leads("a", "bad")); err == nil {
		t.Error("expected error when a lead fails")
	}
}

func TestScoreResult_GetError(t *testing.T) {
	r1 := &ScoreResult{LeadID: "a"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("score failed")
	r2 := &ScoreResult{LeadID: "a", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
