package compliance

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/dispatcher/internal/cache"
	"github.com/ppiankov/dispatcher/internal/model"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(nil)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func TestClassify_WineShipment(t *testing.T) {
	c := newTestClassifier(t)

	v := c.Classify("Wine shipment, 500 cases", "")

	if v.Status != model.StatusForbidden {
		t.Fatalf("expected FORBIDDEN, got %s (%s)", v.Status, v.Reason)
	}
	if !strings.Contains(strings.ToLower(v.Reason), "wine") {
		t.Errorf("expected reason to mention wine, got %q", v.Reason)
	}
	if v.MatchedTerm != "wine" {
		t.Errorf("expected matched term wine, got %q", v.MatchedTerm)
	}
}

func TestClassify_ForbiddenRegardlessOfCasing(t *testing.T) {
	c := newTestClassifier(t)

	inputs := []string{
		"BEER",
		"Craft Beer Kegs",
		"pallets of bEeR and soda",
		"Frozen PORK bellies",
		"Tobacco Products",
		"Cannabis Products",
		"e-cigarette cartridges",
		"E CIGARETTE cartridges",
		"Slot-Machine parts",
	}
	for _, in := range inputs {
		if v := c.ClassifyText(in); v.Status != model.StatusForbidden {
			t.Errorf("%q: expected FORBIDDEN, got %s", in, v.Status)
		}
	}
}

func TestClassify_DescriptionIsSearched(t *testing.T) {
	c := newTestClassifier(t)

	v := c.Classify("Mixed pallets", "includes bourbon")
	if v.Status != model.StatusForbidden {
		t.Errorf("expected FORBIDDEN from description, got %s", v.Status)
	}

	v = c.Classify("Meat Products", "Beef and chicken")
	if v.Status != model.StatusNeedsReview {
		t.Errorf("expected NEEDS_REVIEW for meat, got %s", v.Status)
	}
	if v.MatchedTerm != "meat" {
		t.Errorf("expected matched term meat, got %q", v.MatchedTerm)
	}
}

func TestClassify_ForbiddenBeatsAllowed(t *testing.T) {
	c := newTestClassifier(t)

	// "juice" is allowed, "wine" is forbidden; forbidden is checked first.
	v := c.ClassifyText("Juice and wine assortment")
	if v.Status != model.StatusForbidden {
		t.Errorf("expected FORBIDDEN, got %s", v.Status)
	}
}

func TestClassify_ReviewBeatsAllowed(t *testing.T) {
	c := newTestClassifier(t)

	v := c.Classify("Gelatin Products", "Candy manufacturing")
	if v.Status != model.StatusNeedsReview {
		t.Errorf("expected NEEDS_REVIEW, got %s", v.Status)
	}
}

func TestClassify_Allowed(t *testing.T) {
	c := newTestClassifier(t)

	for _, in := range []string{"Fresh Produce - Vegetables", "Electronics - TVs", "Medical Supplies", "Building Materials"} {
		v := c.ClassifyText(in)
		if v.Status != model.StatusAllowed {
			t.Errorf("%q: expected ALLOWED, got %s (%s)", in, v.Status, v.Reason)
		}
		if v.MatchedTerm == "" {
			t.Errorf("%q: expected matched term", in)
		}
	}
}

func TestClassify_UnknownNeverAllowed(t *testing.T) {
	c := newTestClassifier(t)

	v := c.ClassifyText("General Freight")
	if v.Status != model.StatusNeedsReview {
		t.Fatalf("expected NEEDS_REVIEW, got %s", v.Status)
	}
	if !strings.Contains(v.Reason, "Unrecognized") {
		t.Errorf("expected unrecognized reason, got %q", v.Reason)
	}
	if v.MatchedTerm != "" {
		t.Errorf("expected no matched term, got %q", v.MatchedTerm)
	}
}

func TestClassify_EmptyText(t *testing.T) {
	c := newTestClassifier(t)

	for _, in := range []string{"", "   ", "\t\n", "---"} {
		if v := c.ClassifyText(in); v.Status != model.StatusNeedsReview {
			t.Errorf("%q: expected NEEDS_REVIEW, got %s", in, v.Status)
		}
	}
}

func TestNewClassifier_RejectsOverlap(t *testing.T) {
	cfg := &model.ComplianceConfig{
		Forbidden: []string{"wine"},
		Review:    []string{"meat"},
		Allowed:   []string{"produce", "WINE"},
	}

	_, err := NewClassifier(cfg)
	if err == nil {
		t.Fatal("expected configuration error for overlapping tables")
	}
	if !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewClassifier_AlternateTables(t *testing.T) {
	cfg := &model.ComplianceConfig{
		Forbidden: []string{"widgets"},
		Review:    []string{"gadgets"},
		Allowed:   []string{"gizmos"},
	}
	c, err := NewClassifier(cfg)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	if v := c.ClassifyText("Wine"); v.Status != model.StatusNeedsReview {
		t.Errorf("expected wine to be unrecognized under alternate tables, got %s", v.Status)
	}
	if v := c.ClassifyText("Blue Widgets"); v.Status != model.StatusForbidden {
		t.Errorf("expected FORBIDDEN, got %s", v.Status)
	}
	if v := c.ClassifyText("gizmos"); v.Status != model.StatusAllowed {
		t.Errorf("expected ALLOWED, got %s", v.Status)
	}
}

func TestDefaultTablesDisjoint(t *testing.T) {
	allowed := make(map[string]bool)
	for _, term := range model.DefaultAllowedTerms {
		allowed[model.NormalizeText(term)] = true
	}
	for _, term := range model.DefaultForbiddenTerms {
		if allowed[model.NormalizeText(term)] {
			t.Errorf("term %q is in both forbidden and allowed tables", term)
		}
	}
}

func TestCachedClassifier_MatchesInner(t *testing.T) {
	inner := newTestClassifier(t)
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	c := NewCachedClassifier(inner, mem, 0)

	for _, in := range []string{"Wine shipment", "Fresh Produce", "General Freight", "Wine shipment"} {
		got := c.ClassifyText(in)
		want := inner.ClassifyText(in)
		if got != want {
			t.Errorf("%q: cached verdict %+v differs from %+v", in, got, want)
		}
	}

	if mem.Len() != 3 {
		t.Errorf("expected 3 cached verdicts, got %d", mem.Len())
	}
}

func TestPartitionLoads(t *testing.T) {
	c := newTestClassifier(t)
	loads := []model.LoadRecord{
		{ID: "1", Commodity: model.CommodityRecord{Name: "Steel Coils"}},
		{ID: "2", Commodity: model.CommodityRecord{Name: "Beer"}},
		{ID: "3", Commodity: model.CommodityRecord{Name: "General Freight"}},
		{ID: "4", Commodity: model.CommodityRecord{Name: "Furniture"}},
	}

	p := PartitionLoads(c, loads)
	if len(p.Allowed) != 2 || p.Allowed[0].ID != "1" || p.Allowed[1].ID != "4" {
		t.Errorf("unexpected allowed bucket: %+v", p.Allowed)
	}
	if len(p.Forbidden) != 1 || p.Forbidden[0].ID != "2" {
		t.Errorf("unexpected forbidden bucket: %+v", p.Forbidden)
	}
	if len(p.Review) != 1 || p.Review[0].ID != "3" {
		t.Errorf("unexpected review bucket: %+v", p.Review)
	}

	stats := LoadStats(c, loads)
	if stats.Total != 4 || stats.Allowed != 2 || stats.Forbidden != 1 || stats.ReviewNeeded != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.RejectionRate != 0.25 {
		t.Errorf("expected rejection rate 0.25, got %v", stats.RejectionRate)
	}
}

func TestLoadStats_Empty(t *testing.T) {
	c := newTestClassifier(t)
	if stats := LoadStats(c, nil); stats.Total != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}
