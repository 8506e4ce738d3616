package store

import (
	"context"
	"sort"
	"sync"

	"github.com/ppiankov/dispatcher/internal/model"
)

// MemoryStore keeps decisions in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	verdicts map[string]model.ComplianceVerdict
	scores   map[string]model.LeadScore
	matches  map[string]model.Recommendation
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		verdicts: make(map[string]model.ComplianceVerdict),
		scores:   make(map[string]model.LeadScore),
		matches:  make(map[string]model.Recommendation),
	}
}

func (m *MemoryStore) SaveVerdict(_ context.Context, commodity model.CommodityRecord, v model.ComplianceVerdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts[verdictKey(commodity)] = v
	return nil
}

func (m *MemoryStore) Verdict(_ context.Context, commodity model.CommodityRecord) (model.ComplianceVerdict, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.verdicts[verdictKey(commodity)]
	if !ok {
		return model.ComplianceVerdict{}, ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) SaveLeadScore(_ context.Context, s model.LeadScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[s.LeadID] = s
	return nil
}

func (m *MemoryStore) LeadScore(_ context.Context, leadID string) (model.LeadScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scores[leadID]
	if !ok {
		return model.LeadScore{}, ErrNotFound
	}
	return s, nil
}

// TopLeads breaks ties by lead ID, descending, the way a Redis sorted set
// does for ZREVRANGE
func (m *MemoryStore) TopLeads(_ context.Context, n int) ([]model.LeadScore, error) {
	m.mu.RLock()
	out := make([]model.LeadScore, 0, len(m.scores))
	for _, s := range m.scores {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].LeadID > out[j].LeadID
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}

func (m *MemoryStore) SaveMatches(_ context.Context, rec model.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[rec.Load.ID] = rec
	return nil
}

func (m *MemoryStore) Matches(_ context.Context, loadID string) (model.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.matches[loadID]
	if !ok {
		return model.Recommendation{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
