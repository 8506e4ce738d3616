package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ppiankov/dispatcher/internal/model"
)

// RedisStore keeps decisions in Redis as JSON values. Lead totals are
// mirrored into a sorted set for TopLeads.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects and pings the server
func NewRedisStore(ctx context.Context, cfg model.StoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.RedisAddr, err)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "dispatcher:v1"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

func (r *RedisStore) key(kind, id string) string {
	return r.prefix + ":" + kind + ":" + id
}

func (r *RedisStore) rankingKey() string {
	return r.prefix + ":lead_ranking"
}

func (r *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisStore) getJSON(ctx context.Context, key string, v any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) SaveVerdict(ctx context.Context, commodity model.CommodityRecord, v model.ComplianceVerdict) error {
	return r.setJSON(ctx, r.key("verdict", verdictKey(commodity)), v)
}

func (r *RedisStore) Verdict(ctx context.Context, commodity model.CommodityRecord) (model.ComplianceVerdict, error) {
	var v model.ComplianceVerdict
	err := r.getJSON(ctx, r.key("verdict", verdictKey(commodity)), &v)
	return v, err
}

func (r *RedisStore) SaveLeadScore(ctx context.Context, s model.LeadScore) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode lead score: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key("lead", s.LeadID), data, r.ttl)
	pipe.ZAdd(ctx, r.rankingKey(), redis.Z{Score: s.Total, Member: s.LeadID})
	if r.ttl > 0 {
		pipe.Expire(ctx, r.rankingKey(), r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) LeadScore(ctx context.Context, leadID string) (model.LeadScore, error) {
	var s model.LeadScore
	err := r.getJSON(ctx, r.key("lead", leadID), &s)
	return s, err
}

// TopLeads skips ranking entries whose score value has expired
func (r *RedisStore) TopLeads(ctx context.Context, n int) ([]model.LeadScore, error) {
	if n == 0 {
		return []model.LeadScore{}, nil
	}
	stop := int64(n - 1)
	if n < 0 {
		stop = -1
	}

	ids, err := r.client.ZRevRange(ctx, r.rankingKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read ranking: %w", err)
	}
	if len(ids) == 0 {
		return []model.LeadScore{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key("lead", id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read lead scores: %w", err)
	}

	out := make([]model.LeadScore, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var s model.LeadScore
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *RedisStore) SaveMatches(ctx context.Context, rec model.Recommendation) error {
	return r.setJSON(ctx, r.key("matches", rec.Load.ID), rec)
}

func (r *RedisStore) Matches(ctx context.Context, loadID string) (model.Recommendation, error) {
	var rec model.Recommendation
	err := r.getJSON(ctx, r.key("matches", loadID), &rec)
	return rec, err
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ Store = (*RedisStore)(nil)
