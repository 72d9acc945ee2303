package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/safespace-labs/safespace/pkg/analyzer"
)

const (
	alertsKey  = "safespace:alerts"
	blockedKey = "safespace:blocked"
)

// Store keeps alerts in a Redis list, newest first, capped in length and
// pruned by age. It also maintains the blocklist of flagged accounts.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	cap int64
}

// NewStore connects to Redis. ttl bounds alert age, cap bounds history
// length.
func NewStore(addr, password string, ttl time.Duration, capacity int64) *Store {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &Store{
		rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		ttl: ttl,
		cap: capacity,
	}
}

// NewStoreWithClient wraps an existing client, used by tests.
func NewStoreWithClient(rdb *redis.Client, ttl time.Duration, capacity int64) *Store {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &Store{rdb: rdb, ttl: ttl, cap: capacity}
}

// Ping verifies the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Add persists an alert at the head of the list and trims history to the
// configured capacity. A nil alert (safe verdict) is a no-op.
func (s *Store) Add(ctx context.Context, a *Alert) error {
	if a == nil {
		return nil
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, alertsKey, payload)
	pipe.LTrim(ctx, alertsKey, 0, s.cap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store alert: %w", err)
	}
	return nil
}

// List returns up to limit alerts, newest first, skipping entries older
// than the store TTL. limit <= 0 returns everything retained.
func (s *Store) List(ctx context.Context, limit int64) ([]Alert, error) {
	if limit <= 0 || limit > s.cap {
		limit = s.cap
	}
	raw, err := s.rdb.LRange(ctx, alertsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	cutoff := time.Now().Add(-s.ttl)
	alerts := make([]Alert, 0, len(raw))
	for _, item := range raw {
		var a Alert
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			continue
		}
		if a.Timestamp.Before(cutoff) {
			continue
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// BySeverity returns retained alerts matching one level, newest first.
func (s *Store) BySeverity(ctx context.Context, level analyzer.RiskLevel) ([]Alert, error) {
	all, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	matched := make([]Alert, 0, len(all))
	for _, a := range all {
		if a.Severity == level {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

// Remove deletes the alert with the given ID.
func (s *Store) Remove(ctx context.Context, id string) error {
	raw, err := s.rdb.LRange(ctx, alertsKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("load alerts: %w", err)
	}
	for _, item := range raw {
		var a Alert
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			continue
		}
		if a.ID == id {
			return s.rdb.LRem(ctx, alertsKey, 1, item).Err()
		}
	}
	return nil
}

// ClearExpired drops alerts older than the TTL by rewriting the list.
func (s *Store) ClearExpired(ctx context.Context) (int, error) {
	raw, err := s.rdb.LRange(ctx, alertsKey, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("load alerts: %w", err)
	}

	cutoff := time.Now().Add(-s.ttl)
	kept := make([]interface{}, 0, len(raw))
	removed := 0
	for _, item := range raw {
		var a Alert
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			removed++
			continue
		}
		if a.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0, nil
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, alertsKey)
	if len(kept) > 0 {
		pipe.RPush(ctx, alertsKey, kept...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rewrite alerts: %w", err)
	}
	return removed, nil
}

// Stats summarizes retained alerts.
type Stats struct {
	Total        int `json:"total"`
	HighRisk     int `json:"highRisk"`
	MediumRisk   int `json:"mediumRisk"`
	SuggestBlock int `json:"suggestBlock"`
}

// Summary computes counts over retained alerts.
func (s *Store) Summary(ctx context.Context) (Stats, error) {
	all, err := s.List(ctx, 0)
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	st.Total = len(all)
	for _, a := range all {
		switch a.Severity {
		case analyzer.RiskHigh:
			st.HighRisk++
		case analyzer.RiskMedium:
			st.MediumRisk++
		}
		if a.SuggestBlock {
			st.SuggestBlock++
		}
	}
	return st, nil
}

func accountID(username, platform string) string {
	if platform == "" {
		platform = "unknown"
	}
	return platform + ":" + username
}

// BlockAccount adds an account to the blocklist.
func (s *Store) BlockAccount(ctx context.Context, username, platform string) error {
	return s.rdb.SAdd(ctx, blockedKey, accountID(username, platform)).Err()
}

// UnblockAccount removes an account from the blocklist.
func (s *Store) UnblockAccount(ctx context.Context, username, platform string) error {
	return s.rdb.SRem(ctx, blockedKey, accountID(username, platform)).Err()
}

// IsBlocked reports whether an account is on the blocklist.
func (s *Store) IsBlocked(ctx context.Context, username, platform string) (bool, error) {
	return s.rdb.SIsMember(ctx, blockedKey, accountID(username, platform)).Result()
}

// BlockedAccounts returns every blocklisted account ID.
func (s *Store) BlockedAccounts(ctx context.Context) ([]string, error) {
	return s.rdb.SMembers(ctx, blockedKey).Result()
}
