// Package redis caches the parsed catalog so restarts and scheduled reloads
// do not always pay three round trips to the backing repository. The cache
// is strictly best-effort: every miss or failure falls through to a real
// load.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gitdex/gitdex/internal/catalog"
	"github.com/gitdex/gitdex/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Store handles Redis operations for the catalog cache.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis store. ttl <= 0 falls back to
// DefaultSnapshotTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Store{client: client, ttl: ttl}
}

// GetSnapshot retrieves the cached catalog snapshot. The second return is
// false on a cache miss.
func (s *Store) GetSnapshot(ctx context.Context) (*catalog.Snapshot, bool, error) {
	data, err := s.client.Get(ctx, KeySnapshot).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap catalog.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.Revisions == nil {
		snap.Revisions = map[string]string{}
	}
	return &snap, true, nil
}

// SetSnapshot stores the catalog snapshot with the configured TTL.
func (s *Store) SetSnapshot(ctx context.Context, snap *catalog.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, KeySnapshot, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Invalidate removes the cached snapshot.
func (s *Store) Invalidate(ctx context.Context) error {
	if err := s.client.Del(ctx, KeySnapshot).Err(); err != nil {
		return fmt.Errorf("failed to invalidate snapshot: %w", err)
	}
	return nil
}

// CacheAnalysis stores a page analysis keyed by canonical URL.
func (s *Store) CacheAnalysis(ctx context.Context, url string, site domain.Site) error {
	data, err := json.Marshal(site)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	if err := s.client.Set(ctx, AnalysisKey(url), data, DefaultAnalysisTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}
	return nil
}

// GetCachedAnalysis retrieves a cached page analysis. The second return is
// false on a cache miss.
func (s *Store) GetCachedAnalysis(ctx context.Context, url string) (domain.Site, bool, error) {
	data, err := s.client.Get(ctx, AnalysisKey(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Site{}, false, nil
		}
		return domain.Site{}, false, fmt.Errorf("failed to get cached analysis: %w", err)
	}

	var site domain.Site
	if err := json.Unmarshal(data, &site); err != nil {
		return domain.Site{}, false, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return site, true, nil
}
