package cache

import (
	"context"
	"encoding/json"
	"lincognito/internal/domain/client"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const statsKeyPrefix = "client-stats:"

// StatsCache memoizes per-client post statistics until a post of that client changes.
// Cache errors are logged and treated as misses.
type StatsCache struct {
	store Store
	ttl   time.Duration
	log   *logrus.Logger
}

func NewStatsCache(store Store, ttl time.Duration, log *logrus.Logger) *StatsCache {
	return &StatsCache{store: store, ttl: ttl, log: log}
}

func statsKey(clientID uuid.UUID) string {
	return statsKeyPrefix + clientID.String()
}

func (s *StatsCache) Get(ctx context.Context, clientID uuid.UUID) (client.Stats, bool) {
	raw, ok, err := s.store.Get(ctx, statsKey(clientID))
	if err != nil {
		s.log.WithError(err).WithField("client_id", clientID).Warn("stats cache read failed")
		return client.Stats{}, false
	}
	if !ok {
		return client.Stats{}, false
	}

	var stats client.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return client.Stats{}, false
	}
	return stats, true
}

func (s *StatsCache) Set(ctx context.Context, clientID uuid.UUID, stats client.Stats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, statsKey(clientID), raw, s.ttl); err != nil {
		s.log.WithError(err).WithField("client_id", clientID).Warn("stats cache write failed")
	}
}

func (s *StatsCache) Invalidate(ctx context.Context, clientID uuid.UUID) {
	if err := s.store.Delete(ctx, statsKey(clientID)); err != nil {
		s.log.WithError(err).WithField("client_id", clientID).Warn("stats cache invalidate failed")
	}
}
