// Package sequence issues per-salon sale sequence numbers. The authoritative
// counter lives in Redis so every terminal of a salon draws from the same
// series; when Redis is unreachable the sequencer falls back to a local
// counter seeded from the last number it handed out, so a checkout never
// blocks on the counter backend.
package sequence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const seqKeyPrefix = "sale_seq:"

var fallbackAllocations = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "pos_sale_sequence_fallback_total",
		Help: "Sale numbers issued from the local fallback counter while the shared counter was unreachable.",
	},
)

// Sequencer hands out monotonically increasing sale numbers per salon.
type Sequencer struct {
	client *redis.Client
	logger *slog.Logger

	mu        sync.Mutex
	lastKnown map[string]int64
}

// NewSequencer creates a sequencer backed by the given Redis client.
func NewSequencer(client *redis.Client, logger *slog.Logger) *Sequencer {
	return &Sequencer{
		client:    client,
		logger:    logger,
		lastKnown: make(map[string]int64),
	}
}

// Next returns the next sale number for salonID. The remote counter wins;
// if it cannot be reached the local last-known value is incremented instead
// and the degraded allocation is logged. Numbers from the fallback path can
// collide with numbers another terminal drew from Redis, which the business
// accepts in exchange for never losing a sale.
func (s *Sequencer) Next(ctx context.Context, salonID string) (int64, error) {
	n, err := s.client.Incr(ctx, seqKeyPrefix+salonID).Result()
	if err == nil {
		s.mu.Lock()
		if n > s.lastKnown[salonID] {
			s.lastKnown[salonID] = n
		}
		s.mu.Unlock()
		return n, nil
	}

	s.mu.Lock()
	s.lastKnown[salonID]++
	n = s.lastKnown[salonID]
	s.mu.Unlock()

	fallbackAllocations.Inc()
	s.logger.WarnContext(ctx, "sale counter unreachable, using local fallback",
		slog.String("salon_id", salonID),
		slog.Int64("sequence_number", n),
		slog.String("error", err.Error()),
	)

	return n, nil
}

// Peek reports the highest sequence number known for salonID without
// consuming one.
func (s *Sequencer) Peek(ctx context.Context, salonID string) (int64, error) {
	n, err := s.client.Get(ctx, seqKeyPrefix+salonID).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("peek sale counter: %w", err)
	}
	return n, nil
}
