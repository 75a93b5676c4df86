package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	apperrors "github.com/Carlos85Carvalho/luni-final-sub000/pkg/errors"
)

const (
	pendingKeyPrefix = "pending_sale:"
	salonIndexPrefix = "pending_sales:salon:"
)

// PendingSaleRepository implements repository.PendingSaleRepository using Redis.
// Each snapshot lives under its own key, with a per-salon set acting as the
// listing index. Snapshots carry no TTL: a parked sale stays until it is
// recovered or deleted.
type PendingSaleRepository struct {
	client *redis.Client
}

// NewPendingSaleRepository creates a new Redis-backed pending-sale repository.
func NewPendingSaleRepository(client *redis.Client) *PendingSaleRepository {
	return &PendingSaleRepository{client: client}
}

// Save persists a pending-sale snapshot and registers it in the salon index.
func (r *PendingSaleRepository) Save(ctx context.Context, pending *domain.PendingSale) error {
	key := pendingKeyPrefix + pending.ID

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending sale: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, salonIndexPrefix+pending.SalonID, pending.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save pending sale: %w", err)
	}

	return nil
}

// Get retrieves a pending-sale snapshot by id.
func (r *PendingSaleRepository) Get(ctx context.Context, id string) (*domain.PendingSale, error) {
	data, err := r.client.Get(ctx, pendingKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("pending sale", id)
		}
		return nil, fmt.Errorf("redis get pending sale: %w", err)
	}

	var pending domain.PendingSale
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("unmarshal pending sale: %w", err)
	}

	return &pending, nil
}

// List returns every pending-sale snapshot parked for the given salon, newest
// first. Index entries whose snapshot has since been deleted are pruned.
func (r *PendingSaleRepository) List(ctx context.Context, salonID string) ([]domain.PendingSale, error) {
	ids, err := r.client.SMembers(ctx, salonIndexPrefix+salonID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list pending sales: %w", err)
	}

	pendings := make([]domain.PendingSale, 0, len(ids))
	for _, id := range ids {
		pending, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				r.client.SRem(ctx, salonIndexPrefix+salonID, id)
				continue
			}
			return nil, err
		}
		pendings = append(pendings, *pending)
	}

	sort.Slice(pendings, func(i, j int) bool {
		return pendings[i].CreatedAt.After(pendings[j].CreatedAt)
	})
	return pendings, nil
}

// Delete removes a pending-sale snapshot and its index entry.
func (r *PendingSaleRepository) Delete(ctx context.Context, id string) error {
	pending, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, pendingKeyPrefix+id)
	pipe.SRem(ctx, salonIndexPrefix+pending.SalonID, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete pending sale: %w", err)
	}

	return nil
}
