package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/pkg/clients"
	"github.com/stockwatch-tech/go-backend/pkg/e"
)

// LeaseRepo выдаёт краткоживущие эксклюзивные аренды через SET NX PX.
// Аренда не снимается явно: TTL сам схлопывает окно дедупликации.
type LeaseRepo struct {
	client *clients.RedisClient
	ttl    time.Duration
}

func NewLeaseRepo(client *clients.RedisClient, ttl time.Duration) *LeaseRepo {
	return &LeaseRepo{client: client, ttl: ttl}
}

// Acquire возвращает true, если аренда досталась нам; false — дубликат
// в пределах окна.
func (l *LeaseRepo) Acquire(ctx context.Context, inventoryItemID int64) (bool, error) {
	key := fmt.Sprintf("dedup:inv:%d", inventoryItemID)

	ok, err := l.client.Client.SetNX(ctx, key, 1, l.ttl).Result()
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return ok, nil
}
