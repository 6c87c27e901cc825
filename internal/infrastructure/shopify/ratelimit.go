package shopify

import (
	"context"
	"fmt"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/pkg/clients"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

// Классы бюджета: у REST и GraphQL отдельные лимиты.
const (
	rateClassRest    = "rest"
	rateClassGraphQL = "graphql"
)

// rateLimiter — фиксированное минутное окно поверх Redis (INCR + EXPIRE).
// Счётчик разделяется всеми экземплярами сервиса, поэтому бюджет не
// умножается при горизонтальном масштабировании.
type rateLimiter struct {
	client     *clients.RedisClient
	limits     map[string]int
	retryAfter time.Duration
	logger     logger.Logger
}

func newRateLimiter(client *clients.RedisClient, restLimit, graphqlLimit int, retryAfter time.Duration, logger logger.Logger) *rateLimiter {
	return &rateLimiter{
		client: client,
		limits: map[string]int{
			rateClassRest:    restLimit,
			rateClassGraphQL: graphqlLimit,
		},
		retryAfter: retryAfter,
		logger:     logger,
	}
}

// acquire блокирует вызов, пока в текущем окне не появится бюджет.
func (r *rateLimiter) acquire(ctx context.Context, class string) error {
	limit, ok := r.limits[class]
	if !ok || limit <= 0 {
		return nil
	}

	for {
		key := fmt.Sprintf("ratelimit:shopify:%s:%d", class, time.Now().Unix()/60)

		count, err := r.client.Client.Incr(ctx, key).Result()
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		if count == 1 {
			// Первый запрос окна задаёт ему срок жизни.
			if err := r.client.Client.Expire(ctx, key, 90*time.Second).Err(); err != nil {
				return e.Wrap(whereami.WhereAmI(), err)
			}
		}

		if count <= int64(limit) {
			return nil
		}

		r.logger.Warnf("rate limit reached for %s api, sleeping %v", class, r.retryAfter)
		select {
		case <-time.After(r.retryAfter):
		case <-ctx.Done():
			return e.Wrap(whereami.WhereAmI(), ctx.Err())
		}
	}
}
