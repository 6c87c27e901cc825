package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/internal/cfg"
	"github.com/stockwatch-tech/go-backend/pkg/clients"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

// UpstreamError — не-2xx ответ каталога как типизированное значение.
// Вызывающий код различает транспортный сбой и бизнес-отказ (userErrors)
// без разбора текста ошибки.
type UpstreamError struct {
	Status int
	Body   string
}

func (u *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", u.Status, u.Body)
}

// Client — клиент Shopify Admin API (REST + GraphQL) c общим лимитером.
type Client struct {
	http    *http.Client
	cfg     *cfg.ShopifyCfg
	limiter *rateLimiter
	logger  logger.Logger

	// baseURL переопределяется в тестах; в бою строится из StoreDomain.
	baseURL string
}

func NewClient(shopifyCfg *cfg.ShopifyCfg, redisClient *clients.RedisClient, logger logger.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		cfg: shopifyCfg,
		limiter: newRateLimiter(
			redisClient,
			shopifyCfg.RestRateLimit,
			shopifyCfg.GraphQLRateLimit,
			shopifyCfg.RateRetryAfter,
			logger,
		),
		logger:  logger,
		baseURL: fmt.Sprintf("https://%s/admin/api/%s", shopifyCfg.StoreDomain, shopifyCfg.APIVersion),
	}
}

// doRequest выполняет один запрос под бюджетом лимитера и декодирует
// JSON-ответ в out (если out != nil).
func (c *Client) doRequest(ctx context.Context, rateClass, method, url string, body, out any) error {
	if err := c.limiter.acquire(ctx, rateClass); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.cfg.AdminToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &UpstreamError{Status: res.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

func (c *Client) restURL(path string) string {
	return c.baseURL + path
}
