package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stockwatch-tech/go-backend/internal/cfg"
	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...any)            {}
func (noopLogger) Infof(format string, args ...any)             {}
func (noopLogger) Warnf(format string, args ...any)             {}
func (noopLogger) Errorf(err error, format string, args ...any) {}

type capturingProducer struct {
	envelopes []*domain.EventEnvelope
	keys      []int64
	err       error
}

func (c *capturingProducer) Enqueue(ctx context.Context, envelope *domain.EventEnvelope, key int64) error {
	if c.err != nil {
		return c.err
	}
	c.envelopes = append(c.envelopes, envelope)
	c.keys = append(c.keys, key)
	return nil
}

func testShopifyCfg() *cfg.ShopifyCfg {
	return &cfg.ShopifyCfg{
		StoreDomain:    "test-store.myshopify.com",
		WebhookSecrets: []string{"webhook-secret", "api-secret"},
	}
}

func newWebhookRouter(producer *capturingProducer) *chi.Mux {
	h := NewWebhookHandler(producer, testShopifyCfg(), noopLogger{})
	r := chi.NewRouter()
	r.Post("/webhooks/{type}", h.receiveWebhook)
	return r
}

func postWebhook(t *testing.T, router *chi.Mux, path string, body []byte, secret string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	if secret != "" {
		req.Header.Set("X-Shopify-Hmac-Sha256", signBody(body, secret))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestReceiveWebhook_Accepted(t *testing.T) {
	producer := &capturingProducer{}
	router := newWebhookRouter(producer)

	body := []byte(`{"inventory_item_id":100,"available":3,"location_id":42}`)
	rec := postWebhook(t, router, "/webhooks/inventory-update", body, "webhook-secret")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, producer.envelopes, 1)
	assert.Equal(t, domain.KindInventoryUpdate, producer.envelopes[0].Kind)
	assert.NotEmpty(t, producer.envelopes[0].EventID)
	assert.Equal(t, int64(100), producer.keys[0])
	assert.JSONEq(t, string(body), string(producer.envelopes[0].Payload))
}

func TestReceiveWebhook_StringInventoryItemIDAccepted(t *testing.T) {
	producer := &capturingProducer{}
	router := newWebhookRouter(producer)

	// Апстрим присылает inventory_item_id и строкой, и числом.
	body := []byte(`{"inventory_item_id":"100","available":3}`)
	rec := postWebhook(t, router, "/webhooks/inventory-update", body, "webhook-secret")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, producer.envelopes, 1)
	assert.Equal(t, int64(100), producer.keys[0])
}

func TestReceiveWebhook_SecondSecretAccepted(t *testing.T) {
	producer := &capturingProducer{}
	router := newWebhookRouter(producer)

	body := []byte(`{"id":55}`)
	rec := postWebhook(t, router, "/webhooks/product-delete", body, "api-secret")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, producer.envelopes, 1)
}

func TestReceiveWebhook_ForeignSecretRejected(t *testing.T) {
	producer := &capturingProducer{}
	router := newWebhookRouter(producer)

	body := []byte(`{"inventory_item_id":100,"available":3}`)
	rec := postWebhook(t, router, "/webhooks/inventory-update", body, "someone-else")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, producer.envelopes)
}

func TestReceiveWebhook_MissingSignatureRejected(t *testing.T) {
	producer := &capturingProducer{}
	router := newWebhookRouter(producer)

	body := []byte(`{"inventory_item_id":100}`)
	rec := postWebhook(t, router, "/webhooks/inventory-update", body, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReceiveWebhook_UnknownTypeRejected(t *testing.T) {
	producer := &capturingProducer{}
	router := newWebhookRouter(producer)

	body := []byte(`{"id":55}`)
	rec := postWebhook(t, router, "/webhooks/order-created", body, "webhook-secret")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, producer.envelopes)
}

func TestReceiveWebhook_MissingInventoryItemRejected(t *testing.T) {
	producer := &capturingProducer{}
	router := newWebhookRouter(producer)

	body := []byte(`{"available":3}`)
	rec := postWebhook(t, router, "/webhooks/inventory-update", body, "webhook-secret")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, producer.envelopes)
}

func TestReceiveWebhook_ForeignShopRejected(t *testing.T) {
	producer := &capturingProducer{}
	router := newWebhookRouter(producer)

	body := []byte(`{"inventory_item_id":100,"available":3}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/inventory-update", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", signBody(body, "webhook-secret"))
	req.Header.Set("X-Shopify-Shop-Domain", "other-store.myshopify.com")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, producer.envelopes)
}

func TestReceiveWebhook_EnqueueFailure(t *testing.T) {
	producer := &capturingProducer{err: assert.AnError}
	router := newWebhookRouter(producer)

	body := []byte(`{"inventory_item_id":100,"available":3}`)
	rec := postWebhook(t, router, "/webhooks/inventory-update", body, "webhook-secret")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
