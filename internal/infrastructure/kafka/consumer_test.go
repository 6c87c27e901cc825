package kafka

import (
	"context"
	"encoding/json"
	"testing"

	segmentio "github.com/segmentio/kafka-go"
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

type recordingInventoryUC struct {
	levels  []*domain.InventoryLevelEvent
	updates []*domain.ProductUpdateEvent
	deletes []*domain.ProductDeleteEvent
	err     error
}

func (r *recordingInventoryUC) ProcessInventoryLevel(ctx context.Context, ev *domain.InventoryLevelEvent) error {
	r.levels = append(r.levels, ev)
	return r.err
}

func (r *recordingInventoryUC) ProcessProductUpdate(ctx context.Context, ev *domain.ProductUpdateEvent) error {
	r.updates = append(r.updates, ev)
	return r.err
}

func (r *recordingInventoryUC) ProcessProductDelete(ctx context.Context, ev *domain.ProductDeleteEvent) error {
	r.deletes = append(r.deletes, ev)
	return r.err
}

func newTestConsumer(uc *recordingInventoryUC) *Consumer {
	return NewConsumer(uc, noopLogger{}, &cfg.KafkaCfg{MaxAttempts: 2})
}

func envelopeMessage(t *testing.T, kind domain.WebhookKind, payload string) *segmentio.Message {
	t.Helper()

	value, err := json.Marshal(domain.EventEnvelope{
		EventID: "ev-1",
		Kind:    kind,
		Payload: json.RawMessage(payload),
	})
	require.NoError(t, err)
	return &segmentio.Message{Value: value}
}

func TestHandleMessage_InventoryUpdate(t *testing.T) {
	uc := &recordingInventoryUC{}
	c := newTestConsumer(uc)

	msg := envelopeMessage(t, domain.KindInventoryUpdate,
		`{"inventory_item_id":100,"available":3,"location_id":42}`)

	err := c.handleMessage(context.Background(), msg)

	require.NoError(t, err)
	require.Len(t, uc.levels, 1)
	assert.Equal(t, "ev-1", uc.levels[0].EventID)
	assert.Equal(t, int64(100), uc.levels[0].InventoryItemID)
	assert.Equal(t, int32(3), uc.levels[0].Available)
	assert.Equal(t, int64(42), uc.levels[0].LocationID)
}

func TestHandleMessage_StringInventoryItemID(t *testing.T) {
	uc := &recordingInventoryUC{}
	c := newTestConsumer(uc)

	msg := envelopeMessage(t, domain.KindInventoryUpdate,
		`{"inventory_item_id":"100","available":3}`)

	err := c.handleMessage(context.Background(), msg)

	require.NoError(t, err)
	require.Len(t, uc.levels, 1)
	assert.Equal(t, int64(100), uc.levels[0].InventoryItemID)
}

func TestHandleMessage_MissingAvailableDefaultsToZero(t *testing.T) {
	uc := &recordingInventoryUC{}
	c := newTestConsumer(uc)

	msg := envelopeMessage(t, domain.KindInventoryUpdate, `{"inventory_item_id":100}`)

	err := c.handleMessage(context.Background(), msg)

	require.NoError(t, err)
	require.Len(t, uc.levels, 1)
	assert.Equal(t, int32(0), uc.levels[0].Available)
}

func TestHandleMessage_ProductUpdate(t *testing.T) {
	uc := &recordingInventoryUC{}
	c := newTestConsumer(uc)

	msg := envelopeMessage(t, domain.KindProductUpdate, `{
		"id": 55,
		"title": "Widget",
		"variants": [
			{"id":51,"inventory_item_id":501,"title":"Blue","sku":"SKU-1","inventory_quantity":4,"price":"19.99"}
		]
	}`)

	err := c.handleMessage(context.Background(), msg)

	require.NoError(t, err)
	require.Len(t, uc.updates, 1)
	assert.Equal(t, int64(55), uc.updates[0].ProductID)
	require.Len(t, uc.updates[0].Variants, 1)
	assert.Equal(t, int64(501), uc.updates[0].Variants[0].InventoryItemID)
	assert.Equal(t, "19.99", uc.updates[0].Variants[0].Price)
}

func TestHandleMessage_ProductDelete(t *testing.T) {
	uc := &recordingInventoryUC{}
	c := newTestConsumer(uc)

	msg := envelopeMessage(t, domain.KindProductDelete, `{"id":55}`)

	err := c.handleMessage(context.Background(), msg)

	require.NoError(t, err)
	require.Len(t, uc.deletes, 1)
	assert.Equal(t, int64(55), uc.deletes[0].ProductID)
}

func TestHandleMessage_MalformedEnvelope(t *testing.T) {
	uc := &recordingInventoryUC{}
	c := newTestConsumer(uc)

	err := c.handleMessage(context.Background(), &segmentio.Message{Value: []byte("not json")})

	assert.Error(t, err)
	assert.Empty(t, uc.levels)
}

func TestHandleMessage_RetriesThenGivesUp(t *testing.T) {
	uc := &recordingInventoryUC{err: assert.AnError}
	c := newTestConsumer(uc)

	msg := envelopeMessage(t, domain.KindProductDelete, `{"id":55}`)

	err := c.handleMessage(context.Background(), msg)

	assert.Error(t, err)
	// MaxAttempts=2: одна повторная попытка поверх первой.
	assert.Len(t, uc.deletes, 2)
}
