package domain

import (
	"encoding/json"
	"strconv"

	"github.com/stockwatch-tech/go-backend/pkg/e"
)

// FlexInt64 — идентификатор, который апстрим присылает то числом, то строкой
// ("inventory_item_id": 100 и "inventory_item_id": "100" равнозначны).
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(data) >= 2 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}

	*f = FlexInt64(v)

	return nil
}

func (f FlexInt64) Int64() int64 {
	return int64(f)
}

// WebhookKind — закрытое перечисление поддерживаемых типов вебхуков.
// Неизвестные типы отклоняются на границе, а не игнорируются молча.
type WebhookKind string

const (
	KindInventoryUpdate WebhookKind = "inventory-update"
	KindProductUpdate   WebhookKind = "product-update"
	KindProductDelete   WebhookKind = "product-delete"
)

// ParseWebhookKind разбирает сегмент пути /webhooks/{type} ровно один раз.
func ParseWebhookKind(s string) (WebhookKind, error) {
	switch WebhookKind(s) {
	case KindInventoryUpdate, KindProductUpdate, KindProductDelete:
		return WebhookKind(s), nil
	default:
		return "", e.ErrUnknownWebhookType
	}
}

// EventEnvelope — конверт задания в очереди: тип события плюс сырой payload.
type EventEnvelope struct {
	EventID string          `json:"event_id"`
	Kind    WebhookKind     `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// InventoryLevelEvent — декодированное событие inventory_levels/update.
type InventoryLevelEvent struct {
	EventID         string
	InventoryItemID int64
	Available       int32
	LocationID      int64
}

// ProductDeleteEvent — событие products/delete.
type ProductDeleteEvent struct {
	EventID   string
	ProductID int64
}

// ProductUpdateEvent — событие products/update: payload уже содержит
// варианты с остатками, внешние запросы не требуются.
type ProductUpdateEvent struct {
	EventID   string
	ProductID int64
	Title     string
	Variants  []ProductVariantSnapshot
}

// ProductVariantSnapshot — вариант из payload'а products/update либо из
// страницы bulk-синхронизации.
type ProductVariantSnapshot struct {
	VariantID       int64
	InventoryItemID int64
	Title           string
	SKU             string
	Quantity        int32
	Price           string
}
