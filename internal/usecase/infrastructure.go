package usecase

import (
	"context"

	"github.com/stockwatch-tech/go-backend/internal/domain"
)

// CatalogClient — типизированный доступ к удалённому каталогу (REST + GraphQL).
// Каждый вызов проходит через лимитер запросов; не-2xx ответы возвращаются
// как типизированная UpstreamError.
type CatalogClient interface {
	GetProducts(ctx context.Context, limit int, sinceID int64) ([]CatalogProduct, error)
	GetInventoryItem(ctx context.Context, inventoryItemID int64) (*InventoryItem, error)
	GetLocations(ctx context.Context) ([]Location, error)

	// GetVariantBySKU возвращает (nil, nil), если вариант не найден.
	GetVariantBySKU(ctx context.Context, sku string) (*VariantDetails, error)

	// Мутации возвращают userErrors как значения, не как ошибки Go:
	// это бизнес-отказ каталога, видимый оператору.
	SetInventoryQuantity(ctx context.Context, inventoryItemID, locationID int64, quantity int32) ([]UserError, error)
	DeleteProduct(ctx context.Context, productID int64) ([]UserError, error)

	ListWebhooks(ctx context.Context) ([]WebhookSubscription, error)
	RegisterWebhook(ctx context.Context, topic, address string) (*WebhookSubscription, error)
	DeleteWebhook(ctx context.Context, id int64) error
}

// Mailer — транспорт исходящей почты; механика доставки вне зоны
// ответственности этого модуля.
type Mailer interface {
	Send(ctx context.Context, to string, cc []string, subject, body string) error
}

// EventProducer кладёт конверт события в очередь заданий.
// Ключ партиционирования — inventory_item_id (или product_id), чтобы события
// одного товара попадали в одну партицию.
type EventProducer interface {
	Enqueue(ctx context.Context, envelope *domain.EventEnvelope, key int64) error
}
