package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product — строка локального зеркала Shopify-каталога.
// Зеркало хранит ТОЛЬКО товары «в зоне риска»: запись с количеством выше
// потолка удаляется, а не архивируется.
type Product struct {
	ID              int64
	InventoryItemID int64
	ProductID       int64
	VariantID       int64
	ProductTitle    string
	VariantTitle    string
	SKU             string
	Quantity        int32
	Price           *decimal.Decimal
	LocationID      int64

	// Состояние троттлинга уведомлений. Оба поля меняются только в той же
	// транзакции, что и Quantity, иначе две конкурентные доставки могут
	// обе решить «ещё не уведомляли».
	LastNotifiedThreshold *int32
	LastNotifiedGroup     *int32

	LastSyncedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

const (
	// PlaceholderProductTitle подставляется, когда SKU-поиск деталей не удался:
	// точность остатков важнее описательной полноты.
	PlaceholderProductTitle = "Unknown Product"
	PlaceholderVariantTitle = "Default Title"
)
