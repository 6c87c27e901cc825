package usecase

import (
	"time"

	"github.com/stockwatch-tech/go-backend/internal/domain"
)

// CATALOG CLIENT

// CatalogProduct — товар со страницы bulk-выгрузки вместе с вариантами.
type CatalogProduct struct {
	ID       int64
	Title    string
	Variants []domain.ProductVariantSnapshot
}

// InventoryItem — точечная выборка inventory item (нужен только SKU).
type InventoryItem struct {
	ID  int64
	SKU string
}

// VariantDetails — результат SKU-поиска через GraphQL; идентификаторы уже
// нормализованы из составной gid-формы в числовые.
type VariantDetails struct {
	ProductID       int64
	VariantID       int64
	InventoryItemID int64
	ProductTitle    string
	VariantTitle    string
}

type Location struct {
	ID   int64
	Name string
}

type WebhookSubscription struct {
	ID      int64
	Topic   string
	Address string
}

// UserError — структурный бизнес-отказ мутации каталога (не исключение).
type UserError struct {
	Field   []string
	Message string
}

// OPERATOR ACTIONS

type UpdateQuantityRes struct {
	UserErrors        []UserError
	NewQuantity       int32
	RemovedFromMirror bool
}

type DeleteProductRes struct {
	UserErrors []UserError
}

// SYNC

// SyncStats — итог одного прохода полной сверки каталога.
type SyncStats struct {
	SyncedVariants  int
	SkippedVariants int
	DeletedVariants int
	CompletedAt     time.Time
}
