package usecase

import (
	"context"

	"github.com/stockwatch-tech/go-backend/internal/domain"
)

// InventoryUC — обработка событий каталога, приходящих из очереди.
type InventoryUC interface {
	ProcessInventoryLevel(ctx context.Context, ev *domain.InventoryLevelEvent) error
	ProcessProductUpdate(ctx context.Context, ev *domain.ProductUpdateEvent) error
	ProcessProductDelete(ctx context.Context, ev *domain.ProductDeleteEvent) error
}

// ProductOpsUC — ручные действия оператора над зеркалом и удалённым каталогом.
type ProductOpsUC interface {
	UpdateQuantity(ctx context.Context, inventoryItemID int64, quantity int32) (*UpdateQuantityRes, error)
	DeleteProduct(ctx context.Context, productID int64) (*DeleteProductRes, error)
}

// SyncUC — полная сверка каталога (по расписанию и вручную).
type SyncUC interface {
	RunFullSync(ctx context.Context) (*SyncStats, error)
	RunWithRetry(ctx context.Context)
	Running() bool
}

// NotificationDispatcher рассылает уведомления всем получателям и пишет аудит.
// Сбой отправки одному получателю не блокирует остальных.
type NotificationDispatcher interface {
	// DispatchLowStock возвращает sent=false, если список получателей пуст
	// (это не ошибка — состояние троттлинга в таком случае не обновляется).
	DispatchLowStock(ctx context.Context, product *domain.Product, level, available int32) (sent bool, err error)
	DispatchQuantityUpdated(ctx context.Context, product *domain.Product, newQuantity int32)
	DispatchProductDeleted(ctx context.Context, product *domain.Product, source string)
}

// QuantityApplier — общий путь записи количества: и вебхуки, и сверка каталога
// обязаны проходить через одну и ту же точку, чтобы push и poll давали
// одинаковое поведение уведомлений.
type QuantityApplier interface {
	ApplyVariantQuantity(ctx context.Context, incoming *domain.Product) error
}
