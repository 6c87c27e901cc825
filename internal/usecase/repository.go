package usecase

import (
	"context"

	"github.com/stockwatch-tech/go-backend/internal/domain"
)

// ProductRepository — хранилище локального зеркала.
// Методы Get* возвращают (nil, nil), если записи нет.
type ProductRepository interface {
	GetByInventoryItemID(ctx context.Context, inventoryItemID int64) (*domain.Product, error)
	GetByProductID(ctx context.Context, productID int64) (*domain.Product, error)

	// GetForUpdate блокирует строку (SELECT ... FOR UPDATE) внутри текущей
	// транзакции, чтобы чтение состояния троттлинга и запись количества
	// были одним атомарным действием.
	GetForUpdate(ctx context.Context, inventoryItemID int64) (*domain.Product, error)

	// Upsert создаёт или обновляет запись по inventory_item_id (внутри транзакции).
	Upsert(ctx context.Context, product *domain.Product) (*domain.Product, error)

	// SetNotifiedState фиксирует состояние троттлинга (внутри той же транзакции,
	// что и запись количества).
	SetNotifiedState(ctx context.Context, id int64, level, group int32) error

	SetQuantity(ctx context.Context, id int64, quantity int32) error
	SetLocation(ctx context.Context, id int64, locationID int64) error

	DeleteByInventoryItemID(ctx context.Context, inventoryItemID int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
}

// AlertRepository — append-only журналы уведомлений.
type AlertRepository interface {
	LogAttempt(ctx context.Context, log *domain.AlertLog) error
	CreateInventoryAlert(ctx context.Context, alert *domain.InventoryAlert) error
}

// RecipientRepository — зарегистрированные получатели уведомлений.
type RecipientRepository interface {
	ListEmails(ctx context.Context) ([]string, error)
}

// DedupLocker — краткоживущая эксклюзивная аренда по inventory_item_id.
type DedupLocker interface {
	Acquire(ctx context.Context, inventoryItemID int64) (bool, error)
}
