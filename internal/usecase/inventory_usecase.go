package usecase

import (
	"context"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

// InventoryUseCase — идемпотентный обработчик событий каталога.
// Безопасен при конкурентной/повторной доставке одного inventory_item_id:
// перед мутацией локального состояния берётся краткоживущая аренда,
// дубликат внутри окна аренды отбрасывается.
type InventoryUseCase struct {
	productRepo ProductRepository
	locker      DedupLocker
	catalog     CatalogClient
	dispatcher  NotificationDispatcher
	dbPool      transaction.Transactional
	logger      logger.Logger
	ceiling     int32
}

func NewInventoryUC(
	productRepo ProductRepository,
	locker DedupLocker,
	catalog CatalogClient,
	dispatcher NotificationDispatcher,
	dbPool transaction.Transactional,
	logger logger.Logger,
	ceiling int32,
) *InventoryUseCase {
	return &InventoryUseCase{
		productRepo: productRepo,
		locker:      locker,
		catalog:     catalog,
		dispatcher:  dispatcher,
		dbPool:      dbPool,
		logger:      logger,
		ceiling:     ceiling,
	}
}

// ProcessInventoryLevel обрабатывает событие inventory_levels/update.
// Ошибки шагов выборки/записи поднимаются наверх — их ретраит воркер очереди;
// сбой чистого удаления (шаг потолка) логируется, но не ретраится, чтобы
// не устраивать шторм уведомлений из-за повторов удаления.
func (u *InventoryUseCase) ProcessInventoryLevel(ctx context.Context, ev *domain.InventoryLevelEvent) error {
	const op = "InventoryUseCase.ProcessInventoryLevel"

	acquired, err := u.locker.Acquire(ctx, ev.InventoryItemID)
	if err != nil {
		return e.Wrap(op, err)
	}
	if !acquired {
		u.logger.Infof("duplicate delivery dropped, inventory_item_id: %d, event: %s",
			ev.InventoryItemID, ev.EventID)
		return nil
	}

	// 1. Выше потолка — товар покидает зону риска: удаляем и выходим,
	// без уведомлений и без внешних запросов.
	if ev.Available > u.ceiling {
		deleted, err := u.productRepo.DeleteByInventoryItemID(ctx, ev.InventoryItemID)
		if err != nil {
			u.logger.Errorf(err, "ceiling delete failed, inventory_item_id: %d", ev.InventoryItemID)
			return nil
		}
		if deleted {
			u.logger.Infof("quantity above ceiling, removed from mirror, inventory_item_id: %d, available: %d",
				ev.InventoryItemID, ev.Available)
		}
		return nil
	}

	// 2. Разрешение SKU: сначала уже известная запись, затем точечная выборка.
	known, err := u.productRepo.GetByInventoryItemID(ctx, ev.InventoryItemID)
	if err != nil {
		return e.Wrap(op, err)
	}

	var sku string
	if known != nil {
		sku = known.SKU
	}
	if sku == "" {
		item, err := u.catalog.GetInventoryItem(ctx, ev.InventoryItemID)
		if err != nil {
			return e.Wrap(op, err)
		}
		if item != nil {
			sku = item.SKU
		}
	}
	if sku == "" {
		// Товары без SKU не отслеживаются.
		u.logger.Warnf("skipping inventory item without SKU, inventory_item_id: %d", ev.InventoryItemID)
		return nil
	}

	incoming := &domain.Product{
		InventoryItemID: ev.InventoryItemID,
		SKU:             sku,
		Quantity:        ev.Available,
		LocationID:      ev.LocationID,
		LastSyncedAt:    time.Now(),
	}

	// 3. Описательные поля через SKU-поиск; неудача не валит событие.
	details, err := u.catalog.GetVariantBySKU(ctx, sku)
	switch {
	case err != nil:
		u.logger.Warnf("variant lookup failed, sku: %s: %v", sku, err)
		fallthrough
	case details == nil:
		if err == nil {
			u.logger.Warnf("variant not found via SKU lookup, sku: %s", sku)
		}
		incoming.ProductTitle = domain.PlaceholderProductTitle
		incoming.VariantTitle = domain.PlaceholderVariantTitle
	default:
		incoming.ProductID = details.ProductID
		incoming.VariantID = details.VariantID
		incoming.ProductTitle = details.ProductTitle
		incoming.VariantTitle = details.VariantTitle
	}

	// 4-5. Upsert + движок порогов в одной транзакции.
	if err := u.ApplyVariantQuantity(ctx, incoming); err != nil {
		return e.Wrap(op, err)
	}

	u.logger.Infof("inventory update processed, sku: %s, quantity: %d", sku, ev.Available)
	return nil
}

// ProcessProductUpdate прогоняет варианты из payload'а products/update через
// тот же путь записи, что и инвентарные вебхуки.
func (u *InventoryUseCase) ProcessProductUpdate(ctx context.Context, ev *domain.ProductUpdateEvent) error {
	const op = "InventoryUseCase.ProcessProductUpdate"

	for _, v := range ev.Variants {
		if v.SKU == "" {
			u.logger.Debugf("skipping variant without SKU, product: %d, variant: %d", ev.ProductID, v.VariantID)
			continue
		}

		if v.Quantity > u.ceiling {
			deleted, err := u.productRepo.DeleteByInventoryItemID(ctx, v.InventoryItemID)
			if err != nil {
				return e.Wrap(op, err)
			}
			if deleted {
				u.logger.Infof("variant above ceiling removed, sku: %s, quantity: %d", v.SKU, v.Quantity)
			}
			continue
		}

		incoming := &domain.Product{
			InventoryItemID: v.InventoryItemID,
			ProductID:       ev.ProductID,
			VariantID:       v.VariantID,
			ProductTitle:    ev.Title,
			VariantTitle:    v.Title,
			SKU:             v.SKU,
			Quantity:        v.Quantity,
			Price:           parsePrice(v.Price),
			LastSyncedAt:    time.Now(),
		}

		if err := u.ApplyVariantQuantity(ctx, incoming); err != nil {
			return e.Wrap(op, err)
		}
	}

	return nil
}

// ProcessProductDelete убирает зеркальную запись удалённого товара и
// уведомляет получателей. Сбои почты здесь не фатальны.
func (u *InventoryUseCase) ProcessProductDelete(ctx context.Context, ev *domain.ProductDeleteEvent) error {
	const op = "InventoryUseCase.ProcessProductDelete"

	product, err := u.productRepo.GetByProductID(ctx, ev.ProductID)
	if err != nil {
		return e.Wrap(op, err)
	}
	if product == nil {
		u.logger.Infof("product-delete for untracked product, product_id: %d", ev.ProductID)
		return nil
	}

	u.dispatcher.DispatchProductDeleted(ctx, product, "Shopify Webhook")

	if err := u.productRepo.DeleteByID(ctx, product.ID); err != nil {
		return e.Wrap(op, err)
	}

	u.logger.Infof("product removed from mirror after remote delete, sku: %s", product.SKU)
	return nil
}

// ApplyVariantQuantity — единая точка записи количества.
// Upsert, чтение прежнего состояния троттлинга, решение движка порогов и
// фиксация нового состояния происходят в одной pgx-транзакции: две почти
// одновременные доставки не могут обе решить «уведомить» для одного пересечения.
func (u *InventoryUseCase) ApplyVariantQuantity(ctx context.Context, incoming *domain.Product) error {
	const op = "InventoryUseCase.ApplyVariantQuantity"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, u.dbPool)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	prev, err := u.productRepo.GetForUpdate(ctx, incoming.InventoryItemID)
	if err != nil {
		return e.Wrap(op, err)
	}

	saved, err := u.productRepo.Upsert(ctx, incoming)
	if err != nil {
		return e.Wrap(op, err)
	}

	var lastLevel, lastGroup *int32
	var prevQuantity *int32
	if prev != nil {
		lastLevel = prev.LastNotifiedThreshold
		lastGroup = prev.LastNotifiedGroup
		prevQuantity = &prev.Quantity
	}

	cls, inBand := classifyThreshold(incoming.Quantity)
	switch {
	case inBand && shouldNotify(cls, lastLevel, lastGroup):
		var sent bool
		sent, err = u.dispatcher.DispatchLowStock(ctx, saved, cls.level, incoming.Quantity)
		if err != nil {
			return e.Wrap(op, err)
		}
		if sent {
			if err = u.productRepo.SetNotifiedState(ctx, saved.ID, cls.level, cls.group); err != nil {
				return e.Wrap(op, err)
			}
		}
	case !inBand && lastGroup != nil && prevQuantity != nil && incoming.Quantity > *prevQuantity:
		// Восстановление выше порога: только наблюдаемость, без рассылки.
		u.logger.Infof("quantity recovered above thresholds, sku: %s, %d -> %d",
			incoming.SKU, *prevQuantity, incoming.Quantity)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func parsePrice(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
