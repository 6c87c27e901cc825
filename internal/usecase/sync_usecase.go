package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/stockwatch-tech/go-backend/internal/cfg"
	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/jitter"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

// SyncUseCase — полная постраничная сверка каталога. Самовосстановление после
// пропущенных вебхуков: каждый upsert идёт через тот же путь записи, что и
// push-события, поэтому poll и push дают одинаковое поведение уведомлений.
type SyncUseCase struct {
	catalog     CatalogClient
	applier     QuantityApplier
	productRepo ProductRepository
	cfg         *cfg.SyncCfg
	logger      logger.Logger

	// Одновременно выполняется не более одного прохода.
	running atomic.Bool
}

func NewSyncUC(
	catalog CatalogClient,
	applier QuantityApplier,
	productRepo ProductRepository,
	cfg *cfg.SyncCfg,
	logger logger.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		catalog:     catalog,
		applier:     applier,
		productRepo: productRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// RunFullSync выполняет один проход сверки: выгрузка страниц по since_id,
// пропуск вариантов без SKU, удаление записей выше потолка, upsert остальных.
// Отмена проверяется на границе страницы.
func (s *SyncUseCase) RunFullSync(ctx context.Context) (*SyncStats, error) {
	const op = "SyncUseCase.RunFullSync"

	if !s.running.CompareAndSwap(false, true) {
		return nil, e.ErrSyncAlreadyRunning
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	s.logger.Infof("catalog sync started, page_size: %d", s.cfg.PageSize)

	stats := &SyncStats{}
	var sinceID int64

	for {
		select {
		case <-ctx.Done():
			return stats, e.Wrap(op, ctx.Err())
		default:
		}

		page, err := s.catalog.GetProducts(ctx, s.cfg.PageSize, sinceID)
		if err != nil {
			return stats, e.Wrap(op, err)
		}
		if len(page) == 0 {
			break
		}

		previousSinceID := sinceID
		for _, product := range page {
			if product.ID > sinceID {
				sinceID = product.ID
			}

			if err := s.syncProduct(ctx, &product, stats); err != nil {
				return stats, e.Wrap(op, err)
			}
		}

		// Защита от зацикливания при несогласованности API: курсор обязан
		// продвигаться между итерациями.
		if sinceID <= previousSinceID {
			s.logger.Warnf("%v, since_id: %d", e.ErrSinceIDNotProgressing, sinceID)
			break
		}

		select {
		case <-time.After(s.cfg.PageDelay):
		case <-ctx.Done():
			return stats, e.Wrap(op, ctx.Err())
		}
	}

	stats.CompletedAt = time.Now()
	s.logger.Infof("catalog sync completed, synced: %d, skipped: %d, deleted: %d",
		stats.SyncedVariants, stats.SkippedVariants, stats.DeletedVariants)

	return stats, nil
}

func (s *SyncUseCase) syncProduct(ctx context.Context, product *CatalogProduct, stats *SyncStats) error {
	if len(product.Variants) == 0 {
		s.logger.Debugf("skipping product without variants, title: %s", product.Title)
		stats.SkippedVariants++
		return nil
	}

	for _, v := range product.Variants {
		if v.SKU == "" {
			s.logger.Debugf("skipping variant with empty SKU, product: %s, variant: %d", product.Title, v.VariantID)
			stats.SkippedVariants++
			continue
		}

		if v.Quantity > s.cfg.Ceiling {
			deleted, err := s.productRepo.DeleteByInventoryItemID(ctx, v.InventoryItemID)
			if err != nil {
				return err
			}
			if deleted {
				s.logger.Infof("product removed during sync (quantity above ceiling), sku: %s, quantity: %d",
					v.SKU, v.Quantity)
				stats.DeletedVariants++
			} else {
				stats.SkippedVariants++
			}
			continue
		}

		incoming := &domain.Product{
			InventoryItemID: v.InventoryItemID,
			ProductID:       product.ID,
			VariantID:       v.VariantID,
			ProductTitle:    product.Title,
			VariantTitle:    v.Title,
			SKU:             v.SKU,
			Quantity:        v.Quantity,
			Price:           parsePrice(v.Price),
			LastSyncedAt:    time.Now(),
		}

		if err := s.applier.ApplyVariantQuantity(ctx, incoming); err != nil {
			return err
		}
		stats.SyncedVariants++
	}

	return nil
}

// Running сообщает, идёт ли сейчас проход сверки.
func (s *SyncUseCase) Running() bool {
	return s.running.Load()
}

// RunWithRetry — обёртка уровня задания: бюджет повторов на весь проход,
// а не на страницу. Используется планировщиком и ручным триггером.
func (s *SyncUseCase) RunWithRetry(ctx context.Context) {
	const (
		baseBackoff = 5 * time.Second
		maxBackoff  = 2 * time.Minute
	)

	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		_, err := s.RunFullSync(ctx)
		if err == nil {
			return
		}
		if errors.Is(err, e.ErrSyncAlreadyRunning) {
			s.logger.Warnf("catalog sync skipped: already running")
			return
		}

		if attempt == s.cfg.MaxAttempts-1 {
			s.logger.Errorf(err, "catalog sync failed after %d attempts", s.cfg.MaxAttempts)
			return
		}

		sleep := jitter.ExponentialBackoff(baseBackoff, maxBackoff, attempt, jitter.DefaultJitter)
		s.logger.Warnf("catalog sync attempt %d failed, retrying in %v: %v", attempt+1, sleep, err)

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return
		}
	}
}

var _ SyncUC = (*SyncUseCase)(nil)
