package usecase

import (
	"context"
	"testing"

	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newInventoryUC(
	productRepo *MockProductRepo,
	locker *MockLocker,
	catalog *MockCatalog,
	dispatcher *MockDispatcher,
) *InventoryUseCase {
	return NewInventoryUC(productRepo, locker, catalog, dispatcher, fakeTxPool{}, noopLogger{}, 20)
}

func TestProcessInventoryLevel_DuplicateDropped(t *testing.T) {
	productRepo := new(MockProductRepo)
	locker := new(MockLocker)
	catalog := new(MockCatalog)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, locker, catalog, dispatcher)

	locker.On("Acquire", mock.Anything, int64(100)).Return(false, nil)

	err := uc.ProcessInventoryLevel(context.Background(), &domain.InventoryLevelEvent{
		InventoryItemID: 100,
		Available:       3,
	})

	assert.NoError(t, err)
	productRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	dispatcher.AssertNotCalled(t, "DispatchLowStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessInventoryLevel_AboveCeilingDeletes(t *testing.T) {
	productRepo := new(MockProductRepo)
	locker := new(MockLocker)
	catalog := new(MockCatalog)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, locker, catalog, dispatcher)

	locker.On("Acquire", mock.Anything, int64(100)).Return(true, nil)
	productRepo.On("DeleteByInventoryItemID", mock.Anything, int64(100)).Return(true, nil)

	err := uc.ProcessInventoryLevel(context.Background(), &domain.InventoryLevelEvent{
		InventoryItemID: 100,
		Available:       21,
	})

	assert.NoError(t, err)
	productRepo.AssertCalled(t, "DeleteByInventoryItemID", mock.Anything, int64(100))
	catalog.AssertNotCalled(t, "GetInventoryItem", mock.Anything, mock.Anything)
	dispatcher.AssertNotCalled(t, "DispatchLowStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessInventoryLevel_CeilingDeleteErrorNotRetried(t *testing.T) {
	productRepo := new(MockProductRepo)
	locker := new(MockLocker)
	catalog := new(MockCatalog)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, locker, catalog, dispatcher)

	locker.On("Acquire", mock.Anything, int64(100)).Return(true, nil)
	productRepo.On("DeleteByInventoryItemID", mock.Anything, int64(100)).Return(false, assert.AnError)

	err := uc.ProcessInventoryLevel(context.Background(), &domain.InventoryLevelEvent{
		InventoryItemID: 100,
		Available:       50,
	})

	// Ошибка чистого удаления логируется, но наверх не поднимается.
	assert.NoError(t, err)
}

func TestProcessInventoryLevel_NoSKUSkipped(t *testing.T) {
	productRepo := new(MockProductRepo)
	locker := new(MockLocker)
	catalog := new(MockCatalog)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, locker, catalog, dispatcher)

	locker.On("Acquire", mock.Anything, int64(100)).Return(true, nil)
	productRepo.On("GetByInventoryItemID", mock.Anything, int64(100)).Return(nil, nil)
	catalog.On("GetInventoryItem", mock.Anything, int64(100)).Return(&InventoryItem{ID: 100, SKU: ""}, nil)

	err := uc.ProcessInventoryLevel(context.Background(), &domain.InventoryLevelEvent{
		InventoryItemID: 100,
		Available:       3,
	})

	assert.NoError(t, err)
	productRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestProcessInventoryLevel_PlaceholderOnLookupMiss(t *testing.T) {
	productRepo := new(MockProductRepo)
	locker := new(MockLocker)
	catalog := new(MockCatalog)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, locker, catalog, dispatcher)

	locker.On("Acquire", mock.Anything, int64(100)).Return(true, nil)
	productRepo.On("GetByInventoryItemID", mock.Anything, int64(100)).Return(nil, nil)
	catalog.On("GetInventoryItem", mock.Anything, int64(100)).Return(&InventoryItem{ID: 100, SKU: "SKU-1"}, nil)
	catalog.On("GetVariantBySKU", mock.Anything, "SKU-1").Return(nil, nil)

	productRepo.On("GetForUpdate", mock.Anything, int64(100)).Return(nil, nil)
	saved := &domain.Product{ID: 7, InventoryItemID: 100, SKU: "SKU-1", Quantity: 3}
	productRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ProductTitle == domain.PlaceholderProductTitle &&
			p.VariantTitle == domain.PlaceholderVariantTitle
	})).Return(saved, nil)
	dispatcher.On("DispatchLowStock", mock.Anything, saved, int32(3), int32(3)).Return(true, nil)
	productRepo.On("SetNotifiedState", mock.Anything, int64(7), int32(3), int32(5)).Return(nil)

	err := uc.ProcessInventoryLevel(context.Background(), &domain.InventoryLevelEvent{
		InventoryItemID: 100,
		Available:       3,
	})

	assert.NoError(t, err)
	productRepo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestApplyVariantQuantity_NotifiesOnFirstCrossing(t *testing.T) {
	productRepo := new(MockProductRepo)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, new(MockLocker), new(MockCatalog), dispatcher)

	incoming := &domain.Product{InventoryItemID: 100, SKU: "SKU-1", Quantity: 10}
	saved := &domain.Product{ID: 7, InventoryItemID: 100, SKU: "SKU-1", Quantity: 10}

	productRepo.On("GetForUpdate", mock.Anything, int64(100)).Return(nil, nil)
	productRepo.On("Upsert", mock.Anything, incoming).Return(saved, nil)
	dispatcher.On("DispatchLowStock", mock.Anything, saved, int32(10), int32(10)).Return(true, nil)
	productRepo.On("SetNotifiedState", mock.Anything, int64(7), int32(10), int32(10)).Return(nil)

	err := uc.ApplyVariantQuantity(context.Background(), incoming)

	assert.NoError(t, err)
	productRepo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestApplyVariantQuantity_ThrottledInsideGroup(t *testing.T) {
	productRepo := new(MockProductRepo)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, new(MockLocker), new(MockCatalog), dispatcher)

	prev := &domain.Product{
		ID:                    7,
		InventoryItemID:       100,
		SKU:                   "SKU-1",
		Quantity:              3,
		LastNotifiedThreshold: int32Ptr(3),
		LastNotifiedGroup:     int32Ptr(5),
	}
	incoming := &domain.Product{InventoryItemID: 100, SKU: "SKU-1", Quantity: 2}
	saved := &domain.Product{ID: 7, InventoryItemID: 100, SKU: "SKU-1", Quantity: 2}

	productRepo.On("GetForUpdate", mock.Anything, int64(100)).Return(prev, nil)
	productRepo.On("Upsert", mock.Anything, incoming).Return(saved, nil)

	err := uc.ApplyVariantQuantity(context.Background(), incoming)

	assert.NoError(t, err)
	dispatcher.AssertNotCalled(t, "DispatchLowStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	productRepo.AssertNotCalled(t, "SetNotifiedState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyVariantQuantity_EmptyRecipientsKeepThrottleState(t *testing.T) {
	productRepo := new(MockProductRepo)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, new(MockLocker), new(MockCatalog), dispatcher)

	incoming := &domain.Product{InventoryItemID: 100, SKU: "SKU-1", Quantity: 10}
	saved := &domain.Product{ID: 7, InventoryItemID: 100, SKU: "SKU-1", Quantity: 10}

	productRepo.On("GetForUpdate", mock.Anything, int64(100)).Return(nil, nil)
	productRepo.On("Upsert", mock.Anything, incoming).Return(saved, nil)
	// sent=false: рассылки не было, состояние троттлинга остаётся прежним.
	dispatcher.On("DispatchLowStock", mock.Anything, saved, int32(10), int32(10)).Return(false, nil)

	err := uc.ApplyVariantQuantity(context.Background(), incoming)

	assert.NoError(t, err)
	productRepo.AssertNotCalled(t, "SetNotifiedState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessProductUpdate_MixedVariants(t *testing.T) {
	productRepo := new(MockProductRepo)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, new(MockLocker), new(MockCatalog), dispatcher)

	// Вариант выше потолка удаляется, вариант без SKU пропускается,
	// вариант в зоне риска проходит общий путь записи.
	productRepo.On("DeleteByInventoryItemID", mock.Anything, int64(201)).Return(true, nil)
	productRepo.On("GetForUpdate", mock.Anything, int64(202)).Return(nil, nil)
	saved := &domain.Product{ID: 9, InventoryItemID: 202, SKU: "SKU-B", Quantity: 4}
	productRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.InventoryItemID == 202 && p.Quantity == 4
	})).Return(saved, nil)
	dispatcher.On("DispatchLowStock", mock.Anything, saved, int32(4), int32(4)).Return(true, nil)
	productRepo.On("SetNotifiedState", mock.Anything, int64(9), int32(4), int32(5)).Return(nil)

	err := uc.ProcessProductUpdate(context.Background(), &domain.ProductUpdateEvent{
		ProductID: 55,
		Title:     "Widget",
		Variants: []domain.ProductVariantSnapshot{
			{VariantID: 1, InventoryItemID: 201, SKU: "SKU-A", Quantity: 100},
			{VariantID: 2, InventoryItemID: 0, SKU: "", Quantity: 2},
			{VariantID: 3, InventoryItemID: 202, SKU: "SKU-B", Quantity: 4, Price: "19.99"},
		},
	})

	assert.NoError(t, err)
	productRepo.AssertExpectations(t)
}

func TestProcessProductDelete(t *testing.T) {
	productRepo := new(MockProductRepo)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, new(MockLocker), new(MockCatalog), dispatcher)

	tracked := &domain.Product{ID: 7, ProductID: 55, SKU: "SKU-1", Quantity: 3}
	productRepo.On("GetByProductID", mock.Anything, int64(55)).Return(tracked, nil)
	dispatcher.On("DispatchProductDeleted", mock.Anything, tracked, "Shopify Webhook").Return()
	productRepo.On("DeleteByID", mock.Anything, int64(7)).Return(nil)

	err := uc.ProcessProductDelete(context.Background(), &domain.ProductDeleteEvent{ProductID: 55})

	assert.NoError(t, err)
	productRepo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestProcessProductDelete_Untracked(t *testing.T) {
	productRepo := new(MockProductRepo)
	dispatcher := new(MockDispatcher)
	uc := newInventoryUC(productRepo, new(MockLocker), new(MockCatalog), dispatcher)

	productRepo.On("GetByProductID", mock.Anything, int64(55)).Return(nil, nil)

	err := uc.ProcessProductDelete(context.Background(), &domain.ProductDeleteEvent{ProductID: 55})

	assert.NoError(t, err)
	dispatcher.AssertNotCalled(t, "DispatchProductDeleted", mock.Anything, mock.Anything, mock.Anything)
}
