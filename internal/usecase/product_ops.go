package usecase

import (
	"context"

	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

// ProductOpsUseCase — ручные действия оператора: проталкивание количества в
// удалённый каталог и удаление товара. userErrors мутаций возвращаются как
// значения и показываются оператору, а не бросаются как ошибки.
type ProductOpsUseCase struct {
	productRepo ProductRepository
	catalog     CatalogClient
	dispatcher  NotificationDispatcher
	logger      logger.Logger
	ceiling     int32
}

func NewProductOpsUC(
	productRepo ProductRepository,
	catalog CatalogClient,
	dispatcher NotificationDispatcher,
	logger logger.Logger,
	ceiling int32,
) *ProductOpsUseCase {
	return &ProductOpsUseCase{
		productRepo: productRepo,
		catalog:     catalog,
		dispatcher:  dispatcher,
		logger:      logger,
		ceiling:     ceiling,
	}
}

// UpdateQuantity записывает новое количество сначала в удалённый каталог,
// затем в зеркало. Выше потолка — запись покидает зеркало.
func (p *ProductOpsUseCase) UpdateQuantity(ctx context.Context, inventoryItemID int64, quantity int32) (*UpdateQuantityRes, error) {
	const op = "ProductOpsUseCase.UpdateQuantity"

	if quantity < 0 {
		return nil, e.ErrInvalidQuantity
	}

	product, err := p.productRepo.GetByInventoryItemID(ctx, inventoryItemID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if product == nil {
		return nil, e.ErrProductNotFound
	}

	// У записей, созданных из bulk-выгрузки, location может отсутствовать.
	if product.LocationID == 0 {
		locations, err := p.catalog.GetLocations(ctx)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		if len(locations) == 0 {
			return nil, e.ErrNoLocations
		}

		product.LocationID = locations[0].ID
		if err := p.productRepo.SetLocation(ctx, product.ID, product.LocationID); err != nil {
			return nil, e.Wrap(op, err)
		}
		p.logger.Infof("location resolved for sku %s: %d", product.SKU, product.LocationID)
	}

	userErrs, err := p.catalog.SetInventoryQuantity(ctx, product.InventoryItemID, product.LocationID, quantity)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(userErrs) > 0 {
		p.logger.Warnf("inventory mutation rejected, sku: %s: %s", product.SKU, userErrs[0].Message)
		return &UpdateQuantityRes{UserErrors: userErrs}, nil
	}

	if quantity > p.ceiling {
		if err := p.productRepo.DeleteByID(ctx, product.ID); err != nil {
			return nil, e.Wrap(op, err)
		}
		p.logger.Infof("product removed from mirror (quantity above ceiling), sku: %s", product.SKU)
		return &UpdateQuantityRes{NewQuantity: quantity, RemovedFromMirror: true}, nil
	}

	if err := p.productRepo.SetQuantity(ctx, product.ID, quantity); err != nil {
		return nil, e.Wrap(op, err)
	}

	p.dispatcher.DispatchQuantityUpdated(ctx, product, quantity)

	p.logger.Infof("quantity updated, sku: %s, new_quantity: %d", product.SKU, quantity)
	return &UpdateQuantityRes{NewQuantity: quantity}, nil
}

// DeleteProduct удаляет товар из удалённого каталога и из зеркала.
func (p *ProductOpsUseCase) DeleteProduct(ctx context.Context, productID int64) (*DeleteProductRes, error) {
	const op = "ProductOpsUseCase.DeleteProduct"

	product, err := p.productRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if product == nil {
		return nil, e.ErrProductNotFound
	}

	userErrs, err := p.catalog.DeleteProduct(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(userErrs) > 0 {
		p.logger.Warnf("product delete rejected, sku: %s: %s", product.SKU, userErrs[0].Message)
		return &DeleteProductRes{UserErrors: userErrs}, nil
	}

	p.dispatcher.DispatchProductDeleted(ctx, product, "Dashboard Manual Action")

	if err := p.productRepo.DeleteByID(ctx, product.ID); err != nil {
		return nil, e.Wrap(op, err)
	}

	p.logger.Infof("product deleted remotely and locally, sku: %s", product.SKU)
	return &DeleteProductRes{}, nil
}

var _ ProductOpsUC = (*ProductOpsUseCase)(nil)
var _ InventoryUC = (*InventoryUseCase)(nil)
