package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/tr"
)

const productColumns = `
	id, inventory_item_id, product_id, variant_id, product_title, variant_title,
	sku, quantity, price::text, location_id, last_notified_threshold,
	last_notified_threshold_group, last_synced_at, created_at, updated_at
`

// selectProductQuery собирает SELECT по products; перевод строки в конце
// productColumns отделяет список колонок от FROM.
func selectProductQuery(clause string) string {
	return `SELECT` + productColumns + `FROM products ` + clause
}

// ProductRepo реализует хранилище локального зеркала поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (p *ProductRepo) GetByInventoryItemID(ctx context.Context, inventoryItemID int64) (*domain.Product, error) {
	query := selectProductQuery(`WHERE inventory_item_id = $1`)
	return p.queryOne(ctx, query, inventoryItemID)
}

func (p *ProductRepo) GetByProductID(ctx context.Context, productID int64) (*domain.Product, error) {
	query := selectProductQuery(`WHERE product_id = $1 LIMIT 1`)
	return p.queryOne(ctx, query, productID)
}

// GetForUpdate читает и блокирует строку внутри текущей транзакции:
// состояние троттлинга и количество меняются как одно атомарное действие.
func (p *ProductRepo) GetForUpdate(ctx context.Context, inventoryItemID int64) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := selectProductQuery(`WHERE inventory_item_id = $1 FOR UPDATE`)

	var model productModel
	err = scanProduct(tx.QueryRow(ctx, query, inventoryItemID), &model)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return model.toEntity(), nil
}

// Upsert идемпотентно создаёт или обновляет запись по inventory_item_id
// (внутри транзакции). Пустой location_id и отсутствующая цена не затирают
// ранее известные значения.
func (p *ProductRepo) Upsert(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO products (
			inventory_item_id, product_id, variant_id, product_title,
			variant_title, sku, quantity, price, location_id, last_synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (inventory_item_id)
		DO UPDATE SET
			product_id = EXCLUDED.product_id,
			variant_id = EXCLUDED.variant_id,
			product_title = EXCLUDED.product_title,
			variant_title = EXCLUDED.variant_title,
			sku = EXCLUDED.sku,
			quantity = EXCLUDED.quantity,
			price = COALESCE(EXCLUDED.price, products.price),
			location_id = CASE
				WHEN EXCLUDED.location_id <> 0 THEN EXCLUDED.location_id
				ELSE products.location_id
			END,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = NOW()
		RETURNING` + productColumns

	var model productModel
	err = scanProduct(tx.QueryRow(ctx, query,
		product.InventoryItemID,
		product.ProductID,
		product.VariantID,
		product.ProductTitle,
		product.VariantTitle,
		product.SKU,
		product.Quantity,
		priceParam(product),
		product.LocationID,
		product.LastSyncedAt,
	), &model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return model.toEntity(), nil
}

// SetNotifiedState фиксирует состояние троттлинга уведомлений (внутри той же
// транзакции, что и запись количества).
func (p *ProductRepo) SetNotifiedState(ctx context.Context, id int64, level, group int32) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products
		SET last_notified_threshold = $2,
			last_notified_threshold_group = $3,
			updated_at = NOW()
		WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, level, group); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *ProductRepo) SetQuantity(ctx context.Context, id int64, quantity int32) error {
	query := `
		UPDATE products
		SET quantity = $2, last_synced_at = NOW(), updated_at = NOW()
		WHERE id = $1`

	if _, err := p.pool.Exec(ctx, query, id, quantity); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *ProductRepo) SetLocation(ctx context.Context, id int64, locationID int64) error {
	query := `UPDATE products SET location_id = $2, updated_at = NOW() WHERE id = $1`

	if _, err := p.pool.Exec(ctx, query, id, locationID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeleteByInventoryItemID удаляет запись зеркала; возвращает, была ли она.
func (p *ProductRepo) DeleteByInventoryItemID(ctx context.Context, inventoryItemID int64) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM products WHERE inventory_item_id = $1`, inventoryItemID)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected() > 0, nil
}

func (p *ProductRepo) DeleteByID(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *ProductRepo) queryOne(ctx context.Context, query string, arg any) (*domain.Product, error) {
	var model productModel
	err := scanProduct(p.pool.QueryRow(ctx, query, arg), &model)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return model.toEntity(), nil
}

func scanProduct(row pgx.Row, m *productModel) error {
	return row.Scan(
		&m.ID, &m.InventoryItemID, &m.ProductID, &m.VariantID,
		&m.ProductTitle, &m.VariantTitle, &m.SKU, &m.Quantity,
		&m.Price, &m.LocationID, &m.LastNotifiedThreshold,
		&m.LastNotifiedGroup, &m.LastSyncedAt, &m.CreatedAt, &m.UpdatedAt,
	)
}
