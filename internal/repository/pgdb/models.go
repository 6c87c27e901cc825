package pgdb

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockwatch-tech/go-backend/internal/domain"
)

// productModel — строка таблицы products; price сканируется текстом,
// чтобы не тянуть отдельный кодек numeric.
type productModel struct {
	ID                    int64
	InventoryItemID       int64
	ProductID             int64
	VariantID             int64
	ProductTitle          string
	VariantTitle          string
	SKU                   string
	Quantity              int32
	Price                 *string
	LocationID            int64
	LastNotifiedThreshold *int32
	LastNotifiedGroup     *int32
	LastSyncedAt          time.Time
	CreatedAt             time.Time
	UpdatedAt             *time.Time
}

func (m *productModel) toEntity() *domain.Product {
	p := &domain.Product{
		ID:                    m.ID,
		InventoryItemID:       m.InventoryItemID,
		ProductID:             m.ProductID,
		VariantID:             m.VariantID,
		ProductTitle:          m.ProductTitle,
		VariantTitle:          m.VariantTitle,
		SKU:                   m.SKU,
		Quantity:              m.Quantity,
		LocationID:            m.LocationID,
		LastNotifiedThreshold: m.LastNotifiedThreshold,
		LastNotifiedGroup:     m.LastNotifiedGroup,
		LastSyncedAt:          m.LastSyncedAt,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}

	if m.Price != nil {
		if d, err := decimal.NewFromString(*m.Price); err == nil {
			p.Price = &d
		}
	}

	return p
}

func priceParam(p *domain.Product) *string {
	if p.Price == nil {
		return nil
	}
	s := p.Price.String()
	return &s
}
