package shopify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stockwatch-tech/go-backend/internal/usecase"
	"github.com/stockwatch-tech/go-backend/pkg/e"
)

type restProduct struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	Variants []restVariant `json:"variants"`
}

type restVariant struct {
	ID                int64  `json:"id"`
	InventoryItemID   int64  `json:"inventory_item_id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	InventoryQuantity int32  `json:"inventory_quantity"`
	Price             string `json:"price"`
}

// GetProducts возвращает одну страницу каталога (since_id-пагинация).
func (c *Client) GetProducts(ctx context.Context, limit int, sinceID int64) ([]usecase.CatalogProduct, error) {
	url := c.restURL(fmt.Sprintf("/products.json?limit=%d&since_id=%d", limit, sinceID))

	var res struct {
		Products []restProduct `json:"products"`
	}
	if err := c.doRequest(ctx, rateClassRest, http.MethodGet, url, nil, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products := make([]usecase.CatalogProduct, 0, len(res.Products))
	for _, p := range res.Products {
		variants := make([]domain.ProductVariantSnapshot, 0, len(p.Variants))
		for _, v := range p.Variants {
			variants = append(variants, domain.ProductVariantSnapshot{
				VariantID:       v.ID,
				InventoryItemID: v.InventoryItemID,
				Title:           v.Title,
				SKU:             v.SKU,
				Quantity:        v.InventoryQuantity,
				Price:           v.Price,
			})
		}
		products = append(products, usecase.CatalogProduct{
			ID:       p.ID,
			Title:    p.Title,
			Variants: variants,
		})
	}

	return products, nil
}

func (c *Client) GetInventoryItem(ctx context.Context, inventoryItemID int64) (*usecase.InventoryItem, error) {
	url := c.restURL(fmt.Sprintf("/inventory_items/%d.json", inventoryItemID))

	var res struct {
		InventoryItem struct {
			ID  int64  `json:"id"`
			SKU string `json:"sku"`
		} `json:"inventory_item"`
	}
	if err := c.doRequest(ctx, rateClassRest, http.MethodGet, url, nil, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &usecase.InventoryItem{ID: res.InventoryItem.ID, SKU: res.InventoryItem.SKU}, nil
}

func (c *Client) GetLocations(ctx context.Context) ([]usecase.Location, error) {
	var res struct {
		Locations []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"locations"`
	}
	if err := c.doRequest(ctx, rateClassRest, http.MethodGet, c.restURL("/locations.json"), nil, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	locations := make([]usecase.Location, 0, len(res.Locations))
	for _, l := range res.Locations {
		locations = append(locations, usecase.Location{ID: l.ID, Name: l.Name})
	}

	return locations, nil
}

type restWebhook struct {
	ID      int64  `json:"id"`
	Topic   string `json:"topic"`
	Address string `json:"address"`
}

func (c *Client) ListWebhooks(ctx context.Context) ([]usecase.WebhookSubscription, error) {
	var res struct {
		Webhooks []restWebhook `json:"webhooks"`
	}
	if err := c.doRequest(ctx, rateClassRest, http.MethodGet, c.restURL("/webhooks.json"), nil, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	subs := make([]usecase.WebhookSubscription, 0, len(res.Webhooks))
	for _, w := range res.Webhooks {
		subs = append(subs, usecase.WebhookSubscription{ID: w.ID, Topic: w.Topic, Address: w.Address})
	}

	return subs, nil
}

func (c *Client) RegisterWebhook(ctx context.Context, topic, address string) (*usecase.WebhookSubscription, error) {
	body := map[string]any{
		"webhook": map[string]string{
			"topic":   topic,
			"address": address,
			"format":  "json",
		},
	}

	var res struct {
		Webhook restWebhook `json:"webhook"`
	}
	if err := c.doRequest(ctx, rateClassRest, http.MethodPost, c.restURL("/webhooks.json"), body, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &usecase.WebhookSubscription{
		ID:      res.Webhook.ID,
		Topic:   res.Webhook.Topic,
		Address: res.Webhook.Address,
	}, nil
}

func (c *Client) DeleteWebhook(ctx context.Context, id int64) error {
	url := c.restURL(fmt.Sprintf("/webhooks/%d.json", id))

	if err := c.doRequest(ctx, rateClassRest, http.MethodDelete, url, nil, nil); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
