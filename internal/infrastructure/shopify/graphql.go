package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/internal/usecase"
	"github.com/stockwatch-tech/go-backend/pkg/e"
)

var _ usecase.CatalogClient = (*Client)(nil)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlUserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type graphqlError struct {
	Message string `json:"message"`
}

func (c *Client) graphqlURL() string {
	return c.baseURL + "/graphql.json"
}

// doGraphQL выполняет запрос и разворачивает конверт ответа. GraphQL может
// вернуть 200 с одним лишь массивом errors; такой ответ — отказ апстрима,
// а не «ничего не найдено».
func (c *Client) doGraphQL(ctx context.Context, req graphqlRequest, data any) error {
	var res struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := c.doRequest(ctx, rateClassGraphQL, http.MethodPost, c.graphqlURL(), req, &res); err != nil {
		return err
	}

	if len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, ge := range res.Errors {
			msgs = append(msgs, ge.Message)
		}
		return &UpstreamError{Status: http.StatusOK, Body: strings.Join(msgs, "; ")}
	}

	if len(res.Data) == 0 || string(res.Data) == "null" {
		return nil
	}

	return json.Unmarshal(res.Data, data)
}

// normalizeGID извлекает числовой идентификатор из составной формы
// "gid://shopify/Product/123". Числовой вход проходит как есть.
func normalizeGID(gid string) (int64, error) {
	id := gid
	if i := strings.LastIndex(gid, "/"); i >= 0 {
		id = gid[i+1:]
	}

	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), fmt.Errorf("malformed gid %q", gid))
	}

	return n, nil
}

func toUserErrors(raw []graphqlUserError) []usecase.UserError {
	if len(raw) == 0 {
		return nil
	}

	errs := make([]usecase.UserError, 0, len(raw))
	for _, ue := range raw {
		errs = append(errs, usecase.UserError{Field: ue.Field, Message: ue.Message})
	}

	return errs
}

const variantBySKUQuery = `
query variantBySku($query: String!) {
  productVariants(first: 1, query: $query) {
    edges {
      node {
        id
        title
        inventoryItem { id }
        product { id title }
      }
    }
  }
}`

// GetVariantBySKU ищет вариант по точному SKU; (nil, nil) — не найден.
func (c *Client) GetVariantBySKU(ctx context.Context, sku string) (*usecase.VariantDetails, error) {
	req := graphqlRequest{
		Query:     variantBySKUQuery,
		Variables: map[string]any{"query": fmt.Sprintf("sku:%s", sku)},
	}

	var res struct {
		ProductVariants struct {
			Edges []struct {
				Node struct {
					ID            string `json:"id"`
					Title         string `json:"title"`
					InventoryItem struct {
						ID string `json:"id"`
					} `json:"inventoryItem"`
					Product struct {
						ID    string `json:"id"`
						Title string `json:"title"`
					} `json:"product"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"productVariants"`
	}
	if err := c.doGraphQL(ctx, req, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	edges := res.ProductVariants.Edges
	if len(edges) == 0 {
		return nil, nil
	}
	node := edges[0].Node

	variantID, err := normalizeGID(node.ID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	productID, err := normalizeGID(node.Product.ID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	inventoryItemID, err := normalizeGID(node.InventoryItem.ID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &usecase.VariantDetails{
		ProductID:       productID,
		VariantID:       variantID,
		InventoryItemID: inventoryItemID,
		ProductTitle:    node.Product.Title,
		VariantTitle:    node.Title,
	}, nil
}

const setQuantityMutation = `
mutation setOnHand($input: InventorySetOnHandQuantitiesInput!) {
  inventorySetOnHandQuantities(input: $input) {
    userErrors {
      field
      message
    }
  }
}`

// SetInventoryQuantity выставляет абсолютное значение on-hand по локации.
// userErrors возвращаются значением: это отказ каталога, а не сбой вызова.
func (c *Client) SetInventoryQuantity(ctx context.Context, inventoryItemID, locationID int64, quantity int32) ([]usecase.UserError, error) {
	req := graphqlRequest{
		Query: setQuantityMutation,
		Variables: map[string]any{
			"input": map[string]any{
				"reason": "correction",
				"setQuantities": []map[string]any{{
					"inventoryItemId": fmt.Sprintf("gid://shopify/InventoryItem/%d", inventoryItemID),
					"locationId":      fmt.Sprintf("gid://shopify/Location/%d", locationID),
					"quantity":        quantity,
				}},
			},
		},
	}

	var res struct {
		InventorySetOnHandQuantities struct {
			UserErrors []graphqlUserError `json:"userErrors"`
		} `json:"inventorySetOnHandQuantities"`
	}
	if err := c.doGraphQL(ctx, req, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return toUserErrors(res.InventorySetOnHandQuantities.UserErrors), nil
}

const deleteProductMutation = `
mutation deleteProduct($input: ProductDeleteInput!) {
  productDelete(input: $input) {
    deletedProductId
    userErrors {
      field
      message
    }
  }
}`

func (c *Client) DeleteProduct(ctx context.Context, productID int64) ([]usecase.UserError, error) {
	req := graphqlRequest{
		Query: deleteProductMutation,
		Variables: map[string]any{
			"input": map[string]any{
				"id": fmt.Sprintf("gid://shopify/Product/%d", productID),
			},
		},
	}

	var res struct {
		ProductDelete struct {
			DeletedProductID *string            `json:"deletedProductId"`
			UserErrors       []graphqlUserError `json:"userErrors"`
		} `json:"productDelete"`
	}
	if err := c.doGraphQL(ctx, req, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return toUserErrors(res.ProductDelete.UserErrors), nil
}
