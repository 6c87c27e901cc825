package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/stockwatch-tech/go-backend/internal/usecase"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

type ProductHandler struct {
	productOps usecase.ProductOpsUC
	logger     logger.Logger
}

func NewProductHandler(productOps usecase.ProductOpsUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productOps: productOps, logger: logger}
}

type userErrorDTO struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

func toUserErrorDTOs(errs []usecase.UserError) []userErrorDTO {
	dtos := make([]userErrorDTO, 0, len(errs))
	for _, ue := range errs {
		dtos = append(dtos, userErrorDTO{Field: ue.Field, Message: ue.Message})
	}
	return dtos
}

// updateQuantity — ручная правка остатка оператором. Бизнес-отказ каталога
// (userErrors) возвращается как 422 с текстами отказа, а не как 500.
func (p *ProductHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	inventoryItemID, err := strconv.ParseInt(chi.URLParam(r, "inventoryItemID"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrMissingInventoryItem)
		return
	}

	var req struct {
		Quantity *int32 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		WriteError(w, e.ErrInvalidQuantity)
		return
	}

	res, err := p.productOps.UpdateQuantity(r.Context(), inventoryItemID, *req.Quantity)
	if err != nil {
		p.logger.Warnf("update quantity for item %d failed: %s", inventoryItemID, err.Error())
		WriteError(w, err)
		return
	}

	if len(res.UserErrors) > 0 {
		WriteSuccess(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"user_errors": toUserErrorDTOs(res.UserErrors),
		})
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"new_quantity":        res.NewQuantity,
		"removed_from_mirror": res.RemovedFromMirror,
	})
}

func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	res, err := p.productOps.DeleteProduct(r.Context(), productID)
	if err != nil {
		p.logger.Warnf("delete product %d failed: %s", productID, err.Error())
		WriteError(w, err)
		return
	}

	if len(res.UserErrors) > 0 {
		WriteSuccess(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"user_errors": toUserErrorDTOs(res.UserErrors),
		})
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"deleted": true,
	})
}
