package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stockwatch-tech/go-backend/internal/cfg"
	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stockwatch-tech/go-backend/internal/usecase"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

// WebhookHandler принимает вебхуки каталога. Обработчик только проверяет
// подпись, валидирует конверт и кладёт событие в очередь: вся работа с БД
// происходит асинхронно в воркерах.
type WebhookHandler struct {
	producer usecase.EventProducer
	cfg      *cfg.ShopifyCfg
	logger   logger.Logger
}

func NewWebhookHandler(producer usecase.EventProducer, cfg *cfg.ShopifyCfg, logger logger.Logger) *WebhookHandler {
	return &WebhookHandler{producer: producer, cfg: cfg, logger: logger}
}

func (h *WebhookHandler) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodySize = 1 << 20

	kind, err := domain.ParseWebhookKind(chi.URLParam(r, "type"))
	if err != nil {
		h.logger.Warnf("webhook with unknown type %q rejected", chi.URLParam(r, "type"))
		WriteError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	secretIdx, ok := verifySignature(body, signatureFromRequest(r), h.cfg.WebhookSecrets)
	if !ok {
		h.logger.Warnf("webhook %s rejected: signature mismatch", kind)
		WriteError(w, e.ErrInvalidSignature)
		return
	}
	if secretIdx > 0 {
		h.logger.Warnf("webhook %s signed with fallback secret #%d, rotation pending", kind, secretIdx)
	}

	// Заголовок магазина опционален, но если он есть, то должен совпадать
	// с настроенным доменом.
	if shop := r.Header.Get("X-Shopify-Shop-Domain"); shop != "" && shop != h.cfg.StoreDomain {
		h.logger.Warnf("webhook %s rejected: unexpected shop %q", kind, shop)
		WriteError(w, e.ErrUnknownShop)
		return
	}

	key, err := partitionKey(kind, body)
	if err != nil {
		h.logger.Warnf("webhook %s rejected: %s", kind, err.Error())
		WriteError(w, err)
		return
	}

	envelope := domain.EventEnvelope{
		EventID: uuid.NewString(),
		Kind:    kind,
		Payload: body,
	}

	if err := h.producer.Enqueue(r.Context(), &envelope, key); err != nil {
		h.logger.Errorf(err, "failed to enqueue webhook %s", kind)
		WriteError(w, e.ErrInternalServerError)
		return
	}

	h.logger.Infof("webhook %s accepted, event %s", kind, envelope.EventID)
	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "webhook received",
	})
}

// partitionKey извлекает ключ партиционирования и попутно валидирует
// обязательные поля payload'а.
func partitionKey(kind domain.WebhookKind, body []byte) (int64, error) {
	switch kind {
	case domain.KindInventoryUpdate:
		var payload struct {
			InventoryItemID *domain.FlexInt64 `json:"inventory_item_id"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return 0, e.ErrStatusBadRequest
		}
		if payload.InventoryItemID == nil {
			return 0, e.ErrMissingInventoryItem
		}
		return payload.InventoryItemID.Int64(), nil

	default:
		var payload struct {
			ID *domain.FlexInt64 `json:"id"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return 0, e.ErrStatusBadRequest
		}
		if payload.ID == nil {
			return 0, e.ErrStatusBadRequest
		}
		return payload.ID.Int64(), nil
	}
}
