package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/stockwatch-tech/go-backend/internal/cfg"
	"github.com/stockwatch-tech/go-backend/internal/usecase"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(
	producer usecase.EventProducer,
	productOps usecase.ProductOpsUC,
	syncUC usecase.SyncUC,
	shopifyCfg *cfg.ShopifyCfg,
) {
	whHandler := NewWebhookHandler(producer, shopifyCfg, r.logger)
	r.router.Post("/webhooks/{type}", whHandler.receiveWebhook)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		prHandler := NewProductHandler(productOps, r.logger)
		registerProductRoutes(v1, prHandler)

		syncHandler := NewSyncHandler(syncUC, r.logger)
		v1.Post("/sync", syncHandler.triggerSync)
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Put("/{inventoryItemID}/quantity", prHandler.updateQuantity)
		pr.Delete("/{productID}", prHandler.deleteProduct)
	})
}
