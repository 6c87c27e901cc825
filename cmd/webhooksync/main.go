package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	config "github.com/stockwatch-tech/go-backend/internal/cfg"
	"github.com/stockwatch-tech/go-backend/internal/infrastructure/shopify"
	"github.com/stockwatch-tech/go-backend/pkg/clients"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

// Топики, которые сервис обязан слушать. Адрес строится из CALLBACK_BASE_URL
// и сегмента пути, который понимает webhook-обработчик.
var managedWebhooks = []struct {
	topic string
	path  string
}{
	{"inventory_levels/update", "/webhooks/inventory-update"},
	{"products/update", "/webhooks/product-update"},
	{"products/delete", "/webhooks/product-delete"},
}

func main() {
	log := logger.NewSlogLogger()

	shopifyCfg, redisCfg, err := config.LoadWebhookSync(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	redisClient := clients.NewRedisClient(redisCfg)
	defer redisClient.Client.Close()

	catalog := shopify.NewClient(shopifyCfg, redisClient, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	existing, err := catalog.ListWebhooks(ctx)
	if err != nil {
		log.Errorf(err, "failed to list webhook subscriptions")
		os.Exit(1)
	}

	// Сносим только свои подписки: чужие интеграции остаются нетронутыми.
	removed := 0
	for _, wh := range existing {
		if !strings.Contains(wh.Address, "/webhooks/") {
			continue
		}
		if err := catalog.DeleteWebhook(ctx, wh.ID); err != nil {
			log.Errorf(err, "failed to delete webhook %d (%s)", wh.ID, wh.Topic)
			os.Exit(1)
		}
		fmt.Printf("deleted webhook %d: %s -> %s\n", wh.ID, wh.Topic, wh.Address)
		removed++
	}

	base := strings.TrimSuffix(shopifyCfg.CallbackBaseURL, "/")
	for _, wh := range managedWebhooks {
		sub, err := catalog.RegisterWebhook(ctx, wh.topic, base+wh.path)
		if err != nil {
			log.Errorf(err, "failed to register webhook for topic %s", wh.topic)
			os.Exit(1)
		}
		fmt.Printf("registered webhook %d: %s -> %s\n", sub.ID, sub.Topic, sub.Address)
	}

	fmt.Printf("done: %d removed, %d registered\n", removed, len(managedWebhooks))
}
