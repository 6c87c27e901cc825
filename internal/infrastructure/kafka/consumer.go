package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stockwatch-tech/go-backend/internal/cfg"
	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stockwatch-tech/go-backend/internal/usecase"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/jitter"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

// Consumer — пул воркеров поверх consumer group. Каждый воркер держит свой
// reader: kafka-go сам раздаёт партиции членам группы, поэтому порядок
// в пределах товара сохраняется.
type Consumer struct {
	inventory usecase.InventoryUC
	logger    logger.Logger
	cfg       *cfg.KafkaCfg

	readers []*kafka.Reader
	wg      sync.WaitGroup
}

func NewConsumer(inventory usecase.InventoryUC, logger logger.Logger, cfg *cfg.KafkaCfg) *Consumer {
	return &Consumer{
		inventory: inventory,
		logger:    logger,
		cfg:       cfg,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	for i := 0; i < c.cfg.Workers; i++ {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:        c.cfg.Brokers,
			GroupID:        c.cfg.GroupID,
			Topic:          c.cfg.Topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: 0, // явные коммиты после обработки
		})
		c.readers = append(c.readers, reader)

		c.wg.Add(1)
		go func(id int, reader *kafka.Reader) {
			defer c.wg.Done()
			c.runWorker(ctx, id, reader)
		}(i, reader)
	}
}

// Stop закрывает ресурсы и дожидается воркеров.
func (c *Consumer) Stop() {
	for _, reader := range c.readers {
		_ = reader.Close()
	}
	c.wg.Wait()
}

func (c *Consumer) runWorker(ctx context.Context, id int, reader *kafka.Reader) {
	c.logger.Infof("consumer worker %d started", id)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Infof("consumer worker %d stopped", id)
				return
			}
			c.logger.Warnf("worker %d fetch failed: %v", id, err)
			return
		}

		if err := c.handleMessage(ctx, &msg); err != nil {
			c.logger.Errorf(err, "worker %d gave up on message at offset %d", id, msg.Offset)
		}

		// Коммитим в обе стороны: обработанное и безнадёжное. Отравленное
		// сообщение не должно блокировать партицию.
		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warnf("worker %d commit failed: %v", id, err)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg *kafka.Message) error {
	const (
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	var envelope domain.EventEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		// Нечитаемый конверт ретраить бессмысленно.
		return e.Wrap("Consumer.handleMessage", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		lastErr = c.dispatch(ctx, &envelope)
		if lastErr == nil {
			return nil
		}

		if attempt == c.cfg.MaxAttempts-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(baseJitter, maxJitter, attempt, jitter.DefaultJitter)
		c.logger.Warnf("event %s failed, retrying in %v (attempt %d): %v",
			envelope.EventID, sleepTime, attempt+1, lastErr)

		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return e.Wrap("Consumer.handleMessage", ctx.Err())
		}
	}

	return e.Wrap("Consumer.handleMessage", lastErr)
}

func (c *Consumer) dispatch(ctx context.Context, envelope *domain.EventEnvelope) error {
	const op = "Consumer.dispatch"

	switch envelope.Kind {
	case domain.KindInventoryUpdate:
		var payload struct {
			InventoryItemID domain.FlexInt64 `json:"inventory_item_id"`
			Available       int32            `json:"available"`
			LocationID      int64            `json:"location_id"`
		}
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return e.Wrap(op, err)
		}
		return c.inventory.ProcessInventoryLevel(ctx, &domain.InventoryLevelEvent{
			EventID:         envelope.EventID,
			InventoryItemID: payload.InventoryItemID.Int64(),
			Available:       payload.Available,
			LocationID:      payload.LocationID,
		})

	case domain.KindProductUpdate:
		var payload struct {
			ID       int64  `json:"id"`
			Title    string `json:"title"`
			Variants []struct {
				ID                int64  `json:"id"`
				InventoryItemID   int64  `json:"inventory_item_id"`
				Title             string `json:"title"`
				SKU               string `json:"sku"`
				InventoryQuantity int32  `json:"inventory_quantity"`
				Price             string `json:"price"`
			} `json:"variants"`
		}
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return e.Wrap(op, err)
		}

		ev := domain.ProductUpdateEvent{
			EventID:   envelope.EventID,
			ProductID: payload.ID,
			Title:     payload.Title,
		}
		for _, v := range payload.Variants {
			ev.Variants = append(ev.Variants, domain.ProductVariantSnapshot{
				VariantID:       v.ID,
				InventoryItemID: v.InventoryItemID,
				Title:           v.Title,
				SKU:             v.SKU,
				Quantity:        v.InventoryQuantity,
				Price:           v.Price,
			})
		}
		return c.inventory.ProcessProductUpdate(ctx, &ev)

	case domain.KindProductDelete:
		var payload struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return e.Wrap(op, err)
		}
		return c.inventory.ProcessProductDelete(ctx, &domain.ProductDeleteEvent{
			EventID:   envelope.EventID,
			ProductID: payload.ID,
		})

	default:
		return e.Wrap(op, e.ErrUnknownWebhookType)
	}
}
