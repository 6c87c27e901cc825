package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

// AlertDispatcher реализует NotificationDispatcher поверх Mailer и журналов аудита.
type AlertDispatcher struct {
	recipientRepo RecipientRepository
	alertRepo     AlertRepository
	mailer        Mailer
	ccEmails      []string
	logger        logger.Logger
}

func NewAlertDispatcher(
	recipientRepo RecipientRepository,
	alertRepo AlertRepository,
	mailer Mailer,
	ccEmails []string,
	logger logger.Logger,
) *AlertDispatcher {
	return &AlertDispatcher{
		recipientRepo: recipientRepo,
		alertRepo:     alertRepo,
		mailer:        mailer,
		ccEmails:      ccEmails,
		logger:        logger,
	}
}

// DispatchLowStock рассылает троттлированное low-stock уведомление: по письму
// каждому получателю, запись аудита на каждую попытку, одна батч-запись
// inventory_alerts со списком успешных адресов.
func (d *AlertDispatcher) DispatchLowStock(ctx context.Context, product *domain.Product, level, available int32) (bool, error) {
	recipients, err := d.recipientRepo.ListEmails(ctx)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(recipients) == 0 {
		d.logger.Warnf("no registered recipients to notify, sku: %s", product.SKU)
		return false, nil
	}

	subject := fmt.Sprintf("Low Stock Alert: %s", product.ProductTitle)
	body := fmt.Sprintf(
		"Product %q (variant %q, SKU %s) is low on stock.\n\nCurrent quantity: %d\nThreshold crossed: %d\n",
		product.ProductTitle, product.VariantTitle, product.SKU, available, level,
	)

	sentTo := d.sendToAll(ctx, recipients, product, domain.AlertLowStock, available, subject, body)

	alert := &domain.InventoryAlert{
		ProductRef:      product.ID,
		ThresholdLevel:  level,
		NewInventory:    available,
		RecipientEmails: strings.Join(sentTo, ", "),
		SentAt:          time.Now(),
	}
	if err := d.alertRepo.CreateInventoryAlert(ctx, alert); err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	d.logger.Infof("throttled alert sent, sku: %s, level: %d, recipients: %d/%d",
		product.SKU, level, len(sentTo), len(recipients))

	return true, nil
}

// DispatchQuantityUpdated уведомляет о ручном изменении количества оператором.
// Сбои почты здесь не фатальны и наружу не поднимаются.
func (d *AlertDispatcher) DispatchQuantityUpdated(ctx context.Context, product *domain.Product, newQuantity int32) {
	recipients, err := d.recipientRepo.ListEmails(ctx)
	if err != nil {
		d.logger.Warnf("failed to list recipients: %v", err)
		return
	}
	if len(recipients) == 0 {
		d.logger.Warnf("no registered recipients to notify, sku: %s", product.SKU)
		return
	}

	subject := fmt.Sprintf("Quantity Updated: %s (%s)", product.ProductTitle, product.SKU)
	body := fmt.Sprintf(
		"Quantity of %q (variant %q, SKU %s) was updated to %d.\n",
		product.ProductTitle, product.VariantTitle, product.SKU, newQuantity,
	)

	d.sendToAll(ctx, recipients, product, domain.AlertUpdate, newQuantity, subject, body)
}

// DispatchProductDeleted уведомляет об удалении товара из удалённого каталога.
func (d *AlertDispatcher) DispatchProductDeleted(ctx context.Context, product *domain.Product, source string) {
	recipients, err := d.recipientRepo.ListEmails(ctx)
	if err != nil {
		d.logger.Warnf("failed to list recipients: %v", err)
		return
	}
	if len(recipients) == 0 {
		d.logger.Warnf("no registered recipients to notify, sku: %s", product.SKU)
		return
	}

	subject := fmt.Sprintf("Product Deleted: %s (%s)", product.ProductTitle, product.SKU)
	body := fmt.Sprintf(
		"Product %q (variant %q, SKU %s, inventory item %d) was deleted.\nLast known quantity: %d\nDeleted from: %s\n",
		product.ProductTitle, product.VariantTitle, product.SKU, product.InventoryItemID, product.Quantity, source,
	)

	d.sendToAll(ctx, recipients, product, domain.AlertDelete, product.Quantity, subject, body)
}

// sendToAll отправляет письмо каждому получателю независимо и возвращает
// адреса, на которые доставка прошла успешно.
func (d *AlertDispatcher) sendToAll(
	ctx context.Context,
	recipients []string,
	product *domain.Product,
	alertType domain.AlertType,
	quantity int32,
	subject, body string,
) []string {
	sentTo := make([]string, 0, len(recipients))

	for _, email := range recipients {
		sendErr := d.mailer.Send(ctx, email, d.ccEmails, subject, body)
		if sendErr != nil {
			d.logger.Warnf("failed to send %s alert to %s: %v", alertType, email, sendErr)
		} else {
			sentTo = append(sentTo, email)
		}

		logRow := &domain.AlertLog{
			ProductID:      product.ProductID,
			RecipientEmail: email,
			Type:           alertType,
			Quantity:       quantity,
			Delivered:      sendErr == nil,
		}
		if err := d.alertRepo.LogAttempt(ctx, logRow); err != nil {
			d.logger.Warnf("failed to write alert log for %s: %v", email, err)
		}
	}

	return sentTo
}
