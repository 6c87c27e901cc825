package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrMissingCredentials   = fmt.Errorf("shopify credentials are not configured")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrMissingInventoryItem = fmt.Errorf("inventory_item_id is required")
	ErrInvalidQuantity      = fmt.Errorf("quantity must be a non-negative integer")

	// 401 / 404
	ErrInvalidSignature   = fmt.Errorf("invalid webhook signature")
	ErrUnknownWebhookType = fmt.Errorf("unknown webhook type")
	ErrUnknownShop        = fmt.Errorf("unknown shop domain")
	ErrProductNotFound    = fmt.Errorf("product not found")

	// 409 / 500
	ErrSyncAlreadyRunning  = fmt.Errorf("catalog sync is already running")
	ErrNoLocations         = fmt.Errorf("no shopify location found for this store")
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Ошибки сверки каталога
	ErrSinceIDNotProgressing = fmt.Errorf("sync stuck: since_id did not progress")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
