package domain

import "time"

// AlertType — вид исходящего уведомления.
type AlertType string

const (
	AlertLowStock AlertType = "low_stock"
	AlertUpdate   AlertType = "update"
	AlertDelete   AlertType = "delete"
)

// AlertLog — запись аудита по одной попытке отправки (append-only, никогда
// не изменяется и не удаляется).
type AlertLog struct {
	ID             int64
	ProductID      int64
	RecipientEmail string
	Type           AlertType
	Quantity       int32
	Delivered      bool
	CreatedAt      time.Time
}

// InventoryAlert — итог одной троттлированной low-stock рассылки (append-only).
type InventoryAlert struct {
	ID              int64
	ProductRef      int64
	ThresholdLevel  int32
	NewInventory    int32
	RecipientEmails string
	SentAt          time.Time
}
