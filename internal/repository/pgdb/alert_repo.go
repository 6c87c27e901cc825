package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/internal/domain"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/tr"
)

// AlertRepo пишет append-only журналы уведомлений. Если в контексте есть
// транзакция, запись попадает в неё, иначе идёт напрямую через пул.
type AlertRepo struct {
	pool *pgxpool.Pool
}

func NewAlertRepo(pool *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (a *AlertRepo) executor(ctx context.Context) execer {
	if tx, err := tr.TxFromCtx(ctx); err == nil {
		return tx
	}
	return a.pool
}

func (a *AlertRepo) LogAttempt(ctx context.Context, log *domain.AlertLog) error {
	query := `
		INSERT INTO alert_logs (product_id, recipient_email, type, quantity, delivered)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := a.executor(ctx).Exec(ctx, query,
		log.ProductID, log.RecipientEmail, string(log.Type), log.Quantity, log.Delivered)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (a *AlertRepo) CreateInventoryAlert(ctx context.Context, alert *domain.InventoryAlert) error {
	query := `
		INSERT INTO inventory_alerts (product_ref, threshold_level, new_inventory, recipient_emails)
		VALUES ($1, $2, $3, $4)`

	_, err := a.executor(ctx).Exec(ctx, query,
		alert.ProductRef, alert.ThresholdLevel, alert.NewInventory, alert.RecipientEmails)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
